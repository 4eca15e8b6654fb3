// Package services owns the ephemeral service set the installer needs
// while it initializes and migrates the database: rendering the compose
// definition from a template, validating it, bringing the stack up,
// probing readiness, and guaranteeing teardown through the Guard.
//
// The Guard is deliberately stateful. The step that acquires the services
// and the terminal step that releases them are distinct pipeline steps
// sharing one Guard instance, so the handle lives on the Guard between
// them. Release is safe to call on an unstarted or already-released
// Guard, which keeps the teardown step unconditional.
package services
