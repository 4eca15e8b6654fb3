// Package steps implements the concrete pipeline steps of the installer.
//
// Each step is a thin adapter between the pipeline contract and one external
// collaborator (git, npm, the container engine, the application's own
// scripts). The steps carry no retry or timeout logic of their own: a failed
// tool invocation surfaces immediately, and cancellation arrives through the
// context.
//
// Design decision: one file per step because:
//  1. each step has its own collaborator, defaults, and failure modes
//  2. the install flow is read top to bottom in install.go, so the step
//     files only need to be found, not scanned
//  3. tests pair naturally with the step they exercise
//
// Steps communicate through the shared run options (see keys.go). Derived
// values are merged with merge-if-absent semantics so that caller-supplied
// values always win, with one documented exception: dev mode recomputes the
// environment and intentionally overwrites it.
package steps
