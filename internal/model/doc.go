// Package model defines the domain types shared across the installer:
// instance names, installation modes, target environments, and the
// install report assembled while a pipeline runs.
//
// Types here are plain data with validation. They carry no behavior that
// touches the filesystem, the network, or external tools; that belongs to
// the steps and services packages.
package model
