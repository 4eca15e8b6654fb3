// Package command wraps external tool invocation behind a small interface
// so that steps can be tested without a shell, git, npm, or docker on the
// machine running the tests.
//
// The package deliberately exposes run specifications as plain data
// (command name, arguments, working directory, extra environment) rather
// than exposing *exec.Cmd: steps describe what to run, the runner decides
// how. The production runner shells out with os/exec; tests substitute a
// recording fake.
package command
