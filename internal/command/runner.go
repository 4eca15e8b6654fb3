package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrEmptyCommand is returned when a Spec has no command name.
var ErrEmptyCommand = errors.New("command: empty command name")

// Spec describes a single external command invocation.
type Spec struct {
	// Name is the command to run, resolved via PATH unless absolute.
	Name string
	// Args are the command arguments, exec-style (no shell interpretation).
	Args []string
	// Dir is the working directory. Empty means the process working
	// directory, which for pipeline steps is wherever the directory
	// stack currently points.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment. Nil appends nothing.
	Env []string
	// Stdin, when non-nil, is wired to the command's standard input.
	Stdin io.Reader
}

// CommandLine renders the invocation for logs and error messages.
func (s Spec) CommandLine() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + " " + strings.Join(s.Args, " ")
}

// Runner abstracts external command execution.
//
// Design decision: three methods, not one. Run is for commands whose
// output belongs on the user's terminal (npm install, docker compose up),
// Output is for commands whose stdout is an answer to parse (git
// rev-parse), and LookPath is for preflight tool checks that must not
// actually execute anything.
type Runner interface {
	// Run executes the command, streaming its output, and returns an
	// error if it exits non-zero.
	Run(ctx context.Context, spec Spec) error

	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, spec Spec) (string, error)

	// LookPath reports the full path of the named tool, or an error if
	// it is not installed.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec. The zero value is not usable;
// construct with NewExecRunner.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// ExecOption configures an ExecRunner.
type ExecOption func(*ExecRunner)

// WithStdout redirects streamed command stdout. Defaults to os.Stdout.
func WithStdout(w io.Writer) ExecOption {
	return func(r *ExecRunner) {
		r.stdout = w
	}
}

// WithStderr redirects streamed command stderr. Defaults to os.Stderr.
func WithStderr(w io.Writer) ExecOption {
	return func(r *ExecRunner) {
		r.stderr = w
	}
}

// NewExecRunner creates an os/exec-backed Runner.
func NewExecRunner(opts ...ExecOption) *ExecRunner {
	r := &ExecRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) error {
	cmd, err := r.build(ctx, spec)
	if err != nil {
		return err
	}
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", spec.CommandLine(), err)
	}
	return nil
}

// Output implements Runner. Stderr still streams to the configured writer
// so diagnostics from the tool are not lost.
func (r *ExecRunner) Output(ctx context.Context, spec Spec) (string, error) {
	cmd, err := r.build(ctx, spec)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", spec.CommandLine(), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// build assembles the exec.Cmd for a spec.
func (r *ExecRunner) build(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	if spec.Name == "" {
		return nil, ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdin = spec.Stdin
	return cmd, nil
}

// ExitCode extracts the process exit code from an error returned by Run or
// Output. It returns -1 when the error does not carry one (startup
// failures, cancellation).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
