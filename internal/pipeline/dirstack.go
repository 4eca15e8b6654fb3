package pipeline

import (
	"errors"
	"fmt"
	"os"
)

// ErrStackBottom is returned by Pop when only the original directory
// remains on the stack. A pop at depth one means a step popped more than
// it pushed, which the unwind phase never does.
var ErrStackBottom = errors.New("directory stack is at its original entry")

// Wd abstracts the process working-directory operations so the stack can be
// exercised in tests without touching the real filesystem.
type Wd interface {
	// Getwd returns the current working directory.
	Getwd() (string, error)

	// Chdir changes the current working directory.
	Chdir(dir string) error
}

// osWd is the production Wd backed by the os package.
type osWd struct{}

func (osWd) Getwd() (string, error) { return os.Getwd() }

func (osWd) Chdir(dir string) error { return os.Chdir(dir) }

// DirStack records nested working-directory changes so they can be unwound
// deterministically when the pipeline ends.
//
// The stack always holds at least one entry: the directory the process was
// in when the stack was created. Depth therefore starts at one, and an
// unwind pops entries until exactly that original entry remains.
//
// Design decision: an explicit in-process stack with an injected Wd
// collaborator, rather than scattered chdir calls in steps, because the
// unwind phase is the single place responsible for restoring the original
// directory. A step may fail after pushing and before popping; correctness
// must not depend on step-local cleanup.
type DirStack struct {
	wd    Wd
	stack []string
}

// DirStackOption configures a DirStack.
type DirStackOption func(*DirStack)

// WithWd sets the working-directory collaborator. Tests use this to supply
// a fake; production code uses the os-backed default.
func WithWd(wd Wd) DirStackOption {
	return func(s *DirStack) {
		s.wd = wd
	}
}

// NewDirStack creates a stack whose bottom entry is the current working
// directory of the supplied Wd (the os-backed one by default).
func NewDirStack(opts ...DirStackOption) (*DirStack, error) {
	s := &DirStack{wd: osWd{}}
	for _, opt := range opts {
		opt(s)
	}

	origin, err := s.wd.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving original working directory: %w", err)
	}
	s.stack = []string{origin}
	return s, nil
}

// Push changes into dir and records the resulting directory on the stack.
//
// The recorded entry is the resolved directory reported by the Wd after the
// change, not the possibly-relative argument, so that a later Pop can chdir
// back by absolute path regardless of where the process is at that moment.
func (s *DirStack) Push(dir string) error {
	if err := s.wd.Chdir(dir); err != nil {
		return fmt.Errorf("entering %s: %w", dir, err)
	}
	resolved, err := s.wd.Getwd()
	if err != nil {
		return fmt.Errorf("resolving %s after chdir: %w", dir, err)
	}
	s.stack = append(s.stack, resolved)
	return nil
}

// Pop removes the top entry and changes back into the entry below it.
// Popping the original entry returns ErrStackBottom.
func (s *DirStack) Pop() error {
	if len(s.stack) <= 1 {
		return ErrStackBottom
	}
	below := s.stack[len(s.stack)-2]
	if err := s.wd.Chdir(below); err != nil {
		return fmt.Errorf("returning to %s: %w", below, err)
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// Depth returns the number of entries on the stack, including the original
// directory. A freshly created stack has depth one.
func (s *DirStack) Depth() int {
	return len(s.stack)
}

// Current returns the directory on top of the stack.
func (s *DirStack) Current() string {
	return s.stack[len(s.stack)-1]
}

// Origin returns the bottom entry: the directory the stack was created in.
func (s *DirStack) Origin() string {
	return s.stack[0]
}

// Unwind pops entries until only the original directory remains, restoring
// the process to where it started. At depth one it is a no-op, never an
// error.
func (s *DirStack) Unwind() error {
	for s.Depth() > 1 {
		if err := s.Pop(); err != nil {
			return err
		}
	}
	return nil
}
