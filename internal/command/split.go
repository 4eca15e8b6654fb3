package command

import (
	"fmt"

	"github.com/mattn/go-shellwords"
)

// Split parses a shell-style command line into argv, honoring quotes and
// escapes. Profiles use this for setup hooks written as single strings,
// e.g. `setup_command: "./scripts/setup.sh --no-prompt"`.
func Split(raw string) ([]string, error) {
	args, err := shellwords.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", raw, err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return args, nil
}

// SplitSpec parses a shell-style command line into a Spec rooted at dir.
func SplitSpec(raw, dir string) (Spec, error) {
	args, err := Split(raw)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Name: args[0], Args: args[1:], Dir: dir}, nil
}
