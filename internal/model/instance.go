package model

import (
	"errors"
	"strings"
)

// InstanceName errors.
var (
	// ErrEmptyInstanceName is returned when the instance name is empty.
	ErrEmptyInstanceName = errors.New("instance name cannot be empty")
	// ErrInvalidInstanceName is returned when the name contains characters
	// unsafe for a directory or container name.
	ErrInvalidInstanceName = errors.New("invalid instance name")
	// ErrInstanceNameTooLong is returned when the name exceeds the maximum length.
	ErrInstanceNameTooLong = errors.New("instance name too long")
)

// maxInstanceNameLength bounds names so they stay usable as directory
// names, compose project names, and database identifiers.
const maxInstanceNameLength = 64

// InstanceName is an immutable value object naming one installation.
// The name doubles as the checkout directory, the compose project name,
// and the journal key, so it is restricted to characters safe in all
// three contexts.
type InstanceName struct {
	name string
}

// NewInstanceName validates and creates an InstanceName.
//
// Valid names are 1-64 characters of letters, digits, dot, dash, and
// underscore, starting with a letter or digit. "." and ".." are rejected
// because the name becomes a directory.
func NewInstanceName(name string) (InstanceName, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return InstanceName{}, ErrEmptyInstanceName
	}
	if len(trimmed) > maxInstanceNameLength {
		return InstanceName{}, ErrInstanceNameTooLong
	}
	if !isValidInstanceName(trimmed) {
		return InstanceName{}, ErrInvalidInstanceName
	}
	return InstanceName{name: trimmed}, nil
}

// MustNewInstanceName creates an InstanceName or panics if invalid.
// Use only for known-valid names in tests or initialization.
func MustNewInstanceName(name string) InstanceName {
	in, err := NewInstanceName(name)
	if err != nil {
		panic(err)
	}
	return in
}

// isValidInstanceName checks the character set and leading character.
func isValidInstanceName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	for i, c := range name {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isLetter && !isDigit {
			return false
		}
		if !isLetter && !isDigit && c != '.' && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

// String returns the instance name.
func (n InstanceName) String() string {
	return n.name
}

// Slug returns the name lowered for contexts that are case-insensitive,
// such as compose project names and database names.
func (n InstanceName) Slug() string {
	return strings.ToLower(n.name)
}

// IsZero returns true if this is a zero value (empty) InstanceName.
func (n InstanceName) IsZero() bool {
	return n.name == ""
}

// Equals returns true if two InstanceName values name the same instance.
// Comparison is case-insensitive, matching how the name is used on disk
// and in compose projects.
func (n InstanceName) Equals(other InstanceName) bool {
	return strings.EqualFold(n.name, other.name)
}
