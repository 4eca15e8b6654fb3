package pipeline

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// RunOptions is the mutable option map shared by reference across all steps
// of one pipeline execution.
//
// The map is populated from caller-supplied arguments before the pipeline
// starts. Steps may add derived values for later steps to consume. Derived
// values use merge-if-absent semantics (SetDefault, Merge) so that
// caller-supplied values always win, except where a step intentionally
// overrides an entry with Set (for example the recomputed environment mode).
//
// Design decision: a string-keyed map rather than a typed struct because
// the setup phase of the installed application emits an open-ended set of
// derived options, and steps from alternate flows contribute keys the
// default flow never sees. Well-known keys are named by constants in the
// steps package.
//
// RunOptions is owned by a single pipeline execution and is not safe for
// concurrent use.
type RunOptions struct {
	values map[string]any
}

// NewRunOptions returns an empty option map.
func NewRunOptions() *RunOptions {
	return &RunOptions{values: make(map[string]any)}
}

// Set stores value under key, overwriting any existing entry.
func (o *RunOptions) Set(key string, value any) {
	o.values[key] = value
}

// SetDefault stores value under key only when the key is absent.
// It reports whether the value was stored.
func (o *RunOptions) SetDefault(key string, value any) bool {
	if _, ok := o.values[key]; ok {
		return false
	}
	o.values[key] = value
	return true
}

// Merge copies every entry of values into the options with merge-if-absent
// semantics: existing keys are left untouched.
func (o *RunOptions) Merge(values map[string]any) {
	for k, v := range values {
		o.SetDefault(k, v)
	}
}

// Has reports whether key is present.
func (o *RunOptions) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Delete removes key from the options.
func (o *RunOptions) Delete(key string) {
	delete(o.values, key)
}

// String returns the value under key as a string, or "" when the key is
// absent or holds a non-string value.
func (o *RunOptions) String(key string) string {
	if s, ok := o.values[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the value under key as a bool, or false when the key is
// absent or holds a non-bool value.
func (o *RunOptions) Bool(key string) bool {
	if b, ok := o.values[key].(bool); ok {
		return b
	}
	return false
}

// Int returns the value under key as an int, or 0 when the key is absent
// or holds a non-int value.
func (o *RunOptions) Int(key string) int {
	if n, ok := o.values[key].(int); ok {
		return n
	}
	return 0
}

// Len returns the number of stored options.
func (o *RunOptions) Len() int {
	return len(o.values)
}

// Snapshot returns a copy of the current option map. The copy is shallow;
// it is intended for logging and journaling, not for mutation.
func (o *RunOptions) Snapshot() map[string]any {
	out := make(map[string]any, len(o.values))
	maps.Copy(out, o.values)
	return out
}

// Keys returns the stored keys in sorted order.
func (o *RunOptions) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Describe returns a compact "key=value" listing in key order, useful for
// debug logging. Values are formatted with %v. Values under keys that name
// a credential are masked here: Describe flattens entries into strings, so
// a key-based redacting log handler never sees them individually.
func (o *RunOptions) Describe() []string {
	keys := o.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if sensitiveKey(k) {
			out = append(out, k+"=***REDACTED***")
			continue
		}
		out = append(out, fmt.Sprintf("%s=%v", k, o.values[k]))
	}
	return out
}

// sensitiveKey reports whether an option key names a credential.
func sensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") ||
		strings.Contains(k, "secret") ||
		strings.Contains(k, "token")
}
