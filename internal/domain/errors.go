package domain

import "fmt"

// ConfigError aborts the run before discovery starts. It maps to exit code 2.
type ConfigError struct {
    Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func Configf(format string, args ...any) error {
    return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// SearchError is fatal: without issue keys there is nothing to process.
type SearchError struct {
    Status int
    Err    error
}

func (e *SearchError) Error() string {
    if e.Status > 0 { return fmt.Sprintf("search: status=%d: %v", e.Status, e.Err) }
    return "search: " + e.Err.Error()
}
func (e *SearchError) Unwrap() error { return e.Err }

// ChangelogError fails a single issue; the run continues.
type ChangelogError struct {
    Key string
    Err error
}

func (e *ChangelogError) Error() string { return fmt.Sprintf("changelog %s: %v", e.Key, e.Err) }
func (e *ChangelogError) Unwrap() error { return e.Err }

// UpdateError fails a single issue; the run continues.
type UpdateError struct {
    Key string
    Err error
}

func (e *UpdateError) Error() string { return fmt.Sprintf("update %s: %v", e.Key, e.Err) }
func (e *UpdateError) Unwrap() error { return e.Err }
