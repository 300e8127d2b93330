package loader

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound marks a missing template, file, or sheet.
	ErrNotFound = errors.New("not found")
	// ErrFormat marks backing content that is not shaped as expected.
	ErrFormat = errors.New("malformed content")
	// ErrIO marks a read or write failure against the backing store.
	ErrIO = errors.New("i/o failure")
	// ErrAuth marks missing, invalid, or insufficient credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrConfiguration marks an invalid backend setup.
	ErrConfiguration = errors.New("invalid configuration")
)

// Error reports a failed loader operation together with the resource it
// touched.
type Error struct {
	Op       string
	Resource string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Resource != "" {
		b.WriteString(" ")
		b.WriteString(e.Resource)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newError wraps err as a loader failure. An err that already carries a
// loader Error is returned unchanged so the innermost resource is reported.
func newError(op, resource string, kind, err error) error {
	var existing *Error
	if err != nil && errors.As(err, &existing) {
		return err
	}
	return &Error{Op: op, Resource: resource, Kind: kind, Err: err}
}
