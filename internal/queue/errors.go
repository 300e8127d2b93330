package queue

import (
	"errors"
	"strings"

	"itemqueue/internal/item"
	"itemqueue/internal/loader"
)

// ErrSchemaMismatch marks a pushed item that does not satisfy the item template.
var ErrSchemaMismatch = errors.New("item does not match template")

// SchemaError lists the template fields a pushed item failed.
type SchemaError struct {
	Problems []item.FieldProblem
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 0 {
		return ErrSchemaMismatch.Error()
	}
	parts := make([]string, len(e.Problems))
	for i, problem := range e.Problems {
		parts[i] = problem.String()
	}
	return ErrSchemaMismatch.Error() + ": " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// Error kinds reported by ErrorKind.
const (
	KindNotFound       = "not_found"
	KindSchemaMismatch = "schema_mismatch"
	KindFormat         = "format"
	KindAuth           = "auth"
	KindConfiguration  = "configuration"
	KindIO             = "io"
	KindInternal       = "internal"
)

// ErrorKind classifies a queue failure for callers that report errors as
// data, such as tool results and JSON output.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, loader.ErrNotFound):
		return KindNotFound
	case errors.Is(err, loader.ErrFormat):
		return KindFormat
	case errors.Is(err, loader.ErrAuth):
		return KindAuth
	case errors.Is(err, loader.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, loader.ErrIO):
		return KindIO
	default:
		return KindInternal
	}
}

func templateNotFound(templateID string) error {
	return &loader.Error{Op: "load template", Resource: templateID, Kind: loader.ErrNotFound}
}
