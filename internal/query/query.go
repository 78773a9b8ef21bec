// Package query turns flat HTTP query parameters into a composed,
// dialect-aware persistence query.
//
// The flow for one list request is:
//
//	url.Values -> ParseFilters -> Filter -> Compiler.Compile -> Shape -> payload
//
// The package only talks to the store through the Clauses and Builder
// interfaces, so it never imports a driver. The gorm implementation lives in
// the gormq subpackage.
package query

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a single-entity fetch matches nothing.
var ErrNotFound = errors.New("query: no matching record")

// InputError reports a request value that cannot be turned into a clause.
//
// It is always a caller mistake and is rendered as a 400 by the HTTP layer.
type InputError struct {
	// Param is the request parameter (or relation/field) the value came from.
	Param string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func inputError(param, format string, args ...any) *InputError {
	return &InputError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err (or anything it wraps) is an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
