// Package sqlerr normalizes store errors into application errors.
package sqlerr

import (
	"fmt"
	"strings"
)

// Code is a store-independent error category.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	ExclusionViolation        Code = "exclusion_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	UndefinedColumn           Code = "undefined_column"
	UndefinedTable            Code = "undefined_table"
	UndefinedFunction         Code = "undefined_function"
	DatatypeMismatch          Code = "datatype_mismatch"
	DataException             Code = "data_exception"
	SyntaxError               Code = "syntax_error"
	SerializationFailure      Code = "serialization_failure"
	DeadlockDetected          Code = "deadlock_detected"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22P02": InvalidTextRepresentation,
	"42703": UndefinedColumn,
	"42P01": UndefinedTable,
	"42883": UndefinedFunction,
	"42804": DatatypeMismatch,
	"42601": SyntaxError,
	"40001": SerializationFailure,
	"40P01": DeadlockDetected,
}

// MapCode maps a SQLSTATE onto a Code. Any other class 22 state (bad
// datetime, numeric out of range, ...) is a DataException.
func MapCode(sqlstate string) Code {
	if c, ok := pgCodes[sqlstate]; ok {
		return c
	}
	if strings.HasPrefix(sqlstate, "22") {
		return DataException
	}
	return Other
}

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

func MapSeverity(severity string) Severity {
	switch s := Severity(severity); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// Error is a normalized store error. The driver error stays reachable through
// Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}
