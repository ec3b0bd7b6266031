package sqlerr

import "fmt"

// Code is a driver independent classification of a database error.
type Code string

const (
	Other                  Code = "other"
	NotNullViolation       Code = "not_null_violation"
	ForeignKeyViolation    Code = "foreign_key_violation"
	UniqueViolation        Code = "unique_violation"
	CheckViolation         Code = "check_violation"
	ExclusionViolation     Code = "exclusion_violation"
	StringDataTooLong      Code = "string_data_right_truncation"
	InvalidTextRep         Code = "invalid_text_representation"
	SerializationFailure   Code = "serialization_failure"
	DeadlockDetected       Code = "deadlock_detected"
	TooManyConnections     Code = "too_many_connections"
	QueryCanceled          Code = "query_canceled"
	UndefinedTable         Code = "undefined_table"
	InsufficientPrivileges Code = "insufficient_privilege"
)

// MapCode maps a PostgreSQL SQLSTATE onto a Code.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	case "22001":
		return StringDataTooLong
	case "22P02":
		return InvalidTextRep
	case "40001":
		return SerializationFailure
	case "40P01":
		return DeadlockDetected
	case "53300":
		return TooManyConnections
	case "57014":
		return QueryCanceled
	case "42P01":
		return UndefinedTable
	case "42501":
		return InsufficientPrivileges
	default:
		return Other
	}
}

// Severity mirrors the PostgreSQL severity field.
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
	switch severity {
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	case "NOTICE":
		return SeverityNotice
	case "DEBUG":
		return SeverityDebug
	case "INFO":
		return SeverityInfo
	case "LOG":
		return SeverityLog
	default:
		return SeverityError
	}
}

// Error is a normalized database error.
//
// It keeps the original driver error so errors.As still reaches it.
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
