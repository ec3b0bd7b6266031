package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/pages-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// ErrCode reports the mapped sqlerr.Code for a given error.
//
// Behavior:
//   - If err can be unwrapped into *sqlerr.Error, return its Code.
//   - If err can be unwrapped into *pgconn.PgError, map its SQLSTATE.
//   - Otherwise return sqlerr.Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}

	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
//
// SQLSTATE and severity are mapped into enums; table, column and constraint
// metadata are kept for building field level messages.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// formatFieldMessage produces the message attached to the offending field.
//
// Example:
//
//	ForeignKeyViolation on parent_page_id -> "references an unknown parent page"
func formatFieldMessage(sqlErr *Error, column string) string {
	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("references an unknown %s", getEntityName(sqlErr.TableName, column))

	case UniqueViolation:
		return "is already taken"

	case NotNullViolation:
		return "is required"

	case CheckViolation:
		return "does not meet required conditions"

	case StringDataTooLong:
		return "is too long"

	default:
		return "is invalid"
	}
}

// getEntityName tries to infer an entity name from table/column data.
//
// Priority rules:
//  1. Use the column without its "_id" suffix. (Best for FK relations)
//     e.g. "parent_page_id" -> "parent page", "author" -> "author"
//  2. Otherwise use table name, singularized if it ends with "s".
//  3. Otherwise fallback to "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && columnName != "body" {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return strings.ToLower(humanizeText(entity))
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return strings.ToLower(humanizeText(entity))
	}

	return "record"
}

// humanizeText converts snake_case (or lower-ish identifiers) into Title Case.
//
// Example:
//
//	"first_name" -> "First Name"
//
// It uses x/text/cases for proper title casing rules.
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// <table>_<column>_(key|ukey|fkey|check)
var constraintColumnRe = regexp.MustCompile(`^[a-z0-9]+_(.+)_(?:key|ukey|fkey|check)$`)

// extractColumn infers the offending column of a constraint violation.
//
// Postgres reports the column directly for not-null violations. For the
// other kinds the column is recovered from the constraint name, which
// follows the default naming convention:
//
//	pages_parent_page_id_fkey -> "parent_page_id"
//	users_username_key        -> "username"
//	unique_users_email        -> "email"
func extractColumn(sqlErr *Error) string {
	if sqlErr.ColumnName != "" {
		return sqlErr.ColumnName
	}

	name := sqlErr.ConstraintName
	if name == "" {
		return ""
	}

	if strings.HasPrefix(name, "unique_") {
		parts := strings.Split(name, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := constraintColumnRe.FindStringSubmatch(name); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - Constraint violations: 406. A *pgconn.PgError names the offending
//     field; gorm's translated SQLite errors do not, so they go under "body"
//   - gorm.ErrRecordNotFound / sql.ErrNoRows / pgx.ErrNoRows: 404
//   - Otherwise: opaque 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		switch sqlErr.Code {
		case ForeignKeyViolation, UniqueViolation, NotNullViolation, CheckViolation, StringDataTooLong:
			field := extractColumn(sqlErr)
			if field == "" {
				field = "body"
			}
			return errs.NewFieldError(field, formatFieldMessage(sqlErr, field))

		default:
			// Unknown/other DB errors should not leak details to clients.
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errs.NewFieldError("body", "references an unknown record")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.NewFieldError("body", "is already taken")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return errs.NewFieldError("body", "does not meet required conditions")
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Resource not found")
	}

	return errs.NewInternalServerError()
}
