package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mustHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError, got %T", err)
	}
	return httpErr
}

func TestHandleErrorForeignKeyViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:           "23503",
		Severity:       "ERROR",
		Message:        `insert or update on table "pages" violates foreign key constraint`,
		TableName:      "pages",
		ConstraintName: "pages_parent_page_id_fkey",
	}

	httpErr := mustHTTPError(t, HandleError(fmt.Errorf("creating page: %w", pgErr)))
	if httpErr.Status != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", httpErr.Status)
	}

	msgs := httpErr.ErrorDict["parent_page_id"]
	if len(msgs) != 1 || msgs[0] != "references an unknown parent page" {
		t.Fatalf("unexpected error_dict %v", httpErr.ErrorDict)
	}
}

func TestHandleErrorNotNullUsesColumn(t *testing.T) {
	t.Parallel()

	httpErr := mustHTTPError(t, HandleError(&pgconn.PgError{
		Code:       "23502",
		TableName:  "pages",
		ColumnName: "page_name",
	}))

	if got := httpErr.ErrorDict["page_name"]; len(got) != 1 || got[0] != "is required" {
		t.Fatalf("unexpected error_dict %v", httpErr.ErrorDict)
	}
}

func TestHandleErrorUniqueViolation(t *testing.T) {
	t.Parallel()

	httpErr := mustHTTPError(t, HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "users",
		ConstraintName: "users_username_key",
	}))

	if got := httpErr.ErrorDict["username"]; len(got) != 1 {
		t.Fatalf("unexpected error_dict %v", httpErr.ErrorDict)
	}
}

func TestHandleErrorTranslatedConstraintErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{gorm.ErrForeignKeyViolated, "references an unknown record"},
		{gorm.ErrDuplicatedKey, "is already taken"},
		{gorm.ErrCheckConstraintViolated, "does not meet required conditions"},
	}

	for _, tc := range cases {
		httpErr := mustHTTPError(t, HandleError(fmt.Errorf("creating page: %w", tc.err)))
		if httpErr.Status != http.StatusNotAcceptable {
			t.Fatalf("expected 406 for %v, got %d", tc.err, httpErr.Status)
		}
		if got := httpErr.ErrorDict["body"]; len(got) != 1 || got[0] != tc.want {
			t.Fatalf("unexpected error_dict for %v: %v", tc.err, httpErr.ErrorDict)
		}
	}
}

func TestHandleErrorHidesUnknownPgErrors(t *testing.T) {
	t.Parallel()

	httpErr := mustHTTPError(t, HandleError(&pgconn.PgError{
		Code:    "53300",
		Message: "sorry, too many clients already",
	}))

	if httpErr.Status != http.StatusInternalServerError || httpErr.Message != "Internal Server Error" {
		t.Fatalf("expected opaque 500, got %+v", httpErr)
	}
}

func TestHandleErrorNotFound(t *testing.T) {
	t.Parallel()

	for _, err := range []error{gorm.ErrRecordNotFound, sql.ErrNoRows} {
		httpErr := mustHTTPError(t, HandleError(err))
		if httpErr.Status != http.StatusNotFound {
			t.Fatalf("expected 404 for %v, got %d", err, httpErr.Status)
		}
	}
}

func TestHandleErrorKeepsHTTPErrors(t *testing.T) {
	t.Parallel()

	original := errs.NewNotFoundError("Page not found")
	if got := HandleError(original); got != original {
		t.Fatalf("expected HTTPError to pass through unchanged")
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	t.Parallel()

	httpErr := mustHTTPError(t, HandleError(errors.New("connection reset by peer")))
	if httpErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", httpErr.Status)
	}
}

func TestExtractColumn(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"pages_parent_page_id_fkey":  "parent_page_id",
		"pages_parent_page_id_check": "parent_page_id",
		"tasks_author_fkey":          "author",
		"unique_users_email":         "email",
		"something_else":             "",
	}
	for constraint, want := range cases {
		if got := extractColumn(&Error{ConstraintName: constraint}); got != want {
			t.Fatalf("extractColumn(%q) = %q, want %q", constraint, got, want)
		}
	}
}

func TestErrCode(t *testing.T) {
	t.Parallel()

	if got := ErrCode(ConvertPgError(&pgconn.PgError{Code: "23505"})); got != UniqueViolation {
		t.Fatalf("expected unique violation, got %s", got)
	}
	if got := ErrCode(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"})); got != DeadlockDetected {
		t.Fatalf("expected deadlock, got %s", got)
	}
	if got := ErrCode(errors.New("plain")); got != Other {
		t.Fatalf("expected other, got %s", got)
	}
}
