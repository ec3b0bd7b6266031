package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	t.Parallel()

	if got := MakeUpperCaseWithUnderscores("Not Acceptable"); got != "NOT_ACCEPTABLE" {
		t.Fatalf("expected NOT_ACCEPTABLE, got %q", got)
	}
}

func TestNewValidationErrorCarriesFields(t *testing.T) {
	t.Parallel()

	fields := FieldErrors{}
	fields.Add("page_name", "is required")
	fields.Add("page_name", "must not exceed 255 characters")
	fields.Add("color", "must be a valid color")

	err := NewValidationError(fields)
	if err.Status != http.StatusNotAcceptable {
		t.Fatalf("expected status 406, got %d", err.Status)
	}
	if err.Code != "NOT_ACCEPTABLE" {
		t.Fatalf("expected code NOT_ACCEPTABLE, got %q", err.Code)
	}
	if len(err.ErrorDict["page_name"]) != 2 {
		t.Fatalf("expected two page_name messages, got %v", err.ErrorDict["page_name"])
	}

	got := err.ErrorDict.Fields()
	if len(got) != 2 || got[0] != "color" || got[1] != "page_name" {
		t.Fatalf("expected sorted fields [color page_name], got %v", got)
	}
}

func TestHTTPErrorEnvelopeOmitsEmptyErrorDict(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(NewNotFoundError("Page not found"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["error_dict"]; ok {
		t.Fatalf("expected error_dict to be omitted, got %s", body)
	}
	if decoded["status"] != float64(http.StatusNotFound) || decoded["message"] != "Page not found" {
		t.Fatalf("unexpected envelope %s", body)
	}
}

func TestHTTPErrorIsMatchesWrappedType(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading page: %w", NewNotFoundError("Page not found"))
	if !errors.Is(wrapped, &HTTPError{}) {
		t.Fatalf("expected errors.Is to match *HTTPError")
	}

	var httpErr *HTTPError
	if !errors.As(wrapped, &httpErr) || httpErr.Status != http.StatusNotFound {
		t.Fatalf("expected errors.As to recover the 404")
	}
}

func TestInternalServerErrorIsOpaque(t *testing.T) {
	t.Parallel()

	err := NewInternalServerError()
	if err.Message != "Internal Server Error" || err.ErrorDict != nil {
		t.Fatalf("expected opaque 500, got %+v", err)
	}
}
