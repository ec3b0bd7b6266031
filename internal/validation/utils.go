// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or colour formats) defined in struct tags
// and extracts validation errors into a format the client can
// understand
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,max=255"`)
// - Implement Validate() error that calls validation.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// Authored is implemented by payloads that carry the caller as their owner.
//
// BindAndValidate never trusts a client supplied owner: SetAuthor runs after
// binding and before validation.
type Authored interface {
	SetAuthor(userID int64)
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
//
// Field names in errors follow the wire name: the json tag when present,
// then the param tag, then the Go field name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := tagName(fld.Tag.Get("json")); name != "" {
				return name
			}
			if name := tagName(fld.Tag.Get("param")); name != "" {
				return name
			}
			return fld.Name
		})
	})
	return validate
}

func tagName(tag string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Struct validates s against its `validate` tags with the shared validator.
func Struct(s any) error {
	return Validator().Struct(s)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) path params are bound first (`param:"..."` tags), then the JSON body.
// 2) When authorID is positive and payload is Authored, the caller is stamped in.
// 3) payload.Validate() applies validation rules.
//
// Any failure is returned as a 406 *errs.HTTPError with field-level errors.
// A path segment that does not parse is reported against the param name,
// a body that does not parse against "body".
func BindAndValidate(c echo.Context, payload Validatable, authorID int64) error {
	binder := &echo.DefaultBinder{}

	if err := binder.BindPathParams(c, payload); err != nil {
		return errs.NewFieldError(paramField(c), "must be a positive integer")
	}

	if err := binder.BindBody(c, payload); err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("request body could not be decoded")
		return errs.NewFieldError(bodyError(err))
	}

	if authored, ok := payload.(Authored); ok && authorID > 0 {
		authored.SetAuthor(authorID)
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewValidationError(fieldErrors)
	}

	return nil
}

func paramField(c echo.Context) string {
	if names := c.ParamNames(); len(names) > 0 {
		return strings.Join(names, ",")
	}
	return "path"
}

// bodyError maps a decode failure to a fixed message. Decoder output names
// Go types and offsets, so it only goes to the log. A type mismatch on a
// known field is reported against that field.
func bodyError(err error) (field, message string) {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return typeErr.Field, "has the wrong type"
		}
		return "body", "must be a JSON object"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return "body", "is not valid JSON"
	case errors.Is(err, echo.ErrUnsupportedMediaType):
		return "body", "must be sent as application/json"
	}
	return "body", "could not be parsed"
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) errs.FieldErrors {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return nil
}

func extractValidationError(err error) errs.FieldErrors {
	fieldErrors := errs.FieldErrors{}

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors.Add(err.Field, err.Message)
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors.Add("body", err.Error())
		return fieldErrors
	}

	// Convert validator.ValidationErrors into user-friendly messages.
	for _, err := range validationErrors {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", err.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "iscolor":
			msg = "must be a valid color (hex, rgb, rgba, hsl or hsla)"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("failed %s:%s", err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("failed %s", err.Tag())
			}
		}

		fieldErrors.Add(field, msg)
	}

	return fieldErrors
}
