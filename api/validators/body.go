package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; tag != "" && tag != "-" {
			return tag
		}
		return f.Name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := enums.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := enums.ParseQuotationCategory(fl.Field().String())
		return err == nil
	})
	return v
}

// DecodeJSONBody decodes exactly one JSON object into dest, rejecting unknown
// fields, and runs struct validation.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func decodeError(err error) *pkgerrors.Error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	case errors.As(err, &tooLarge):
		return pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]any{"error": err.Error()})
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fieldPath(fe)] = validationMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// fieldPath drops the root struct name so nested fields read as "categories[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "role":
		return "must be one of: VENDOR ADMIN SUPERADMIN"
	case "category":
		return "must be a known quotation category"
	}
	return "is invalid"
}
