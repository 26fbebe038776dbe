package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volunteerhub/backend/pkg/response"
)

// Request structs use gin's "binding" tag. The same rules are checked again
// inside the services so that non-HTTP callers get identical validation.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	ConfigureValidator(v)
	return v
}

// ConfigureValidator registers JSON field names and the custom tags. It is
// applied to gin's validator engine at startup as well.
func ConfigureValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// validateRequest runs the binding rules of req and converts failures into a
// ValidationError with field details.
func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return ValidationFailed(err)
	}
	return nil
}

// ValidationFailed converts validator errors into a 400 with per-field
// details. Other errors become a plain bad request.
func ValidationFailed(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return response.NewBadRequest("invalid request body")
	}

	details := make([]response.FieldError, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, response.FieldError{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return response.NewValidation("request validation failed", details)
}

// fieldPath drops the top-level struct name: "CreateEventRequest.title" -> "title".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gtefield":
		return "Must not be earlier than " + e.Param()
	case "url":
		return "Invalid URL format"
	case "numeric":
		return "Must be numeric"
	case "latitude":
		return "Invalid latitude"
	case "longitude":
		return "Invalid longitude"
	default:
		return "Invalid value"
	}
}
