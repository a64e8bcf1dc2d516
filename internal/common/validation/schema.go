package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the field errors into one line.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in errors use the
// json tag.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// ValidateStruct checks v against its validate tags.
func ValidateStruct(v interface{}) *ValidationResult {
	err := Validator().Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationResult{Errors: []ValidationError{{Message: err.Error(), Code: "INVALID_INPUT"}}}
	}

	result := &ValidationResult{}
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    codeFor(fe.Tag()),
		})
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required field missing"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match layout %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func codeFor(tag string) string {
	switch tag {
	case "required", "notblank":
		return "REQUIRED_FIELD_MISSING"
	case "max", "min":
		return "OUT_OF_RANGE"
	}
	return "INVALID_FORMAT"
}
