package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var ErrValidation = errors.New("validation error")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (in CreateInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reasonFor(fe.Tag())}
	}
	return fmt.Errorf("validate create input: %w", err)
}

// Validate rejects a title set to a blank string. A null title is not an
// error: the title is required, so clearing it leaves it unchanged.
func (in UpdateInput) Validate() error {
	if title, ok := in.Title.Value(); ok && strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be blank"}
	}
	return nil
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	default:
		return "failed " + tag
	}
}
