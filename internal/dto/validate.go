// Package dto holds the JSON request and response shapes of the API and the
// mapping between them and the model types.
//
// Every response type enumerates its fields explicitly. Request types carry
// `validate` tags checked by Bind; identity fields (card sender, follower)
// are deliberately absent so a client cannot supply them.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
)

// Field limits re-exported for request tags and messages.
const (
	MinUsernameLength = model.MinUsernameLength
	MaxUsernameLength = model.MaxUsernameLength
	MaxContentLength  = model.MaxContentLength
)

// ValidUsername reports whether s is an acceptable username.
func ValidUsername(s string) bool {
	return model.UsernamePattern.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so error payloads match the request.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Bind decodes a JSON body into dst and validates it. Unknown fields are
// ignored. Every failure is an apperror.ErrValidation.
func Bind(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type))
		}
		return apperror.ValidationFailed("body", "malformed JSON body")
	}

	return Validate(dst)
}

// Validate runs the struct's validate tags and converts the first failure
// into a field-level apperror.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("body", err.Error())
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "required_without":
		return fmt.Sprintf("either %s or %s is required", fe.Field(), jsonName(fe))
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "username":
		return fmt.Sprintf("must be %d-%d characters of letters, digits, '_', '.' or '-'",
			MinUsernameLength, MaxUsernameLength)
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// jsonName maps the struct field named in a required_without param to its
// JSON name.
func jsonName(fe validator.FieldError) string {
	switch fe.Param() {
	case "UserThisUserIsFollowing":
		return "user_this_user_is_following"
	}
	return strings.ToLower(fe.Param())
}
