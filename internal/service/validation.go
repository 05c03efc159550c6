package service

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// fieldMessages maps a struct field to the message shown when any of its rules
// fail. A "Field.tag" key overrides the field message for that one rule.
var fieldMessages = map[string]string{
	"SignUpRequest.Name":              "Name must be at least 2 characters long",
	"SignUpRequest.Email":             "Please provide a valid email address",
	"SignUpRequest.Password":          "Password must be at least 6 characters long",
	"SignUpRequest.Password.maxbytes": "Password must be at most 72 bytes long",
	"SignInRequest.Email":             "Please provide a valid email address",
	"SignInRequest.Password":          "Password is required",
	"SetUserTypeRequest.UserID":       "User ID is required",
	"SetUserTypeRequest.UserType":     "User type must be customer, vendor, or admin",
	"ResetPasswordRequest.Email":      "Please provide a valid email address",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// bcrypt only reads the first 72 bytes of a password.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes limits a string's encoded length, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// validateRequest checks req against its validate tags and returns the first
// failing field, in declaration order, as a *ValidationError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	msg, ok := fieldMessages[first.StructNamespace()+"."+first.Tag()]
	if !ok {
		msg, ok = fieldMessages[first.StructNamespace()]
	}
	if !ok {
		msg = first.Field() + " is invalid"
	}
	return &ValidationError{Field: first.Field(), Message: msg}
}
