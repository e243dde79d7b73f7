package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
)

const (
	ErrRequired         = "is required"
	ErrEmail            = "must be a valid email address"
	ErrMinLength        = "must be at least %s characters long"
	ErrMaxLength        = "must be at most %s characters long"
	ErrMinValue         = "must be at least %s"
	ErrMaxValue         = "must be at most %s"
	ErrUnique           = "must not contain duplicates"
	ErrOneOf            = "must be one of: %s"
	ErrRole             = "must be either creator or user"
	ErrLayoutType       = "must be one of: normal, withBalcony, reclanar, centeredScreen"
	ErrPaymentMethod    = "must be either wallet or card"
	ErrDefaultInvalid   = "is invalid"
	ErrPasswordStrength = "must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, " +
		"one number, and one special character (!@#$%^&*)."
)

var (
	hasSpecialRgx = regexp.MustCompile(`[!@#$%^&*]`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// report fields under their JSON names
	validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("role", validateRole)
	validator.RegisterValidation("layout_type", validateLayoutType)
	validator.RegisterValidation("payment_method", validatePaymentMethod)

	return validator
}

func validateRole(fl validator.FieldLevel) bool {
	role, ok := fl.Field().Interface().(api.Role)
	if !ok {
		return false
	}

	return role == api.RoleCreator || role == api.RoleUser
}

func validateLayoutType(fl validator.FieldLevel) bool {
	return seatlayout.LayoutType(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	method, ok := fl.Field().Interface().(api.PaymentMethod)
	if !ok {
		return false
	}

	return method == api.Wallet || method == api.Card
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 || len(password) > 25 {
		return false
	}

	containsUpper, containsLower, containsDigit, containsSpecial := false, false, false, false

	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			containsUpper = true
		case unicode.IsLower(ch):
			containsLower = true
		case unicode.IsDigit(ch):
			containsDigit = true
		case hasSpecialRgx.MatchString(string(ch)):
			containsSpecial = true
		}
	}

	return containsUpper && containsLower && containsDigit && containsSpecial
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "min":
		if isLengthKind(err) {
			return fmt.Sprintf(ErrMinLength, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if isLengthKind(err) {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "unique":
		return ErrUnique
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	case "role":
		return ErrRole
	case "layout_type":
		return ErrLayoutType
	case "payment_method":
		return ErrPaymentMethod
	case "password":
		return ErrPasswordStrength
	default:
		return ErrDefaultInvalid
	}
}

func isLengthKind(err validator.FieldError) bool {
	switch err.Kind().String() {
	case "string", "slice", "map", "array":
		return true
	default:
		return false
	}
}
