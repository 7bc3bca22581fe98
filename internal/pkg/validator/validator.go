package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,24}$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// calendar_date accepts YYYY-MM-DD or an RFC 3339 timestamp
	validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if _, err := time.Parse(time.DateOnly, s); err == nil {
			return true
		}
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	})

	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		for _, r := range s {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	fieldErrors := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fieldErrors[field] = "This field is required"
		case "email":
			fieldErrors[field] = "Invalid email format"
		case "min":
			fieldErrors[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			fieldErrors[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			fieldErrors[field] = "Value must be at least " + fe.Param()
		case "lte":
			fieldErrors[field] = "Value must be at most " + fe.Param()
		case "gt":
			fieldErrors[field] = "Value must be greater than " + fe.Param()
		case "url", "http_url":
			fieldErrors[field] = "Invalid URL format"
		case "oneof":
			fieldErrors[field] = "Must be one of: " + fe.Param()
		case "phone":
			fieldErrors[field] = "Invalid phone number"
		case "calendar_date":
			fieldErrors[field] = "Invalid date. Use YYYY-MM-DD"
		case "slug":
			fieldErrors[field] = "Only lowercase letters, digits and dashes are allowed"
		default:
			fieldErrors[field] = "Invalid value"
		}
	}

	return fieldErrors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
