package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// E.164: plus sign, non-zero first digit, up to 15 digits total.
var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("e164", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return dateRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return timeRegex.MatchString(fl.Field().String())
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// IsE164 reports whether the phone number is E.164-shaped. Used by services
// that must reject bad input before touching the store or the SMS channel.
func IsE164(phone string) bool {
	return phoneRegex.MatchString(phone)
}
