package domain

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a struct field (JSON name) to a human-readable
// validation message. It is returned by Validate and rendered next to
// the offending form field.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the JSON field name, not the Go one.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// password: at least 8 chars with upper, lower, digit and symbol.
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < 8 {
			return false
		}
		var upper, lower, digit, symbol bool
		for _, r := range s {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			default:
				symbol = true
			}
		}
		return upper && lower && digit && symbol
	})

	// hhmm: zero-padded 24h clock time.
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRe.MatchString(fl.Field().String())
	})

	return v
}()

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks a payload struct against its validate tags and
// returns nil when it is well-formed. The non-nil result is a
// FieldErrors with one message per failing field.
func Validate(payload any) FieldErrors {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}
	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		fe[e.Field()] = messageFor(e)
	}
	return fe
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "password":
		return "at least 8 chars with upper, lower, digit and symbol"
	case "min":
		return "too short (min " + e.Param() + ")"
	case "max":
		return "too long (max " + e.Param() + ")"
	case "len":
		return "must be exactly " + e.Param() + " characters"
	case "numeric":
		return "digits only"
	case "hhmm":
		return "time must be HH:MM"
	case "datetime":
		return "date must be YYYY-MM-DD"
	case "gtfield":
		return "end time must be after start time"
	default:
		return "invalid value"
	}
}
