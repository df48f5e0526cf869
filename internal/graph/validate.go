package graph

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// invalidInput runs struct tag validation on a mutation input and turns the
// first failure into a payload message. GraphQL has already enforced shape
// and types; this covers value rules (email format, password length).
func invalidInput(input interface{}) (string, bool) {
	err := validate.Struct(input)

	if err == nil {
		return "", false
	}

	var validatorErrors validator.ValidationErrors

	if !errors.As(err, &validatorErrors) || len(validatorErrors) == 0 {
		return "Invalid input.", true
	}

	fe := validatorErrors[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	return field + " " + validationMessage(fe.Tag(), fe.Param()), true
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return "failed " + rule + " validation (" + param + ")"
		}
		return "failed " + rule + " validation"
	}
}
