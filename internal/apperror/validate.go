package apperror

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags on input and reports violations as InvalidInput.
func Validate(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return InvalidInput(err.Error(), err)
	}
	fields := ProcessValidationErrors(verrs)
	parts := make([]string, 0, len(fields))
	for field, tag := range fields {
		parts = append(parts, field+" "+tag)
	}
	sort.Strings(parts)
	return InvalidInput(strings.Join(parts, ", "), err)
}

// ProcessValidationErrors maps each failing field namespace to the rule it broke.
func ProcessValidationErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		out[ve.Namespace()] = ve.Tag()
	}
	return out
}
