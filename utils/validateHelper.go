package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `validate` tags of an input struct. Recorder
// inputs are validated here before any ledger entry is built.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
