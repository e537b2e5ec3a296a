package helper

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs tag validation on a DTO and returns field errors in the
// shape JsonValidationError expects. Nil means valid.
func ValidateStruct(in any) map[string][]string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	out := map[string][]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			field := fe.Field()
			out[field] = append(out[field], fmt.Sprintf("failed on %s", fe.Tag()))
		}
		return out
	}
	out["_"] = []string{err.Error()}
	return out
}
