// Package validator wraps go-playground/validator with the custom rules the
// request structs rely on. Monetary and quantity fields carry decimal types
// whose sign rules depend on context, so services check those by hand; this
// package covers everything tag-expressible.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// uuid.Nil passes "required" because it is a zero-filled array, not a
	// zero value the library recognizes. uuid_required closes that gap.
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

// ValidateStruct runs tag validation and flattens the failures into a slice
// handlers can report field by field. Nil means the struct passed.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var failures []*ErrorResponse
	if err := validate.Struct(data); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			failures = append(failures, &ErrorResponse{
				FailedField: fieldErr.StructNamespace(),
				Tag:         fieldErr.Tag(),
				Value:       fieldErr.Param(),
			})
		}
	}
	return failures
}
