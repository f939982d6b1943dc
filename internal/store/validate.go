package store

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

type recordInput struct {
	PONumber   string `json:"po_number" validate:"required,digits"`
	VendorName string `json:"vendor_name" validate:"required"`
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	if err := v.RegisterValidation("digits", isDigits); err != nil {
		panic(err)
	}
	return v
}

func isDigits(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateRecordInput(poNumber, vendorName string) error {
	err := recordValidator.Struct(recordInput{PONumber: poNumber, VendorName: vendorName})
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return &ValidationError{Field: "record", Reason: err.Error()}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Reason: "is required"}
	case "digits":
		return &ValidationError{Field: fe.Field(), Reason: "must contain only decimal digits"}
	default:
		return &ValidationError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " validation"}
	}
}
