package validator

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/pengaduan/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

// FromBindingError converts a gin binding error into a field-keyed
// ValidationError. Errors that are not validator errors (malformed JSON,
// a non-numeric id_lokasi in a form) are reported under "request".
func FromBindingError(err error) *apperror.ValidationError {
	verr := apperror.NewValidationError()

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			verr.Add(getWireName(fe.Field()), getFieldErrorMessage(fe))
		}
		return verr
	}

	verr.Add("request", "format permintaan tidak valid")
	return verr
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s wajib diisi", field)
	case "email":
		return fmt.Sprintf("%s harus berupa email yang valid", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s minimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s minimal %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s maksimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s maksimal %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s tidak valid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Email":         "Email/Username",
		"Password":      "Password",
		"NamaPengaduan": "Nama pengaduan",
		"Deskripsi":     "Deskripsi",
		"IDLokasi":      "Lokasi",
		"IDItem":        "Item",
		"Foto":          "Foto",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

func getWireName(field string) string {
	wireNames := map[string]string{
		"Email":         "email",
		"Password":      "password",
		"NamaPengaduan": "nama_pengaduan",
		"Deskripsi":     "deskripsi",
		"IDLokasi":      "id_lokasi",
		"IDItem":        "id_item",
		"Foto":          "foto",
	}

	if name, ok := wireNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
