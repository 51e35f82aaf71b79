package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator valida structs de entrada (DTOs) usando los tags `validate`.
type Validator struct {
	v *validator.Validate
}

// New construye el validador con los alias propios de la API.
func New() *Validator {
	v := validator.New()
	return &Validator{v: v}
}

// Struct valida el struct dado; retorna nil si pasa.
func (va *Validator) Struct(s any) error {
	return va.v.Struct(s)
}

// Message arma un mensaje legible a partir de los errores de validación.
// Para otros errores devuelve el texto tal cual.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " es requerido"
	case "min":
		return fmt.Sprintf("%s debe ser al menos %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s debe ser a lo más %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s debe tener exactamente %s caracteres", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual a %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	case "alpha":
		return field + " debe contener solo letras"
	default:
		return field + " es inválido"
	}
}

// IsValidationError indica si err proviene de la validación de structs.
func IsValidationError(err error) bool {
	_, ok := err.(validator.ValidationErrors)
	return ok
}
