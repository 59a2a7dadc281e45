package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Conflictos de estado del ciclo de vida de la declaración.
	ErrAlreadySigned         = errors.New("la declaración ya está firmada")
	ErrNotSigned             = errors.New("la declaración aún no está firmada")
	ErrDeclarationFrozen     = errors.New("la declaración está firmada y no admite cambios")
	ErrCorrectionExists      = errors.New("la declaración ya tiene una corrección")
	ErrIncompleteDeclaration = errors.New("declaración incompleta para firmar")

	// ErrDuplicateFormNumber dos creaciones concurrentes reservaron el mismo
	// consecutivo de formulario; el llamador recalcula y reintenta.
	ErrDuplicateFormNumber = errors.New("número de formulario duplicado")

	// ErrIntegrityMismatch indica que el hash recalculado sobre una declaración
	// firmada no coincide con el almacenado. Nunca se corrige en automático: se
	// registra para revisión manual y al usuario se le muestra un mensaje genérico.
	ErrIntegrityMismatch = errors.New("la huella de integridad no coincide")
)

// FieldError error de validación de un campo concreto del formulario.
// Se reporta al usuario para corrección; nunca es fatal ni se reintenta.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors agrupa errores de campo de una misma petición.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// AsValidation extrae ValidationErrors de un error si lo es.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
