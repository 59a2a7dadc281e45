package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
)

// respondError mapea errores de dominio a respuestas HTTP. Los errores de
// validación bajan con el detalle por campo; el resto con código y mensaje.
func respondError(c *fiber.Ctx, err error) error {
	if verrs, ok := domain.AsValidation(err); ok {
		fields := make([]dto.FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = dto.FieldError{Field: fe.Field, Message: fe.Reason}
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "datos inválidos", Fields: fields,
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrAlreadySigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_SIGNED", Message: "la declaración ya está firmada"})
	case errors.Is(err, domain.ErrNotSigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_SIGNED", Message: "la declaración aún no está firmada"})
	case errors.Is(err, domain.ErrDeclarationFrozen):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "FROZEN", Message: "la declaración está firmada y no admite cambios"})
	case errors.Is(err, domain.ErrCorrectionExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CORRECTION_EXISTS", Message: "la declaración ya tiene una corrección"})
	case errors.Is(err, domain.ErrIncompleteDeclaration):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INCOMPLETE", Message: err.Error()})
	case errors.Is(err, domain.ErrIntegrityMismatch):
		// Detalle solo en logs; al usuario un mensaje genérico.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INTEGRITY", Message: "la declaración no pudo ser verificada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
