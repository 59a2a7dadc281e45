package entity

import (
	"fmt"
	"time"
)

// Municipality alcaldía habilitada en la plataforma. Code es el código DANE.
type Municipality struct {
	ID         string
	Code       string
	Name       string
	Department string
	IsActive   bool
	CreatedAt  time.Time
}

// WhiteLabelConfig personalización marca blanca por alcaldía: identidad visual
// del formulario y del PDF, y numeración de radicados.
type WhiteLabelConfig struct {
	ID             string
	MunicipalityID string

	LogoPath       string
	PrimaryColor   string // hex, ej. #003366
	SecondaryColor string
	AccentColor    string
	FontFamily     string

	HeaderText string
	FooterText string
	LegalNotes string
	FormTitle  string

	// Numeración de radicados: PREFIJO + consecutivo con ceros a la izquierda.
	FilingPrefix  string
	FilingCounter int64
	FilingDigits  int

	UpdatedAt time.Time
	UpdatedBy string
}

// FormatFilingNumber formatea el radicado para el consecutivo dado:
// PREFIJO + número con ceros a la izquierda hasta FilingDigits (16 por defecto).
func (c *WhiteLabelConfig) FormatFilingNumber(n int64) string {
	digits := c.FilingDigits
	if digits <= 0 {
		digits = 16
	}
	return fmt.Sprintf("%s%0*d", c.FilingPrefix, digits, n)
}
