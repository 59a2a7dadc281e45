package dto

import "github.com/shopspring/decimal"

// WhiteLabelConfigRequest body para PUT /api/admin/config.
type WhiteLabelConfigRequest struct {
	LogoPath       string `json:"logo_path,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	AccentColor    string `json:"accent_color,omitempty"`
	FontFamily     string `json:"font_family,omitempty"`
	HeaderText     string `json:"header_text,omitempty"`
	FooterText     string `json:"footer_text,omitempty"`
	LegalNotes     string `json:"legal_notes,omitempty"`
	FormTitle      string `json:"form_title,omitempty"`
	FilingPrefix   string `json:"filing_prefix,omitempty"`
	FilingDigits   int    `json:"filing_digits,omitempty"`
}

// WhiteLabelConfigResponse configuración marca blanca.
type WhiteLabelConfigResponse struct {
	MunicipalityID string `json:"municipality_id"`
	LogoPath       string `json:"logo_path,omitempty"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	FontFamily     string `json:"font_family"`
	HeaderText     string `json:"header_text,omitempty"`
	FooterText     string `json:"footer_text,omitempty"`
	LegalNotes     string `json:"legal_notes,omitempty"`
	FormTitle      string `json:"form_title"`
	FilingPrefix   string `json:"filing_prefix,omitempty"`
	FilingDigits   int    `json:"filing_digits"`
}

// CatalogEntryRequest alta/edición de actividad del catálogo.
type CatalogEntryRequest struct {
	CIIUCode     string          `json:"ciiu_code"`
	Description  string          `json:"description"`
	RatePerMille decimal.Decimal `json:"rate_per_mille"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// CatalogEntryResponse actividad del catálogo.
type CatalogEntryResponse struct {
	ID             string          `json:"id"`
	MunicipalityID string          `json:"municipality_id"`
	CIIUCode       string          `json:"ciiu_code"`
	Description    string          `json:"description"`
	RatePerMille   decimal.Decimal `json:"rate_per_mille"`
	IsActive       bool            `json:"is_active"`
}

// FormulaParamRequest body para PUT /api/admin/params/:key.
type FormulaParamRequest struct {
	Value decimal.Decimal `json:"value"`
}

// FormulaParamResponse parámetro de fórmula.
type FormulaParamResponse struct {
	MunicipalityID string          `json:"municipality_id"`
	Key            string          `json:"key"`
	Value          decimal.Decimal `json:"value"`
}

// MunicipalityResponse municipio habilitado.
type MunicipalityResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active"`
}
