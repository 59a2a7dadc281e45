package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError mensaje de validación a nivel de campo.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Actor identidad autenticada que ejecuta la operación (del JWT, nunca estado
// global de proceso). El alcance de listados y permisos depende del rol.
type Actor struct {
	UserID         string
	MunicipalityID string
	Role           string
}

// RequestMeta metadatos de la petición para auditoría.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
