package entity

import "time"

// Acciones auditadas sobre declaraciones.
const (
	AuditCreate      = "CREATE"
	AuditUpdate      = "UPDATE"
	AuditSign        = "SIGN"
	AuditCorrect     = "CORRECT"
	AuditGeneratePDF = "GENERATE_PDF"
	AuditDownload    = "DOWNLOAD"
)

// AuditLog registro de auditoría de una operación sobre una declaración.
// OldValues/NewValues van como JSON serializado.
type AuditLog struct {
	ID            string
	UserID        string
	DeclarationID string
	Action        string
	EntityType    string
	OldValues     string
	NewValues     string
	IPAddress     string
	UserAgent     string
	Timestamp     time.Time
}
