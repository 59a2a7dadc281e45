package repository

import "github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"

// AuditLogRepository registros de auditoría.
type AuditLogRepository interface {
	Create(l *entity.AuditLog) error
	ListByDeclaration(declarationID string) ([]*entity.AuditLog, error)
}
