package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo registros de auditoría sobre PostgreSQL (usable con pool o tx).
// La tabla es solo-inserción: nadie actualiza ni borra auditoría.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador de auditoría.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta un registro de auditoría.
func (r *AuditLogRepo) Create(l *entity.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO audit_logs
			(id, user_id, declaration_id, action, entity_type, old_values, new_values, ip_address, user_agent, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.UserID, l.DeclarationID, l.Action, l.EntityType,
		nullIfEmpty(l.OldValues), nullIfEmpty(l.NewValues),
		nullIfEmpty(l.IPAddress), nullIfEmpty(l.UserAgent), l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByDeclaration lista la auditoría de una declaración en orden cronológico.
func (r *AuditLogRepo) ListByDeclaration(declarationID string) ([]*entity.AuditLog, error) {
	const query = `
		SELECT id, user_id, declaration_id, action, entity_type, old_values, new_values, ip_address, user_agent, timestamp
		FROM audit_logs WHERE declaration_id = $1 ORDER BY timestamp`
	rows, err := r.q.Query(context.Background(), query, declarationID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		var oldV, newV, ip, ua *string
		if err := rows.Scan(&l.ID, &l.UserID, &l.DeclarationID, &l.Action, &l.EntityType,
			&oldV, &newV, &ip, &ua, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.OldValues, l.NewValues = derefStr(oldV), derefStr(newV)
		l.IPAddress, l.UserAgent = derefStr(ip), derefStr(ua)
		out = append(out, &l)
	}
	return out, rows.Err()
}
