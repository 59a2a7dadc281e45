package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ declaration.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDeclaration inicia una transacción, ejecuta fn con los repos de las
// transiciones de declaración atados a la tx y hace Commit o Rollback. El
// candado de fila de GetByIDForUpdate vive hasta el cierre de la transacción.
func (r *TxRunner) RunDeclaration(ctx context.Context, fn func(
	declRepo repository.DeclarationRepository,
	muniRepo repository.MunicipalityRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	declRepo := NewDeclarationRepository(tx)
	muniRepo := NewMunicipalityRepository(tx)
	auditRepo := NewAuditLogRepository(tx)

	if err := fn(declRepo, muniRepo, auditRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
