package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.FormulaParamRepository = (*FormulaParamRepo)(nil)

// FormulaParamRepo parámetros de fórmula por municipio sobre PostgreSQL.
type FormulaParamRepo struct {
	pool *pgxpool.Pool
}

// NewFormulaParamRepository construye el adaptador de parámetros.
func NewFormulaParamRepository(pool *pgxpool.Pool) *FormulaParamRepo {
	return &FormulaParamRepo{pool: pool}
}

// GetValue devuelve el valor del parámetro o decimal.Zero si no existe. El
// motor de cálculo trata la ausencia como cero, nunca como error.
func (r *FormulaParamRepo) GetValue(municipalityID, key string) (decimal.Decimal, error) {
	var v decimal.Decimal
	err := r.pool.QueryRow(context.Background(),
		"SELECT value FROM formula_params WHERE municipality_id = $1 AND key = $2",
		municipalityID, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get formula param: %w", err)
	}
	return v, nil
}

// Upsert crea o actualiza el parámetro del municipio.
func (r *FormulaParamRepo) Upsert(p *entity.FormulaParam) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO formula_params (id, municipality_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (municipality_id, key) DO UPDATE SET
			value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(context.Background(), query,
		p.ID, p.MunicipalityID, p.Key, p.Value, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert formula param: %w", err)
	}
	return nil
}

// ListByMunicipality lista los parámetros configurados del municipio.
func (r *FormulaParamRepo) ListByMunicipality(municipalityID string) ([]*entity.FormulaParam, error) {
	const query = `
		SELECT id, municipality_id, key, value, updated_at
		FROM formula_params WHERE municipality_id = $1 ORDER BY key`
	rows, err := r.pool.Query(context.Background(), query, municipalityID)
	if err != nil {
		return nil, fmt.Errorf("list formula params: %w", err)
	}
	defer rows.Close()

	var out []*entity.FormulaParam
	for rows.Next() {
		var p entity.FormulaParam
		if err := rows.Scan(&p.ID, &p.MunicipalityID, &p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan formula param: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
