package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.ActivityCatalogRepository = (*ActivityCatalogRepo)(nil)

// ActivityCatalogRepo catálogo de actividades económicas sobre PostgreSQL.
type ActivityCatalogRepo struct {
	pool *pgxpool.Pool
}

// NewActivityCatalogRepository construye el adaptador del catálogo.
func NewActivityCatalogRepository(pool *pgxpool.Pool) *ActivityCatalogRepo {
	return &ActivityCatalogRepo{pool: pool}
}

// Create inserta una actividad en el catálogo del municipio.
func (r *ActivityCatalogRepo) Create(e *entity.ActivityCatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO activity_catalog (id, municipality_id, ciiu_code, description, rate_per_mille, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(context.Background(), query,
		e.ID, e.MunicipalityID, e.CIIUCode, e.Description, e.RatePerMille, e.IsActive, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("actividad %s ya existe en el catálogo: %w", e.CIIUCode, err)
		}
		return fmt.Errorf("insert catalog entry: %w", err)
	}
	return nil
}

// Update actualiza descripción, tarifa y estado de una actividad.
func (r *ActivityCatalogRepo) Update(e *entity.ActivityCatalogEntry) error {
	const query = `
		UPDATE activity_catalog
		SET description = $2, rate_per_mille = $3, is_active = $4
		WHERE id = $1`
	tag, err := r.pool.Exec(context.Background(), query, e.ID, e.Description, e.RatePerMille, e.IsActive)
	if err != nil {
		return fmt.Errorf("update catalog entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update catalog entry: no existe %s", e.ID)
	}
	return nil
}

// GetByCode obtiene una actividad por código CIIU en el municipio, o nil.
func (r *ActivityCatalogRepo) GetByCode(municipalityID, ciiuCode string) (*entity.ActivityCatalogEntry, error) {
	const query = `
		SELECT id, municipality_id, ciiu_code, description, rate_per_mille, is_active, created_at
		FROM activity_catalog WHERE municipality_id = $1 AND ciiu_code = $2`
	var e entity.ActivityCatalogEntry
	err := r.pool.QueryRow(context.Background(), query, municipalityID, ciiuCode).Scan(
		&e.ID, &e.MunicipalityID, &e.CIIUCode, &e.Description, &e.RatePerMille, &e.IsActive, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	return &e, nil
}

// ListByMunicipality lista el catálogo completo del municipio.
func (r *ActivityCatalogRepo) ListByMunicipality(municipalityID string) ([]*entity.ActivityCatalogEntry, error) {
	const query = `
		SELECT id, municipality_id, ciiu_code, description, rate_per_mille, is_active, created_at
		FROM activity_catalog WHERE municipality_id = $1 ORDER BY ciiu_code`
	rows, err := r.pool.Query(context.Background(), query, municipalityID)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var out []*entity.ActivityCatalogEntry
	for rows.Next() {
		var e entity.ActivityCatalogEntry
		if err := rows.Scan(&e.ID, &e.MunicipalityID, &e.CIIUCode, &e.Description,
			&e.RatePerMille, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
