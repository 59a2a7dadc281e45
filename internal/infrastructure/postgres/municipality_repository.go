package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.MunicipalityRepository = (*MunicipalityRepo)(nil)

// MunicipalityRepo implementación de MunicipalityRepository sobre PostgreSQL
// (usable con pool o tx). También administra la configuración marca blanca y
// el consecutivo de radicados.
type MunicipalityRepo struct {
	q Querier
}

// NewMunicipalityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMunicipalityRepository(q Querier) *MunicipalityRepo {
	return &MunicipalityRepo{q: q}
}

// GetByID obtiene un municipio, o nil si no existe.
func (r *MunicipalityRepo) GetByID(id string) (*entity.Municipality, error) {
	const query = `
		SELECT id, code, name, department, is_active, created_at
		FROM municipalities WHERE id = $1`
	var m entity.Municipality
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Code, &m.Name, &m.Department, &m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get municipality: %w", err)
	}
	return &m, nil
}

// List lista los municipios activos ordenados por nombre.
func (r *MunicipalityRepo) List() ([]*entity.Municipality, error) {
	const query = `
		SELECT id, code, name, department, is_active, created_at
		FROM municipalities WHERE is_active ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list municipalities: %w", err)
	}
	defer rows.Close()

	var out []*entity.Municipality
	for rows.Next() {
		var m entity.Municipality
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Department, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan municipality: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

const configColumns = `id, municipality_id, logo_path, primary_color, secondary_color,
	accent_color, font_family, header_text, footer_text, legal_notes, form_title,
	filing_prefix, filing_counter, filing_digits, updated_at, updated_by`

// GetConfig obtiene la configuración marca blanca, o nil si el municipio aún
// no la ha registrado.
func (r *MunicipalityRepo) GetConfig(municipalityID string) (*entity.WhiteLabelConfig, error) {
	query := "SELECT " + configColumns + " FROM white_label_configs WHERE municipality_id = $1"
	var c entity.WhiteLabelConfig
	err := r.q.QueryRow(context.Background(), query, municipalityID).Scan(
		&c.ID, &c.MunicipalityID, &c.LogoPath, &c.PrimaryColor, &c.SecondaryColor,
		&c.AccentColor, &c.FontFamily, &c.HeaderText, &c.FooterText, &c.LegalNotes, &c.FormTitle,
		&c.FilingPrefix, &c.FilingCounter, &c.FilingDigits, &c.UpdatedAt, &c.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get white label config: %w", err)
	}
	return &c, nil
}

// UpdateConfig inserta o actualiza la configuración marca blanca del
// municipio. El consecutivo de radicados nunca se pisa desde aquí.
func (r *MunicipalityRepo) UpdateConfig(cfg *entity.WhiteLabelConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO white_label_configs
			(id, municipality_id, logo_path, primary_color, secondary_color, accent_color,
			 font_family, header_text, footer_text, legal_notes, form_title,
			 filing_prefix, filing_digits, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (municipality_id) DO UPDATE SET
			logo_path       = EXCLUDED.logo_path,
			primary_color   = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			accent_color    = EXCLUDED.accent_color,
			font_family     = EXCLUDED.font_family,
			header_text     = EXCLUDED.header_text,
			footer_text     = EXCLUDED.footer_text,
			legal_notes     = EXCLUDED.legal_notes,
			form_title      = EXCLUDED.form_title,
			filing_prefix   = EXCLUDED.filing_prefix,
			filing_digits   = EXCLUDED.filing_digits,
			updated_at      = EXCLUDED.updated_at,
			updated_by      = EXCLUDED.updated_by`
	_, err := r.q.Exec(context.Background(), query,
		cfg.ID, cfg.MunicipalityID, cfg.LogoPath, cfg.PrimaryColor, cfg.SecondaryColor, cfg.AccentColor,
		cfg.FontFamily, cfg.HeaderText, cfg.FooterText, cfg.LegalNotes, cfg.FormTitle,
		cfg.FilingPrefix, cfg.FilingDigits, cfg.UpdatedAt, cfg.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert white label config: %w", err)
	}
	return nil
}

// NextFilingCounter incrementa atómicamente el consecutivo de radicados del
// municipio y devuelve el valor reservado. Dentro de la transacción de firma
// el UPDATE serializa a los firmantes concurrentes del mismo municipio.
func (r *MunicipalityRepo) NextFilingCounter(municipalityID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `
		UPDATE white_label_configs
		SET filing_counter = filing_counter + 1
		WHERE municipality_id = $1
		RETURNING filing_counter`, municipalityID,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("municipio %s sin configuración de radicados", municipalityID)
		}
		return 0, fmt.Errorf("next filing counter: %w", err)
	}
	return n, nil
}
