package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

// ActivityCatalogRepository catálogo de actividades económicas por municipio.
type ActivityCatalogRepository interface {
	Create(e *entity.ActivityCatalogEntry) error
	Update(e *entity.ActivityCatalogEntry) error
	GetByCode(municipalityID, ciiuCode string) (*entity.ActivityCatalogEntry, error)
	ListByMunicipality(municipalityID string) ([]*entity.ActivityCatalogEntry, error)
}

// FormulaParamRepository parámetros de fórmula configurables por municipio
// (ej. tarifa Ley 56 por kW). Ausente equivale a cero.
type FormulaParamRepository interface {
	// GetValue devuelve el valor del parámetro o decimal.Zero si no existe.
	GetValue(municipalityID, key string) (decimal.Decimal, error)
	Upsert(p *entity.FormulaParam) error
	ListByMunicipality(municipalityID string) ([]*entity.FormulaParam, error)
}
