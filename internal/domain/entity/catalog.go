package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityCatalogEntry actividad económica gravable del catálogo de un
// municipio: código CIIU, descripción y tarifa base por mil. Las actividades
// de una declaración referencian entradas de este catálogo.
type ActivityCatalogEntry struct {
	ID             string
	MunicipalityID string
	CIIUCode       string
	Description    string
	RatePerMille   decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
}

// Claves paramétricas conocidas.
const (
	ParamLaw56RatePerKw = "law56_rate_per_kw" // Tarifa Ley 56 por kW instalado
)

// FormulaParam constante configurable por municipio consumida por el motor de
// cálculo (ej. tarifa Ley 56 por kW). Ausente equivale a cero.
type FormulaParam struct {
	ID             string
	MunicipalityID string
	Key            string
	Value          decimal.Decimal
	UpdatedAt      time.Time
}
