package repository

import "github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"

// MunicipalityRepository alcaldías y su configuración marca blanca.
type MunicipalityRepository interface {
	GetByID(id string) (*entity.Municipality, error)
	List() ([]*entity.Municipality, error)

	GetConfig(municipalityID string) (*entity.WhiteLabelConfig, error)
	UpdateConfig(cfg *entity.WhiteLabelConfig) error

	// NextFilingCounter incrementa atómicamente el consecutivo de radicados del
	// municipio y devuelve el valor reservado. Debe llamarse dentro de la misma
	// transacción de la firma.
	NextFilingCounter(municipalityID string) (int64, error)
}
