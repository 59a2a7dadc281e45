package repository

import "github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"

// DeclarationFilter filtros para listados y búsqueda de declaraciones.
// Los administradores buscan por radicado, formulario o documento del
// contribuyente; el alcance (usuario/municipio) lo fija el caso de uso según rol.
type DeclarationFilter struct {
	UserID         string
	MunicipalityID string
	Status         string
	TaxYear        int
	FilingNumber   string
	FormNumber     string
	DocumentNumber string
	Limit          int
	Offset         int
}

// DeclarationRepository persistencia del agregado Declaration.
//
// GetByIDForUpdate solo tiene sentido dentro de una transacción (SELECT ...
// FOR UPDATE): es la exclusión mutua por declaración que protege las
// transiciones firmar/corregir de ejecuciones concurrentes.
type DeclarationRepository interface {
	Create(d *entity.Declaration) error
	Update(d *entity.Declaration) error
	GetByID(id string) (*entity.Declaration, error)
	GetByIDForUpdate(id string) (*entity.Declaration, error)
	List(f DeclarationFilter) ([]*entity.Declaration, error)

	// FindCorrectionOf devuelve la corrección existente para el original dado,
	// o nil si no hay. Con el candado de fila garantiza el invariante de
	// corrección única.
	FindCorrectionOf(originalID string) (*entity.Declaration, error)

	// CountByMunicipalityYear soporta el consecutivo del número de formulario.
	CountByMunicipalityYear(municipalityID string, taxYear int) (int64, error)
}
