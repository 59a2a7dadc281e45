package declaration

import (
	"context"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

// TxRunner ejecuta una función con repositorios atados a una misma transacción.
// Las transiciones firmar/corregir corren aquí dentro, con el candado de fila
// de GetByIDForUpdate: dos firmas concurrentes o dos correcciones concurrentes
// no pueden prosperar ambas.
type TxRunner interface {
	RunDeclaration(ctx context.Context, fn func(
		declRepo repository.DeclarationRepository,
		muniRepo repository.MunicipalityRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// PDFGenerator genera la representación oficial en PDF de una declaración
// firmada, con la identidad marca blanca del municipio.
type PDFGenerator interface {
	GenerateDeclarationPDF(
		ctx context.Context,
		d *entity.Declaration,
		muni *entity.Municipality,
		cfg *entity.WhiteLabelConfig,
	) ([]byte, error)
}

// PDFStore guarda el PDF generado y devuelve su ruta relativa. Los archivos
// se organizan por año, municipio y usuario. FullPath resuelve la ruta
// absoluta para servir el archivo.
type PDFStore interface {
	Save(taxYear int, municipalityCode, userID, filename string, data []byte) (string, error)
	FullPath(rel string) string
}
