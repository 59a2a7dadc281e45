package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
)

var _ declaration.PDFStore = (*LocalStore)(nil)

// LocalStore archiva los PDFs oficiales en el sistema de archivos local,
// organizados por año gravable, municipio y usuario:
//
//	<base>/<año>/<código DANE>/<usuario>/<archivo>.pdf
type LocalStore struct {
	base string
}

// NewLocalStore construye el almacén sobre el directorio base configurado.
func NewLocalStore(base string) *LocalStore {
	return &LocalStore{base: base}
}

// Save escribe el PDF y devuelve su ruta relativa al directorio base.
func (s *LocalStore) Save(taxYear int, municipalityCode, userID, filename string, data []byte) (string, error) {
	rel := filepath.Join(fmt.Sprintf("%d", taxYear), municipalityCode, userID, filename)
	full := filepath.Join(s.base, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de PDFs: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir PDF: %w", err)
	}
	return rel, nil
}

// FullPath resuelve la ruta absoluta de un PDF previamente guardado.
func (s *LocalStore) FullPath(rel string) string {
	return filepath.Join(s.base, rel)
}
