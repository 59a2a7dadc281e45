package declaration

import (
	"context"
	"fmt"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
	"github.com/jhoicas/ica-declaraciones-api/pkg/logger"
)

// PDFUseCase generación y descarga del PDF oficial de una declaración
// firmada. Generar por primera vez transiciona FIRMADO → PRESENTADO;
// regenerar es idempotente respecto al estado.
type PDFUseCase struct {
	declRepo  repository.DeclarationRepository
	muniRepo  repository.MunicipalityRepository
	auditRepo repository.AuditLogRepository
	generator PDFGenerator
	store     PDFStore
	hasher    *ica.IntegrityHasher
	clock     ica.Clock
	log       *logger.Logger
}

// NewPDFUseCase construye el caso de uso de PDFs.
func NewPDFUseCase(
	declRepo repository.DeclarationRepository,
	muniRepo repository.MunicipalityRepository,
	auditRepo repository.AuditLogRepository,
	generator PDFGenerator,
	store PDFStore,
	clock ica.Clock,
	log *logger.Logger,
) *PDFUseCase {
	return &PDFUseCase{
		declRepo:  declRepo,
		muniRepo:  muniRepo,
		auditRepo: auditRepo,
		generator: generator,
		store:     store,
		hasher:    ica.NewIntegrityHasher(),
		clock:     clock,
		log:       log,
	}
}

// Generate produce el PDF oficial con la identidad marca blanca del
// municipio, lo archiva y marca la declaración como PRESENTADO. Solo procede
// sobre declaraciones firmadas y verifica la huella de integridad antes de
// renderizar: nunca se emite un PDF de un registro alterado.
func (uc *PDFUseCase) Generate(ctx context.Context, actor dto.Actor, id string, meta dto.RequestMeta) ([]byte, string, error) {
	d, err := uc.loadFor(actor, id)
	if err != nil {
		return nil, "", err
	}
	if !d.IsSigned() {
		return nil, "", domain.ErrNotSigned
	}
	if !uc.hasher.Verify(d) {
		uc.log.Error().Str("declaration_id", d.ID).Msg("huella no coincide, PDF denegado")
		return nil, "", domain.ErrIntegrityMismatch
	}

	muni, err := uc.muniRepo.GetByID(d.MunicipalityID)
	if err != nil {
		return nil, "", err
	}
	if muni == nil {
		return nil, "", domain.ErrNotFound
	}
	cfg, err := uc.muniRepo.GetConfig(d.MunicipalityID)
	if err != nil {
		return nil, "", err
	}

	data, err := uc.generator.GenerateDeclarationPDF(ctx, d, muni, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF: %w", err)
	}

	filename := fmt.Sprintf("declaracion_%s.pdf", d.FilingNumber)
	path, err := uc.store.Save(d.TaxYear, muni.Code, d.UserID, filename, data)
	if err != nil {
		return nil, "", fmt.Errorf("archivar PDF: %w", err)
	}

	now := uc.clock.Now()
	d.PDFPath = path
	d.PDFGeneratedAt = nowPtr(now)
	d.Status = entity.StatusPresentado
	d.UpdatedAt = now
	if err := uc.declRepo.Update(d); err != nil {
		return nil, "", err
	}

	uc.audit(actor.UserID, d.ID, entity.AuditGeneratePDF, map[string]any{"pdf_path": path}, meta)
	return data, filename, nil
}

// Download devuelve la ruta del PDF ya generado para que el transporte lo
// sirva. Sin PDF previo devuelve ErrNotFound.
func (uc *PDFUseCase) Download(actor dto.Actor, id string, meta dto.RequestMeta) (string, string, error) {
	d, err := uc.loadFor(actor, id)
	if err != nil {
		return "", "", err
	}
	if d.PDFPath == "" {
		return "", "", domain.ErrNotFound
	}
	uc.audit(actor.UserID, d.ID, entity.AuditDownload, map[string]any{"pdf_path": d.PDFPath}, meta)
	return uc.store.FullPath(d.PDFPath), fmt.Sprintf("declaracion_%s.pdf", d.FilingNumber), nil
}

func (uc *PDFUseCase) loadFor(actor dto.Actor, id string) (*entity.Declaration, error) {
	d, err := uc.declRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if err := canAccess(actor, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *PDFUseCase) audit(userID, declID, action string, values map[string]any, meta dto.RequestMeta) {
	writeAudit(uc.auditRepo, uc.clock, uc.log, userID, declID, action, nil, values, meta)
}
