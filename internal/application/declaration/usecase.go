package declaration

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
	"github.com/jhoicas/ica-declaraciones-api/pkg/logger"
)

// UseCase casos de uso del ciclo de vida de la declaración ICA: creación,
// edición con recálculo, firma, corrección y consulta.
type UseCase struct {
	declRepo    repository.DeclarationRepository
	muniRepo    repository.MunicipalityRepository
	catalogRepo repository.ActivityCatalogRepository
	paramRepo   repository.FormulaParamRepository
	auditRepo   repository.AuditLogRepository
	txRunner    TxRunner
	engine      *ica.Engine
	hasher      *ica.IntegrityHasher
	clock       ica.Clock
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	declRepo repository.DeclarationRepository,
	muniRepo repository.MunicipalityRepository,
	catalogRepo repository.ActivityCatalogRepository,
	paramRepo repository.FormulaParamRepository,
	auditRepo repository.AuditLogRepository,
	txRunner TxRunner,
	clock ica.Clock,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		declRepo:    declRepo,
		muniRepo:    muniRepo,
		catalogRepo: catalogRepo,
		paramRepo:   paramRepo,
		auditRepo:   auditRepo,
		txRunner:    txRunner,
		engine:      ica.NewEngine(),
		hasher:      ica.NewIntegrityHasher(),
		clock:       clock,
		log:         log,
	}
}

// Create crea una declaración en BORRADOR con sus secciones vacías y el
// número de formulario asignado (consecutivo por municipio y año).
func (uc *UseCase) Create(actor dto.Actor, in dto.CreateDeclarationRequest, meta dto.RequestMeta) (*dto.DeclarationResponse, error) {
	if in.TaxYear < 2000 || in.TaxYear > 2100 {
		return nil, domain.ValidationErrors{{Field: "tax_year", Reason: "año gravable inválido"}}
	}
	muni, err := uc.muniRepo.GetByID(in.MunicipalityID)
	if err != nil {
		return nil, err
	}
	if muni == nil || !muni.IsActive {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	d := &entity.Declaration{
		ID:             uuid.New().String(),
		TaxYear:        in.TaxYear,
		Type:           entity.TypeInicial,
		Status:         entity.StatusBorrador,
		MunicipalityID: muni.ID,
		UserID:         actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.createWithFormNumber(uc.declRepo, d, muni.Code); err != nil {
		return nil, err
	}
	uc.writeAudit(actor.UserID, d.ID, entity.AuditCreate, nil, map[string]any{
		"form_number": d.FormNumber,
		"tax_year":    d.TaxYear,
	}, meta)
	return toDeclarationResponse(d), nil
}

// Get obtiene una declaración con control de acceso por rol.
func (uc *UseCase) Get(actor dto.Actor, id string) (*dto.DeclarationResponse, error) {
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
	return toDeclarationResponse(d), nil
}

// List lista declaraciones según rol: el declarante ve las suyas, el
// administrador de alcaldía las de su municipio, el de sistema todas.
// Los filtros de radicado/formulario/documento soportan el buscador admin.
func (uc *UseCase) List(actor dto.Actor, f repository.DeclarationFilter) ([]*dto.DeclarationResponse, error) {
	switch actor.Role {
	case entity.RoleDeclarante:
		f.UserID = actor.UserID
	case entity.RoleAdminAlcaldia:
		f.MunicipalityID = actor.MunicipalityID
	case entity.RoleAdminSistema:
		// sin restricción
	default:
		return nil, domain.ErrForbidden
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	list, err := uc.declRepo.List(f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DeclarationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDeclarationResponse(d))
	}
	return out, nil
}

// canAccess aplica las reglas de visibilidad por rol.
func canAccess(actor dto.Actor, d *entity.Declaration) error {
	switch actor.Role {
	case entity.RoleDeclarante:
		if d.UserID != actor.UserID {
			return domain.ErrForbidden
		}
	case entity.RoleAdminAlcaldia:
		if d.MunicipalityID != actor.MunicipalityID {
			return domain.ErrForbidden
		}
	case entity.RoleAdminSistema:
		// acceso total
	default:
		return domain.ErrForbidden
	}
	return nil
}

// recompute ejecuta el motor sobre el estado actual de la declaración y
// escribe los derivados en el agregado (incluido el impuesto por actividad).
// La tarifa Ley 56 se lee de los parámetros del municipio (0 si no existe).
func (uc *UseCase) recompute(d *entity.Declaration) error {
	rate, err := uc.paramRepo.GetValue(d.MunicipalityID, entity.ParamLaw56RatePerKw)
	if err != nil {
		return fmt.Errorf("leer parámetro ley 56: %w", err)
	}
	res := uc.engine.Compute(ica.Input{
		IncomeBase:     d.IncomeBase,
		Activities:     d.Activities,
		Energy:         d.Energy,
		Law56RatePerKw: rate,
		Settlement:     d.Settlement,
		Payment:        d.Payment,
	})
	d.Calculated = res.Calculated
	for i := range d.Activities {
		d.Activities[i].Tax = res.ActivityTaxes[i]
	}
	return nil
}

// writeAudit registra la operación; un fallo de auditoría no tumba la operación
// principal, solo se loguea.
func (uc *UseCase) writeAudit(userID, declID, action string, oldValues, newValues any, meta dto.RequestMeta) {
	writeAudit(uc.auditRepo, uc.clock, uc.log, userID, declID, action, oldValues, newValues, meta)
}

func (uc *UseCase) writeAuditTo(repo repository.AuditLogRepository, userID, declID, action string, oldValues, newValues any, meta dto.RequestMeta) {
	writeAudit(repo, uc.clock, uc.log, userID, declID, action, oldValues, newValues, meta)
}

func writeAudit(repo repository.AuditLogRepository, clock ica.Clock, log *logger.Logger, userID, declID, action string, oldValues, newValues any, meta dto.RequestMeta) {
	marshal := func(v any) string {
		if v == nil {
			return ""
		}
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
	l := &entity.AuditLog{
		ID:            uuid.New().String(),
		UserID:        userID,
		DeclarationID: declID,
		Action:        action,
		EntityType:    "Declaration",
		OldValues:     marshal(oldValues),
		NewValues:     marshal(newValues),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		Timestamp:     clock.Now(),
	}
	if err := repo.Create(l); err != nil {
		log.Warn().Err(err).Str("declaration_id", declID).Str("action", action).Msg("registrar auditoría")
	}
}

// newFormNumber número interno de formulario: ICA-<código DANE>-<año>-<consecutivo>.
// Distinto del radicado, que solo existe tras la firma.
func newFormNumber(municipalityCode string, taxYear int, seq int64) string {
	return fmt.Sprintf("ICA-%s-%d-%06d", municipalityCode, taxYear, seq)
}

// formNumberAttempts reintentos al reservar el consecutivo de formulario.
const formNumberAttempts = 3

// createWithFormNumber asigna el siguiente consecutivo del municipio/año y
// persiste la declaración. El consecutivo se deriva de un conteo fuera de
// transacción, así que dos creaciones concurrentes pueden chocar en el único
// de form_number; en ese caso se recuenta y reintenta.
func (uc *UseCase) createWithFormNumber(repo repository.DeclarationRepository, d *entity.Declaration, municipalityCode string) error {
	var err error
	for attempt := 0; attempt < formNumberAttempts; attempt++ {
		var seq int64
		seq, err = repo.CountByMunicipalityYear(d.MunicipalityID, d.TaxYear)
		if err != nil {
			return err
		}
		d.FormNumber = newFormNumber(municipalityCode, d.TaxYear, seq+1)
		err = repo.Create(d)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateFormNumber) {
			return err
		}
		uc.log.Warn().Str("form_number", d.FormNumber).Msg("consecutivo de formulario en disputa, reintentando")
	}
	return err
}

func nowPtr(t time.Time) *time.Time { return &t }
