package declaration

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

// Correct crea la corrección de una declaración firmada: un nuevo borrador
// tipo corrección con todas las secciones clonadas del original. El original
// queda intacto y firmado. Cada declaración admite una única corrección; la
// transacción con candado de fila sobre el original garantiza que dos
// correcciones concurrentes no prosperen ambas.
func (uc *UseCase) Correct(ctx context.Context, actor dto.Actor, originalID string, meta dto.RequestMeta) (*dto.DeclarationResponse, error) {
	if actor.Role != entity.RoleDeclarante {
		return nil, domain.ErrForbidden
	}

	var out *dto.DeclarationResponse
	err := uc.txRunner.RunDeclaration(ctx, func(
		declRepo repository.DeclarationRepository,
		muniRepo repository.MunicipalityRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		orig, err := declRepo.GetByIDForUpdate(originalID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.UserID != actor.UserID {
			return domain.ErrForbidden
		}
		if !orig.IsSigned() {
			return domain.ErrNotSigned
		}
		existing, err := declRepo.FindCorrectionOf(originalID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrCorrectionExists
		}

		muni, err := muniRepo.GetByID(orig.MunicipalityID)
		if err != nil {
			return err
		}
		if muni == nil {
			return domain.ErrNotFound
		}

		corr := cloneForCorrection(orig)
		now := uc.clock.Now()
		corr.CreatedAt = now
		corr.UpdatedAt = now

		if err := uc.createWithFormNumber(declRepo, corr, muni.Code); err != nil {
			return err
		}
		uc.writeAuditTo(auditRepo, actor.UserID, corr.ID, entity.AuditCorrect, nil, map[string]any{
			"correction_of": originalID,
			"form_number":   corr.FormNumber,
		}, meta)

		out = toDeclarationResponse(corr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("original_id", originalID).Str("correction_id", out.ID).Msg("corrección creada")
	return out, nil
}

// cloneForCorrection copia todas las secciones del original a un borrador
// nuevo: identificadores frescos, sin radicado, sin firma y sin PDF. Los
// calculados se copian tal cual; cualquier edición posterior los recalcula.
func cloneForCorrection(orig *entity.Declaration) *entity.Declaration {
	origID := orig.ID
	c := &entity.Declaration{
		ID:             uuid.New().String(),
		TaxYear:        orig.TaxYear,
		Type:           entity.TypeCorreccion,
		Status:         entity.StatusBorrador,
		MunicipalityID: orig.MunicipalityID,
		UserID:         orig.UserID,
		CorrectionOfID: &origID,

		Taxpayer:   orig.Taxpayer,
		IncomeBase: orig.IncomeBase,
		Energy:     orig.Energy,
		Settlement: orig.Settlement,
		Payment:    orig.Payment,
		Calculated: orig.Calculated,
	}
	c.Activities = make([]entity.Activity, len(orig.Activities))
	for i, a := range orig.Activities {
		a.ID = uuid.New().String()
		if a.SpecialRate != nil {
			r := *a.SpecialRate
			a.SpecialRate = &r
		}
		c.Activities[i] = a
	}
	return c
}
