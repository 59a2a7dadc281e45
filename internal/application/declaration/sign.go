package declaration

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

// Sign firma la declaración: valida completitud y juramento, recalcula una
// última vez con datos frescos, reserva el radicado, calcula la huella de
// integridad y congela el registro en FIRMADO. Toda la transición corre en
// una transacción con candado de fila: dos firmas concurrentes no pueden
// prosperar ambas.
func (uc *UseCase) Sign(ctx context.Context, actor dto.Actor, id string, in dto.SignDeclarationRequest, meta dto.RequestMeta) (*dto.SignResponse, error) {
	if actor.Role != entity.RoleDeclarante {
		return nil, domain.ErrForbidden
	}
	if verrs := validateSignRequest(in); len(verrs) > 0 {
		return nil, verrs
	}

	var out *dto.SignResponse
	err := uc.txRunner.RunDeclaration(ctx, func(
		declRepo repository.DeclarationRepository,
		muniRepo repository.MunicipalityRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		d, err := declRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.UserID != actor.UserID {
			return domain.ErrForbidden
		}
		if d.IsFrozen() {
			return domain.ErrAlreadySigned
		}
		if missing := missingForSigning(d); len(missing) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrIncompleteDeclaration, strings.Join(missing, ", "))
		}

		// Recalcular con lo que está en base de datos; lo firmado es lo
		// calculado, nunca valores del cliente.
		if err := uc.recompute(d); err != nil {
			return err
		}

		now := uc.clock.Now()
		d.FilingNumber, err = uc.reserveFilingNumber(muniRepo, d, now.Unix())
		if err != nil {
			return err
		}

		d.Signature = entity.Signature{
			DeclarantName:            in.DeclarantName,
			DeclarantDocument:        in.DeclarantDocument,
			DeclarantSignatureMethod: in.DeclarantSignatureMethod,
			DeclarantSignatureImage:  in.SignatureImage,
			DeclarantOathAccepted:    in.OathAccepted,
			RequiresFiscalReviewer:   in.RequiresFiscalReviewer,
			ReviewerName:             in.ReviewerName,
			ReviewerDocument:         in.ReviewerDocument,
			ReviewerProfessionalCard: in.ReviewerProfessionalCard,
			ReviewerSignatureMethod:  in.ReviewerSignatureMethod,
			ReviewerSignatureImage:   in.ReviewerSignatureImage,
			SignedAt:                 nowPtr(now),
			IPAddress:                meta.IPAddress,
			UserAgent:                meta.UserAgent,
		}
		// La huella cubre crudos, actividades y calculados; la firma misma
		// queda por fuera para poder verificarla después.
		d.Signature.IntegrityHash = uc.hasher.Compute(d)
		d.Status = entity.StatusFirmado
		d.UpdatedAt = now

		if err := declRepo.Update(d); err != nil {
			return err
		}
		uc.writeAuditTo(auditRepo, actor.UserID, d.ID, entity.AuditSign, nil, map[string]any{
			"filing_number":  d.FilingNumber,
			"integrity_hash": d.Signature.IntegrityHash,
			"signed_at":      now,
		}, meta)

		out = &dto.SignResponse{
			FilingNumber:  d.FilingNumber,
			IntegrityHash: d.Signature.IntegrityHash,
			SignedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("declaration_id", id).Str("filing_number", out.FilingNumber).Msg("declaración firmada")
	return out, nil
}

// reserveFilingNumber incrementa el consecutivo del municipio dentro de la
// transacción de firma y lo formatea según la configuración marca blanca.
// Sin configuración cae a un radicado de emergencia derivado del id y la hora.
func (uc *UseCase) reserveFilingNumber(muniRepo repository.MunicipalityRepository, d *entity.Declaration, ts int64) (string, error) {
	cfg, err := muniRepo.GetConfig(d.MunicipalityID)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		uc.log.Warn().Str("municipality_id", d.MunicipalityID).Msg("municipio sin configuración de radicados")
		return fmt.Sprintf("RAD-%s-%d", d.ID, ts), nil
	}
	n, err := muniRepo.NextFilingCounter(d.MunicipalityID)
	if err != nil {
		return "", err
	}
	return cfg.FormatFilingNumber(n), nil
}

// VerifyIntegrity recalcula la huella sobre la declaración congelada y la
// compara con la almacenada al firmar. Una discrepancia indica corrupción o
// mutación no autorizada y se reporta como ErrIntegrityMismatch.
func (uc *UseCase) VerifyIntegrity(actor dto.Actor, id string) error {
	d, err := uc.declRepo.GetByID(id)
	if err != nil {
		return err
	}
	if d == nil {
		return domain.ErrNotFound
	}
	if err := canAccess(actor, d); err != nil {
		return err
	}
	if !d.IsSigned() {
		return domain.ErrNotSigned
	}
	if !uc.hasher.Verify(d) {
		uc.log.Error().
			Str("declaration_id", d.ID).
			Str("filing_number", d.FilingNumber).
			Msg("huella de integridad no coincide: posible mutación del registro firmado")
		return domain.ErrIntegrityMismatch
	}
	return nil
}

// validateSignRequest exige identificación del firmante, juramento aceptado y
// firma gráfica; si la declaración requiere revisor fiscal, también sus datos
// completos (incluida su firma).
func validateSignRequest(in dto.SignDeclarationRequest) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	if strings.TrimSpace(in.DeclarantName) == "" {
		verrs = append(verrs, domain.FieldError{Field: "declarant_name", Reason: "es obligatorio"})
	}
	if strings.TrimSpace(in.DeclarantDocument) == "" {
		verrs = append(verrs, domain.FieldError{Field: "declarant_document", Reason: "es obligatorio"})
	}
	if !in.OathAccepted {
		verrs = append(verrs, domain.FieldError{Field: "oath_accepted", Reason: "debe aceptar el juramento"})
	}
	if strings.TrimSpace(in.SignatureImage) == "" {
		verrs = append(verrs, domain.FieldError{Field: "signature_image", Reason: "la firma es obligatoria"})
	}
	if in.RequiresFiscalReviewer {
		if strings.TrimSpace(in.ReviewerName) == "" {
			verrs = append(verrs, domain.FieldError{Field: "reviewer_name", Reason: "es obligatorio cuando interviene revisor fiscal"})
		}
		if strings.TrimSpace(in.ReviewerDocument) == "" {
			verrs = append(verrs, domain.FieldError{Field: "reviewer_document", Reason: "es obligatorio cuando interviene revisor fiscal"})
		}
		if strings.TrimSpace(in.ReviewerProfessionalCard) == "" {
			verrs = append(verrs, domain.FieldError{Field: "reviewer_professional_card", Reason: "es obligatoria cuando interviene revisor fiscal"})
		}
		if strings.TrimSpace(in.ReviewerSignatureImage) == "" {
			verrs = append(verrs, domain.FieldError{Field: "reviewer_signature_image", Reason: "la firma del revisor fiscal es obligatoria"})
		}
	}
	return verrs
}

// missingForSigning lista lo que falta para poder firmar: contribuyente
// identificado, al menos una actividad y base gravable digitada.
func missingForSigning(d *entity.Declaration) []string {
	var missing []string
	if d.Taxpayer.DocumentNumber == "" || d.Taxpayer.LegalName == "" {
		missing = append(missing, "datos del contribuyente")
	}
	if len(d.Activities) == 0 {
		missing = append(missing, "al menos una actividad gravada")
	}
	if d.IncomeBase.TotalCountryIncome.IsZero() && d.Calculated.TotalActivityIncome.IsZero() {
		missing = append(missing, "ingresos del período")
	}
	return missing
}
