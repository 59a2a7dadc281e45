package declaration

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/pkg/nit"
)

// Update actualiza una declaración en borrador y recalcula todos los valores
// derivados. Secciones nil del request no se tocan; Activities nil conserva
// las existentes y un slice vacío las elimina. Sobre una declaración firmada
// o presentada devuelve ErrDeclarationFrozen.
func (uc *UseCase) Update(actor dto.Actor, id string, in dto.UpdateDeclarationRequest, meta dto.RequestMeta) (*dto.DeclarationResponse, error) {
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
	if d.IsFrozen() {
		return nil, domain.ErrDeclarationFrozen
	}

	if verrs := validateUpdate(in); len(verrs) > 0 {
		return nil, verrs
	}

	old := snapshotSections(d)

	if in.Taxpayer != nil {
		if err := applyTaxpayer(d, *in.Taxpayer); err != nil {
			return nil, err
		}
	}
	if in.IncomeBase != nil {
		applyIncomeBase(&d.IncomeBase, *in.IncomeBase)
	}
	if in.Activities != nil {
		acts, err := uc.buildActivities(d.MunicipalityID, in.Activities)
		if err != nil {
			return nil, err
		}
		d.Activities = acts
	}
	if in.Energy != nil && in.Energy.InstalledCapacityKw != nil {
		d.Energy.InstalledCapacityKw = *in.Energy.InstalledCapacityKw
	}
	if in.Settlement != nil {
		applySettlement(&d.Settlement, *in.Settlement)
	}
	if in.Payment != nil {
		applyPayment(&d.Payment, *in.Payment)
	}

	if err := uc.recompute(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = uc.clock.Now()

	if err := uc.declRepo.Update(d); err != nil {
		return nil, err
	}
	uc.writeAudit(actor.UserID, d.ID, entity.AuditUpdate, old, snapshotSections(d), meta)
	return toDeclarationResponse(d), nil
}

// Calculate recalcula sin persistir: vista previa del formulario con los
// valores derivados frescos para el estado actual en base de datos.
func (uc *UseCase) Calculate(actor dto.Actor, id string) (*dto.CalculationResponse, error) {
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
	if err := uc.recompute(d); err != nil {
		return nil, err
	}
	r := toDeclarationResponse(d)
	return &r.Calculated, nil
}

// buildActivities valida y enriquece actividades contra el catálogo del
// municipio: descripción y tarifa base vienen siempre del catálogo, nunca del
// cliente.
func (uc *UseCase) buildActivities(municipalityID string, in []dto.ActivityRequest) ([]entity.Activity, error) {
	var verrs domain.ValidationErrors
	principals := 0
	out := make([]entity.Activity, 0, len(in))
	for i, a := range in {
		field := fmt.Sprintf("activities[%d]", i)
		switch a.Classification {
		case entity.ActivityPrincipal:
			principals++
		case entity.ActivitySecundaria:
		default:
			verrs = append(verrs, domain.FieldError{Field: field + ".classification", Reason: "debe ser principal o secundaria"})
			continue
		}
		if a.Income.IsNegative() {
			verrs = append(verrs, domain.FieldError{Field: field + ".income", Reason: "no puede ser negativo"})
		}
		if a.SpecialRate != nil && a.SpecialRate.IsNegative() {
			verrs = append(verrs, domain.FieldError{Field: field + ".special_rate", Reason: "no puede ser negativa"})
		}
		cat, err := uc.catalogRepo.GetByCode(municipalityID, a.CIIUCode)
		if err != nil {
			return nil, err
		}
		if cat == nil || !cat.IsActive {
			verrs = append(verrs, domain.FieldError{Field: field + ".ciiu_code", Reason: "actividad no existe en el catálogo del municipio"})
			continue
		}
		out = append(out, entity.Activity{
			ID:             uuid.New().String(),
			Classification: a.Classification,
			CIIUCode:       cat.CIIUCode,
			Description:    cat.Description,
			Income:         a.Income,
			BaseRate:       cat.RatePerMille,
			SpecialRate:    a.SpecialRate,
		})
	}
	if len(in) > 0 && principals != 1 {
		verrs = append(verrs, domain.FieldError{Field: "activities", Reason: "debe haber exactamente una actividad principal"})
	}
	if len(verrs) > 0 {
		return nil, verrs
	}
	return out, nil
}

// applyTaxpayer copia la sección A y valida el dígito de verificación cuando
// el documento es NIT.
func applyTaxpayer(d *entity.Declaration, in dto.TaxpayerRequest) error {
	if in.DocumentType == "NIT" && in.VerificationDigit != "" {
		full := in.DocumentNumber + "-" + in.VerificationDigit
		if err := nit.ValidateVerificationDigit(full); err != nil {
			return domain.ValidationErrors{{Field: "taxpayer.verification_digit", Reason: err.Error()}}
		}
	}
	if r := in.Regime; r != "" && r != entity.RegimeComun && r != entity.RegimeSimplificado {
		return domain.ValidationErrors{{Field: "taxpayer.regime", Reason: "debe ser comun o simplificado"}}
	}
	d.Taxpayer = entity.Taxpayer{
		DocumentType:      in.DocumentType,
		DocumentNumber:    in.DocumentNumber,
		VerificationDigit: in.VerificationDigit,
		LegalName:         in.LegalName,
		Address:           in.Address,
		Municipality:      in.Municipality,
		Department:        in.Department,
		Phone:             in.Phone,
		Email:             in.Email,
		Establishments:    in.Establishments,
		Regime:            in.Regime,
		IsConsortium:      in.IsConsortium,
		HasPatrimony:      in.HasPatrimony,
	}
	return nil
}

func applyIncomeBase(b *entity.IncomeBase, in dto.IncomeBaseRequest) {
	setIf(&b.TotalCountryIncome, in.TotalCountryIncome)
	setIf(&b.IncomeOutsideMunicipality, in.IncomeOutsideMunicipality)
	setIf(&b.ReturnsRebates, in.ReturnsRebates)
	setIf(&b.ExportsFixedAssets, in.ExportsFixedAssets)
	setIf(&b.ExcludedNonTaxable, in.ExcludedNonTaxable)
	setIf(&b.ExemptIncome, in.ExemptIncome)
}

func applySettlement(s *entity.Settlement, in dto.SettlementRequest) {
	setIf(&s.SignsBoardsTax, in.SignsBoardsTax)
	setIf(&s.FinancialUnitsTax, in.FinancialUnitsTax)
	setIf(&s.FirefighterSurcharge, in.FirefighterSurcharge)
	setIf(&s.SecuritySurcharge, in.SecuritySurcharge)
	setIf(&s.Exemptions, in.Exemptions)
	setIf(&s.WithholdingsMunicipality, in.WithholdingsMunicipality)
	setIf(&s.SelfWithholdings, in.SelfWithholdings)
	setIf(&s.PrevYearAdvance, in.PrevYearAdvance)
	setIf(&s.NextYearAdvance, in.NextYearAdvance)
	setIf(&s.Penalties, in.Penalties)
	setIf(&s.PrevBalanceFavor, in.PrevBalanceFavor)
}

func applyPayment(p *entity.Payment, in dto.PaymentRequest) {
	setIf(&p.EarlyPaymentDiscount, in.EarlyPaymentDiscount)
	setIf(&p.LateInterest, in.LateInterest)
	setIf(&p.VoluntaryContribution, in.VoluntaryContribution)
	if in.VoluntaryDestination != "" {
		p.VoluntaryDestination = in.VoluntaryDestination
	}
}

func setIf(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

// validateUpdate rechaza montos crudos negativos en todas las secciones.
// Los negativos se rechazan en la puerta, no se recortan: el recorte a cero
// es solo para intermedios del motor.
func validateUpdate(in dto.UpdateDeclarationRequest) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	check := func(field string, v *decimal.Decimal) {
		if v != nil && v.IsNegative() {
			verrs = append(verrs, domain.FieldError{Field: field, Reason: "no puede ser negativo"})
		}
	}
	if b := in.IncomeBase; b != nil {
		check("income_base.total_country_income", b.TotalCountryIncome)
		check("income_base.income_outside_municipality", b.IncomeOutsideMunicipality)
		check("income_base.returns_rebates", b.ReturnsRebates)
		check("income_base.exports_fixed_assets", b.ExportsFixedAssets)
		check("income_base.excluded_non_taxable", b.ExcludedNonTaxable)
		check("income_base.exempt_income", b.ExemptIncome)
	}
	if e := in.Energy; e != nil {
		check("energy.installed_capacity_kw", e.InstalledCapacityKw)
	}
	if s := in.Settlement; s != nil {
		check("settlement.signs_boards_tax", s.SignsBoardsTax)
		check("settlement.financial_units_tax", s.FinancialUnitsTax)
		check("settlement.firefighter_surcharge", s.FirefighterSurcharge)
		check("settlement.security_surcharge", s.SecuritySurcharge)
		check("settlement.exemptions", s.Exemptions)
		check("settlement.withholdings_municipality", s.WithholdingsMunicipality)
		check("settlement.self_withholdings", s.SelfWithholdings)
		check("settlement.prev_year_advance", s.PrevYearAdvance)
		check("settlement.next_year_advance", s.NextYearAdvance)
		check("settlement.penalties", s.Penalties)
		check("settlement.prev_balance_favor", s.PrevBalanceFavor)
	}
	if p := in.Payment; p != nil {
		check("payment.early_payment_discount", p.EarlyPaymentDiscount)
		check("payment.late_interest", p.LateInterest)
		check("payment.voluntary_contribution", p.VoluntaryContribution)
	}
	return verrs
}

// snapshotSections arma el resumen de secciones para el registro de auditoría.
func snapshotSections(d *entity.Declaration) map[string]any {
	return map[string]any{
		"status":        d.Status,
		"taxpayer":      d.Taxpayer,
		"income_base":   d.IncomeBase,
		"activities":    d.Activities,
		"energy":        d.Energy,
		"settlement":    d.Settlement,
		"payment":       d.Payment,
		"calculated":    d.Calculated,
		"filing_number": d.FilingNumber,
	}
}
