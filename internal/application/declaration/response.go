package declaration

import (
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

// toDeclarationResponse mapea el agregado a su representación de API.
// Las imágenes de firma nunca viajan en las respuestas.
func toDeclarationResponse(d *entity.Declaration) *dto.DeclarationResponse {
	resp := &dto.DeclarationResponse{
		ID:             d.ID,
		FormNumber:     d.FormNumber,
		FilingNumber:   d.FilingNumber,
		TaxYear:        d.TaxYear,
		Type:           d.Type,
		Status:         d.Status,
		MunicipalityID: d.MunicipalityID,
		UserID:         d.UserID,
		CorrectionOfID: d.CorrectionOfID,
		Taxpayer: dto.TaxpayerRequest{
			DocumentType:      d.Taxpayer.DocumentType,
			DocumentNumber:    d.Taxpayer.DocumentNumber,
			VerificationDigit: d.Taxpayer.VerificationDigit,
			LegalName:         d.Taxpayer.LegalName,
			Address:           d.Taxpayer.Address,
			Municipality:      d.Taxpayer.Municipality,
			Department:        d.Taxpayer.Department,
			Phone:             d.Taxpayer.Phone,
			Email:             d.Taxpayer.Email,
			Establishments:    d.Taxpayer.Establishments,
			Regime:            d.Taxpayer.Regime,
			IsConsortium:      d.Taxpayer.IsConsortium,
			HasPatrimony:      d.Taxpayer.HasPatrimony,
		},
		IncomeBase: dto.IncomeBaseValues{
			TotalCountryIncome:        d.IncomeBase.TotalCountryIncome,
			IncomeOutsideMunicipality: d.IncomeBase.IncomeOutsideMunicipality,
			ReturnsRebates:            d.IncomeBase.ReturnsRebates,
			ExportsFixedAssets:        d.IncomeBase.ExportsFixedAssets,
			ExcludedNonTaxable:        d.IncomeBase.ExcludedNonTaxable,
			ExemptIncome:              d.IncomeBase.ExemptIncome,
		},
		Energy: dto.EnergyValues{
			InstalledCapacityKw: d.Energy.InstalledCapacityKw,
		},
		Settlement: dto.SettlementValues{
			SignsBoardsTax:           d.Settlement.SignsBoardsTax,
			FinancialUnitsTax:        d.Settlement.FinancialUnitsTax,
			FirefighterSurcharge:     d.Settlement.FirefighterSurcharge,
			SecuritySurcharge:        d.Settlement.SecuritySurcharge,
			Exemptions:               d.Settlement.Exemptions,
			WithholdingsMunicipality: d.Settlement.WithholdingsMunicipality,
			SelfWithholdings:         d.Settlement.SelfWithholdings,
			PrevYearAdvance:          d.Settlement.PrevYearAdvance,
			NextYearAdvance:          d.Settlement.NextYearAdvance,
			Penalties:                d.Settlement.Penalties,
			PrevBalanceFavor:         d.Settlement.PrevBalanceFavor,
		},
		Payment: dto.PaymentValues{
			EarlyPaymentDiscount:  d.Payment.EarlyPaymentDiscount,
			LateInterest:          d.Payment.LateInterest,
			VoluntaryContribution: d.Payment.VoluntaryContribution,
			VoluntaryDestination:  d.Payment.VoluntaryDestination,
		},
		Calculated: dto.CalculationResponse{
			IncomeInMunicipality: d.Calculated.IncomeInMunicipality,
			TaxableIncome:        d.Calculated.TaxableIncome,
			TotalActivityIncome:  d.Calculated.TotalActivityIncome,
			TotalActivityTax:     d.Calculated.TotalActivityTax,
			Law56Tax:             d.Calculated.Law56Tax,
			TotalICATax:          d.Calculated.TotalICATax,
			TotalTaxPayable:      d.Calculated.TotalTaxPayable,
			BalanceDue:           d.Calculated.BalanceDue,
			BalanceFavor:         d.Calculated.BalanceFavor,
			AmountToPay:          d.Calculated.AmountToPay,
			TotalToPay:           d.Calculated.TotalToPay,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	resp.Activities = make([]dto.ActivityResponse, 0, len(d.Activities))
	for _, a := range d.Activities {
		resp.Activities = append(resp.Activities, dto.ActivityResponse{
			ID:             a.ID,
			Classification: a.Classification,
			CIIUCode:       a.CIIUCode,
			Description:    a.Description,
			Income:         a.Income,
			BaseRate:       a.BaseRate,
			SpecialRate:    a.SpecialRate,
			Tax:            a.Tax,
		})
	}

	if d.IsSigned() {
		resp.Signature = &dto.SignatureResponse{
			DeclarantName:            d.Signature.DeclarantName,
			DeclarantDocument:        d.Signature.DeclarantDocument,
			DeclarantSignatureMethod: d.Signature.DeclarantSignatureMethod,
			DeclarantOathAccepted:    d.Signature.DeclarantOathAccepted,
			RequiresFiscalReviewer:   d.Signature.RequiresFiscalReviewer,
			ReviewerName:             d.Signature.ReviewerName,
			ReviewerDocument:         d.Signature.ReviewerDocument,
			ReviewerProfessionalCard: d.Signature.ReviewerProfessionalCard,
			IntegrityHash:            d.Signature.IntegrityHash,
			SignedAt:                 d.Signature.SignedAt,
		}
	}
	return resp
}
