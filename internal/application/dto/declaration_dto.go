package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDeclarationRequest body para POST /api/declarations.
type CreateDeclarationRequest struct {
	TaxYear        int    `json:"tax_year"`
	MunicipalityID string `json:"municipality_id"`
}

// TaxpayerRequest Sección A — información del contribuyente.
type TaxpayerRequest struct {
	DocumentType      string `json:"document_type"`
	DocumentNumber    string `json:"document_number"`
	VerificationDigit string `json:"verification_digit,omitempty"`
	LegalName         string `json:"legal_name"`
	Address           string `json:"address,omitempty"`
	Municipality      string `json:"municipality,omitempty"`
	Department        string `json:"department,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	Establishments    int    `json:"establishments,omitempty"`
	Regime            string `json:"regime,omitempty"`
	IsConsortium      bool   `json:"is_consortium,omitempty"`
	HasPatrimony      bool   `json:"has_patrimony,omitempty"`
}

// IncomeBaseRequest Sección B — base gravable (solo campos crudos).
// Punteros: nil significa "sin cambio / cero"; nunca error en borradores.
type IncomeBaseRequest struct {
	TotalCountryIncome        *decimal.Decimal `json:"total_country_income,omitempty"`
	IncomeOutsideMunicipality *decimal.Decimal `json:"income_outside_municipality,omitempty"`
	ReturnsRebates            *decimal.Decimal `json:"returns_rebates,omitempty"`
	ExportsFixedAssets        *decimal.Decimal `json:"exports_fixed_assets,omitempty"`
	ExcludedNonTaxable        *decimal.Decimal `json:"excluded_non_taxable,omitempty"`
	ExemptIncome              *decimal.Decimal `json:"exempt_income,omitempty"`
}

// ActivityRequest Sección C — actividad gravada. La descripción y la tarifa
// base se enriquecen desde el catálogo del municipio.
type ActivityRequest struct {
	Classification string           `json:"classification"` // principal | secundaria
	CIIUCode       string           `json:"ciiu_code"`
	Income         decimal.Decimal  `json:"income"`
	SpecialRate    *decimal.Decimal `json:"special_rate,omitempty"`
}

// EnergyRequest generación de energía Ley 56.
type EnergyRequest struct {
	InstalledCapacityKw *decimal.Decimal `json:"installed_capacity_kw,omitempty"`
}

// SettlementRequest Sección D — liquidación (solo campos crudos).
type SettlementRequest struct {
	SignsBoardsTax           *decimal.Decimal `json:"signs_boards_tax,omitempty"`
	FinancialUnitsTax        *decimal.Decimal `json:"financial_units_tax,omitempty"`
	FirefighterSurcharge     *decimal.Decimal `json:"firefighter_surcharge,omitempty"`
	SecuritySurcharge        *decimal.Decimal `json:"security_surcharge,omitempty"`
	Exemptions               *decimal.Decimal `json:"exemptions,omitempty"`
	WithholdingsMunicipality *decimal.Decimal `json:"withholdings_municipality,omitempty"`
	SelfWithholdings         *decimal.Decimal `json:"self_withholdings,omitempty"`
	PrevYearAdvance          *decimal.Decimal `json:"prev_year_advance,omitempty"`
	NextYearAdvance          *decimal.Decimal `json:"next_year_advance,omitempty"`
	Penalties                *decimal.Decimal `json:"penalties,omitempty"`
	PrevBalanceFavor         *decimal.Decimal `json:"prev_balance_favor,omitempty"`
}

// PaymentRequest Sección E — pago. El valor a pagar no es editable: se puebla
// del saldo a cargo calculado.
type PaymentRequest struct {
	EarlyPaymentDiscount  *decimal.Decimal `json:"early_payment_discount,omitempty"`
	LateInterest          *decimal.Decimal `json:"late_interest,omitempty"`
	VoluntaryContribution *decimal.Decimal `json:"voluntary_contribution,omitempty"`
	VoluntaryDestination  string           `json:"voluntary_destination,omitempty"`
}

// UpdateDeclarationRequest body para PUT /api/declarations/:id.
// Secciones nil no se tocan; Activities nil conserva, vacío borra.
type UpdateDeclarationRequest struct {
	Taxpayer   *TaxpayerRequest   `json:"taxpayer,omitempty"`
	IncomeBase *IncomeBaseRequest `json:"income_base,omitempty"`
	Activities []ActivityRequest  `json:"activities,omitempty"`
	Energy     *EnergyRequest     `json:"energy,omitempty"`
	Settlement *SettlementRequest `json:"settlement,omitempty"`
	Payment    *PaymentRequest    `json:"payment,omitempty"`
}

// SignDeclarationRequest body para POST /api/declarations/:id/sign.
type SignDeclarationRequest struct {
	DeclarantName            string `json:"declarant_name"`
	DeclarantDocument        string `json:"declarant_document"`
	DeclarantSignatureMethod string `json:"declarant_signature_method,omitempty"`
	SignatureImage           string `json:"signature_image"` // base64 del canvas
	OathAccepted             bool   `json:"oath_accepted"`

	RequiresFiscalReviewer   bool   `json:"requires_fiscal_reviewer,omitempty"`
	ReviewerName             string `json:"reviewer_name,omitempty"`
	ReviewerDocument         string `json:"reviewer_document,omitempty"`
	ReviewerProfessionalCard string `json:"reviewer_professional_card,omitempty"`
	ReviewerSignatureMethod  string `json:"reviewer_signature_method,omitempty"`
	ReviewerSignatureImage   string `json:"reviewer_signature_image,omitempty"`
}

// ActivityResponse actividad con su impuesto calculado.
type ActivityResponse struct {
	ID             string           `json:"id"`
	Classification string           `json:"classification"`
	CIIUCode       string           `json:"ciiu_code"`
	Description    string           `json:"description"`
	Income         decimal.Decimal  `json:"income"`
	BaseRate       decimal.Decimal  `json:"base_rate"`
	SpecialRate    *decimal.Decimal `json:"special_rate,omitempty"`
	Tax            decimal.Decimal  `json:"tax"`
}

// CalculationResponse valores derivados del motor de cálculo.
type CalculationResponse struct {
	IncomeInMunicipality decimal.Decimal `json:"income_in_municipality"`
	TaxableIncome        decimal.Decimal `json:"taxable_income"`
	TotalActivityIncome  decimal.Decimal `json:"total_activity_income"`
	TotalActivityTax     decimal.Decimal `json:"total_activity_tax"`
	Law56Tax             decimal.Decimal `json:"law56_tax"`
	TotalICATax          decimal.Decimal `json:"total_ica_tax"`
	TotalTaxPayable      decimal.Decimal `json:"total_tax_payable"`
	BalanceDue           decimal.Decimal `json:"balance_due"`
	BalanceFavor         decimal.Decimal `json:"balance_favor"`
	AmountToPay          decimal.Decimal `json:"amount_to_pay"`
	TotalToPay           decimal.Decimal `json:"total_to_pay"`
}

// SignatureResponse firma y evidencia de integridad (sin imágenes completas
// en listados).
type SignatureResponse struct {
	DeclarantName            string     `json:"declarant_name,omitempty"`
	DeclarantDocument        string     `json:"declarant_document,omitempty"`
	DeclarantSignatureMethod string     `json:"declarant_signature_method,omitempty"`
	DeclarantOathAccepted    bool       `json:"declarant_oath_accepted,omitempty"`
	RequiresFiscalReviewer   bool       `json:"requires_fiscal_reviewer,omitempty"`
	ReviewerName             string     `json:"reviewer_name,omitempty"`
	ReviewerDocument         string     `json:"reviewer_document,omitempty"`
	ReviewerProfessionalCard string     `json:"reviewer_professional_card,omitempty"`
	IntegrityHash            string     `json:"integrity_hash,omitempty"`
	SignedAt                 *time.Time `json:"signed_at,omitempty"`
}

// DeclarationResponse declaración completa.
type DeclarationResponse struct {
	ID             string  `json:"id"`
	FormNumber     string  `json:"form_number"`
	FilingNumber   string  `json:"filing_number,omitempty"`
	TaxYear        int     `json:"tax_year"`
	Type           string  `json:"declaration_type"`
	Status         string  `json:"status"`
	MunicipalityID string  `json:"municipality_id"`
	UserID         string  `json:"user_id"`
	CorrectionOfID *string `json:"correction_of_id,omitempty"`

	Taxpayer   TaxpayerRequest     `json:"taxpayer"`
	IncomeBase IncomeBaseValues    `json:"income_base"`
	Activities []ActivityResponse  `json:"activities"`
	Energy     EnergyValues        `json:"energy"`
	Settlement SettlementValues    `json:"settlement"`
	Payment    PaymentValues       `json:"payment"`
	Calculated CalculationResponse `json:"calculated"`
	Signature  *SignatureResponse  `json:"signature,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncomeBaseValues valores crudos de base gravable en respuestas.
type IncomeBaseValues struct {
	TotalCountryIncome        decimal.Decimal `json:"total_country_income"`
	IncomeOutsideMunicipality decimal.Decimal `json:"income_outside_municipality"`
	ReturnsRebates            decimal.Decimal `json:"returns_rebates"`
	ExportsFixedAssets        decimal.Decimal `json:"exports_fixed_assets"`
	ExcludedNonTaxable        decimal.Decimal `json:"excluded_non_taxable"`
	ExemptIncome              decimal.Decimal `json:"exempt_income"`
}

// EnergyValues valores de energía en respuestas.
type EnergyValues struct {
	InstalledCapacityKw decimal.Decimal `json:"installed_capacity_kw"`
}

// SettlementValues valores crudos de liquidación en respuestas.
type SettlementValues struct {
	SignsBoardsTax           decimal.Decimal `json:"signs_boards_tax"`
	FinancialUnitsTax        decimal.Decimal `json:"financial_units_tax"`
	FirefighterSurcharge     decimal.Decimal `json:"firefighter_surcharge"`
	SecuritySurcharge        decimal.Decimal `json:"security_surcharge"`
	Exemptions               decimal.Decimal `json:"exemptions"`
	WithholdingsMunicipality decimal.Decimal `json:"withholdings_municipality"`
	SelfWithholdings         decimal.Decimal `json:"self_withholdings"`
	PrevYearAdvance          decimal.Decimal `json:"prev_year_advance"`
	NextYearAdvance          decimal.Decimal `json:"next_year_advance"`
	Penalties                decimal.Decimal `json:"penalties"`
	PrevBalanceFavor         decimal.Decimal `json:"prev_balance_favor"`
}

// PaymentValues valores crudos de pago en respuestas.
type PaymentValues struct {
	EarlyPaymentDiscount  decimal.Decimal `json:"early_payment_discount"`
	LateInterest          decimal.Decimal `json:"late_interest"`
	VoluntaryContribution decimal.Decimal `json:"voluntary_contribution"`
	VoluntaryDestination  string          `json:"voluntary_destination,omitempty"`
}

// SignResponse resultado de la firma.
type SignResponse struct {
	FilingNumber  string    `json:"filing_number"`
	IntegrityHash string    `json:"integrity_hash"`
	SignedAt      time.Time `json:"signed_at"`
}
