package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de la declaración.
// Una vez firmada nunca regresa a borrador.
const (
	StatusBorrador   = "BORRADOR"   // Editable; cada edición dispara recálculo
	StatusFirmado    = "FIRMADO"    // Inmutable; radicado y huella asignados
	StatusPresentado = "PRESENTADO" // PDF oficial generado (alcanzable solo desde FIRMADO)
)

// Tipos de declaración.
const (
	TypeInicial    = "inicial"
	TypeCorreccion = "correccion"
)

// Clasificación de la actividad económica dentro de la declaración.
const (
	ActivityPrincipal  = "principal"
	ActivitySecundaria = "secundaria"
)

// Regímenes del contribuyente.
const (
	RegimeComun        = "comun"
	RegimeSimplificado = "simplificado"
)

// Taxpayer datos del contribuyente (Sección A del formulario).
// Se congela junto con el resto de la declaración al firmar.
type Taxpayer struct {
	DocumentType      string // NIT, CC, CE
	DocumentNumber    string
	VerificationDigit string
	LegalName         string
	Address           string
	Municipality      string
	Department        string
	Phone             string
	Email             string
	Establishments    int
	Regime            string // comun | simplificado
	IsConsortium      bool
	HasPatrimony      bool
}

// IncomeBase base gravable (Sección B). Solo campos crudos: los derivados
// (ingresos en el municipio, ingresos gravables) son siempre salida del motor.
type IncomeBase struct {
	TotalCountryIncome        decimal.Decimal // Total ingresos en el país
	IncomeOutsideMunicipality decimal.Decimal // Ingresos obtenidos fuera del municipio
	ReturnsRebates            decimal.Decimal // Devoluciones, rebajas y descuentos
	ExportsFixedAssets        decimal.Decimal // Exportaciones y venta de activos fijos
	ExcludedNonTaxable        decimal.Decimal // Ingresos excluidos y no sujetos
	ExemptIncome              decimal.Decimal // Ingresos exentos
}

// Activity actividad gravada (Sección C). Tax es calculado, nunca editable.
type Activity struct {
	ID             string
	Classification string // principal | secundaria
	CIIUCode       string
	Description    string
	Income         decimal.Decimal
	BaseRate       decimal.Decimal  // Tarifa por mil del catálogo
	SpecialRate    *decimal.Decimal // Tarifa especial opcional; si existe reemplaza a la base
	Tax            decimal.Decimal  // income × tarifa efectiva / 1000
}

// EffectiveRate devuelve la tarifa especial si existe, si no la base.
func (a Activity) EffectiveRate() decimal.Decimal {
	if a.SpecialRate != nil {
		return *a.SpecialRate
	}
	return a.BaseRate
}

// Energy generación de energía Ley 56 de 1981.
type Energy struct {
	InstalledCapacityKw decimal.Decimal
}

// Settlement liquidación privada (Sección D). Solo campos crudos.
type Settlement struct {
	SignsBoardsTax           decimal.Decimal // Impuesto de avisos y tableros
	FinancialUnitsTax        decimal.Decimal // Unidades adicionales del sector financiero
	FirefighterSurcharge     decimal.Decimal // Sobretasa bomberil
	SecuritySurcharge        decimal.Decimal // Sobretasa de seguridad
	Exemptions               decimal.Decimal
	WithholdingsMunicipality decimal.Decimal // Retenciones practicadas en el municipio
	SelfWithholdings         decimal.Decimal // Autorretenciones
	PrevYearAdvance          decimal.Decimal // Anticipo liquidado el año anterior
	NextYearAdvance          decimal.Decimal // Anticipo para el año siguiente
	Penalties                decimal.Decimal // Sanciones
	PrevBalanceFavor         decimal.Decimal // Saldo a favor del período anterior
}

// Payment sección de pago (Sección E). Solo campos crudos: el valor a pagar
// se puebla desde el saldo a cargo calculado, el contribuyente no lo elige.
type Payment struct {
	EarlyPaymentDiscount  decimal.Decimal // Descuento por pronto pago
	LateInterest          decimal.Decimal // Intereses de mora
	VoluntaryContribution decimal.Decimal // Aporte voluntario
	VoluntaryDestination  string
}

// Calculated valores derivados. Siempre salida del motor de cálculo; un cliente
// nunca los escribe directamente y jamás deben divergir de un recálculo fresco.
type Calculated struct {
	IncomeInMunicipality decimal.Decimal
	TaxableIncome        decimal.Decimal
	TotalActivityIncome  decimal.Decimal
	TotalActivityTax     decimal.Decimal
	Law56Tax             decimal.Decimal
	TotalICATax          decimal.Decimal
	TotalTaxPayable      decimal.Decimal
	BalanceDue           decimal.Decimal // Saldo a cargo (excluyente con BalanceFavor)
	BalanceFavor         decimal.Decimal // Saldo a favor
	AmountToPay          decimal.Decimal
	TotalToPay           decimal.Decimal // AmountToPay + aporte voluntario
}

// Signature firma y responsabilidad (Sección G) más evidencia de integridad.
// Las imágenes de firma son blobs opacos (base64 de canvas); solo se valida
// que no estén vacías.
type Signature struct {
	DeclarantName            string
	DeclarantDocument        string
	DeclarantSignatureMethod string
	DeclarantSignatureImage  string
	DeclarantOathAccepted    bool
	RequiresFiscalReviewer   bool
	ReviewerName             string
	ReviewerDocument         string
	ReviewerProfessionalCard string
	ReviewerSignatureMethod  string
	ReviewerSignatureImage   string
	IntegrityHash            string // SHA-256 sobre la cadena canónica al momento de firmar
	SignedAt                 *time.Time
	IPAddress                string
	UserAgent                string
}

// Declaration agregado central: declaración ICA de un contribuyente ante un
// municipio por un año gravable.
type Declaration struct {
	ID             string
	FormNumber     string  // Asignado al crear (secuencial por municipio/año)
	FilingNumber   string  // Radicado: asignado únicamente al firmar, único global
	TaxYear        int
	Type           string // inicial | correccion
	Status         string // BORRADOR | FIRMADO | PRESENTADO
	MunicipalityID string
	UserID         string
	CorrectionOfID *string // Solo cuando Type == correccion; el original admite máximo una

	Taxpayer   Taxpayer
	IncomeBase IncomeBase
	Activities []Activity
	Energy     Energy
	Settlement Settlement
	Payment    Payment
	Calculated Calculated
	Signature  Signature

	PDFPath        string
	PDFGeneratedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsFrozen indica si la declaración ya no admite cambios en campos crudos,
// actividades ni datos del contribuyente.
func (d *Declaration) IsFrozen() bool {
	return d.Status == StatusFirmado || d.Status == StatusPresentado
}

// IsSigned indica si la declaración pasó por la firma (radicado existente).
func (d *Declaration) IsSigned() bool {
	return d.IsFrozen()
}
