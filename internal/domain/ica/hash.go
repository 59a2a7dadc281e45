// Huella de integridad de la declaración firmada.
// Algoritmo: SHA-256 sobre una cadena canónica pipe-delimited construida en
// orden estricto con todos los campos crudos, las actividades y los valores
// calculados al instante de la firma. Cualquier discrepancia posterior entre
// la huella almacenada y la recalculada sobre el registro congelado indica
// corrupción o mutación no autorizada; el sistema solo detecta, nunca repara.
package ica

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

// IntegrityHasher calcula y verifica la huella de integridad.
type IntegrityHasher struct{}

// NewIntegrityHasher construye el servicio.
func NewIntegrityHasher() *IntegrityHasher {
	return &IntegrityHasher{}
}

// Compute genera la huella (hash hexadecimal) de la declaración.
// Montos sin separador de miles, con punto decimal y 2 decimales (ej: 1500.00),
// igual que en la cadena CUFE de facturación electrónica.
func (h *IntegrityHasher) Compute(d *entity.Declaration) string {
	var b strings.Builder

	write := func(parts ...string) {
		for _, p := range parts {
			b.WriteString(p)
			b.WriteByte('|')
		}
	}
	amt := func(v decimal.Decimal) string { return v.Round(2).StringFixed(2) }

	write(d.FormNumber, strconv.Itoa(d.TaxYear), d.Type, d.MunicipalityID)
	write(d.Taxpayer.DocumentType, d.Taxpayer.DocumentNumber, d.Taxpayer.VerificationDigit, d.Taxpayer.LegalName)

	ib := d.IncomeBase
	write(amt(ib.TotalCountryIncome), amt(ib.IncomeOutsideMunicipality),
		amt(ib.ReturnsRebates), amt(ib.ExportsFixedAssets),
		amt(ib.ExcludedNonTaxable), amt(ib.ExemptIncome))

	for _, a := range d.Activities {
		rate := a.EffectiveRate()
		write(a.Classification, a.CIIUCode, amt(a.Income), rate.StringFixed(2), amt(a.Tax))
	}

	write(amt(d.Energy.InstalledCapacityKw))

	s := d.Settlement
	write(amt(s.SignsBoardsTax), amt(s.FinancialUnitsTax), amt(s.FirefighterSurcharge),
		amt(s.SecuritySurcharge), amt(s.Exemptions), amt(s.WithholdingsMunicipality),
		amt(s.SelfWithholdings), amt(s.PrevYearAdvance), amt(s.NextYearAdvance),
		amt(s.Penalties), amt(s.PrevBalanceFavor))

	p := d.Payment
	write(amt(p.EarlyPaymentDiscount), amt(p.LateInterest), amt(p.VoluntaryContribution))

	c := d.Calculated
	write(amt(c.IncomeInMunicipality), amt(c.TaxableIncome), amt(c.TotalActivityIncome),
		amt(c.TotalActivityTax), amt(c.Law56Tax), amt(c.TotalICATax), amt(c.TotalTaxPayable),
		amt(c.BalanceDue), amt(c.BalanceFavor), amt(c.AmountToPay), amt(c.TotalToPay))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify recalcula la huella sobre la declaración congelada y la compara con
// la almacenada. Devuelve false ante cualquier discrepancia.
func (h *IntegrityHasher) Verify(d *entity.Declaration) bool {
	stored := d.Signature.IntegrityHash
	if stored == "" {
		return false
	}
	return h.Compute(d) == stored
}
