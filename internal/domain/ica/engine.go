// Package ica implementa el motor de cálculo del formulario único de
// declaración ICA: fórmulas puras y deterministas que transforman los campos
// crudos digitados por el contribuyente en todos los valores derivados del
// formulario (base gravable, impuesto por actividad, liquidación y pago).
//
// El motor no hace I/O ni conoce persistencia. Los campos se recalculan en
// orden de dependencia (base gravable → actividades/energía → liquidación →
// pago); el grafo es un DAG estricto, una sola pasada basta. Las entradas
// ausentes valen cero (borradores parciales nunca bloquean el cálculo).
package ica

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

var mille = decimal.NewFromInt(1000)

// Engine motor de cálculo ICA. Sin estado: seguro para uso concurrente.
type Engine struct{}

// NewEngine construye el motor.
func NewEngine() *Engine {
	return &Engine{}
}

// Input entradas crudas de una declaración para un cálculo completo.
// Law56RatePerKw viene de los parámetros del municipio (0 si no está configurada).
type Input struct {
	IncomeBase     entity.IncomeBase
	Activities     []entity.Activity
	Energy         entity.Energy
	Law56RatePerKw decimal.Decimal
	Settlement     entity.Settlement
	Payment        entity.Payment
}

// Result salida completa del motor: los valores derivados del formulario más
// el impuesto calculado por actividad (alineado con el orden de entrada).
type Result struct {
	Calculated    entity.Calculated
	ActivityTaxes []decimal.Decimal
}

// ComputeMunicipalIncome ingresos obtenidos en el municipio:
// max(0, total país − fuera del municipio). El motor nunca produce ingresos
// negativos como intermedio; el rechazo de entradas negativas es del caller.
func (e *Engine) ComputeMunicipalIncome(totalCountry, outsideMunicipality decimal.Decimal) decimal.Decimal {
	return clampZero(totalCountry.Sub(outsideMunicipality))
}

// ComputeTaxableIncome total de ingresos gravables:
// max(0, ingresos en el municipio − Σ deducciones). El orden de las
// deducciones es el del formulario: devoluciones, exportaciones/activos
// fijos, excluidos/no sujetos, exentos.
func (e *Engine) ComputeTaxableIncome(municipalIncome decimal.Decimal, b entity.IncomeBase) decimal.Decimal {
	deductions := b.ReturnsRebates.
		Add(b.ExportsFixedAssets).
		Add(b.ExcludedNonTaxable).
		Add(b.ExemptIncome)
	return clampZero(municipalIncome.Sub(deductions))
}

// ComputeActivityTax impuesto de una actividad: ingresos × tarifa / 1000.
// La tarifa se expresa en por mil; la especial, si existe, reemplaza a la base.
func (e *Engine) ComputeActivityTax(income, baseRate decimal.Decimal, specialRate *decimal.Decimal) decimal.Decimal {
	rate := baseRate
	if specialRate != nil {
		rate = *specialRate
	}
	return income.Mul(rate).Div(mille)
}

// ComputeLaw56Tax impuesto Ley 56: capacidad instalada (kW) × tarifa por kW.
// La tarifa es configuración externa del municipio; sin configurar vale 0.
func (e *Engine) ComputeLaw56Tax(installedCapacityKw, ratePerKw decimal.Decimal) decimal.Decimal {
	return installedCapacityKw.Mul(ratePerKw)
}

// ComputeTotalICATax impuesto ICA total: actividades + Ley 56. Es la base
// sobre la que se suman avisos, unidades financieras y sobretasas.
func (e *Engine) ComputeTotalICATax(totalActivityTax, law56Tax decimal.Decimal) decimal.Decimal {
	return totalActivityTax.Add(law56Tax)
}

// ComputeTotalTaxPayable total impuesto a cargo: ICA + avisos y tableros +
// unidades financieras + sobretasa bomberil + sobretasa de seguridad.
func (e *Engine) ComputeTotalTaxPayable(icaTax decimal.Decimal, s entity.Settlement) decimal.Decimal {
	return icaTax.
		Add(s.SignsBoardsTax).
		Add(s.FinancialUnitsTax).
		Add(s.FirefighterSurcharge).
		Add(s.SecuritySurcharge)
}

// ComputeFinalBalance saldo final de la liquidación:
//
//	saldo = total a cargo − exenciones − retenciones − autorretenciones
//	        − anticipo anterior + anticipo siguiente + sanciones − saldo a favor anterior
//
// El saldo es con signo y NO se recorta antes de la partición: si es positivo
// el resultado es saldo a cargo; si no, saldo a favor (|saldo|). Nunca ambos
// positivos — esta fórmula fija la convención de signos para todo consumidor
// aguas abajo (PDF, sección de pago).
func (e *Engine) ComputeFinalBalance(totalTaxPayable decimal.Decimal, s entity.Settlement) (due, favor decimal.Decimal) {
	balance := totalTaxPayable.
		Sub(s.Exemptions).
		Sub(s.WithholdingsMunicipality).
		Sub(s.SelfWithholdings).
		Sub(s.PrevYearAdvance).
		Add(s.NextYearAdvance).
		Add(s.Penalties).
		Sub(s.PrevBalanceFavor)
	if balance.IsPositive() {
		return balance, decimal.Zero
	}
	return decimal.Zero, balance.Abs()
}

// ComputeAmountToPay valor a pagar: max(0, saldo a cargo − descuento por
// pronto pago + intereses de mora). El saldo a cargo se puebla siempre desde
// el saldo final calculado; el contribuyente no elige la base.
func (e *Engine) ComputeAmountToPay(due, earlyDiscount, lateInterest decimal.Decimal) decimal.Decimal {
	return clampZero(due.Sub(earlyDiscount).Add(lateInterest))
}

// ComputeTotalWithVoluntary total final mostrado al contribuyente:
// valor a pagar + aporte voluntario.
func (e *Engine) ComputeTotalWithVoluntary(amountToPay, voluntary decimal.Decimal) decimal.Decimal {
	return amountToPay.Add(voluntary)
}

// Compute ejecuta el cálculo completo en orden de dependencia y devuelve
// todos los valores derivados. Idempotente: el mismo input produce siempre el
// mismo resultado.
func (e *Engine) Compute(in Input) Result {
	var out Result

	// Base gravable
	out.Calculated.IncomeInMunicipality = e.ComputeMunicipalIncome(
		in.IncomeBase.TotalCountryIncome, in.IncomeBase.IncomeOutsideMunicipality)
	out.Calculated.TaxableIncome = e.ComputeTaxableIncome(
		out.Calculated.IncomeInMunicipality, in.IncomeBase)

	// Actividades: impuesto por actividad más totales de ingresos e impuesto.
	// Los dos totales son renglones reportados del formulario, no solo intermedios.
	out.ActivityTaxes = make([]decimal.Decimal, len(in.Activities))
	for i, act := range in.Activities {
		tax := e.ComputeActivityTax(act.Income, act.BaseRate, act.SpecialRate)
		out.ActivityTaxes[i] = tax
		out.Calculated.TotalActivityIncome = out.Calculated.TotalActivityIncome.Add(act.Income)
		out.Calculated.TotalActivityTax = out.Calculated.TotalActivityTax.Add(tax)
	}

	// Energía Ley 56
	out.Calculated.Law56Tax = e.ComputeLaw56Tax(in.Energy.InstalledCapacityKw, in.Law56RatePerKw)

	// Liquidación
	out.Calculated.TotalICATax = e.ComputeTotalICATax(out.Calculated.TotalActivityTax, out.Calculated.Law56Tax)
	out.Calculated.TotalTaxPayable = e.ComputeTotalTaxPayable(out.Calculated.TotalICATax, in.Settlement)
	out.Calculated.BalanceDue, out.Calculated.BalanceFavor = e.ComputeFinalBalance(out.Calculated.TotalTaxPayable, in.Settlement)

	// Pago
	out.Calculated.AmountToPay = e.ComputeAmountToPay(
		out.Calculated.BalanceDue, in.Payment.EarlyPaymentDiscount, in.Payment.LateInterest)
	out.Calculated.TotalToPay = e.ComputeTotalWithVoluntary(
		out.Calculated.AmountToPay, in.Payment.VoluntaryContribution)

	return out
}

// clampZero recorta a cero los intermedios que no pueden ser negativos
// (ingresos, base gravable). No se aplica al saldo final, que es con signo.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
