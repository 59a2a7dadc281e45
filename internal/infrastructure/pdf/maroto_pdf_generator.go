// Package pdf implementa la representación oficial en PDF del Formulario
// Único de declaración del impuesto de industria y comercio, con la identidad
// marca blanca de cada alcaldía.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Alcaldía + título del formulario │ Radicado + Año  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  A. CONTRIBUYENTE: identificación y ubicación               │
//	│  B. BASE GRAVABLE: renglones 8-15                           │
//	│  C. ACTIVIDADES: tabla CIIU | ingresos | tarifa | impuesto   │
//	│  D. LIQUIDACIÓN: renglones 19-32                            │
//	│  E. PAGO: renglones 33-37                                   │
//	│  G. FIRMAS: declarante (y revisor fiscal) + fecha Colombia  │
//	│  FOOTER: huella SHA-256 + QR de verificación + nota legal   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

var _ declaration.PDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorGray  = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoPDFGenerator implementa declaration.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDeclarationPDF genera el PDF oficial y devuelve sus bytes. La
// paleta y los textos salen de la configuración marca blanca del municipio;
// cfg nil usa la identidad por defecto de la plataforma.
func (g *MarotoPDFGenerator) GenerateDeclarationPDF(
	_ context.Context,
	d *entity.Declaration,
	muni *entity.Municipality,
	wl *entity.WhiteLabelConfig,
) ([]byte, error) {
	theme := newTheme(wl)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(theme.formTitle, true).
		WithAuthor("Alcaldía de "+muni.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d, muni, theme))
	m.AddRows(line.NewRow(1, props.Line{Color: theme.primary, Thickness: 0.5}))

	m.AddRows(sectionTitle("A. INFORMACIÓN DEL CONTRIBUYENTE", theme))
	m.AddRows(taxpayerRows(&d.Taxpayer)...)

	m.AddRows(sectionTitle("B. BASE GRAVABLE", theme))
	m.AddRows(incomeBaseRows(d, theme)...)

	m.AddRows(sectionTitle("C. ACTIVIDADES GRAVADAS", theme))
	m.AddRows(activityHeaderRow(theme))
	m.AddRows(activityRows(d.Activities)...)

	m.AddRows(sectionTitle("D. LIQUIDACIÓN PRIVADA", theme))
	m.AddRows(settlementRows(d, theme)...)

	m.AddRows(sectionTitle("E. SECCIÓN DE PAGO", theme))
	m.AddRows(paymentRows(d, theme)...)

	m.AddRows(sectionTitle("G. FIRMAS", theme))
	m.AddRows(signatureRows(d)...)

	m.AddRows(line.NewRow(2))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(integrityFooterRows(d, theme)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Tema marca blanca ─────────────────────────────────────────────────────────

type theme struct {
	primary   *props.Color
	formTitle string
	footer    string
	legal     string
}

func newTheme(wl *entity.WhiteLabelConfig) theme {
	t := theme{
		primary:   &props.Color{Red: 0, Green: 51, Blue: 102},
		formTitle: "Declaración Privada del Impuesto de Industria y Comercio",
	}
	if wl == nil {
		return t
	}
	if c, ok := parseHexColor(wl.PrimaryColor); ok {
		t.primary = c
	}
	if wl.FormTitle != "" {
		t.formTitle = wl.FormTitle
	}
	t.footer = wl.FooterText
	t.legal = wl.LegalNotes
	return t
}

// parseHexColor convierte "#RRGGBB" a props.Color.
func parseHexColor(s string) (*props.Color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return nil, false
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, false
	}
	return &props.Color{Red: r, Green: g, Blue: b}, true
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(d *entity.Declaration, muni *entity.Municipality, t theme) core.Row {
	right := []core.Component{
		text.New("RADICADO", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: t.primary, Top: 1,
		}),
		text.New(nonEmpty(d.FilingNumber, d.FormNumber), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
		}),
		text.New(fmt.Sprintf("Año gravable: %d", d.TaxYear), props.Text{
			Size: 8, Align: align.Right, Top: 13, Color: colorGray,
		}),
	}
	if d.Type == entity.TypeCorreccion {
		right = append(right, text.New("DECLARACIÓN DE CORRECCIÓN", props.Text{
			Style: fontstyle.Bold, Size: 7, Align: align.Right, Top: 18, Color: t.primary,
		}))
	}
	return row.New(24).Add(
		col.New(7).Add(
			text.New("Alcaldía de "+muni.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: t.primary, Top: 1,
			}),
			text.New(t.formTitle, props.Text{Size: 9, Top: 9}),
			text.New("Código DANE: "+muni.Code, props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
		col.New(5).Add(right...),
	)
}

func sectionTitle(title string, t theme) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: t.primary, Top: 2,
		}),
	))
}

func taxpayerRows(tp *entity.Taxpayer) []core.Row {
	doc := tp.DocumentNumber
	if tp.VerificationDigit != "" {
		doc += "-" + tp.VerificationDigit
	}
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(tp.LegalName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s %s   |   Régimen: %s   |   Establecimientos: %d",
				tp.DocumentType, doc, nonEmpty(tp.Regime, "—"), tp.Establishments,
			), props.Text{Size: 8, Color: colorGray, Top: 1}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Dirección: %s, %s (%s)   |   Tel: %s   |   Email: %s",
				nonEmpty(tp.Address, "—"), nonEmpty(tp.Municipality, "—"), nonEmpty(tp.Department, "—"),
				nonEmpty(tp.Phone, "—"), nonEmpty(tp.Email, "—"),
			), props.Text{Size: 8, Color: colorGray, Top: 1}),
		)),
	}
}

// amountRow renglón numerado con valor en pesos alineado a la derecha.
func amountRow(num int, label string, v decimal.Decimal, bold bool, t theme) core.Row {
	st := props.Text{Size: 8, Top: 1}
	sv := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
	if bold {
		st.Style, sv.Style = fontstyle.Bold, fontstyle.Bold
		st.Color, sv.Color = t.primary, t.primary
	}
	return row.New(5).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", num), props.Text{
			Size: 8, Align: align.Center, Top: 1, Color: colorGray,
		})),
		col.New(8).Add(text.New(label, st)),
		col.New(3).Add(text.New("$"+formatMoney(v.StringFixed(0)), sv)),
	)
}

func incomeBaseRows(d *entity.Declaration, t theme) []core.Row {
	b, c := d.IncomeBase, d.Calculated
	return []core.Row{
		amountRow(8, "Total ingresos ordinarios y extraordinarios en el país", b.TotalCountryIncome, false, t),
		amountRow(9, "Menos: ingresos obtenidos fuera de este municipio", b.IncomeOutsideMunicipality, false, t),
		amountRow(10, "Total ingresos obtenidos en este municipio", c.IncomeInMunicipality, true, t),
		amountRow(11, "Menos: devoluciones, rebajas y descuentos", b.ReturnsRebates, false, t),
		amountRow(12, "Menos: exportaciones y venta de activos fijos", b.ExportsFixedAssets, false, t),
		amountRow(13, "Menos: ingresos excluidos y no sujetos", b.ExcludedNonTaxable, false, t),
		amountRow(14, "Menos: ingresos exentos", b.ExemptIncome, false, t),
		amountRow(15, "Total ingresos gravables", c.TaxableIncome, true, t),
	}
}

func activityHeaderRow(t theme) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: t.primary}).Add(
		h("CIIU", 2, align.Center),
		h("Descripción de la actividad", 4, align.Left),
		h("Ingresos", 3, align.Right),
		h("Tarifa ‰", 1, align.Center),
		h("Impuesto", 2, align.Right),
	)
}

func activityRows(activities []entity.Activity) []core.Row {
	out := make([]core.Row, 0, len(activities))
	for _, a := range activities {
		desc := a.Description
		if a.Classification == entity.ActivityPrincipal {
			desc += " (principal)"
		}
		out = append(out, row.New(6).Add(
			col.New(2).Add(text.New(a.CIIUCode, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(desc, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New("$"+formatMoney(a.Income.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(a.EffectiveRate().StringFixed(1),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(a.Tax.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func settlementRows(d *entity.Declaration, t theme) []core.Row {
	s, c := d.Settlement, d.Calculated
	return []core.Row{
		amountRow(16, "Total impuesto por actividades gravadas", c.TotalActivityTax, false, t),
		amountRow(17, "Impuesto de generación de energía (Ley 56 de 1981)", c.Law56Tax, false, t),
		amountRow(18, "Total impuesto de industria y comercio", c.TotalICATax, true, t),
		amountRow(19, "Impuesto de avisos y tableros", s.SignsBoardsTax, false, t),
		amountRow(20, "Unidades adicionales del sector financiero", s.FinancialUnitsTax, false, t),
		amountRow(21, "Sobretasa bomberil", s.FirefighterSurcharge, false, t),
		amountRow(22, "Sobretasa de seguridad", s.SecuritySurcharge, false, t),
		amountRow(23, "Total impuesto a cargo", c.TotalTaxPayable, true, t),
		amountRow(24, "Menos: exenciones sobre el impuesto", s.Exemptions, false, t),
		amountRow(25, "Menos: retenciones practicadas en este municipio", s.WithholdingsMunicipality, false, t),
		amountRow(26, "Menos: autorretenciones", s.SelfWithholdings, false, t),
		amountRow(27, "Menos: anticipo liquidado el año anterior", s.PrevYearAdvance, false, t),
		amountRow(28, "Más: anticipo para el año siguiente", s.NextYearAdvance, false, t),
		amountRow(29, "Más: sanciones", s.Penalties, false, t),
		amountRow(30, "Menos: saldo a favor del período anterior", s.PrevBalanceFavor, false, t),
		amountRow(31, "TOTAL SALDO A CARGO", c.BalanceDue, true, t),
		amountRow(32, "TOTAL SALDO A FAVOR", c.BalanceFavor, true, t),
	}
}

func paymentRows(d *entity.Declaration, t theme) []core.Row {
	p, c := d.Payment, d.Calculated
	rows := []core.Row{
		amountRow(33, "Menos: descuento por pronto pago", p.EarlyPaymentDiscount, false, t),
		amountRow(34, "Más: intereses de mora", p.LateInterest, false, t),
		amountRow(35, "Valor a pagar", c.AmountToPay, true, t),
		amountRow(36, "Aporte voluntario", p.VoluntaryContribution, false, t),
		amountRow(37, "TOTAL A PAGAR", c.TotalToPay, true, t),
	}
	if !p.VoluntaryContribution.IsZero() && p.VoluntaryDestination != "" {
		rows = append(rows, row.New(4).Add(
			col.New(1),
			col.New(11).Add(text.New("Destinación del aporte voluntario: "+p.VoluntaryDestination,
				props.Text{Size: 7, Color: colorGray, Top: 1})),
		))
	}
	return rows
}

func signatureRows(d *entity.Declaration) []core.Row {
	sg := &d.Signature
	signBlock := func(title, name, doc, img string) core.Col {
		c := col.New(6)
		if data, ok := decodeSignatureImage(img); ok {
			c.Add(image.NewFromBytes(data, extension.Png, props.Rect{
				Percent: 50, Center: true, Top: 2,
			}))
		}
		c.Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 20}),
			text.New(doc, props.Text{Size: 8, Align: align.Center, Top: 25, Color: colorGray}),
			text.New(title, props.Text{Size: 7, Align: align.Center, Top: 29, Color: colorGray}),
		)
		return c
	}

	cols := []core.Col{
		signBlock("Firma del declarante", sg.DeclarantName, "C.C./NIT "+sg.DeclarantDocument, sg.DeclarantSignatureImage),
	}
	if sg.RequiresFiscalReviewer {
		cols = append(cols, signBlock(
			"Revisor fiscal — T.P. "+sg.ReviewerProfessionalCard,
			sg.ReviewerName, "C.C. "+sg.ReviewerDocument, sg.ReviewerSignatureImage,
		))
	} else {
		cols = append(cols, col.New(6))
	}

	rows := []core.Row{row.New(34).Add(cols...)}
	if sg.SignedAt != nil {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Firmada el "+sg.SignedAt.Format("02/01/2006 15:04:05")+" (Hora Colombia)",
				props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorGray}),
		)))
	}
	return rows
}

func integrityFooterRows(d *entity.Declaration, t theme) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("HUELLA DE INTEGRIDAD (SHA-256):", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: t.primary, Top: 1,
			}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New(d.Signature.IntegrityHash, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)),
	}

	qr := fmt.Sprintf("radicado=%s;anio=%d;hash=%s", d.FilingNumber, d.TaxYear, d.Signature.IntegrityHash)
	rows = append(rows, row.New(28).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Escanee el código QR para verificar la integridad de esta declaración.",
				props.Text{Size: 8, Top: 3, Left: 2, Color: colorGray}),
			text.New("Documento generado electrónicamente; válido sin firma autógrafa adicional.",
				props.Text{Size: 7, Top: 9, Left: 2, Color: colorGray}),
		),
	))

	legal := nonEmpty(t.legal,
		"El declarante manifiesta bajo la gravedad del juramento que la información "+
			"consignada en este formulario es veraz y completa.")
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(legal, props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))
	if t.footer != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(t.footer, props.Text{Size: 6.5, Align: align.Center, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// decodeSignatureImage decodifica el blob base64 del canvas de firma; acepta
// con o sin prefijo data-URL.
func decodeSignatureImage(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
