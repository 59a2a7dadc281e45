package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.DeclarationRepository = (*DeclarationRepo)(nil)

// DeclarationRepo implementación de DeclarationRepository sobre PostgreSQL
// (usable con pool o tx). El agregado vive en dos tablas: declarations (una
// fila ancha con todas las secciones del formulario) y declaration_activities.
type DeclarationRepo struct {
	q Querier
}

// NewDeclarationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeclarationRepository(q Querier) *DeclarationRepo {
	return &DeclarationRepo{q: q}
}

// declColumns columnas de declarations en el orden canónico que comparten
// INSERT, UPDATE y SELECT. Cualquier cambio de esquema se hace aquí y en
// declArgs/scanDeclaration, nunca en un solo sitio.
var declColumns = []string{
	"id", "form_number", "filing_number", "tax_year", "declaration_type", "status",
	"municipality_id", "user_id", "correction_of_id",

	"tp_document_type", "tp_document_number", "tp_verification_digit", "tp_legal_name",
	"tp_address", "tp_municipality", "tp_department", "tp_phone", "tp_email",
	"tp_establishments", "tp_regime", "tp_is_consortium", "tp_has_patrimony",

	"ib_total_country_income", "ib_income_outside_municipality", "ib_returns_rebates",
	"ib_exports_fixed_assets", "ib_excluded_non_taxable", "ib_exempt_income",

	"en_installed_capacity_kw",

	"st_signs_boards_tax", "st_financial_units_tax", "st_firefighter_surcharge",
	"st_security_surcharge", "st_exemptions", "st_withholdings_municipality",
	"st_self_withholdings", "st_prev_year_advance", "st_next_year_advance",
	"st_penalties", "st_prev_balance_favor",

	"pm_early_payment_discount", "pm_late_interest", "pm_voluntary_contribution",
	"pm_voluntary_destination",

	"ca_income_in_municipality", "ca_taxable_income", "ca_total_activity_income",
	"ca_total_activity_tax", "ca_law56_tax", "ca_total_ica_tax", "ca_total_tax_payable",
	"ca_balance_due", "ca_balance_favor", "ca_amount_to_pay", "ca_total_to_pay",

	"sg_declarant_name", "sg_declarant_document", "sg_declarant_signature_method",
	"sg_declarant_signature_image", "sg_declarant_oath_accepted", "sg_requires_fiscal_reviewer",
	"sg_reviewer_name", "sg_reviewer_document", "sg_reviewer_professional_card",
	"sg_reviewer_signature_method", "sg_reviewer_signature_image", "sg_integrity_hash",
	"sg_signed_at",

	"pdf_path", "pdf_generated_at", "created_at", "updated_at",
}

// declArgs valores en el mismo orden que declColumns.
func declArgs(d *entity.Declaration) []any {
	return []any{
		d.ID, d.FormNumber, nullIfEmpty(d.FilingNumber), d.TaxYear, d.Type, d.Status,
		d.MunicipalityID, d.UserID, d.CorrectionOfID,

		d.Taxpayer.DocumentType, d.Taxpayer.DocumentNumber, d.Taxpayer.VerificationDigit, d.Taxpayer.LegalName,
		d.Taxpayer.Address, d.Taxpayer.Municipality, d.Taxpayer.Department, d.Taxpayer.Phone, d.Taxpayer.Email,
		d.Taxpayer.Establishments, d.Taxpayer.Regime, d.Taxpayer.IsConsortium, d.Taxpayer.HasPatrimony,

		d.IncomeBase.TotalCountryIncome, d.IncomeBase.IncomeOutsideMunicipality, d.IncomeBase.ReturnsRebates,
		d.IncomeBase.ExportsFixedAssets, d.IncomeBase.ExcludedNonTaxable, d.IncomeBase.ExemptIncome,

		d.Energy.InstalledCapacityKw,

		d.Settlement.SignsBoardsTax, d.Settlement.FinancialUnitsTax, d.Settlement.FirefighterSurcharge,
		d.Settlement.SecuritySurcharge, d.Settlement.Exemptions, d.Settlement.WithholdingsMunicipality,
		d.Settlement.SelfWithholdings, d.Settlement.PrevYearAdvance, d.Settlement.NextYearAdvance,
		d.Settlement.Penalties, d.Settlement.PrevBalanceFavor,

		d.Payment.EarlyPaymentDiscount, d.Payment.LateInterest, d.Payment.VoluntaryContribution,
		d.Payment.VoluntaryDestination,

		d.Calculated.IncomeInMunicipality, d.Calculated.TaxableIncome, d.Calculated.TotalActivityIncome,
		d.Calculated.TotalActivityTax, d.Calculated.Law56Tax, d.Calculated.TotalICATax, d.Calculated.TotalTaxPayable,
		d.Calculated.BalanceDue, d.Calculated.BalanceFavor, d.Calculated.AmountToPay, d.Calculated.TotalToPay,

		d.Signature.DeclarantName, d.Signature.DeclarantDocument, d.Signature.DeclarantSignatureMethod,
		d.Signature.DeclarantSignatureImage, d.Signature.DeclarantOathAccepted, d.Signature.RequiresFiscalReviewer,
		d.Signature.ReviewerName, d.Signature.ReviewerDocument, d.Signature.ReviewerProfessionalCard,
		d.Signature.ReviewerSignatureMethod, d.Signature.ReviewerSignatureImage, d.Signature.IntegrityHash,
		d.Signature.SignedAt,

		nullIfEmpty(d.PDFPath), d.PDFGeneratedAt, d.CreatedAt, d.UpdatedAt,
	}
}

// scanDeclaration lee una fila en el mismo orden que declColumns.
func scanDeclaration(row pgx.Row) (*entity.Declaration, error) {
	var d entity.Declaration
	var filingNumber, pdfPath *string
	err := row.Scan(
		&d.ID, &d.FormNumber, &filingNumber, &d.TaxYear, &d.Type, &d.Status,
		&d.MunicipalityID, &d.UserID, &d.CorrectionOfID,

		&d.Taxpayer.DocumentType, &d.Taxpayer.DocumentNumber, &d.Taxpayer.VerificationDigit, &d.Taxpayer.LegalName,
		&d.Taxpayer.Address, &d.Taxpayer.Municipality, &d.Taxpayer.Department, &d.Taxpayer.Phone, &d.Taxpayer.Email,
		&d.Taxpayer.Establishments, &d.Taxpayer.Regime, &d.Taxpayer.IsConsortium, &d.Taxpayer.HasPatrimony,

		&d.IncomeBase.TotalCountryIncome, &d.IncomeBase.IncomeOutsideMunicipality, &d.IncomeBase.ReturnsRebates,
		&d.IncomeBase.ExportsFixedAssets, &d.IncomeBase.ExcludedNonTaxable, &d.IncomeBase.ExemptIncome,

		&d.Energy.InstalledCapacityKw,

		&d.Settlement.SignsBoardsTax, &d.Settlement.FinancialUnitsTax, &d.Settlement.FirefighterSurcharge,
		&d.Settlement.SecuritySurcharge, &d.Settlement.Exemptions, &d.Settlement.WithholdingsMunicipality,
		&d.Settlement.SelfWithholdings, &d.Settlement.PrevYearAdvance, &d.Settlement.NextYearAdvance,
		&d.Settlement.Penalties, &d.Settlement.PrevBalanceFavor,

		&d.Payment.EarlyPaymentDiscount, &d.Payment.LateInterest, &d.Payment.VoluntaryContribution,
		&d.Payment.VoluntaryDestination,

		&d.Calculated.IncomeInMunicipality, &d.Calculated.TaxableIncome, &d.Calculated.TotalActivityIncome,
		&d.Calculated.TotalActivityTax, &d.Calculated.Law56Tax, &d.Calculated.TotalICATax, &d.Calculated.TotalTaxPayable,
		&d.Calculated.BalanceDue, &d.Calculated.BalanceFavor, &d.Calculated.AmountToPay, &d.Calculated.TotalToPay,

		&d.Signature.DeclarantName, &d.Signature.DeclarantDocument, &d.Signature.DeclarantSignatureMethod,
		&d.Signature.DeclarantSignatureImage, &d.Signature.DeclarantOathAccepted, &d.Signature.RequiresFiscalReviewer,
		&d.Signature.ReviewerName, &d.Signature.ReviewerDocument, &d.Signature.ReviewerProfessionalCard,
		&d.Signature.ReviewerSignatureMethod, &d.Signature.ReviewerSignatureImage, &d.Signature.IntegrityHash,
		&d.Signature.SignedAt,

		&pdfPath, &d.PDFGeneratedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.FilingNumber = derefStr(filingNumber)
	d.PDFPath = derefStr(pdfPath)
	return &d, nil
}

// placeholders devuelve "$1, $2, ..., $n".
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Create inserta el agregado completo (declaración + actividades).
func (r *DeclarationRepo) Create(d *entity.Declaration) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := fmt.Sprintf(
		"INSERT INTO declarations (%s) VALUES (%s)",
		strings.Join(declColumns, ", "), placeholders(len(declColumns)),
	)
	if _, err := r.q.Exec(context.Background(), query, declArgs(d)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w (%v)", domain.ErrDuplicateFormNumber, err)
		}
		return fmt.Errorf("insert declaration: %w", err)
	}
	return r.replaceActivities(d)
}

// Update sobreescribe el agregado completo y reemplaza las actividades.
func (r *DeclarationRepo) Update(d *entity.Declaration) error {
	var sets []string
	for i, col := range declColumns[1:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	query := fmt.Sprintf("UPDATE declarations SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.q.Exec(context.Background(), query, declArgs(d)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("radicado duplicado: %w", err)
		}
		return fmt.Errorf("update declaration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update declaration: no existe %s", d.ID)
	}
	return r.replaceActivities(d)
}

// GetByID obtiene el agregado completo o nil si no existe.
func (r *DeclarationRepo) GetByID(id string) (*entity.Declaration, error) {
	return r.getOne(id, false)
}

// GetByIDForUpdate igual que GetByID pero con candado de fila (SELECT ... FOR
// UPDATE). Solo tiene sentido dentro de una transacción.
func (r *DeclarationRepo) GetByIDForUpdate(id string) (*entity.Declaration, error) {
	return r.getOne(id, true)
}

func (r *DeclarationRepo) getOne(id string, forUpdate bool) (*entity.Declaration, error) {
	query := fmt.Sprintf("SELECT %s FROM declarations WHERE id = $1", strings.Join(declColumns, ", "))
	if forUpdate {
		query += " FOR UPDATE"
	}
	d, err := scanDeclaration(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get declaration: %w", err)
	}
	if err := r.loadActivities(d); err != nil {
		return nil, err
	}
	return d, nil
}

// List lista declaraciones según filtro, más recientes primero.
func (r *DeclarationRepo) List(f repository.DeclarationFilter) ([]*entity.Declaration, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.MunicipalityID != "" {
		add("municipality_id = $%d", f.MunicipalityID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.TaxYear != 0 {
		add("tax_year = $%d", f.TaxYear)
	}
	if f.FilingNumber != "" {
		add("filing_number = $%d", f.FilingNumber)
	}
	if f.FormNumber != "" {
		add("form_number = $%d", f.FormNumber)
	}
	if f.DocumentNumber != "" {
		add("tp_document_number = $%d", f.DocumentNumber)
	}

	query := fmt.Sprintf("SELECT %s FROM declarations", strings.Join(declColumns, ", "))
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	for _, d := range out {
		if err := r.loadActivities(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindCorrectionOf devuelve la corrección existente del original, o nil.
func (r *DeclarationRepo) FindCorrectionOf(originalID string) (*entity.Declaration, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM declarations WHERE correction_of_id = $1",
		strings.Join(declColumns, ", "),
	)
	d, err := scanDeclaration(r.q.QueryRow(context.Background(), query, originalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find correction: %w", err)
	}
	if err := r.loadActivities(d); err != nil {
		return nil, err
	}
	return d, nil
}

// CountByMunicipalityYear cuenta declaraciones del municipio en el año
// gravable (soporta el consecutivo del número de formulario).
func (r *DeclarationRepo) CountByMunicipalityYear(municipalityID string, taxYear int) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM declarations WHERE municipality_id = $1 AND tax_year = $2",
		municipalityID, taxYear,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count declarations: %w", err)
	}
	return n, nil
}

// replaceActivities borra y reinserta las actividades de la declaración. El
// formulario edita la sección completa, no líneas individuales.
func (r *DeclarationRepo) replaceActivities(d *entity.Declaration) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, "DELETE FROM declaration_activities WHERE declaration_id = $1", d.ID); err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}
	const query = `
		INSERT INTO declaration_activities
			(id, declaration_id, position, classification, ciiu_code, description, income, base_rate, special_rate, tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, a := range d.Activities {
		if a.ID == "" {
			a.ID = uuid.New().String()
			d.Activities[i].ID = a.ID
		}
		_, err := r.q.Exec(ctx, query,
			a.ID, d.ID, i, a.Classification, a.CIIUCode, a.Description,
			a.Income, a.BaseRate, a.SpecialRate, a.Tax,
		)
		if err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
	}
	return nil
}

// loadActivities carga las actividades en orden de captura.
func (r *DeclarationRepo) loadActivities(d *entity.Declaration) error {
	const query = `
		SELECT id, classification, ciiu_code, description, income, base_rate, special_rate, tax
		FROM declaration_activities
		WHERE declaration_id = $1
		ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, d.ID)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	defer rows.Close()

	d.Activities = nil
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.Classification, &a.CIIUCode, &a.Description,
			&a.Income, &a.BaseRate, &a.SpecialRate, &a.Tax); err != nil {
			return fmt.Errorf("scan activity: %w", err)
		}
		d.Activities = append(d.Activities, a)
	}
	return rows.Err()
}
