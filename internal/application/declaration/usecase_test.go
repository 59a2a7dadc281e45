package declaration_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
	"github.com/jhoicas/ica-declaraciones-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del ciclo de vida de la declaración con repositorios en memoria:
// BORRADOR → FIRMADO y la corrección única. Las reglas que aquí se validan son
// las que un contribuyente no puede violar desde el navegador: editar lo
// firmado, firmar dos veces, corregir dos veces.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testMuniID   = "mun-001"
	testMuniCode = "99999"
	testUserID   = "user-001"
	otherUserID  = "user-002"
	testYear     = 2025
)

var testNow = time.Date(2025, time.April, 15, 10, 0, 0, 0, ica.ColombiaTZ)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ── fakes en memoria ──────────────────────────────────────────────────────────

type fakeDeclRepo struct {
	byID map[string]*entity.Declaration

	// onCreate, si está definido, corre antes del chequeo de unicidad:
	// permite interponer un competidor entre el conteo y el insert.
	onCreate func()
}

func (r *fakeDeclRepo) Create(d *entity.Declaration) error {
	if r.onCreate != nil {
		r.onCreate()
	}
	// Mismo contrato que el único de form_number en la tabla.
	for _, other := range r.byID {
		if other.FormNumber == d.FormNumber {
			return domain.ErrDuplicateFormNumber
		}
	}
	r.byID[d.ID] = d
	return nil
}
func (r *fakeDeclRepo) Update(d *entity.Declaration) error { r.byID[d.ID] = d; return nil }
func (r *fakeDeclRepo) GetByID(id string) (*entity.Declaration, error) {
	return r.byID[id], nil
}
func (r *fakeDeclRepo) GetByIDForUpdate(id string) (*entity.Declaration, error) {
	return r.byID[id], nil
}
func (r *fakeDeclRepo) List(f repository.DeclarationFilter) ([]*entity.Declaration, error) {
	var out []*entity.Declaration
	for _, d := range r.byID {
		if f.UserID != "" && d.UserID != f.UserID {
			continue
		}
		if f.MunicipalityID != "" && d.MunicipalityID != f.MunicipalityID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
func (r *fakeDeclRepo) FindCorrectionOf(originalID string) (*entity.Declaration, error) {
	for _, d := range r.byID {
		if d.CorrectionOfID != nil && *d.CorrectionOfID == originalID {
			return d, nil
		}
	}
	return nil, nil
}
func (r *fakeDeclRepo) CountByMunicipalityYear(municipalityID string, taxYear int) (int64, error) {
	var n int64
	for _, d := range r.byID {
		if d.MunicipalityID == municipalityID && d.TaxYear == taxYear {
			n++
		}
	}
	return n, nil
}

type fakeMuniRepo struct {
	munis   map[string]*entity.Municipality
	configs map[string]*entity.WhiteLabelConfig
}

func (r *fakeMuniRepo) GetByID(id string) (*entity.Municipality, error) { return r.munis[id], nil }
func (r *fakeMuniRepo) List() ([]*entity.Municipality, error) {
	var out []*entity.Municipality
	for _, m := range r.munis {
		out = append(out, m)
	}
	return out, nil
}
func (r *fakeMuniRepo) GetConfig(municipalityID string) (*entity.WhiteLabelConfig, error) {
	return r.configs[municipalityID], nil
}
func (r *fakeMuniRepo) UpdateConfig(cfg *entity.WhiteLabelConfig) error {
	r.configs[cfg.MunicipalityID] = cfg
	return nil
}
func (r *fakeMuniRepo) NextFilingCounter(municipalityID string) (int64, error) {
	cfg := r.configs[municipalityID]
	cfg.FilingCounter++
	return cfg.FilingCounter, nil
}

type fakeCatalogRepo struct {
	entries map[string]*entity.ActivityCatalogEntry // clave: muniID|ciiu
}

func (r *fakeCatalogRepo) Create(e *entity.ActivityCatalogEntry) error {
	r.entries[e.MunicipalityID+"|"+e.CIIUCode] = e
	return nil
}
func (r *fakeCatalogRepo) Update(e *entity.ActivityCatalogEntry) error { return r.Create(e) }
func (r *fakeCatalogRepo) GetByCode(municipalityID, ciiuCode string) (*entity.ActivityCatalogEntry, error) {
	return r.entries[municipalityID+"|"+ciiuCode], nil
}
func (r *fakeCatalogRepo) ListByMunicipality(municipalityID string) ([]*entity.ActivityCatalogEntry, error) {
	var out []*entity.ActivityCatalogEntry
	for _, e := range r.entries {
		if e.MunicipalityID == municipalityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeParamRepo struct {
	values map[string]decimal.Decimal // clave: muniID|key
}

func (r *fakeParamRepo) GetValue(municipalityID, key string) (decimal.Decimal, error) {
	return r.values[municipalityID+"|"+key], nil
}
func (r *fakeParamRepo) Upsert(p *entity.FormulaParam) error {
	r.values[p.MunicipalityID+"|"+p.Key] = p.Value
	return nil
}
func (r *fakeParamRepo) ListByMunicipality(string) ([]*entity.FormulaParam, error) { return nil, nil }

type fakeAuditRepo struct {
	logs []*entity.AuditLog
}

func (r *fakeAuditRepo) Create(l *entity.AuditLog) error { r.logs = append(r.logs, l); return nil }
func (r *fakeAuditRepo) ListByDeclaration(declarationID string) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	for _, l := range r.logs {
		if l.DeclarationID == declarationID {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeTxRunner ejecuta la función directamente con los mismos repos en memoria.
type fakeTxRunner struct {
	decls *fakeDeclRepo
	munis *fakeMuniRepo
	audit *fakeAuditRepo
}

func (t *fakeTxRunner) RunDeclaration(_ context.Context, fn func(
	declRepo repository.DeclarationRepository,
	muniRepo repository.MunicipalityRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return fn(t.decls, t.munis, t.audit)
}

// ── entorno de prueba ─────────────────────────────────────────────────────────

type testEnv struct {
	decls   *fakeDeclRepo
	munis   *fakeMuniRepo
	catalog *fakeCatalogRepo
	params  *fakeParamRepo
	audit   *fakeAuditRepo
	uc      *declaration.UseCase
}

func newTestEnv() *testEnv {
	env := &testEnv{
		decls: &fakeDeclRepo{byID: map[string]*entity.Declaration{}},
		munis: &fakeMuniRepo{
			munis: map[string]*entity.Municipality{
				testMuniID: {ID: testMuniID, Code: testMuniCode, Name: "Puerto Nariño", IsActive: true},
			},
			configs: map[string]*entity.WhiteLabelConfig{
				testMuniID: {MunicipalityID: testMuniID, FilingPrefix: "ICA" + testMuniCode, FilingDigits: 10},
			},
		},
		catalog: &fakeCatalogRepo{entries: map[string]*entity.ActivityCatalogEntry{}},
		params:  &fakeParamRepo{values: map[string]decimal.Decimal{}},
		audit:   &fakeAuditRepo{},
	}
	env.catalog.Create(&entity.ActivityCatalogEntry{
		MunicipalityID: testMuniID, CIIUCode: "4711",
		Description: "Comercio al por menor en establecimientos no especializados",
		RatePerMille: dec(10), IsActive: true,
	})
	env.catalog.Create(&entity.ActivityCatalogEntry{
		MunicipalityID: testMuniID, CIIUCode: "4721",
		Description: "Comercio al por menor de alimentos",
		RatePerMille: dec(8), IsActive: true,
	})

	tx := &fakeTxRunner{decls: env.decls, munis: env.munis, audit: env.audit}
	log := logger.New(logger.Config{Level: "error"})
	env.uc = declaration.NewUseCase(
		env.decls, env.munis, env.catalog, env.params, env.audit,
		tx, ica.FixedClock{T: testNow}, log,
	)
	return env
}

func declarante() dto.Actor {
	return dto.Actor{UserID: testUserID, MunicipalityID: testMuniID, Role: entity.RoleDeclarante}
}

func meta() dto.RequestMeta {
	return dto.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test"}
}

// fullUpdate diligencia la declaración completa: contribuyente, base gravable
// y dos actividades (30M al 10‰ y 15M al 8‰).
func fullUpdate() dto.UpdateDeclarationRequest {
	return dto.UpdateDeclarationRequest{
		Taxpayer: &dto.TaxpayerRequest{
			DocumentType:      "NIT",
			DocumentNumber:    "900123456",
			VerificationDigit: "8",
			LegalName:         "Tienda El Buen Precio SAS",
			Regime:            entity.RegimeComun,
		},
		IncomeBase: &dto.IncomeBaseRequest{
			TotalCountryIncome:        decPtr(50_000_000),
			IncomeOutsideMunicipality: decPtr(5_000_000),
		},
		Activities: []dto.ActivityRequest{
			{Classification: entity.ActivityPrincipal, CIIUCode: "4711", Income: dec(30_000_000)},
			{Classification: entity.ActivitySecundaria, CIIUCode: "4721", Income: dec(15_000_000)},
		},
	}
}

func validSign() dto.SignDeclarationRequest {
	return dto.SignDeclarationRequest{
		DeclarantName:     "María Pérez",
		DeclarantDocument: "52123456",
		SignatureImage:    "data:image/png;base64,iVBORw0KGgo=",
		OathAccepted:      true,
	}
}

// createSigned deja una declaración completa y firmada, y devuelve su id.
func createSigned(t *testing.T, env *testEnv) string {
	t.Helper()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	_, err = env.uc.Update(declarante(), d.ID, fullUpdate(), meta())
	require.NoError(t, err)
	_, err = env.uc.Sign(context.Background(), declarante(), d.ID, validSign(), meta())
	require.NoError(t, err)
	return d.ID
}

// ── creación ──────────────────────────────────────────────────────────────────

func TestCreate_BorradorConNumeroDeFormulario(t *testing.T) {
	env := newTestEnv()

	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	assert.Equal(t, entity.StatusBorrador, d.Status)
	assert.Equal(t, "ICA-99999-2025-000001", d.FormNumber,
		"el número de formulario lleva código DANE, año y consecutivo")
	assert.Empty(t, d.FilingNumber, "el radicado solo existe tras la firma")
	assert.Equal(t, entity.TypeInicial, d.Type)

	logs, _ := env.audit.ListByDeclaration(d.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditCreate, logs[0].Action)
}

func TestCreate_ConsecutivoPorMunicipioYAno(t *testing.T) {
	env := newTestEnv()

	d1, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	d2, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	assert.Equal(t, "ICA-99999-2025-000001", d1.FormNumber)
	assert.Equal(t, "ICA-99999-2025-000002", d2.FormNumber)
}

func TestCreate_ReintentaConsecutivoEnDisputa(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	// Un competidor se cuela entre el conteo y el insert y se queda con el
	// consecutivo 000002.
	env.decls.onCreate = func() {
		env.decls.onCreate = nil
		env.decls.byID["rival-001"] = &entity.Declaration{
			ID:             "rival-001",
			FormNumber:     "ICA-99999-2025-000002",
			TaxYear:        testYear,
			Type:           entity.TypeInicial,
			Status:         entity.StatusBorrador,
			MunicipalityID: testMuniID,
			UserID:         otherUserID,
		}
	}

	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err, "ante un choque de consecutivo debe recontar y reintentar")
	assert.Equal(t, "ICA-99999-2025-000003", d.FormNumber)
}

func TestCreate_MunicipioInactivo(t *testing.T) {
	env := newTestEnv()
	env.munis.munis[testMuniID].IsActive = false

	_, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_AnoGravableInvalido(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: 1890, MunicipalityID: testMuniID}, meta())
	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "tax_year", verrs[0].Field)
}

// ── edición y recálculo ───────────────────────────────────────────────────────

func TestUpdate_RecalculaYEnriqueceDelCatalogo(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	out, err := env.uc.Update(declarante(), d.ID, fullUpdate(), meta())
	require.NoError(t, err)

	// derivados de la base gravable
	assert.True(t, dec(45_000_000).Equal(out.Calculated.IncomeInMunicipality))
	assert.True(t, dec(45_000_000).Equal(out.Calculated.TaxableIncome))

	// actividades enriquecidas del catálogo: descripción y tarifa nunca del cliente
	require.Len(t, out.Activities, 2)
	assert.Equal(t, "Comercio al por menor en establecimientos no especializados", out.Activities[0].Description)
	assert.True(t, dec(10).Equal(out.Activities[0].BaseRate))
	assert.True(t, dec(300_000).Equal(out.Activities[0].Tax))
	assert.True(t, dec(120_000).Equal(out.Activities[1].Tax))
	assert.True(t, dec(420_000).Equal(out.Calculated.TotalActivityTax))
}

func TestUpdate_MontoNegativoRechazado(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	_, err = env.uc.Update(declarante(), d.ID, dto.UpdateDeclarationRequest{
		IncomeBase: &dto.IncomeBaseRequest{TotalCountryIncome: decPtr(-1)},
	}, meta())

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok, "los negativos se rechazan en la puerta, no se recortan")
	assert.Equal(t, "income_base.total_country_income", verrs[0].Field)
}

func TestUpdate_ExigeUnaActividadPrincipal(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	_, err = env.uc.Update(declarante(), d.ID, dto.UpdateDeclarationRequest{
		Activities: []dto.ActivityRequest{
			{Classification: entity.ActivitySecundaria, CIIUCode: "4711", Income: dec(1_000_000)},
		},
	}, meta())

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "activities", verrs[0].Field)
}

func TestUpdate_CIIUFueraDelCatalogo(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	_, err = env.uc.Update(declarante(), d.ID, dto.UpdateDeclarationRequest{
		Activities: []dto.ActivityRequest{
			{Classification: entity.ActivityPrincipal, CIIUCode: "0000", Income: dec(1_000_000)},
		},
	}, meta())

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "activities[0].ciiu_code", verrs[0].Field)
}

func TestUpdate_DigitoDeVerificacionNITIncorrecto(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	in := fullUpdate()
	in.Taxpayer.VerificationDigit = "7" // el correcto de 900123456 es 8

	_, err = env.uc.Update(declarante(), d.ID, in, meta())
	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "taxpayer.verification_digit", verrs[0].Field)
}

func TestUpdate_OtroDeclaranteNoPuedeEditar(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	intruso := dto.Actor{UserID: otherUserID, MunicipalityID: testMuniID, Role: entity.RoleDeclarante}
	_, err = env.uc.Update(intruso, d.ID, fullUpdate(), meta())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCalculate_IncluyeLey56(t *testing.T) {
	env := newTestEnv()
	env.params.values[testMuniID+"|"+entity.ParamLaw56RatePerKw] = dec(5_000)

	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	_, err = env.uc.Update(declarante(), d.ID, dto.UpdateDeclarationRequest{
		Energy: &dto.EnergyRequest{InstalledCapacityKw: decPtr(100)},
	}, meta())
	require.NoError(t, err)

	calc, err := env.uc.Calculate(declarante(), d.ID)
	require.NoError(t, err)
	assert.True(t, dec(500_000).Equal(calc.Law56Tax), "100 kW × 5.000 por kW")
	assert.True(t, dec(500_000).Equal(calc.TotalICATax))
}

// ── firma ─────────────────────────────────────────────────────────────────────

func TestSign_CongelaYAsignaRadicado(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	_, err = env.uc.Update(declarante(), d.ID, fullUpdate(), meta())
	require.NoError(t, err)

	out, err := env.uc.Sign(context.Background(), declarante(), d.ID, validSign(), meta())
	require.NoError(t, err)

	assert.Equal(t, "ICA999990000000001", out.FilingNumber,
		"radicado: prefijo del municipio + consecutivo con ceros")
	assert.NotEmpty(t, out.IntegrityHash)
	assert.Equal(t, testNow, out.SignedAt)

	stored := env.decls.byID[d.ID]
	assert.Equal(t, entity.StatusFirmado, stored.Status)
	assert.True(t, stored.IsFrozen())
	assert.Equal(t, "María Pérez", stored.Signature.DeclarantName)
	assert.Equal(t, "10.0.0.1", stored.Signature.IPAddress)

	// la huella cubre el registro congelado
	assert.NoError(t, env.uc.VerifyIntegrity(declarante(), d.ID))
}

func TestSign_DosVecesFalla(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	_, err := env.uc.Sign(context.Background(), declarante(), id, validSign(), meta())
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)
}

func TestSign_DeclaracionIncompleta(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	_, err = env.uc.Sign(context.Background(), declarante(), d.ID, validSign(), meta())
	assert.ErrorIs(t, err, domain.ErrIncompleteDeclaration)
}

func TestSign_SinJuramento(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	_, err = env.uc.Update(declarante(), d.ID, fullUpdate(), meta())
	require.NoError(t, err)

	in := validSign()
	in.OathAccepted = false
	_, err = env.uc.Sign(context.Background(), declarante(), d.ID, in, meta())

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "oath_accepted", verrs[0].Field)
}

func TestSign_RevisorFiscalIncompleto(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)
	_, err = env.uc.Update(declarante(), d.ID, fullUpdate(), meta())
	require.NoError(t, err)

	in := validSign()
	in.RequiresFiscalReviewer = true // sin datos del revisor
	_, err = env.uc.Sign(context.Background(), declarante(), d.ID, in, meta())

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.NotEmpty(t, verrs, "con revisor fiscal se exigen sus datos y su firma")
}

func TestUpdate_DeclaracionFirmadaCongelada(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	_, err := env.uc.Update(declarante(), id, fullUpdate(), meta())
	assert.ErrorIs(t, err, domain.ErrDeclarationFrozen,
		"una declaración firmada nunca regresa a edición")
}

func TestVerifyIntegrity_DetectaMutacionDelRegistroFirmado(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	// mutación directa en persistencia, por fuera de la aplicación
	env.decls.byID[id].IncomeBase.TotalCountryIncome = dec(1)

	err := env.uc.VerifyIntegrity(declarante(), id)
	assert.ErrorIs(t, err, domain.ErrIntegrityMismatch)
}

func TestVerifyIntegrity_BorradorNoFirmado(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	assert.ErrorIs(t, env.uc.VerifyIntegrity(declarante(), d.ID), domain.ErrNotSigned)
}

// ── corrección ────────────────────────────────────────────────────────────────

func TestCorrect_ClonaSeccionesEnBorradorNuevo(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	corr, err := env.uc.Correct(context.Background(), declarante(), id, meta())
	require.NoError(t, err)

	assert.Equal(t, entity.TypeCorreccion, corr.Type)
	assert.Equal(t, entity.StatusBorrador, corr.Status)
	require.NotNil(t, corr.CorrectionOfID)
	assert.Equal(t, id, *corr.CorrectionOfID)
	assert.NotEqual(t, id, corr.ID)

	// secciones clonadas del original
	assert.Equal(t, "Tienda El Buen Precio SAS", corr.Taxpayer.LegalName)
	assert.True(t, dec(50_000_000).Equal(corr.IncomeBase.TotalCountryIncome))
	require.Len(t, corr.Activities, 2)
	assert.Equal(t, "4711", corr.Activities[0].CIIUCode)

	// sin radicado, sin firma, sin PDF
	assert.Empty(t, corr.FilingNumber)
	assert.Nil(t, corr.Signature)

	// el original sigue firmado e intacto
	orig := env.decls.byID[id]
	assert.Equal(t, entity.StatusFirmado, orig.Status)
	assert.NotEmpty(t, orig.FilingNumber)
}

func TestCorrect_SoloUnaCorreccionPorOriginal(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	_, err := env.uc.Correct(context.Background(), declarante(), id, meta())
	require.NoError(t, err)

	_, err = env.uc.Correct(context.Background(), declarante(), id, meta())
	assert.ErrorIs(t, err, domain.ErrCorrectionExists)
}

func TestCorrect_BorradorNoSePuedeCorregir(t *testing.T) {
	env := newTestEnv()
	d, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	_, err = env.uc.Correct(context.Background(), declarante(), d.ID, meta())
	assert.ErrorIs(t, err, domain.ErrNotSigned)
}

func TestCorrect_EditarYFirmarLaCorrecion(t *testing.T) {
	env := newTestEnv()
	id := createSigned(t, env)

	corr, err := env.uc.Correct(context.Background(), declarante(), id, meta())
	require.NoError(t, err)

	// la corrección es un borrador editable normal
	in := dto.UpdateDeclarationRequest{
		IncomeBase: &dto.IncomeBaseRequest{TotalCountryIncome: decPtr(60_000_000)},
	}
	out, err := env.uc.Update(declarante(), corr.ID, in, meta())
	require.NoError(t, err)
	assert.True(t, dec(55_000_000).Equal(out.Calculated.IncomeInMunicipality))

	// y se firma con su propio radicado
	signed, err := env.uc.Sign(context.Background(), declarante(), corr.ID, validSign(), meta())
	require.NoError(t, err)
	assert.Equal(t, "ICA999990000000002", signed.FilingNumber)
}

// ── listados por rol ──────────────────────────────────────────────────────────

func TestList_DeclaranteSoloVeLoSuyo(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Create(declarante(), dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	otro := dto.Actor{UserID: otherUserID, MunicipalityID: testMuniID, Role: entity.RoleDeclarante}
	_, err = env.uc.Create(otro, dto.CreateDeclarationRequest{TaxYear: testYear, MunicipalityID: testMuniID}, meta())
	require.NoError(t, err)

	mine, err := env.uc.List(declarante(), repository.DeclarationFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, testUserID, mine[0].UserID)

	all, err := env.uc.List(dto.Actor{UserID: "root", Role: entity.RoleAdminSistema}, repository.DeclarationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
