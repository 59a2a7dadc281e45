package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/auth"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	apphttp "github.com/jhoicas/ica-declaraciones-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos para el flujo de registro
// ──────────────────────────────────────────────────────────────────────────────

type regUserRepo struct {
	byEmail map[string]*entity.User
}

func (r *regUserRepo) Create(u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}
func (r *regUserRepo) GetByID(id string) (*entity.User, error) { return nil, nil }
func (r *regUserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.byEmail[email], nil
}
func (r *regUserRepo) UpdateLastLogin(id string) error { return nil }

type regMuniRepo struct {
	muni *entity.Municipality
}

func (r *regMuniRepo) GetByID(id string) (*entity.Municipality, error) {
	if r.muni != nil && r.muni.ID == id {
		return r.muni, nil
	}
	return nil, nil
}
func (r *regMuniRepo) List() ([]*entity.Municipality, error) { return nil, nil }
func (r *regMuniRepo) GetConfig(municipalityID string) (*entity.WhiteLabelConfig, error) {
	return nil, nil
}
func (r *regMuniRepo) UpdateConfig(cfg *entity.WhiteLabelConfig) error { return nil }
func (r *regMuniRepo) NextFilingCounter(municipalityID string) (int64, error) {
	return 0, nil
}

func buildRegisterApp() (*fiber.App, *regUserRepo) {
	users := &regUserRepo{byEmail: map[string]*entity.User{}}
	munis := &regMuniRepo{muni: &entity.Municipality{
		ID: testMuniID, Code: "99999", Name: "Sopó", IsActive: true,
	}}
	uc := auth.NewAuthUseCase(users, munis, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})
	h := apphttp.NewAuthHandler(uc)

	app := fiber.New()
	app.Post("/api/auth/register", h.Register)
	return app, users
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro público
// ──────────────────────────────────────────────────────────────────────────────

// Un cuerpo que reclame un rol administrativo no debe producir un usuario con
// ese rol: el registro público siempre crea declarantes.
func TestRegister_IgnoraRolAdministrativoDelBody(t *testing.T) {
	app, users := buildRegisterApp()

	body := `{
		"email": "intruso@example.com",
		"password": "clave-segura-123",
		"full_name": "Intruso",
		"municipality_id": "` + testMuniID + `",
		"role": "admin_sistema"
	}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out dto.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.RoleDeclarante, out.Role,
		"el rol del body debe ignorarse por completo")

	stored := users.byEmail["intruso@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, entity.RoleDeclarante, stored.Role,
		"el usuario persistido jamás debe quedar como administrador")
}

func TestRegister_DeclaranteNormal(t *testing.T) {
	app, _ := buildRegisterApp()

	body := `{
		"email": "maria@example.com",
		"password": "clave-segura-123",
		"full_name": "María Pérez",
		"municipality_id": "` + testMuniID + `"
	}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out dto.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.RoleDeclarante, out.Role)
	assert.Equal(t, testMuniID, out.MunicipalityID)
}
