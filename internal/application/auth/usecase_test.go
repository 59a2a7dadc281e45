package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/auth"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) UpdateLastLogin(id string) error { return nil }

type fakeMuniRepo struct {
	byID map[string]*entity.Municipality
}

func (r *fakeMuniRepo) GetByID(id string) (*entity.Municipality, error) { return r.byID[id], nil }
func (r *fakeMuniRepo) List() ([]*entity.Municipality, error)          { return nil, nil }
func (r *fakeMuniRepo) GetConfig(municipalityID string) (*entity.WhiteLabelConfig, error) {
	return nil, nil
}
func (r *fakeMuniRepo) UpdateConfig(cfg *entity.WhiteLabelConfig) error { return nil }
func (r *fakeMuniRepo) NextFilingCounter(municipalityID string) (int64, error) {
	return 0, nil
}

func newTestUseCase() (*auth.AuthUseCase, *fakeUserRepo) {
	users := newFakeUserRepo()
	munis := &fakeMuniRepo{byID: map[string]*entity.Municipality{
		"mun-001": {ID: "mun-001", Code: "99999", Name: "Sopó", IsActive: true},
		"mun-002": {ID: "mun-002", Code: "88888", Name: "Tenjo", IsActive: false},
	}}
	uc := auth.NewAuthUseCase(users, munis, auth.JWTConfig{
		Secret:     "secreto-de-prueba",
		ExpMinutes: 60,
		Issuer:     "declara-ica",
	})
	return uc, users
}

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:          "maria@example.com",
		Password:       "clave-segura-123",
		FullName:       "María Pérez",
		MunicipalityID: "mun-001",
	}
}

// ──────────────────────────────────────────────────────────────
// Registro
// ──────────────────────────────────────────────────────────────

func TestRegisterUser_SiempreAsignaRolDeclarante(t *testing.T) {
	uc, users := newTestUseCase()

	resp, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	assert.Equal(t, entity.RoleDeclarante, resp.Role,
		"el registro público solo crea declarantes")
	stored := users.byEmail["maria@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, entity.RoleDeclarante, stored.Role,
		"el usuario persistido nunca debe quedar con rol administrativo")
	assert.Equal(t, "active", stored.Status)
}

func TestRegisterUser_ExigeMunicipioActivo(t *testing.T) {
	uc, _ := newTestUseCase()

	in := validRegister()
	in.MunicipalityID = "mun-002" // inactivo
	_, err := uc.RegisterUser(in)
	assert.ErrorIs(t, err, domain.ErrNotFound, "municipio inactivo debe rechazar el registro")

	in.MunicipalityID = "mun-inexistente"
	_, err = uc.RegisterUser(in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	_, err = uc.RegisterUser(validRegister())
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_PasswordNuncaEnPlano(t *testing.T) {
	uc, users := newTestUseCase()

	_, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	stored := users.byEmail["maria@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave-segura-123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

// ──────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	uc, _ := newTestUseCase()
	_, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "maria@example.com", Password: "clave-segura-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.RoleDeclarante, resp.User.Role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc, _ := newTestUseCase()
	_, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "maria@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioSuspendidoNoIngresa(t *testing.T) {
	uc, users := newTestUseCase()
	_, err := uc.RegisterUser(validRegister())
	require.NoError(t, err)

	users.byEmail["maria@example.com"].Status = "suspended"
	users.byEmail["maria@example.com"].UpdatedAt = time.Now()

	_, err = uc.Login(dto.LoginRequest{Email: "maria@example.com", Password: "clave-segura-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
