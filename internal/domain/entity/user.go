package entity

import "time"

// Roles válidos para User.
const (
	RoleDeclarante    = "declarante"
	RoleAdminAlcaldia = "admin_alcaldia"
	RoleAdminSistema  = "admin_sistema"
)

// User usuario del sistema. Los declarantes y administradores de alcaldía
// pertenecen a un municipio; el administrador del sistema no.
type User struct {
	ID             string
	MunicipalityID string
	Email          string
	PasswordHash   string // bcrypt hash, nunca plano en dominio después de persistir
	FullName       string
	DocumentType   string
	DocumentNumber string
	Phone          string
	Role           string // declarante, admin_alcaldia, admin_sistema
	Status         string // active, inactive, suspended
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
