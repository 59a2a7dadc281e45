package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, municipality_id, email, password_hash, full_name,
	document_type, document_number, phone, role, status, last_login, created_at, updated_at`

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.pool.Exec(context.Background(), query,
		user.ID, nullIfEmpty(user.MunicipalityID), user.Email, user.PasswordHash, user.FullName,
		user.DocumentType, user.DocumentNumber, user.Phone, user.Role, user.Status,
		user.LastLogin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID, o nil si no existe.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.findOne("id = $1", id)
}

// FindByEmail obtiene un usuario por email, o nil si no existe.
func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.findOne("email = $1", email)
}

// UpdateLastLogin marca el último ingreso del usuario.
func (r *UserRepo) UpdateLastLogin(id string) error {
	_, err := r.pool.Exec(context.Background(),
		"UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(cond string, arg any) (*entity.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + cond
	var u entity.User
	var muniID *string
	err := r.pool.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &muniID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.DocumentType, &u.DocumentNumber, &u.Phone, &u.Role, &u.Status,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.MunicipalityID = derefStr(muniID)
	return &u, nil
}
