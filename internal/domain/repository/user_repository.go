package repository

import "github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"

// UserRepository persistencia de usuarios.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	UpdateLastLogin(id string) error
}
