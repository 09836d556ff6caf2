package repository

import (
	"context"

	"github.com/avrapps/gastos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// La clave es el identificador canónico (teléfono local de 10 dígitos o email).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	// UpdateFCMToken persiste el token push del dispositivo en el documento del usuario.
	UpdateFCMToken(ctx context.Context, id, token string) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}
