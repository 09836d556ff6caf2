package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// La clave primaria es el identificador canónico (teléfono o email del admin).
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByID obtiene un usuario por identificador canónico.
// El rol se devuelve crudo; la clasificación al conjunto cerrado la hace el
// caso de uso (un rol no reconocido no es un error de lectura).
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, name, role, active, COALESCE(fcm_token, ''), created_at, updated_at
		FROM users WHERE id = $1`
	var u entity.User
	var role string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &role, &u.Active, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	u.Role = entity.Role(role)
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, role, active, fcm_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, string(user.Role), user.Active, user.FCMToken,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = $2, role = $3, active = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, string(user.Role), user.Active, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateFCMToken persiste el token push del dispositivo.
func (r *UserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET fcm_token = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, token, time.Now())
	if err != nil {
		return fmt.Errorf("update fcm token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista usuarios con paginación (tooling de administración).
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT id, name, role, active, COALESCE(fcm_token, ''), created_at, updated_at
		FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &role, &u.Active, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = entity.Role(role)
		list = append(list, &u)
	}
	return list, rows.Err()
}
