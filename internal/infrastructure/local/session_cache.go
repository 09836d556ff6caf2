// Package local implementa la caché local de sesión sobre SQLite: el
// identificador canónico guardado sobrevive reinicios del proceso y permite
// reanudar la sesión sin volver a pedir OTP.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/avrapps/gastos-api/internal/application/ports"
)

var _ ports.SessionCache = (*SQLiteCache)(nil)

// SQLiteCache caché de sesión de una sola fila.
type SQLiteCache struct {
	db *sql.DB
}

// Open abre (o crea) el archivo de caché y su tabla.
func Open(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir caché de sesión: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			identifier TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("crear tabla de sesión: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// SaveIdentifier guarda el identificador canónico (upsert de una fila).
func (c *SQLiteCache) SaveIdentifier(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO session (key, identifier) VALUES ('current', ?)
		ON CONFLICT(key) DO UPDATE SET identifier = excluded.identifier`, id)
	if err != nil {
		return fmt.Errorf("guardar identificador: %w", err)
	}
	return nil
}

// LoadIdentifier devuelve el identificador guardado, o "" si no hay sesión.
func (c *SQLiteCache) LoadIdentifier(ctx context.Context) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `SELECT identifier FROM session WHERE key = 'current'`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("leer identificador: %w", err)
	}
	return id, nil
}

// Clear borra el identificador guardado. Idempotente.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session WHERE key = 'current'`); err != nil {
		return fmt.Errorf("limpiar sesión: %w", err)
	}
	return nil
}

// Close cierra el archivo de caché.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
