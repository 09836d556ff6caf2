// Package session mantiene la identidad autenticada del proceso.
//
// Una única instancia se construye en la raíz de la aplicación y se inyecta a
// los componentes que necesitan identidad; no hay estado global. Todas las
// mutaciones se serializan con el mutex interno, que es el equivalente en Go
// a la regla de "mutar solo en el contexto de UI" de la app móvil.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/domain/entity"
)

// Identity identidad resuelta de la sesión actual.
// Provisional indica stale-while-revalidate: solo se conoce el identificador
// guardado y el perfil completo aún está cargándose.
type Identity struct {
	ID          string // identificador canónico (teléfono o email del admin)
	Name        string
	Role        entity.Role
	Provisional bool
}

// IsAdminSentinel indica si la identidad es el administrador centinela.
func (i Identity) IsAdminSentinel() bool {
	return i.ID == entity.AdminIdentifier
}

// Store caché de identidad de proceso con persistencia local opcional del
// identificador (para reanudar sesión tras un reinicio).
type Store struct {
	mu      sync.Mutex
	current *Identity
	cache   ports.SessionCache
}

// NewStore construye el store. cache puede ser nil (sin persistencia local).
func NewStore(cache ports.SessionCache) *Store {
	return &Store{cache: cache}
}

// Set publica la identidad resuelta y persiste su identificador.
func (s *Store) Set(ctx context.Context, id Identity) error {
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	if s.cache != nil && !id.Provisional {
		if err := s.cache.SaveIdentifier(ctx, id.ID); err != nil {
			return fmt.Errorf("guardar identificador de sesión: %w", err)
		}
	}
	return nil
}

// Current devuelve la identidad actual, si hay sesión.
func (s *Store) Current() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Authenticated indica si hay una identidad con rol reconocido.
// Una identidad provisional no cuenta como autenticada plena.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.Provisional && s.current.Role.Valid()
}

// Logout limpia la identidad en memoria y el identificador persistido de
// forma síncrona. Es idempotente: seguro de llamar sin sesión activa.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			return fmt.Errorf("limpiar sesión persistida: %w", err)
		}
	}
	return nil
}
