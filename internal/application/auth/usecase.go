// Package auth resuelve credenciales verificadas a identidades con rol.
//
// Dos caminos de entrada:
//   - email/password del administrador, delegado al proveedor de identidad;
//   - teléfono + OTP, donde la verificación del proveedor NO basta: el perfil
//     en el backend es la fuente de verdad del control de acceso.
package auth

import (
	"context"
	"fmt"

	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/application/session"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/logger"
	"github.com/avrapps/gastos-api/pkg/phone"
)

// Resolver caso de uso de autenticación (Identity Resolver).
type Resolver struct {
	provider ports.IdentityProvider
	users    repository.UserRepository
	store    *session.Store
	log      *logger.Logger
}

// NewResolver construye el resolver.
func NewResolver(provider ports.IdentityProvider, users repository.UserRepository, store *session.Store, log *logger.Logger) *Resolver {
	return &Resolver{provider: provider, users: users, store: store, log: log}
}

// LoginEmail autentica al administrador por email/password contra el proveedor.
// En éxito la identidad se clasifica como Admin con perfil sintético: no hay
// lookup en el backend para el camino de email.
func (r *Resolver) LoginEmail(ctx context.Context, email, password string) (session.Identity, error) {
	pid, err := r.provider.SignInWithEmail(ctx, email, password)
	if err != nil {
		return session.Identity{}, fmt.Errorf("proveedor de identidad: %w", err)
	}
	name := pid.DisplayName
	if name == "" {
		name = "Administrador"
	}
	ident := session.Identity{ID: pid.Email, Name: name, Role: entity.RoleAdmin}
	if err := r.store.Set(ctx, ident); err != nil {
		return session.Identity{}, err
	}
	return ident, nil
}

// RequestOTP inicia la verificación de un teléfono. Valida el formato local
// antes de gastar un SMS.
func (r *Resolver) RequestOTP(ctx context.Context, rawPhone string) (ports.VerificationHandle, error) {
	local := phone.Normalize(rawPhone)
	if !phone.IsLocal(local) {
		return "", domain.ErrInvalidInput
	}
	handle, err := r.provider.VerifyPhoneNumber(ctx, phone.ToE164(local))
	if err != nil {
		return "", fmt.Errorf("proveedor de identidad: %w", err)
	}
	return handle, nil
}

// VerifyOTP confirma el código y resuelve el perfil del backend.
// Teléfono verificado sin perfil registrado => ErrUserNotRegistered: la
// verificación por sí sola no otorga acceso.
func (r *Resolver) VerifyOTP(ctx context.Context, handle ports.VerificationHandle, code string) (session.Identity, error) {
	pid, err := r.provider.SignIn(ctx, handle, code)
	if err != nil {
		if err == domain.ErrInvalidCode {
			return session.Identity{}, err
		}
		return session.Identity{}, fmt.Errorf("proveedor de identidad: %w", err)
	}

	canonical := phone.Normalize(pid.Phone)
	ident, err := r.resolveProfile(ctx, canonical)
	if err != nil {
		return session.Identity{}, err
	}
	if err := r.store.Set(ctx, ident); err != nil {
		return session.Identity{}, err
	}
	return ident, nil
}

// resolveProfile carga el User por identificador canónico y lo clasifica.
// Un perfil presente pero con rol fuera del conjunto cerrado se trata como
// no autenticado (se registra y se descarta), no como fallo fatal.
func (r *Resolver) resolveProfile(ctx context.Context, canonical string) (session.Identity, error) {
	user, err := r.users.GetByID(ctx, canonical)
	if err != nil {
		return session.Identity{}, fmt.Errorf("cargar perfil: %w", err)
	}
	if user == nil {
		return session.Identity{}, domain.ErrUserNotRegistered
	}
	if !user.Active {
		return session.Identity{}, domain.ErrForbidden
	}
	if !user.Role.Valid() {
		r.log.Warn().Str("user", canonical).Str("role", string(user.Role)).
			Msg("perfil con rol no reconocido, sesión descartada")
		return session.Identity{}, domain.ErrProfileDecode
	}
	return session.Identity{ID: user.ID, Name: user.Name, Role: user.Role}, nil
}

// RestoreSession reanuda la sesión guardada al arrancar el proceso
// (stale-while-revalidate): publica de inmediato una identidad provisional con
// solo el identificador; el perfil completo se revalida después con Revalidate.
// Devuelve true si había un identificador guardado.
func (r *Resolver) RestoreSession(ctx context.Context, cache ports.SessionCache) (bool, error) {
	if cache == nil {
		return false, nil
	}
	id, err := cache.LoadIdentifier(ctx)
	if err != nil {
		return false, fmt.Errorf("leer sesión persistida: %w", err)
	}
	if id == "" {
		return false, nil
	}
	if id == entity.AdminIdentifier {
		return true, r.store.Set(ctx, session.Identity{ID: id, Name: "Administrador", Role: entity.RoleAdmin})
	}
	return true, r.store.Set(ctx, session.Identity{ID: id, Provisional: true})
}

// Revalidate sustituye una identidad provisional por el perfil completo.
// Si el perfil ya no existe o está malformado, la sesión cae a no autenticada.
func (r *Resolver) Revalidate(ctx context.Context) error {
	current, ok := r.store.Current()
	if !ok || !current.Provisional {
		return nil
	}
	ident, err := r.resolveProfile(ctx, current.ID)
	if err != nil {
		r.log.Warn().Err(err).Str("user", current.ID).Msg("revalidación de sesión falló, cerrando sesión")
		return r.store.Logout(ctx)
	}
	return r.store.Set(ctx, ident)
}

// RegisterFCMToken persiste el token push del dispositivo en el perfil del
// usuario. La entrega de notificaciones es responsabilidad del servidor de
// push, fuera de este core.
func (r *Resolver) RegisterFCMToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return domain.ErrInvalidInput
	}
	if err := r.users.UpdateFCMToken(ctx, phone.Normalize(userID), token); err != nil {
		return fmt.Errorf("guardar token FCM: %w", err)
	}
	return nil
}

// Logout cierra sesión en el proveedor y limpia el store. Idempotente.
func (r *Resolver) Logout(ctx context.Context) error {
	if err := r.provider.SignOut(ctx); err != nil {
		// El logout local procede aunque el proveedor falle.
		r.log.Warn().Err(err).Msg("signOut del proveedor falló")
	}
	return r.store.Logout(ctx)
}
