package ports

import "context"

// SessionCache persistencia local del identificador de sesión, para reanudar
// la sesión en un reinicio sin volver a pedir OTP.
type SessionCache interface {
	// SaveIdentifier guarda el identificador canónico del usuario autenticado.
	SaveIdentifier(ctx context.Context, id string) error
	// LoadIdentifier devuelve el identificador guardado, o "" si no hay sesión.
	LoadIdentifier(ctx context.Context) (string, error)
	// Clear borra el identificador guardado. Idempotente.
	Clear(ctx context.Context) error
}
