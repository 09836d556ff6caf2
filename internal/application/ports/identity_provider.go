// Package ports define los contratos hacia colaboradores externos del core
// (proveedor de identidad, envío de SMS, caché local de sesión, feedback a la UI).
package ports

import "context"

// ProviderIdentity identidad verificada devuelta por el proveedor externo.
// Para email trae Email y DisplayName; para teléfono trae Phone en E.164.
type ProviderIdentity struct {
	Email       string
	Phone       string
	DisplayName string
}

// VerificationHandle referencia opaca a una verificación de teléfono en curso.
type VerificationHandle string

// IdentityProvider puerto del proveedor de identidad externo.
// Los errores del proveedor se propagan tal cual (ProviderError de la taxonomía);
// el caso de uso los convierte en mensajes para el usuario.
type IdentityProvider interface {
	SignInWithEmail(ctx context.Context, email, password string) (ProviderIdentity, error)
	// VerifyPhoneNumber inicia la verificación OTP para un número E.164 y
	// devuelve el handle con el que confirmar el código.
	VerifyPhoneNumber(ctx context.Context, e164Phone string) (VerificationHandle, error)
	// SignIn confirma el código OTP; en éxito devuelve la identidad con el
	// teléfono verificado.
	SignIn(ctx context.Context, handle VerificationHandle, code string) (ProviderIdentity, error)
	SignOut(ctx context.Context) error
}
