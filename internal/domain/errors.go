package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotRegistered = errors.New("número no registrado: contacte al administrador")
	ErrProfileDecode     = errors.New("perfil de usuario malformado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidCode       = errors.New("código OTP inválido o expirado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrDuplicate         = errors.New("recurso duplicado")
)
