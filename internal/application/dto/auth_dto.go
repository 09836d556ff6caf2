package dto

// EmailLoginRequest login del administrador por email/password.
type EmailLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPRequest solicita el envío de un código OTP al teléfono.
// Acepta forma local de 10 dígitos o E.164 con +91.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// OTPRequestResponse handle opaco para confirmar el código.
type OTPRequestResponse struct {
	Handle string `json:"handle"`
}

// OTPVerifyRequest confirma el código recibido.
type OTPVerifyRequest struct {
	Handle string `json:"handle" validate:"required"`
	Code   string `json:"code" validate:"required,numeric"`
}

// UserResponse identidad resuelta (sin credenciales).
type UserResponse struct {
	ID     string `json:"id"` // identificador canónico
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// SessionResponse salida de login: token JWT + identidad.
type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// FCMTokenRequest registro del token push del dispositivo.
type FCMTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
