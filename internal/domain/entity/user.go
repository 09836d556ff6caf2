package entity

import "time"

// AdminIdentifier identificador centinela del administrador (login por email).
const AdminIdentifier = "admin@avr.com"

// Role rol de un usuario. Enumeración cerrada: cualquier valor fuera del
// conjunto se clasifica como RoleUnknown y el llamador debe tratar la sesión
// como no autenticada.
type Role string

// Roles válidos para User.
const (
	RoleAdmin    Role = "ADMIN"
	RoleApprover Role = "APPROVER"
	RoleUser     Role = "USER"
	RoleUnknown  Role = ""
)

// ParseRole clasifica el valor crudo del backend en la enumeración cerrada.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	case RoleApprover:
		return RoleApprover
	case RoleUser:
		return RoleUser
	default:
		return RoleUnknown
	}
}

// Valid indica si el rol pertenece al conjunto reconocido.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleApprover || r == RoleUser
}

// User representa un perfil del sistema. La clave de documento es el
// identificador canónico: teléfono local de 10 dígitos (usuarios OTP) o
// email (admin). El rol lo asigna un admin fuera de banda y es inmutable
// desde esta API.
type User struct {
	ID        string // identificador canónico (clave en el backend)
	Name      string
	Role      Role
	Active    bool
	FCMToken  string // token push del dispositivo; vacío si no registrado
	CreatedAt time.Time
	UpdatedAt time.Time
}
