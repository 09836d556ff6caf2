// Package phone normaliza números de teléfono al identificador canónico
// usado como clave de documento en el backend: 10 dígitos locales, sin el
// prefijo de país +91 y sin espacios.
package phone

import "strings"

// CountryPrefix prefijo de país que se elimina al normalizar (India).
const CountryPrefix = "+91"

// Normalize devuelve el identificador canónico: recorta espacios y elimina
// el prefijo +91 si está presente. Es idempotente.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, CountryPrefix)
	return strings.TrimSpace(s)
}

// IsLocal indica si el valor ya normalizado es un número local válido de 10 dígitos.
func IsLocal(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ToE164 devuelve la forma E.164 (+91XXXXXXXXXX) a partir de cualquier entrada.
// Se usa al solicitar la verificación OTP al proveedor de identidad.
func ToE164(raw string) string {
	return CountryPrefix + Normalize(raw)
}
