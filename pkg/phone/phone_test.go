package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avrapps/gastos-api/pkg/phone"
)

func TestNormalize_EliminaPrefijoDePais(t *testing.T) {
	assert.Equal(t, "9876543210", phone.Normalize("+919876543210"))
	assert.Equal(t, "9876543210", phone.Normalize("9876543210"))
	assert.Equal(t, "9876543210", phone.Normalize("  +91 9876543210 "))
}

// La normalización debe ser idempotente: normalizar dos veces da lo mismo.
func TestNormalize_Idempotente(t *testing.T) {
	casos := []string{"+919876543210", "9876543210", " 9876543210", "+91 9111222333"}
	for _, c := range casos {
		una := phone.Normalize(c)
		assert.Equal(t, una, phone.Normalize(una), "entrada: %q", c)
	}
}

func TestIsLocal(t *testing.T) {
	assert.True(t, phone.IsLocal("9876543210"))
	assert.False(t, phone.IsLocal("987654321"), "9 dígitos no es válido")
	assert.False(t, phone.IsLocal("98765432101"), "11 dígitos no es válido")
	assert.False(t, phone.IsLocal("98765abc10"))
	assert.False(t, phone.IsLocal(""))
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+919876543210", phone.ToE164("9876543210"))
	assert.Equal(t, "+919876543210", phone.ToE164("+919876543210"))
}
