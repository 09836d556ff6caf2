package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrapps/gastos-api/internal/application/auth"
	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/application/session"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/pkg/logger"
)

// fakeProvider proveedor de identidad en memoria: un teléfono ya "verificado"
// y la credencial del admin.
type fakeProvider struct {
	adminEmail    string
	adminPassword string
	// teléfono E.164 asociado al handle emitido
	phoneByHandle map[ports.VerificationHandle]string
	code          string
	signedOut     bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		adminEmail:    entity.AdminIdentifier,
		adminPassword: "admin123",
		phoneByHandle: map[ports.VerificationHandle]string{},
		code:          "123456",
	}
}

func (f *fakeProvider) SignInWithEmail(ctx context.Context, email, password string) (ports.ProviderIdentity, error) {
	if email != f.adminEmail || password != f.adminPassword {
		return ports.ProviderIdentity{}, domain.ErrUnauthorized
	}
	return ports.ProviderIdentity{Email: email, DisplayName: "Administrador"}, nil
}

func (f *fakeProvider) VerifyPhoneNumber(ctx context.Context, e164Phone string) (ports.VerificationHandle, error) {
	h := ports.VerificationHandle("handle-" + e164Phone)
	f.phoneByHandle[h] = e164Phone
	return h, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, handle ports.VerificationHandle, code string) (ports.ProviderIdentity, error) {
	phone, ok := f.phoneByHandle[handle]
	if !ok || code != f.code {
		return ports.ProviderIdentity{}, domain.ErrInvalidCode
	}
	return ports.ProviderIdentity{Phone: phone}, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signedOut = true
	return nil
}

// fakeUserRepo perfiles registrados por identificador canónico.
type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }
func (f *fakeUserRepo) Update(ctx context.Context, u *entity.User) error { return nil }
func (f *fakeUserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.FCMToken = token
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return nil, nil
}

// memCache caché local de sesión en memoria.
type memCache struct {
	id     string
	clears int
}

func (m *memCache) SaveIdentifier(ctx context.Context, id string) error { m.id = id; return nil }
func (m *memCache) LoadIdentifier(ctx context.Context) (string, error)  { return m.id, nil }
func (m *memCache) Clear(ctx context.Context) error                     { m.id = ""; m.clears++; return nil }

func user(id, name string, role entity.Role, active bool) *entity.User {
	now := time.Now()
	return &entity.User{ID: id, Name: name, Role: role, Active: active, CreatedAt: now, UpdatedAt: now}
}

func newResolver(provider ports.IdentityProvider, users *fakeUserRepo, cache ports.SessionCache) (*auth.Resolver, *session.Store) {
	store := session.NewStore(cache)
	return auth.NewResolver(provider, users, store, logger.Nop()), store
}

// ──────────────────────────────────────────────────────────────────────────────
// Login por email (admin)
// ──────────────────────────────────────────────────────────────────────────────

func TestLoginEmail_AdminConPerfilSintetico(t *testing.T) {
	cache := &memCache{}
	resolver, store := newResolver(newFakeProvider(), &fakeUserRepo{users: map[string]*entity.User{}}, cache)

	ident, err := resolver.LoginEmail(context.Background(), entity.AdminIdentifier, "admin123")
	require.NoError(t, err)

	// El camino de email no consulta el backend: el perfil es sintético.
	assert.Equal(t, entity.AdminIdentifier, ident.ID)
	assert.Equal(t, entity.RoleAdmin, ident.Role)
	assert.True(t, ident.IsAdminSentinel())
	assert.True(t, store.Authenticated())
	assert.Equal(t, entity.AdminIdentifier, cache.id, "el identificador debe persistirse")
}

func TestLoginEmail_CredencialesInvalidas(t *testing.T) {
	resolver, store := newResolver(newFakeProvider(), &fakeUserRepo{users: map[string]*entity.User{}}, &memCache{})

	_, err := resolver.LoginEmail(context.Background(), entity.AdminIdentifier, "incorrecta")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, store.Authenticated())
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo OTP
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestOTP_NormalizaYValidaElTelefono(t *testing.T) {
	provider := newFakeProvider()
	resolver, _ := newResolver(provider, &fakeUserRepo{users: map[string]*entity.User{}}, &memCache{})

	// Acepta la forma E.164 y la local; ambas derivan al mismo número.
	h1, err := resolver.RequestOTP(context.Background(), "+919876543210")
	require.NoError(t, err)
	h2, err := resolver.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = resolver.RequestOTP(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un número que no es de 10 dígitos se rechaza sin gastar SMS")
}

func TestVerifyOTP_TelefonoVerificadoSinPerfil(t *testing.T) {
	provider := newFakeProvider()
	resolver, store := newResolver(provider, &fakeUserRepo{users: map[string]*entity.User{}}, &memCache{})

	handle, err := resolver.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)

	// La verificación del proveedor por sí sola no otorga acceso.
	_, err = resolver.VerifyOTP(context.Background(), handle, "123456")
	assert.ErrorIs(t, err, domain.ErrUserNotRegistered)
	assert.False(t, store.Authenticated())
}

func TestVerifyOTP_ResuelveElPerfilYPublicaLaSesion(t *testing.T) {
	provider := newFakeProvider()
	users := &fakeUserRepo{users: map[string]*entity.User{
		"9876543210": user("9876543210", "Priya Sharma", entity.RoleApprover, true),
	}}
	cache := &memCache{}
	resolver, store := newResolver(provider, users, cache)

	handle, err := resolver.RequestOTP(context.Background(), "+919876543210")
	require.NoError(t, err)

	ident, err := resolver.VerifyOTP(context.Background(), handle, "123456")
	require.NoError(t, err)

	// El perfil se busca por el identificador canónico (sin prefijo +91).
	assert.Equal(t, "9876543210", ident.ID)
	assert.Equal(t, entity.RoleApprover, ident.Role)
	assert.True(t, store.Authenticated())
	assert.Equal(t, "9876543210", cache.id)
}

func TestVerifyOTP_CodigoIncorrecto(t *testing.T) {
	provider := newFakeProvider()
	resolver, _ := newResolver(provider, &fakeUserRepo{users: map[string]*entity.User{}}, &memCache{})

	handle, err := resolver.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)

	_, err = resolver.VerifyOTP(context.Background(), handle, "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestVerifyOTP_PerfilInactivo(t *testing.T) {
	provider := newFakeProvider()
	users := &fakeUserRepo{users: map[string]*entity.User{
		"9876543210": user("9876543210", "Priya Sharma", entity.RoleApprover, false),
	}}
	resolver, store := newResolver(provider, users, &memCache{})

	handle, err := resolver.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)

	_, err = resolver.VerifyOTP(context.Background(), handle, "123456")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, store.Authenticated())
}

func TestVerifyOTP_RolNoReconocido(t *testing.T) {
	provider := newFakeProvider()
	users := &fakeUserRepo{users: map[string]*entity.User{
		"9876543210": user("9876543210", "Priya Sharma", entity.Role("SUPERUSER"), true),
	}}
	resolver, store := newResolver(provider, users, &memCache{})

	handle, err := resolver.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)

	// Rol fuera del conjunto cerrado: la sesión se descarta, no hay acceso parcial.
	_, err = resolver.VerifyOTP(context.Background(), handle, "123456")
	assert.ErrorIs(t, err, domain.ErrProfileDecode)
	assert.False(t, store.Authenticated())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reanudar sesión (stale-while-revalidate)
// ──────────────────────────────────────────────────────────────────────────────

func TestRestoreSession_SinIdentificadorGuardado(t *testing.T) {
	resolver, store := newResolver(newFakeProvider(), &fakeUserRepo{users: map[string]*entity.User{}}, &memCache{})

	restored, err := resolver.RestoreSession(context.Background(), &memCache{})
	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, store.Authenticated())
}

func TestRestoreSession_TelefonoPublicaIdentidadProvisional(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{
		"9876543210": user("9876543210", "Priya Sharma", entity.RoleApprover, true),
	}}
	cache := &memCache{id: "9876543210"}
	resolver, store := newResolver(newFakeProvider(), users, cache)

	restored, err := resolver.RestoreSession(context.Background(), cache)
	require.NoError(t, err)
	require.True(t, restored)

	// Primero la identidad provisional, de inmediato y sin red.
	current, ok := store.Current()
	require.True(t, ok)
	assert.True(t, current.Provisional)
	assert.False(t, store.Authenticated(), "una identidad provisional no cuenta como autenticada plena")

	// La revalidación completa el perfil.
	require.NoError(t, resolver.Revalidate(context.Background()))
	current, ok = store.Current()
	require.True(t, ok)
	assert.False(t, current.Provisional)
	assert.Equal(t, entity.RoleApprover, current.Role)
	assert.True(t, store.Authenticated())
}

func TestRevalidate_PerfilDesaparecidoCierraSesion(t *testing.T) {
	cache := &memCache{id: "9876543210"}
	resolver, store := newResolver(newFakeProvider(), &fakeUserRepo{users: map[string]*entity.User{}}, cache)

	restored, err := resolver.RestoreSession(context.Background(), cache)
	require.NoError(t, err)
	require.True(t, restored)

	require.NoError(t, resolver.Revalidate(context.Background()))
	_, ok := store.Current()
	assert.False(t, ok, "si el perfil ya no existe la sesión cae a no autenticada")
	assert.Empty(t, cache.id, "el identificador persistido se limpia")
}

func TestRestoreSession_AdminNoEsProvisional(t *testing.T) {
	cache := &memCache{id: entity.AdminIdentifier}
	resolver, store := newResolver(newFakeProvider(), &fakeUserRepo{users: map[string]*entity.User{}}, cache)

	restored, err := resolver.RestoreSession(context.Background(), cache)
	require.NoError(t, err)
	require.True(t, restored)
	assert.True(t, store.Authenticated(), "el admin centinela se reanuda completo, sin revalidación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Logout y token FCM
// ──────────────────────────────────────────────────────────────────────────────

func TestLogout_LimpiaSesionYCacheDeFormaIdempotente(t *testing.T) {
	provider := newFakeProvider()
	cache := &memCache{}
	resolver, store := newResolver(provider, &fakeUserRepo{users: map[string]*entity.User{}}, cache)

	_, err := resolver.LoginEmail(context.Background(), entity.AdminIdentifier, "admin123")
	require.NoError(t, err)

	require.NoError(t, resolver.Logout(context.Background()))
	assert.True(t, provider.signedOut)
	assert.False(t, store.Authenticated())
	assert.Empty(t, cache.id)

	// Idempotente: sin sesión activa también es seguro.
	require.NoError(t, resolver.Logout(context.Background()))
}

func TestRegisterFCMToken_NormalizaElIdentificador(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{
		"9876543210": user("9876543210", "Priya Sharma", entity.RoleApprover, true),
	}}
	resolver, _ := newResolver(newFakeProvider(), users, &memCache{})

	require.NoError(t, resolver.RegisterFCMToken(context.Background(), "+919876543210", "fcm-token-abc"))
	assert.Equal(t, "fcm-token-abc", users.users["9876543210"].FCMToken)

	err := resolver.RegisterFCMToken(context.Background(), "9876543210", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
