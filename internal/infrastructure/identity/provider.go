// Package identity implementa el puerto IdentityProvider sobre PostgreSQL:
// credenciales del administrador con bcrypt y verificación de teléfono por
// códigos OTP con vigencia y límite de intentos. El envío del código sale por
// el puerto SMSSender.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/pkg/config"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Provider proveedor de identidad respaldado en PostgreSQL.
type Provider struct {
	pool *pgxpool.Pool
	sms  ports.SMSSender
	cfg  config.OTPConfig
}

// NewProvider construye el proveedor.
func NewProvider(pool *pgxpool.Pool, sms ports.SMSSender, cfg config.OTPConfig) *Provider {
	return &Provider{pool: pool, sms: sms, cfg: cfg}
}

// SignInWithEmail valida email/password del administrador contra bcrypt.
func (p *Provider) SignInWithEmail(ctx context.Context, email, password string) (ports.ProviderIdentity, error) {
	var hash, displayName string
	err := p.pool.QueryRow(ctx,
		`SELECT password_hash, COALESCE(display_name, '') FROM admin_credentials WHERE email = $1`,
		email,
	).Scan(&hash, &displayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ProviderIdentity{}, domain.ErrUnauthorized
		}
		return ports.ProviderIdentity{}, fmt.Errorf("buscar credencial: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ports.ProviderIdentity{}, domain.ErrUnauthorized
	}
	return ports.ProviderIdentity{Email: email, DisplayName: displayName}, nil
}

// VerifyPhoneNumber genera un código OTP, lo guarda con vigencia limitada y lo
// envía por SMS. Devuelve el handle con el que confirmarlo.
func (p *Provider) VerifyPhoneNumber(ctx context.Context, e164Phone string) (ports.VerificationHandle, error) {
	code, err := randomCode(p.cfg.Length)
	if err != nil {
		return "", fmt.Errorf("generar código: %w", err)
	}
	handle := uuid.New().String()
	expires := time.Now().Add(time.Duration(p.cfg.TTLMinutes) * time.Minute)

	_, err = p.pool.Exec(ctx, `
		INSERT INTO otp_codes (handle, phone, code_hash, expires_at, attempts, consumed, created_at)
		VALUES ($1, $2, $3, $4, 0, FALSE, $5)`,
		handle, e164Phone, hashCode(code), expires, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("guardar código: %w", err)
	}
	if err := p.sms.SendOTP(ctx, e164Phone, code); err != nil {
		return "", fmt.Errorf("enviar OTP: %w", err)
	}
	return ports.VerificationHandle(handle), nil
}

// SignIn confirma el código OTP. Un código expirado, consumido, agotado en
// intentos o que no coincide devuelve ErrInvalidCode; cada fallo cuenta un intento.
func (p *Provider) SignIn(ctx context.Context, handle ports.VerificationHandle, code string) (ports.ProviderIdentity, error) {
	var phone, storedHash string
	var expiresAt time.Time
	var attempts int
	var consumed bool
	err := p.pool.QueryRow(ctx, `
		SELECT phone, code_hash, expires_at, attempts, consumed
		FROM otp_codes WHERE handle = $1`, string(handle),
	).Scan(&phone, &storedHash, &expiresAt, &attempts, &consumed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ProviderIdentity{}, domain.ErrInvalidCode
		}
		return ports.ProviderIdentity{}, fmt.Errorf("buscar código: %w", err)
	}

	if consumed || attempts >= p.cfg.MaxAttempts || time.Now().After(expiresAt) {
		return ports.ProviderIdentity{}, domain.ErrInvalidCode
	}
	if hashCode(code) != storedHash {
		_, _ = p.pool.Exec(ctx, `UPDATE otp_codes SET attempts = attempts + 1 WHERE handle = $1`, string(handle))
		return ports.ProviderIdentity{}, domain.ErrInvalidCode
	}

	if _, err := p.pool.Exec(ctx, `UPDATE otp_codes SET consumed = TRUE WHERE handle = $1`, string(handle)); err != nil {
		return ports.ProviderIdentity{}, fmt.Errorf("consumir código: %w", err)
	}
	return ports.ProviderIdentity{Phone: phone}, nil
}

// SignOut el proveedor no mantiene estado de sesión del lado servidor.
func (p *Provider) SignOut(ctx context.Context) error {
	return nil
}

// randomCode genera un código numérico de n dígitos con crypto/rand.
func randomCode(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	digits := make([]byte, n)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
