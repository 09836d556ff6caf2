package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avrapps/gastos-api/internal/application/auth"
	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/application/session"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/pkg/config"
	"github.com/avrapps/gastos-api/pkg/jwt"
)

// AuthHandler maneja login por email, el flujo OTP y el ciclo de vida de sesión.
type AuthHandler struct {
	uc           *auth.Resolver
	synchronizer *appsync.Synchronizer
	jwtCfg       config.JWTConfig
	// baseCtx es el contexto de vida del proceso: la suscripción que se abre al
	// iniciar sesión debe sobrevivir a la request que la disparó.
	baseCtx context.Context
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.Resolver, synchronizer *appsync.Synchronizer, jwtCfg config.JWTConfig, baseCtx context.Context) *AuthHandler {
	return &AuthHandler{uc: uc, synchronizer: synchronizer, jwtCfg: jwtCfg, baseCtx: baseCtx}
}

// LoginEmail godoc
// @Summary      Iniciar sesión del administrador (email/password)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EmailLoginRequest  true  "email, password"
// @Success      200   {object}  dto.SessionResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login-email [post]
func (h *AuthHandler) LoginEmail(c *fiber.Ctx) error {
	var in dto.EmailLoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	ident, err := h.uc.LoginEmail(c.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	h.resubscribe(ident)
	return h.sessionResponse(c, ident)
}

// RequestOTP godoc
// @Summary      Solicitar código OTP por SMS
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OTPRequest  true  "phone"
// @Success      200   {object}  dto.OTPRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var in dto.OTPRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	handle, err := h.uc.RequestOTP(c.Context(), in.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "teléfono inválido: se esperan 10 dígitos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.OTPRequestResponse{Handle: string(handle)})
}

// VerifyOTP godoc
// @Summary      Confirmar código OTP y resolver el perfil
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OTPVerifyRequest  true  "handle, code"
// @Success      200   {object}  dto.SessionResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var in dto.OTPVerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Handle == "" || in.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "handle y code son requeridos"})
	}
	ident, err := h.uc.VerifyOTP(c.Context(), ports.VerificationHandle(in.Handle), in.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CODE", Message: "código incorrecto o expirado"})
		case errors.Is(err, domain.ErrUserNotRegistered):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "NOT_REGISTERED", Message: domain.ErrUserNotRegistered.Error()})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva"})
		case errors.Is(err, domain.ErrProfileDecode):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PROFILE_INVALID", Message: "perfil con rol no reconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	h.resubscribe(ident)
	return h.sessionResponse(c, ident)
}

// Me godoc
// @Summary      Identidad del token actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(dto.UserResponse{
		ID:     GetUserID(c),
		Name:   GetUserName(c),
		Role:   string(GetRole(c)),
		Active: true,
	})
}

// RegisterFCMToken godoc
// @Summary      Registrar token push del dispositivo
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FCMTokenRequest  true  "token"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/auth/fcm-token [post]
func (h *AuthHandler) RegisterFCMToken(c *fiber.Ctx) error {
	var in dto.FCMTokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.RegisterFCMToken(c.Context(), GetUserID(c), in.Token); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token es requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.synchronizer.Close()
	if err := h.uc.Logout(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// resubscribe reabre la suscripción viva de proyectos para la identidad recién
// resuelta. Subscribe cancela la anterior por su cuenta; aquí solo ignoramos el
// error porque la sesión es válida aunque la suscripción tarde en abrirse.
func (h *AuthHandler) resubscribe(ident session.Identity) {
	if h.synchronizer == nil {
		return
	}
	_, _ = h.synchronizer.Subscribe(h.baseCtx, ident)
}

func (h *AuthHandler) sessionResponse(c *fiber.Ctx, ident session.Identity) error {
	token, err := jwt.Generate(h.jwtCfg.Secret, ident.ID, ident.Name, string(ident.Role), h.jwtCfg.Issuer, h.jwtCfg.Expiration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.SessionResponse{
		Token: token,
		User: dto.UserResponse{
			ID:     ident.ID,
			Name:   ident.Name,
			Role:   string(ident.Role),
			Active: true,
		},
	})
}
