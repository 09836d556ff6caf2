package identity

import (
	"context"

	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/pkg/logger"
)

var _ ports.SMSSender = (*LogSMSSender)(nil)

// LogSMSSender implementación de desarrollo: escribe el código en el log en
// lugar de enviarlo por un gateway SMS.
type LogSMSSender struct {
	log *logger.Logger
}

// NewLogSMSSender construye el sender de desarrollo.
func NewLogSMSSender(log *logger.Logger) *LogSMSSender {
	return &LogSMSSender{log: log}
}

// SendOTP registra el código en el log.
func (s *LogSMSSender) SendOTP(_ context.Context, e164Phone, code string) error {
	s.log.Info().Str("phone", e164Phone).Str("code", code).Msg("OTP generado (modo desarrollo)")
	return nil
}
