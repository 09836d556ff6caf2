package ports

import "context"

// SMSSender entrega de códigos OTP fuera de banda. La implementación real
// (gateway SMS) queda fuera del core; en desarrollo se registra el código en el log.
type SMSSender interface {
	SendOTP(ctx context.Context, e164Phone, code string) error
}
