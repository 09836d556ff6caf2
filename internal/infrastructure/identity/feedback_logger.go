package identity

import (
	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/pkg/logger"
)

var _ ports.FeedbackNotifier = (*LogNotifier)(nil)

// LogNotifier feedback de operación hacia el log (el equivalente del feedback
// háptico de la app móvil cuando no hay UI).
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifySuccess(operation string) {
	n.log.Debug().Str("op", operation).Msg("operación exitosa")
}

func (n *LogNotifier) NotifyFailure(operation string) {
	n.log.Debug().Str("op", operation).Msg("operación fallida")
}
