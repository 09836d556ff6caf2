package ports

// FeedbackNotifier señal de éxito/fracaso hacia la capa de UI tras una
// operación (equivalente al feedback háptico de la app móvil).
type FeedbackNotifier interface {
	NotifySuccess(operation string)
	NotifyFailure(operation string)
}

// NopNotifier implementación nula para tests y procesos sin UI.
type NopNotifier struct{}

func (NopNotifier) NotifySuccess(string) {}
func (NopNotifier) NotifyFailure(string) {}
