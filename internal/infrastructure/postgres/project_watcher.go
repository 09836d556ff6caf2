package postgres

import (
	"context"
	"fmt"

	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// Watch abre la suscripción viva sobre el predicado: dedica una conexión del
// pool a LISTEN en el canal de cambios de proyectos, entrega el conjunto
// actual de inmediato y lo vuelve a entregar completo tras cada notificación.
// El canal se cierra cuando el contexto se cancela; no cancelar deja la
// conexión dedicada ocupada entregando a un consumidor muerto.
func (r *ProjectRepo) Watch(ctx context.Context, q repository.ProjectQuery) (<-chan repository.ProjectDelivery, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	ch := make(chan repository.ProjectDelivery, 1)
	go func() {
		defer close(ch)
		defer conn.Release()

		// Entrega inicial: el estado actual antes de cualquier cambio.
		if !r.deliver(ctx, q, ch) {
			return
		}
		for {
			// WaitForNotification retorna con error cuando ctx se cancela o
			// la conexión se cae; ambos terminan la suscripción.
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil {
					r.log.Warn().Err(err).Msg("suscripción de proyectos interrumpida")
				}
				return
			}
			if !r.deliver(ctx, q, ch) {
				return
			}
		}
	}()
	return ch, nil
}

// deliver re-ejecuta el predicado y envía el conjunto completo. Devuelve
// false cuando la suscripción debe terminar.
func (r *ProjectRepo) deliver(ctx context.Context, q repository.ProjectQuery, ch chan<- repository.ProjectDelivery) bool {
	d, err := r.List(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		r.log.Warn().Err(err).Msg("re-consulta de proyectos falló, se conserva el snapshot anterior")
		return true
	}
	select {
	case ch <- d:
		return true
	case <-ctx.Done():
		return false
	}
}
