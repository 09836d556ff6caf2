package repository

import (
	"context"
	"time"

	"github.com/avrapps/gastos-api/internal/domain/entity"
)

// StatusUpdate datos de una transición de estado de gasto.
type StatusUpdate struct {
	Status     string // approved | rejected
	ApproverID string // identificador canónico del aprobador
	Remark     string // opcional
	ApprovedAt time.Time
}

// ExpenseRepository define el puerto de persistencia para Expense
// (sub-colección de un proyecto, id autogenerado).
type ExpenseRepository interface {
	Add(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, projectID, id string) (*entity.Expense, error)
	// ListByStatus devuelve los gastos del proyecto con el estado dado,
	// ordenados por fecha de creación descendente.
	ListByStatus(ctx context.Context, projectID, status string) ([]*entity.Expense, error)
	// UpdateStatus aplica la transición; el guardado pending-only se valida en
	// el caso de uso y se refuerza aquí con un predicado sobre el estado actual.
	UpdateStatus(ctx context.Context, projectID, id string, upd StatusUpdate) error
}
