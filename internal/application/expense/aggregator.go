// Package expense agrega gastos por proyecto: cola de aprobación pendiente,
// rollup de gasto aprobado por departamento y la transición de estado.
//
// Ambas agregaciones recomputan desde cero en cada invocación (refresh
// explícito e idempotente); no hay merge incremental que pueda derivar
// respecto del backend.
package expense

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/ports"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/logger"
	"github.com/avrapps/gastos-api/pkg/phone"
)

// Aggregator agregaciones de gastos sobre los proyectos visibles.
type Aggregator struct {
	expenses repository.ExpenseRepository
	notifier ports.FeedbackNotifier
	log      *logger.Logger

	mu       sync.Mutex
	pending  []*entity.Expense
	visible  []*entity.Project // últimos proyectos visibles (para re-refresh tras una transición)
}

// NewAggregator construye el agregador.
func NewAggregator(expenses repository.ExpenseRepository, notifier ports.FeedbackNotifier, log *logger.Logger) *Aggregator {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Aggregator{expenses: expenses, notifier: notifier, log: log}
}

// RefreshPending recomputa la cola de aprobación: para cada proyecto visible
// trae los gastos pendientes (ya ordenados por creación descendente), concatena
// y reordena el conjunto completo. Devuelve la cola resultante.
func (a *Aggregator) RefreshPending(ctx context.Context, visible []*entity.Project) ([]*entity.Expense, error) {
	var queue []*entity.Expense
	for _, p := range visible {
		batch, err := a.expenses.ListByStatus(ctx, p.ID, entity.ExpensePending)
		if err != nil {
			return nil, fmt.Errorf("pendientes del proyecto %s: %w", p.ID, err)
		}
		queue = append(queue, batch...)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].CreatedAt.After(queue[j].CreatedAt)
	})

	a.mu.Lock()
	a.pending = queue
	a.visible = visible
	a.mu.Unlock()
	return queue, nil
}

// Pending devuelve la última cola computada.
func (a *Aggregator) Pending() []*entity.Expense {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*entity.Expense, len(a.pending))
	copy(out, a.pending)
	return out
}

// ApprovedByDepartment rollup de gasto aprobado de un proyecto: map de
// departamento a suma. Los gastos anónimos se atribuyen al bucket sintético
// "Other Expenses" en lugar de su departamento literal.
func (a *Aggregator) ApprovedByDepartment(ctx context.Context, projectID string) (map[string]decimal.Decimal, error) {
	approved, err := a.expenses.ListByStatus(ctx, projectID, entity.ExpenseApproved)
	if err != nil {
		return nil, fmt.Errorf("aprobados del proyecto %s: %w", projectID, err)
	}
	rollup := make(map[string]decimal.Decimal)
	for _, e := range approved {
		dept := e.RollupDepartment()
		rollup[dept] = rollup[dept].Add(e.Amount)
	}
	return rollup, nil
}

// DepartmentMetrics métricas derivadas por departamento del proyecto:
// restante = asignado - aprobado; fracción gastada = aprobado / asignado,
// 0 si el asignado es <= 0 (sin división por cero). Incluye el bucket de
// anónimos si tiene monto, con asignación cero.
func DepartmentMetrics(p *entity.Project, rollup map[string]decimal.Decimal) []dto.DepartmentRollupDTO {
	out := make([]dto.DepartmentRollupDTO, 0, len(p.Departments)+1)
	for dept, allocated := range p.Departments {
		approved := rollup[dept]
		out = append(out, departmentMetric(dept, allocated, approved))
	}
	if other, ok := rollup[entity.OtherExpensesBucket]; ok {
		if _, declared := p.Departments[entity.OtherExpensesBucket]; !declared {
			out = append(out, departmentMetric(entity.OtherExpensesBucket, decimal.Zero, other))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func departmentMetric(dept string, allocated, approved decimal.Decimal) dto.DepartmentRollupDTO {
	fraction := decimal.Zero
	if allocated.IsPositive() {
		fraction = approved.Div(allocated)
	}
	return dto.DepartmentRollupDTO{
		Department:    dept,
		Allocated:     allocated,
		Approved:      approved,
		Remaining:     allocated.Sub(approved),
		SpentFraction: fraction,
	}
}

// SetExpenseStatus transiciona un gasto pendiente a approved o rejected.
// Solo tiene sentido desde pending; cualquier otro origen se rechaza con
// ErrInvalidTransition sin tocar el backend. En éxito escribe estado, fecha de
// aprobación, aprobador canónico y remark opcional, y re-ejecuta el refresh
// completo de la cola de pendientes.
func (a *Aggregator) SetExpenseStatus(ctx context.Context, e *entity.Expense, newStatus, remark, approverID string) error {
	if !e.CanTransitionTo(newStatus) {
		a.notifier.NotifyFailure("review")
		return domain.ErrInvalidTransition
	}
	upd := repository.StatusUpdate{
		Status:     newStatus,
		ApproverID: phone.Normalize(approverID),
		Remark:     remark,
		ApprovedAt: time.Now(),
	}
	if err := a.expenses.UpdateStatus(ctx, e.ProjectID, e.ID, upd); err != nil {
		a.notifier.NotifyFailure("review")
		return err
	}
	a.notifier.NotifySuccess("review")

	a.mu.Lock()
	visible := a.visible
	a.mu.Unlock()
	if _, err := a.RefreshPending(ctx, visible); err != nil {
		// La transición ya está persistida; el refresh fallido solo deja la
		// cola local obsoleta hasta el próximo refresh.
		a.log.Warn().Err(err).Msg("refresh de pendientes tras la transición falló")
	}
	return nil
}
