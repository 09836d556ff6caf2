package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo implementación del puerto ExpenseRepository sobre PostgreSQL.
// Los gastos son la sub-colección de un proyecto; nunca se eliminan.
type ExpenseRepo struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository construye el adaptador de persistencia para gastos.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepo {
	return &ExpenseRepo{pool: pool}
}

const expenseColumns = `id, project_id, expense_date, amount, department, categories,
	description, payment_mode, COALESCE(attachment_url, ''), COALESCE(attachment_name, ''),
	submitted_by, status, anonymous, COALESCE(approver_id, ''), COALESCE(remark, ''),
	approved_at, created_at, updated_at`

// Add persiste un gasto nuevo (estado pending).
func (r *ExpenseRepo) Add(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (id, project_id, expense_date, amount, department, categories,
			description, payment_mode, attachment_url, attachment_name,
			submitted_by, status, anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13, $14, $15)`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.ProjectID, e.Date, e.Amount, e.Department, e.Categories,
		e.Description, e.PaymentMode, e.AttachmentURL, e.AttachmentName,
		e.SubmittedBy, e.Status, e.Anonymous, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID obtiene un gasto por proyecto e ID.
func (r *ExpenseRepo) GetByID(ctx context.Context, projectID, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE project_id = $1 AND id = $2`
	e, err := scanExpense(r.pool.QueryRow(ctx, query, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListByStatus devuelve los gastos del proyecto con el estado dado, ordenados
// por fecha de creación descendente.
func (r *ExpenseRepo) ListByStatus(ctx context.Context, projectID, status string) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses WHERE project_id = $1 AND status = $2
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpdateStatus aplica la transición de estado. El predicado status='pending'
// refuerza en el backend el guardado pending-only: si el gasto ya no está
// pendiente, ninguna fila cambia y se devuelve ErrInvalidTransition.
func (r *ExpenseRepo) UpdateStatus(ctx context.Context, projectID, id string, upd repository.StatusUpdate) error {
	query := `
		UPDATE expenses
		SET status = $3, approver_id = $4, remark = NULLIF($5, ''), approved_at = $6, updated_at = $7
		WHERE project_id = $1 AND id = $2 AND status = $8`
	tag, err := r.pool.Exec(ctx, query,
		projectID, id, upd.Status, upd.ApproverID, upd.Remark, upd.ApprovedAt, time.Now(),
		entity.ExpensePending,
	)
	if err != nil {
		return fmt.Errorf("update expense status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var e entity.Expense
	if err := row.Scan(
		&e.ID, &e.ProjectID, &e.Date, &e.Amount, &e.Department, &e.Categories,
		&e.Description, &e.PaymentMode, &e.AttachmentURL, &e.AttachmentName,
		&e.SubmittedBy, &e.Status, &e.Anonymous, &e.ApproverID, &e.Remark,
		&e.ApprovedAt, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
