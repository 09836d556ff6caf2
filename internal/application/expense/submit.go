package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// Submitter registra gastos nuevos contra un departamento del proyecto.
// Toda la validación corre antes de cualquier escritura: un formulario
// inválido no gasta un round-trip al backend.
type Submitter struct {
	projects repository.ProjectRepository
	expenses repository.ExpenseRepository
	validate *validator.Validate
}

// NewSubmitter construye el caso de uso.
func NewSubmitter(projects repository.ProjectRepository, expenses repository.ExpenseRepository) *Submitter {
	return &Submitter{
		projects: projects,
		expenses: expenses,
		validate: validator.New(),
	}
}

// Submit valida y persiste un gasto en estado pending.
// Invariantes además de las etiquetas validate:
//   - amount > 0
//   - department debe existir en Departments del proyecto
//   - categories no vacía después de recortar espacios
func (s *Submitter) Submit(ctx context.Context, submitterID string, in dto.SubmitExpenseRequest) (*entity.Expense, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	categories := trimNonEmpty(in.Categories)
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos una categoría", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: la descripción no puede estar vacía", domain.ErrInvalidInput)
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	if !project.HasDepartment(in.Department) {
		return nil, fmt.Errorf("%w: el departamento %q no existe en el proyecto", domain.ErrInvalidInput, in.Department)
	}

	now := time.Now()
	e := &entity.Expense{
		ID:             uuid.New().String(),
		ProjectID:      project.ID,
		Date:           in.Date,
		Amount:         in.Amount,
		Department:     in.Department,
		Categories:     categories,
		Description:    strings.TrimSpace(in.Description),
		PaymentMode:    in.PaymentMode,
		AttachmentURL:  in.AttachmentURL,
		AttachmentName: in.AttachmentName,
		SubmittedBy:    submitterID,
		Status:         entity.ExpensePending,
		Anonymous:      in.Anonymous,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.expenses.Add(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// trimNonEmpty recorta espacios y descarta entradas vacías.
func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}
