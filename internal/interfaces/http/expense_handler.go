package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/expense"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// ExpenseHandler maneja el registro de gastos, la cola de aprobación y las
// transiciones de estado.
type ExpenseHandler struct {
	submitter  *expense.Submitter
	aggregator *expense.Aggregator
	expenses   repository.ExpenseRepository
	projects   repository.ProjectRepository
}

// NewExpenseHandler construye el handler de gastos.
func NewExpenseHandler(submitter *expense.Submitter, aggregator *expense.Aggregator, expenses repository.ExpenseRepository, projects repository.ProjectRepository) *ExpenseHandler {
	return &ExpenseHandler{submitter: submitter, aggregator: aggregator, expenses: expenses, projects: projects}
}

// Submit godoc
// @Summary      Registrar un gasto (queda en estado pending)
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitExpenseRequest  true  "gasto"
// @Success      201   {object}  dto.ExpenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	e, err := h.submitter.Submit(c.Context(), GetUserID(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el proyecto no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(e))
}

// Pending godoc
// @Summary      Cola de aprobación: pendientes de los proyectos visibles
// @Description  Recomputa la cola completa (refresh idempotente) sobre los
// @Description  proyectos que el predicado de visibilidad devuelve para el
// @Description  llamador, ordenada por creación descendente.
// @Tags         expenses
// @Produce      json
// @Success      200  {object}  dto.PendingQueueResponse
// @Router       /api/expenses/pending [get]
func (h *ExpenseHandler) Pending(c *fiber.Ctx) error {
	ident := CallerIdentity(c)
	delivery, err := h.projects.List(c.Context(), appsync.QueryFor(ident))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	queue, err := h.aggregator.RefreshPending(c.Context(), delivery.Projects)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.PendingQueueResponse{Items: make([]dto.ExpenseResponse, 0, len(queue))}
	for _, e := range queue {
		out.Items = append(out.Items, toExpenseResponse(e))
	}
	return c.JSON(out)
}

// Review godoc
// @Summary      Aprobar o rechazar un gasto pendiente
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        projectID  path  string  true  "project id"
// @Param        id         path  string  true  "expense id"
// @Param        body       body  dto.ReviewExpenseRequest  true  "status, remark"
// @Success      200  {object}  dto.ExpenseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/projects/{projectID}/expenses/{id}/status [patch]
func (h *ExpenseHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status != entity.ExpenseApproved && in.Status != entity.ExpenseRejected {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status debe ser approved o rejected"})
	}
	e, err := h.expenses.GetByID(c.Context(), c.Params("projectID"), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if e == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el gasto no existe"})
	}
	if err := h.aggregator.SetExpenseStatus(c.Context(), e, in.Status, in.Remark, GetUserID(c)); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "solo un gasto pendiente puede aprobarse o rechazarse"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	updated, err := h.expenses.GetByID(c.Context(), e.ProjectID, e.ID)
	if err != nil || updated == nil {
		// La transición ya quedó persistida; devolver la vista local.
		e.Status = in.Status
		return c.JSON(toExpenseResponse(e))
	}
	return c.JSON(toExpenseResponse(updated))
}

func toExpenseResponse(e *entity.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:             e.ID,
		ProjectID:      e.ProjectID,
		Date:           e.Date,
		Amount:         e.Amount,
		Department:     e.Department,
		Categories:     e.Categories,
		Description:    e.Description,
		PaymentMode:    e.PaymentMode,
		AttachmentURL:  e.AttachmentURL,
		AttachmentName: e.AttachmentName,
		SubmittedBy:    e.SubmittedBy,
		Status:         e.Status,
		Anonymous:      e.Anonymous,
		ApproverID:     e.ApproverID,
		Remark:         e.Remark,
		ApprovedAt:     e.ApprovedAt,
		CreatedAt:      e.CreatedAt,
	}
}
