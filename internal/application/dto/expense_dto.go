package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitExpenseRequest entrada para registrar un gasto contra un departamento
// del proyecto. La validación corre antes de cualquier llamada al backend.
type SubmitExpenseRequest struct {
	ProjectID      string          `json:"project_id" validate:"required,uuid"`
	Date           string          `json:"date" validate:"required,max=40"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Department     string          `json:"department" validate:"required"`
	Categories     []string        `json:"categories" validate:"required,min=1"`
	Description    string          `json:"description" validate:"required,max=2000"`
	PaymentMode    string          `json:"payment_mode" validate:"required,oneof=CASH UPI CARD BANK_TRANSFER"`
	AttachmentURL  string          `json:"attachment_url" validate:"omitempty,url"`
	AttachmentName string          `json:"attachment_name" validate:"omitempty,max=200"`
	Anonymous      bool            `json:"anonymous"`
}

// ReviewExpenseRequest transición de estado por un aprobador/admin.
type ReviewExpenseRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Remark string `json:"remark" validate:"omitempty,max=500"`
}

// ExpenseResponse salida de un gasto.
type ExpenseResponse struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Department     string          `json:"department"`
	Categories     []string        `json:"categories"`
	Description    string          `json:"description"`
	PaymentMode    string          `json:"payment_mode"`
	AttachmentURL  string          `json:"attachment_url,omitempty"`
	AttachmentName string          `json:"attachment_name,omitempty"`
	SubmittedBy    string          `json:"submitted_by"`
	Status         string          `json:"status"`
	Anonymous      bool            `json:"anonymous,omitempty"`
	ApproverID     string          `json:"approver_id,omitempty"`
	Remark         string          `json:"remark,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PendingQueueResponse cola de aprobación: gastos pendientes de todos los
// proyectos visibles, ordenados por creación descendente.
type PendingQueueResponse struct {
	Items []ExpenseResponse `json:"items"`
}
