package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un gasto. Transiciones permitidas: pending->approved y
// pending->rejected, únicamente.
const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpenseRejected = "rejected"
)

// Modos de pago reconocidos.
const (
	PaymentCash         = "CASH"
	PaymentUPI          = "UPI"
	PaymentCard         = "CARD"
	PaymentBankTransfer = "BANK_TRANSFER"
)

// OtherExpensesBucket departamento sintético al que se atribuyen los gastos
// marcados como anónimos en el rollup por departamento. Regla de privacidad
// de presentación, no un error de datos.
const OtherExpensesBucket = "Other Expenses"

// ValidPaymentMode indica si el modo de pago pertenece al conjunto reconocido.
func ValidPaymentMode(m string) bool {
	return m == PaymentCash || m == PaymentUPI || m == PaymentCard || m == PaymentBankTransfer
}

// Expense representa un gasto imputado a un departamento de un proyecto.
// Nunca se elimina; solo un aprobador/admin puede transicionar su estado.
type Expense struct {
	ID             string
	ProjectID      string
	Date           string // fecha del gasto tal como la captura la app
	Amount         decimal.Decimal // siempre > 0
	Department     string   // debe referenciar una clave de Departments del proyecto
	Categories     []string // no vacía después de recortar espacios
	Description    string
	PaymentMode    string
	AttachmentURL  string // comprobante opcional (subida externa al core)
	AttachmentName string
	SubmittedBy    string // identificador canónico del remitente
	Status         string // pending, approved, rejected
	Anonymous      bool
	ApproverID     string // identificador canónico; vacío mientras está pendiente
	Remark         string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanTransitionTo valida la máquina de estados: solo desde pending y solo
// hacia approved o rejected.
func (e *Expense) CanTransitionTo(status string) bool {
	if e.Status != ExpensePending {
		return false
	}
	return status == ExpenseApproved || status == ExpenseRejected
}

// CountsTowardSpend indica si el monto cuenta para el gasto del departamento.
func (e *Expense) CountsTowardSpend() bool {
	return e.Status == ExpenseApproved
}

// RollupDepartment devuelve el departamento al que se atribuye el gasto en el
// rollup: el literal, o el bucket sintético si es anónimo.
func (e *Expense) RollupDepartment() string {
	if e.Anonymous {
		return OtherExpensesBucket
	}
	return e.Department
}
