package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProjectRequest entrada para crear un proyecto con presupuesto por
// departamento. Las claves de departments son únicas por construcción del map.
type CreateProjectRequest struct {
	Name           string                     `json:"name" validate:"required,min=1,max=200"`
	Description    string                     `json:"description" validate:"max=2000"`
	StartDate      string                     `json:"start_date" validate:"omitempty,max=40"`
	EndDate        string                     `json:"end_date" validate:"omitempty,max=40"`
	TeamMembers    []string                   `json:"team_members"`
	ManagerID      string                     `json:"manager_id" validate:"required"`
	TempApproverID string                     `json:"temp_approver_id"`
	Departments    map[string]decimal.Decimal `json:"departments" validate:"required,min=1"`
}

// UpdateProjectRequest campos opcionales a modificar (semántica merge).
type UpdateProjectRequest struct {
	Name           *string                    `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string                    `json:"description" validate:"omitempty,max=2000"`
	Status         *string                    `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
	StartDate      *string                    `json:"start_date"`
	EndDate        *string                    `json:"end_date"`
	TeamMembers    []string                   `json:"team_members"`
	TempApproverID *string                    `json:"temp_approver_id"`
	Departments    map[string]decimal.Decimal `json:"departments" validate:"omitempty,min=1"`
}

// ProjectResponse salida de un proyecto; Budget es el presupuesto nominal
// derivado (suma de asignaciones por departamento).
type ProjectResponse struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	Description    string                     `json:"description"`
	Status         string                     `json:"status"`
	StartDate      string                     `json:"start_date,omitempty"`
	EndDate        string                     `json:"end_date,omitempty"`
	TeamMembers    []string                   `json:"team_members"`
	ManagerID      string                     `json:"manager_id"`
	TempApproverID string                     `json:"temp_approver_id,omitempty"`
	Departments    map[string]decimal.Decimal `json:"departments"`
	Budget         decimal.Decimal            `json:"budget"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// ProjectListResponse listado de proyectos visibles (ya ordenados, más nuevo primero).
type ProjectListResponse struct {
	Items   []ProjectResponse `json:"items"`
	Skipped int               `json:"skipped,omitempty"` // documentos malformados descartados
}
