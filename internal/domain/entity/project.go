package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos de un proyecto (conjunto cerrado). Un proyecto nunca se
// elimina físicamente: el fin de su ciclo de vida se modela con el estado.
const (
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
	ProjectCancelled = "CANCELLED"
)

// ValidProjectStatus indica si el estado pertenece al conjunto cerrado.
func ValidProjectStatus(s string) bool {
	return s == ProjectActive || s == ProjectCompleted || s == ProjectCancelled
}

// Project representa un proyecto con presupuesto por departamento.
// Las claves de Departments son únicas (propiedad del map); la suma de las
// asignaciones es el presupuesto nominal del proyecto.
type Project struct {
	ID             string
	Name           string
	Description    string
	Status         string // ACTIVE, COMPLETED, CANCELLED
	StartDate      string // opcional, formato libre de la app móvil
	EndDate        string // opcional
	TeamMembers    []string // identificadores canónicos
	ManagerID      string
	TempApproverID string // aprobador temporal opcional
	Departments    map[string]decimal.Decimal // departamento -> presupuesto asignado
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NominalBudget devuelve el presupuesto total derivado: suma de las
// asignaciones por departamento.
func (p *Project) NominalBudget() decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range p.Departments {
		total = total.Add(alloc)
	}
	return total
}

// HasDepartment indica si el departamento existe en el proyecto.
func (p *Project) HasDepartment(dept string) bool {
	_, ok := p.Departments[dept]
	return ok
}

// HasTeamMember indica si el identificador canónico pertenece al equipo.
func (p *Project) HasTeamMember(id string) bool {
	for _, m := range p.TeamMembers {
		if m == id {
			return true
		}
	}
	return false
}
