package dto

import "github.com/shopspring/decimal"

// DepartmentRollupDTO métricas derivadas de un departamento del proyecto.
//
// Remaining = asignado - aprobado. SpentFraction = aprobado / asignado,
// definido como 0 cuando el asignado es <= 0.
type DepartmentRollupDTO struct {
	Department    string          `json:"department"`
	Allocated     decimal.Decimal `json:"allocated"`
	Approved      decimal.Decimal `json:"approved"`
	Remaining     decimal.Decimal `json:"remaining"`
	SpentFraction decimal.Decimal `json:"spent_fraction"`
}

// ProjectDashboardDTO resumen financiero de un proyecto: rollup de gasto
// aprobado por departamento (los gastos anónimos van al bucket "Other Expenses").
type ProjectDashboardDTO struct {
	ProjectID     string                `json:"project_id"`
	ProjectName   string                `json:"project_name"`
	Budget        decimal.Decimal       `json:"budget"`
	TotalApproved decimal.Decimal       `json:"total_approved"`
	Departments   []DepartmentRollupDTO `json:"departments"`
}
