// Package report genera los artefactos de tablero del proyecto: el estado de
// cuenta en PDF y el gráfico de gasto mensual con pronóstico simple.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/expense"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// MonthlySpend gasto aprobado acumulado en un mes calendario.
type MonthlySpend struct {
	Month time.Time // primer día del mes
	Total decimal.Decimal
}

// StatementPDFGenerator puerto del generador del estado de cuenta.
type StatementPDFGenerator interface {
	GenerateStatement(ctx context.Context, project *entity.Project, metrics []dto.DepartmentRollupDTO, approved []*entity.Expense) ([]byte, error)
}

// ChartRenderer puerto del renderizador de gráficos (PNG).
type ChartRenderer interface {
	RenderSpendChart(project *entity.Project, history []MonthlySpend, forecast decimal.Decimal) ([]byte, error)
}

// UseCase arma los insumos de ambos artefactos a partir de los repositorios.
type UseCase struct {
	projects   repository.ProjectRepository
	expenses   repository.ExpenseRepository
	aggregator *expense.Aggregator
	pdf        StatementPDFGenerator
	chart      ChartRenderer
}

// NewUseCase construye el caso de uso.
func NewUseCase(projects repository.ProjectRepository, expenses repository.ExpenseRepository, aggregator *expense.Aggregator, pdf StatementPDFGenerator, chart ChartRenderer) *UseCase {
	return &UseCase{projects: projects, expenses: expenses, aggregator: aggregator, pdf: pdf, chart: chart}
}

// Dashboard devuelve el resumen financiero del proyecto (rollup + métricas).
func (uc *UseCase) Dashboard(ctx context.Context, projectID string) (*dto.ProjectDashboardDTO, error) {
	p, rollup, err := uc.projectRollup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	metrics := expense.DepartmentMetrics(p, rollup)
	total := decimal.Zero
	for _, amt := range rollup {
		total = total.Add(amt)
	}
	return &dto.ProjectDashboardDTO{
		ProjectID:     p.ID,
		ProjectName:   p.Name,
		Budget:        p.NominalBudget(),
		TotalApproved: total,
		Departments:   metrics,
	}, nil
}

// Statement genera el estado de cuenta PDF del proyecto.
func (uc *UseCase) Statement(ctx context.Context, projectID string) ([]byte, error) {
	p, rollup, err := uc.projectRollup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	approved, err := uc.expenses.ListByStatus(ctx, projectID, entity.ExpenseApproved)
	if err != nil {
		return nil, fmt.Errorf("aprobados del proyecto %s: %w", projectID, err)
	}
	return uc.pdf.GenerateStatement(ctx, p, expense.DepartmentMetrics(p, rollup), approved)
}

// SpendChart genera el PNG de la serie mensual de gasto aprobado con el
// pronóstico del próximo mes.
func (uc *UseCase) SpendChart(ctx context.Context, projectID string) ([]byte, error) {
	p, _, err := uc.projectRollup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	approved, err := uc.expenses.ListByStatus(ctx, projectID, entity.ExpenseApproved)
	if err != nil {
		return nil, fmt.Errorf("aprobados del proyecto %s: %w", projectID, err)
	}
	history := MonthlyHistory(approved)
	return uc.chart.RenderSpendChart(p, history, ForecastNext(history))
}

func (uc *UseCase) projectRollup(ctx context.Context, projectID string) (*entity.Project, map[string]decimal.Decimal, error) {
	p, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	rollup, err := uc.aggregator.ApprovedByDepartment(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return p, rollup, nil
}

// MonthlyHistory agrupa el gasto aprobado por mes calendario (por fecha de
// creación del gasto), ordenado cronológicamente.
func MonthlyHistory(approved []*entity.Expense) []MonthlySpend {
	byMonth := make(map[time.Time]decimal.Decimal)
	for _, e := range approved {
		m := time.Date(e.CreatedAt.Year(), e.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[m] = byMonth[m].Add(e.Amount)
	}
	out := make([]MonthlySpend, 0, len(byMonth))
	for m, total := range byMonth {
		out = append(out, MonthlySpend{Month: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// ForecastNext pronóstico ingenuo del gasto del próximo mes: regresión lineal
// simple sobre la serie mensual. Con menos de dos meses devuelve el último
// total conocido (o cero sin historia). Nunca devuelve un valor negativo.
func ForecastNext(history []MonthlySpend) decimal.Decimal {
	n := len(history)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return history[0].Total
	}
	// Ajuste y = a + b*x con x = índice del mes.
	var sumX, sumY, sumXY, sumXX float64
	for i, h := range history {
		x := float64(i)
		y, _ := h.Total.Float64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return history[n-1].Total
	}
	b := (fn*sumXY - sumX*sumY) / denom
	a := (sumY - b*sumX) / fn
	next := a + b*fn
	if next < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(next).Round(2)
}
