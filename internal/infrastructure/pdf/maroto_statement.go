// Package pdf genera el estado de cuenta del proyecto con Maroto v2.
//
// Layout de la página A4:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del proyecto │ Estado + Presupuesto nominal  │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: Departamento | Asignado | Aprobado | Restante | %    │
//	│  ──────────────────────────────────────────────────────────  │
//	│  DETALLE: gastos aprobados (fecha, depto, descripción, monto)│
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/report"
	"github.com/avrapps/gastos-api/internal/domain/entity"
)

var _ report.StatementPDFGenerator = (*MarotoStatementGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// inr formatea montos con agrupación de dígitos india (lakh/crore).
var inr = message.NewPrinter(language.MustParse("en-IN"))

// MarotoStatementGenerator implementa report.StatementPDFGenerator usando Maroto v2.
type MarotoStatementGenerator struct{}

// NewMarotoStatementGenerator construye el generador.
func NewMarotoStatementGenerator() *MarotoStatementGenerator { return &MarotoStatementGenerator{} }

// GenerateStatement genera el PDF y devuelve sus bytes.
func (g *MarotoStatementGenerator) GenerateStatement(
	_ context.Context,
	project *entity.Project,
	metrics []dto.DepartmentRollupDTO,
	approved []*entity.Expense,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de cuenta del proyecto", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(project))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(metricsHeaderRow())
	for _, r := range metricsRows(metrics) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(detailHeaderRow())
	for _, r := range detailRows(approved) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre del proyecto (izq), estado y presupuesto nominal (der).
func headerRow(project *entity.Project) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(project.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(project.Description, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Estado: "+project.Status, props.Text{
				Size: 9, Top: 1, Align: align.Right,
			}),
			text.New("Presupuesto: "+formatINR(project.NominalBudget()), props.Text{
				Size: 9, Top: 7, Align: align.Right, Style: fontstyle.Bold,
			}),
		),
	)
}

func metricsHeaderRow() core.Row {
	h := props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary}
	return row.New(7).Add(
		text.NewCol(4, "Departamento", h),
		text.NewCol(2, "Asignado", rightAligned(h)),
		text.NewCol(2, "Aprobado", rightAligned(h)),
		text.NewCol(2, "Restante", rightAligned(h)),
		text.NewCol(2, "Gastado", rightAligned(h)),
	)
}

func metricsRows(metrics []dto.DepartmentRollupDTO) []core.Row {
	body := props.Text{Size: 8}
	rows := make([]core.Row, 0, len(metrics))
	for _, m := range metrics {
		pct := m.SpentFraction.Mul(decimal.NewFromInt(100)).Round(1)
		rows = append(rows, row.New(6).Add(
			text.NewCol(4, m.Department, body),
			text.NewCol(2, formatINR(m.Allocated), rightAligned(body)),
			text.NewCol(2, formatINR(m.Approved), rightAligned(body)),
			text.NewCol(2, formatINR(m.Remaining), rightAligned(body)),
			text.NewCol(2, pct.String()+"%", rightAligned(body)),
		))
	}
	return rows
}

func detailHeaderRow() core.Row {
	h := props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary}
	return row.New(7).Add(
		text.NewCol(2, "Fecha", h),
		text.NewCol(3, "Departamento", h),
		text.NewCol(5, "Descripción", h),
		text.NewCol(2, "Monto", rightAligned(h)),
	)
}

func detailRows(approved []*entity.Expense) []core.Row {
	body := props.Text{Size: 8}
	rows := make([]core.Row, 0, len(approved))
	for _, e := range approved {
		rows = append(rows, row.New(6).Add(
			text.NewCol(2, e.Date, body),
			text.NewCol(3, e.RollupDepartment(), body),
			text.NewCol(5, e.Description, body),
			text.NewCol(2, formatINR(e.Amount), rightAligned(body)),
		))
	}
	return rows
}

func rightAligned(p props.Text) props.Text {
	p.Align = align.Right
	return p
}

// formatINR formatea el monto como rupias con agrupación en-IN (₹1,23,456.78).
func formatINR(d decimal.Decimal) string {
	f, _ := d.Float64()
	return "₹" + inr.Sprint(number.Decimal(f, number.MaxFractionDigits(2), number.MinFractionDigits(2)))
}
