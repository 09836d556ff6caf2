// Package chart renderiza el gráfico de gasto del proyecto con gonum/plot:
// serie mensual de gasto aprobado más el punto de pronóstico del próximo mes.
package chart

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/avrapps/gastos-api/internal/application/report"
	"github.com/avrapps/gastos-api/internal/domain/entity"
)

var _ report.ChartRenderer = (*PlotRenderer)(nil)

// PlotRenderer implementa report.ChartRenderer produciendo PNG.
type PlotRenderer struct{}

// NewPlotRenderer construye el renderizador.
func NewPlotRenderer() *PlotRenderer { return &PlotRenderer{} }

// RenderSpendChart dibuja la serie mensual de gasto aprobado y el punto de
// pronóstico del mes siguiente. Con historia vacía devuelve un gráfico vacío
// válido (ejes y título), no un error.
func (r *PlotRenderer) RenderSpendChart(
	project *entity.Project,
	history []report.MonthlySpend,
	forecast decimal.Decimal,
) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Gasto mensual — %s", project.Name)
	p.X.Label.Text = "Mes"
	p.Y.Label.Text = "Gasto aprobado"

	series := make(plotter.XYs, len(history))
	labels := make([]string, len(history)+1)
	for i, h := range history {
		total, _ := h.Total.Float64()
		series[i].X = float64(i)
		series[i].Y = total
		labels[i] = h.Month.Format("2006-01")
	}
	labels[len(history)] = "pronóstico"

	fc, _ := forecast.Float64()
	forecastPoint := plotter.XYs{{X: float64(len(history)), Y: fc}}

	if err := plotutil.AddLinePoints(p, "histórico", series, "pronóstico", forecastPoint); err != nil {
		return nil, fmt.Errorf("chart: agregar series: %w", err)
	}
	p.NominalX(labels...)

	var buf bytes.Buffer
	w, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: writer png: %w", err)
	}
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: escribir png: %w", err)
	}
	return buf.Bytes(), nil
}
