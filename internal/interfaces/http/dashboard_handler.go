package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/report"
	"github.com/avrapps/gastos-api/internal/domain"
)

// DashboardHandler expone el tablero financiero del proyecto y sus artefactos
// derivados (estado de cuenta PDF y gráfico de gasto PNG).
type DashboardHandler struct {
	uc *report.UseCase
}

// NewDashboardHandler construye el handler del tablero.
func NewDashboardHandler(uc *report.UseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Resumen financiero del proyecto
// @Tags         dashboard
// @Produce      json
// @Param        id  path  string  true  "project id"
// @Success      200  {object}  dto.ProjectDashboardDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/dashboard [get]
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.Context(), c.Params("id"))
	if err != nil {
		return dashboardError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Estado de cuenta del proyecto en PDF
// @Tags         dashboard
// @Produce      application/pdf
// @Param        id  path  string  true  "project id"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/statement.pdf [get]
func (h *DashboardHandler) Statement(c *fiber.Ctx) error {
	data, err := h.uc.Statement(c.Context(), c.Params("id"))
	if err != nil {
		return dashboardError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="statement.pdf"`)
	return c.Send(data)
}

// SpendChart godoc
// @Summary      Gráfico de gasto mensual con pronóstico en PNG
// @Tags         dashboard
// @Produce      image/png
// @Param        id  path  string  true  "project id"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/chart.png [get]
func (h *DashboardHandler) SpendChart(c *fiber.Ctx) error {
	data, err := h.uc.SpendChart(c.Context(), c.Params("id"))
	if err != nil {
		return dashboardError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

func dashboardError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el proyecto no existe"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
