package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/project"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// ProjectHandler maneja creación, edición y listado de proyectos.
type ProjectHandler struct {
	uc       *project.UseCase
	projects repository.ProjectRepository
}

// NewProjectHandler construye el handler de proyectos.
func NewProjectHandler(uc *project.UseCase, projects repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{uc: uc, projects: projects}
}

// Create godoc
// @Summary      Crear proyecto
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProjectRequest  true  "proyecto"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el proyecto ya existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar proyecto (semántica merge)
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "project id"
// @Param        body  body  dto.UpdateProjectRequest  true  "campos a modificar"
// @Success      200   {object}  dto.ProjectResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el proyecto no existe"})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener proyecto por ID
// @Tags         projects
// @Produce      json
// @Param        id  path  string  true  "project id"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el proyecto no existe"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proyectos visibles según el rol del llamador
// @Description  El predicado de visibilidad corre en el servidor. El parámetro
// @Description  status solo filtra para el administrador; para los demás roles
// @Description  se ignora (su filtro por estado ya aplica en el predicado).
// @Tags         projects
// @Produce      json
// @Param        status  query  string  false  "ACTIVE | COMPLETED | CANCELLED (solo admin)"
// @Success      200  {object}  dto.ProjectListResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	ident := CallerIdentity(c)
	delivery, err := h.projects.List(c.Context(), appsync.QueryFor(ident))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	items := delivery.Projects
	if status := c.Query("status"); status != "" && ident.IsAdminSentinel() {
		filtered := make([]*entity.Project, 0, len(items))
		for _, p := range items {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}

	out := dto.ProjectListResponse{
		Items:   make([]dto.ProjectResponse, 0, len(items)),
		Skipped: delivery.Skipped,
	}
	for _, p := range items {
		out.Items = append(out.Items, *project.ToProjectResponse(p))
	}
	return c.JSON(out)
}
