// Package project casos de uso de administración de proyectos: creación y
// edición por el admin/manager. Los proyectos nunca se eliminan; el fin de su
// ciclo de vida se modela con el estado.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/phone"
)

// UseCase CRUD (sin delete) de proyectos.
type UseCase struct {
	repo     repository.ProjectRepository
	validate *validator.Validate
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ProjectRepository) *UseCase {
	return &UseCase{repo: repo, validate: validator.New()}
}

// Create crea un proyecto en estado ACTIVE con presupuesto por departamento.
// Las asignaciones no pueden ser negativas; los identificadores de equipo y
// manager se normalizan a la forma canónica.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	for dept, alloc := range in.Departments {
		if alloc.IsNegative() {
			return nil, fmt.Errorf("%w: asignación negativa para %q", domain.ErrInvalidInput, dept)
		}
	}

	members := make([]string, 0, len(in.TeamMembers))
	for _, m := range in.TeamMembers {
		members = append(members, phone.Normalize(m))
	}

	now := time.Now()
	p := &entity.Project{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Description:    in.Description,
		Status:         entity.ProjectActive,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		TeamMembers:    members,
		ManagerID:      phone.Normalize(in.ManagerID),
		TempApproverID: phone.Normalize(in.TempApproverID),
		Departments:    in.Departments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// GetByID obtiene un proyecto por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return ToProjectResponse(p), nil
}

// Update edición con semántica merge. El estado solo puede moverse dentro del
// conjunto cerrado ACTIVE/COMPLETED/CANCELLED.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		if !entity.ValidProjectStatus(*in.Status) {
			return nil, domain.ErrInvalidInput
		}
		p.Status = *in.Status
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = *in.EndDate
	}
	if in.TeamMembers != nil {
		members := make([]string, 0, len(in.TeamMembers))
		for _, m := range in.TeamMembers {
			members = append(members, phone.Normalize(m))
		}
		p.TeamMembers = members
	}
	if in.TempApproverID != nil {
		p.TempApproverID = phone.Normalize(*in.TempApproverID)
	}
	if len(in.Departments) > 0 {
		for dept, alloc := range in.Departments {
			if alloc.IsNegative() {
				return nil, fmt.Errorf("%w: asignación negativa para %q", domain.ErrInvalidInput, dept)
			}
		}
		p.Departments = in.Departments
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// ToProjectResponse mapea la entidad al DTO de salida con el presupuesto derivado.
func ToProjectResponse(p *entity.Project) *dto.ProjectResponse {
	if p == nil {
		return nil
	}
	return &dto.ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		TeamMembers:    p.TeamMembers,
		ManagerID:      p.ManagerID,
		TempApproverID: p.TempApproverID,
		Departments:    p.Departments,
		Budget:         p.NominalBudget(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
