package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/avrapps/gastos-api/internal/application/auth"
	"github.com/avrapps/gastos-api/internal/application/expense"
	"github.com/avrapps/gastos-api/internal/application/project"
	"github.com/avrapps/gastos-api/internal/application/report"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.Resolver
	Synchronizer *appsync.Synchronizer
	ProjectUC    *project.UseCase
	Submitter    *expense.Submitter
	Aggregator   *expense.Aggregator
	ReportUC     *report.UseCase
	Projects     repository.ProjectRepository
	Expenses     repository.ExpenseRepository
	JWT          config.JWTConfig
	// BaseCtx contexto de vida del proceso para las suscripciones que abren los
	// handlers de auth.
	BaseCtx context.Context
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público: login y flujo OTP)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Synchronizer, deps.JWT, deps.BaseCtx)
	authGroup.Post("/login-email", authHandler.LoginEmail)
	authGroup.Post("/otp/request", authHandler.RequestOTP)
	authGroup.Post("/otp/verify", authHandler.VerifyOTP)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWT.Secret))

	authProtected := protected.Group("/auth")
	authProtected.Get("/me", authHandler.Me)
	authProtected.Post("/fcm-token", authHandler.RegisterFCMToken)
	authProtected.Post("/logout", authHandler.Logout)

	// Projects (protegido; crear/editar solo admin)
	projects := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.ProjectUC, deps.Projects)
	projects.Get("/", projectHandler.List)
	projects.Post("/", RequireRole(entity.RoleAdmin), projectHandler.Create)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Put("/:id", RequireRole(entity.RoleAdmin), projectHandler.Update)

	// Dashboard y artefactos derivados (protegido)
	dashboardHandler := NewDashboardHandler(deps.ReportUC)
	projects.Get("/:id/dashboard", dashboardHandler.Dashboard)
	projects.Get("/:id/statement.pdf", dashboardHandler.Statement)
	projects.Get("/:id/chart.png", dashboardHandler.SpendChart)

	// Expenses (protegido; revisión solo admin/aprobador)
	expenses := protected.Group("/expenses")
	expenseHandler := NewExpenseHandler(deps.Submitter, deps.Aggregator, deps.Expenses, deps.Projects)
	expenses.Post("/", expenseHandler.Submit)
	expenses.Get("/pending", RequireRole(entity.RoleAdmin, entity.RoleApprover), expenseHandler.Pending)
	projects.Patch("/:projectID/expenses/:id/status", RequireRole(entity.RoleAdmin, entity.RoleApprover), expenseHandler.Review)
}
