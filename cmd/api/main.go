package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/avrapps/gastos-api/internal/application/auth"
	"github.com/avrapps/gastos-api/internal/application/expense"
	"github.com/avrapps/gastos-api/internal/application/project"
	"github.com/avrapps/gastos-api/internal/application/report"
	"github.com/avrapps/gastos-api/internal/application/session"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	infrachart "github.com/avrapps/gastos-api/internal/infrastructure/chart"
	"github.com/avrapps/gastos-api/internal/infrastructure/identity"
	"github.com/avrapps/gastos-api/internal/infrastructure/local"
	infrapdf "github.com/avrapps/gastos-api/internal/infrastructure/pdf"
	"github.com/avrapps/gastos-api/internal/infrastructure/postgres"
	httpRouter "github.com/avrapps/gastos-api/internal/interfaces/http"
	"github.com/avrapps/gastos-api/pkg/config"
	"github.com/avrapps/gastos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool, log)
	expenseRepo := postgres.NewExpenseRepository(pool)

	// Caché local de sesión: reanuda la última identidad tras un reinicio.
	var sessionCache *local.SQLiteCache
	if cfg.Session.CachePath != "" {
		sessionCache, err = local.Open(cfg.Session.CachePath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir caché local de sesión")
		}
		defer sessionCache.Close()
	}

	var store *session.Store
	if sessionCache != nil {
		store = session.NewStore(sessionCache)
	} else {
		store = session.NewStore(nil)
	}

	smsSender := identity.NewLogSMSSender(log)
	provider := identity.NewProvider(pool, smsSender, cfg.OTP)
	resolver := auth.NewResolver(provider, userRepo, store, log)

	notifier := identity.NewLogNotifier(log)
	aggregator := expense.NewAggregator(expenseRepo, notifier, log)

	// Cada snapshot de proyectos dispara el refresh de la cola de pendientes.
	synchronizer := appsync.NewSynchronizer(projectRepo, log, func(ctx context.Context, visible []*entity.Project) {
		if _, err := aggregator.RefreshPending(ctx, visible); err != nil {
			log.Warn().Err(err).Msg("refresh de pendientes tras snapshot falló")
		}
	})

	submitter := expense.NewSubmitter(projectRepo, expenseRepo)
	projectUC := project.NewUseCase(projectRepo)

	pdfGenerator := infrapdf.NewMarotoStatementGenerator()
	chartRenderer := infrachart.NewPlotRenderer()
	reportUC := report.NewUseCase(projectRepo, expenseRepo, aggregator, pdfGenerator, chartRenderer)

	// Stale-while-revalidate: reanudar la sesión guardada y revalidarla contra
	// el backend en segundo plano.
	if sessionCache != nil {
		restored, err := resolver.RestoreSession(ctx, sessionCache)
		if err != nil {
			log.Warn().Err(err).Msg("reanudar sesión persistida")
		}
		if restored {
			go func() {
				if err := resolver.Revalidate(ctx); err != nil {
					log.Warn().Err(err).Msg("revalidación de sesión")
					return
				}
				if ident, ok := store.Current(); ok {
					if _, err := synchronizer.Subscribe(ctx, ident); err != nil {
						log.Warn().Err(err).Msg("suscripción inicial de proyectos")
					}
				}
			}()
		}
	}
	defer synchronizer.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AVR Gastos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       resolver,
		Synchronizer: synchronizer,
		ProjectUC:    projectUC,
		Submitter:    submitter,
		Aggregator:   aggregator,
		ReportUC:     reportUC,
		Projects:     projectRepo,
		Expenses:     expenseRepo,
		JWT:          cfg.JWT,
		BaseCtx:      ctx,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
