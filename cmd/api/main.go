package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/admin"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/auth"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
	infrapdf "github.com/jhoicas/ica-declaraciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ica-declaraciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ica-declaraciones-api/internal/interfaces/http"
	"github.com/jhoicas/ica-declaraciones-api/pkg/config"
	"github.com/jhoicas/ica-declaraciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	muniRepo := postgres.NewMunicipalityRepository(pool)
	declRepo := postgres.NewDeclarationRepository(pool)
	catalogRepo := postgres.NewActivityCatalogRepository(pool)
	paramRepo := postgres.NewFormulaParamRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clock := ica.SystemClock{}

	authUC := auth.NewAuthUseCase(userRepo, muniRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	declUC := declaration.NewUseCase(
		declRepo, muniRepo, catalogRepo, paramRepo, auditRepo,
		txRunner, clock, log.Component("declaraciones"),
	)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfStore := infrapdf.NewLocalStore(cfg.PDF.StoragePath)
	pdfUC := declaration.NewPDFUseCase(
		declRepo, muniRepo, auditRepo, pdfGenerator, pdfStore, clock, log.Component("pdf"),
	)

	adminUC := admin.NewUseCase(muniRepo, catalogRepo, paramRepo, clock, log.Component("admin"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    4 * 1024 * 1024, // firmas en base64
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		DeclarationUC: declUC,
		PDFUC:         pdfUC,
		AdminUC:       adminUC,
		Clock:         clock,
		JWTSecret:     cfg.JWT.Secret,
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
