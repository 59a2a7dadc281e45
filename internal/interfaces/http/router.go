package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/admin"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/auth"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	DeclarationUC *declaration.UseCase
	PDFUC         *declaration.PDFUseCase
	AdminUC       *admin.UseCase
	Clock         ica.Clock
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	adminHandler := NewAdminHandler(deps.AdminUC)

	// Municipios habilitados (público: el selector de alcaldía del frontal)
	api.Get("/municipalities", adminHandler.ListMunicipalities)

	// Hora legal colombiana (público): el frontal la usa como referencia de
	// fechas de firma y radicación.
	api.Get("/time", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"colombia_time": deps.Clock.Now().Format(time.RFC3339),
			"timezone":      "America/Bogota (UTC-5)",
		})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Declaraciones
	decls := protected.Group("/declarations")
	declHandler := NewDeclarationHandler(deps.DeclarationUC, deps.PDFUC)
	decls.Post("/", declHandler.Create)
	decls.Get("/", declHandler.List)
	decls.Get("/:id", declHandler.GetByID)
	decls.Put("/:id", declHandler.Update)
	decls.Get("/:id/calculation", declHandler.Calculate)
	decls.Post("/:id/sign", declHandler.Sign)
	decls.Post("/:id/correct", declHandler.Correct)
	decls.Get("/:id/verify", declHandler.Verify)
	decls.Post("/:id/pdf", declHandler.GeneratePDF)
	decls.Get("/:id/pdf", declHandler.DownloadPDF)

	// Catálogo de actividades (lectura para cualquier autenticado)
	protected.Get("/catalog", adminHandler.ListCatalog)

	// Administración (solo administradores)
	adminGroup := protected.Group("/admin", RequireRole(entity.RoleAdminAlcaldia, entity.RoleAdminSistema))
	adminGroup.Get("/config", adminHandler.GetConfig)
	adminGroup.Put("/config", adminHandler.UpdateConfig)
	adminGroup.Put("/catalog", adminHandler.UpsertCatalogEntry)
	adminGroup.Get("/params", adminHandler.ListParams)
	adminGroup.Put("/params/:key", adminHandler.SetParam)
}
