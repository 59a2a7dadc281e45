package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/declaration"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
)

// DeclarationHandler maneja el ciclo de vida de las declaraciones (protegido).
type DeclarationHandler struct {
	uc    *declaration.UseCase
	pdfUC *declaration.PDFUseCase
}

// NewDeclarationHandler construye el handler.
func NewDeclarationHandler(uc *declaration.UseCase, pdfUC *declaration.PDFUseCase) *DeclarationHandler {
	return &DeclarationHandler{uc: uc, pdfUC: pdfUC}
}

// Create crea una declaración en borrador.
// POST /api/declarations
func (h *DeclarationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeclarationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := GetActor(c)
	if in.MunicipalityID == "" {
		in.MunicipalityID = actor.MunicipalityID
	}
	resp, err := h.uc.Create(actor, in, GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List lista declaraciones con alcance según rol y filtros de búsqueda.
// GET /api/declarations
func (h *DeclarationHandler) List(c *fiber.Ctx) error {
	year, _ := strconv.Atoi(c.Query("tax_year"))
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	f := repository.DeclarationFilter{
		Status:         c.Query("status"),
		TaxYear:        year,
		FilingNumber:   c.Query("filing_number"),
		FormNumber:     c.Query("form_number"),
		DocumentNumber: c.Query("document_number"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	}
	resp, err := h.uc.List(GetActor(c), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetByID obtiene la declaración completa con sus valores calculados.
// GET /api/declarations/:id
func (h *DeclarationHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.Get(GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update actualiza secciones del borrador y recalcula.
// PUT /api/declarations/:id
func (h *DeclarationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDeclarationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(GetActor(c), c.Params("id"), in, GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Calculate devuelve los valores derivados frescos sin persistir cambios.
// GET /api/declarations/:id/calculation
func (h *DeclarationHandler) Calculate(c *fiber.Ctx) error {
	resp, err := h.uc.Calculate(GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Sign firma la declaración: radicado, huella de integridad y congelamiento.
// POST /api/declarations/:id/sign
func (h *DeclarationHandler) Sign(c *fiber.Ctx) error {
	var in dto.SignDeclarationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Sign(c.Context(), GetActor(c), c.Params("id"), in, GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Correct crea el borrador de corrección de una declaración firmada.
// POST /api/declarations/:id/correct
func (h *DeclarationHandler) Correct(c *fiber.Ctx) error {
	resp, err := h.uc.Correct(c.Context(), GetActor(c), c.Params("id"), GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Verify recalcula la huella de integridad de la declaración firmada.
// GET /api/declarations/:id/verify
func (h *DeclarationHandler) Verify(c *fiber.Ctx) error {
	if err := h.uc.VerifyIntegrity(GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"verified": true})
}

// GeneratePDF genera el PDF oficial y lo devuelve; la primera generación
// marca la declaración como presentada.
// POST /api/declarations/:id/pdf
func (h *DeclarationHandler) GeneratePDF(c *fiber.Ctx) error {
	data, filename, err := h.pdfUC.Generate(c.Context(), GetActor(c), c.Params("id"), GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DownloadPDF sirve el PDF ya generado.
// GET /api/declarations/:id/pdf
func (h *DeclarationHandler) DownloadPDF(c *fiber.Ctx) error {
	path, filename, err := h.pdfUC.Download(GetActor(c), c.Params("id"), GetMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendFile(path)
}
