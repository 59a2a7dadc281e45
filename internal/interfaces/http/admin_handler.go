package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/admin"
	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
)

// AdminHandler maneja la administración por alcaldía (protegido, solo
// administradores salvo el catálogo, que también lee el declarante).
type AdminHandler struct {
	uc *admin.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *admin.UseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// ListMunicipalities lista los municipios habilitados.
// GET /api/municipalities
func (h *AdminHandler) ListMunicipalities(c *fiber.Ctx) error {
	resp, err := h.uc.ListMunicipalities()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetConfig devuelve la configuración marca blanca.
// GET /api/admin/config
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	resp, err := h.uc.GetConfig(GetActor(c), c.Query("municipality_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpdateConfig actualiza la identidad marca blanca del municipio.
// PUT /api/admin/config
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	var in dto.WhiteLabelConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpdateConfig(GetActor(c), c.Query("municipality_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListCatalog lista el catálogo de actividades del municipio.
// GET /api/catalog
func (h *AdminHandler) ListCatalog(c *fiber.Ctx) error {
	resp, err := h.uc.ListCatalog(GetActor(c), c.Query("municipality_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpsertCatalogEntry crea o actualiza una actividad del catálogo.
// PUT /api/admin/catalog
func (h *AdminHandler) UpsertCatalogEntry(c *fiber.Ctx) error {
	var in dto.CatalogEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpsertCatalogEntry(GetActor(c), c.Query("municipality_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListParams lista los parámetros de fórmula del municipio.
// GET /api/admin/params
func (h *AdminHandler) ListParams(c *fiber.Ctx) error {
	resp, err := h.uc.ListParams(GetActor(c), c.Query("municipality_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// SetParam fija un parámetro de fórmula del municipio.
// PUT /api/admin/params/:key
func (h *AdminHandler) SetParam(c *fiber.Ctx) error {
	var in dto.FormulaParamRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.SetParam(GetActor(c), c.Query("municipality_id"), c.Params("key"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
