// Package admin casos de uso de administración por alcaldía: configuración
// marca blanca, catálogo de actividades y parámetros de fórmula. El
// administrador de alcaldía opera solo sobre su municipio; el de sistema
// sobre cualquiera.
package admin

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/ica-declaraciones-api/internal/application/dto"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/entity"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/ica"
	"github.com/jhoicas/ica-declaraciones-api/internal/domain/repository"
	"github.com/jhoicas/ica-declaraciones-api/pkg/logger"
)

// UseCase administración de la plataforma por municipio.
type UseCase struct {
	muniRepo    repository.MunicipalityRepository
	catalogRepo repository.ActivityCatalogRepository
	paramRepo   repository.FormulaParamRepository
	clock       ica.Clock
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	muniRepo repository.MunicipalityRepository,
	catalogRepo repository.ActivityCatalogRepository,
	paramRepo repository.FormulaParamRepository,
	clock ica.Clock,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		muniRepo:    muniRepo,
		catalogRepo: catalogRepo,
		paramRepo:   paramRepo,
		clock:       clock,
		log:         log,
	}
}

// resolveMunicipality determina sobre qué municipio opera el actor: el
// administrador de alcaldía siempre sobre el suyo, el de sistema sobre el que
// indique. Cualquier otro rol es rechazado.
func resolveMunicipality(actor dto.Actor, requested string) (string, error) {
	switch actor.Role {
	case entity.RoleAdminAlcaldia:
		return actor.MunicipalityID, nil
	case entity.RoleAdminSistema:
		if requested != "" {
			return requested, nil
		}
		return actor.MunicipalityID, nil
	default:
		return "", domain.ErrForbidden
	}
}

// ListMunicipalities lista los municipios habilitados (endpoint público para
// el selector de alcaldía del frontal).
func (uc *UseCase) ListMunicipalities() ([]*dto.MunicipalityResponse, error) {
	list, err := uc.muniRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MunicipalityResponse, 0, len(list))
	for _, m := range list {
		out = append(out, &dto.MunicipalityResponse{
			ID:         m.ID,
			Code:       m.Code,
			Name:       m.Name,
			Department: m.Department,
			IsActive:   m.IsActive,
		})
	}
	return out, nil
}

// GetConfig devuelve la configuración marca blanca del municipio; sin
// registro previo devuelve los valores por defecto de la plataforma.
func (uc *UseCase) GetConfig(actor dto.Actor, municipalityID string) (*dto.WhiteLabelConfigResponse, error) {
	muniID, err := resolveMunicipality(actor, municipalityID)
	if err != nil {
		return nil, err
	}
	cfg, err := uc.muniRepo.GetConfig(muniID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = defaultConfig(muniID)
	}
	return toConfigResponse(cfg), nil
}

// UpdateConfig actualiza la identidad marca blanca del municipio. Campos
// vacíos del request conservan el valor vigente.
func (uc *UseCase) UpdateConfig(actor dto.Actor, municipalityID string, in dto.WhiteLabelConfigRequest) (*dto.WhiteLabelConfigResponse, error) {
	muniID, err := resolveMunicipality(actor, municipalityID)
	if err != nil {
		return nil, err
	}
	if verrs := validateConfig(in); len(verrs) > 0 {
		return nil, verrs
	}
	cfg, err := uc.muniRepo.GetConfig(muniID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = defaultConfig(muniID)
		cfg.ID = uuid.New().String()
	}

	setStr := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setStr(&cfg.LogoPath, in.LogoPath)
	setStr(&cfg.PrimaryColor, in.PrimaryColor)
	setStr(&cfg.SecondaryColor, in.SecondaryColor)
	setStr(&cfg.AccentColor, in.AccentColor)
	setStr(&cfg.FontFamily, in.FontFamily)
	setStr(&cfg.HeaderText, in.HeaderText)
	setStr(&cfg.FooterText, in.FooterText)
	setStr(&cfg.LegalNotes, in.LegalNotes)
	setStr(&cfg.FormTitle, in.FormTitle)
	setStr(&cfg.FilingPrefix, in.FilingPrefix)
	if in.FilingDigits > 0 {
		cfg.FilingDigits = in.FilingDigits
	}
	cfg.UpdatedAt = uc.clock.Now()
	cfg.UpdatedBy = actor.UserID

	if err := uc.muniRepo.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("municipality_id", muniID).Msg("configuración marca blanca actualizada")
	return toConfigResponse(cfg), nil
}

// ListCatalog lista el catálogo de actividades del municipio. Accesible para
// cualquier usuario autenticado del municipio (el formulario lo necesita).
func (uc *UseCase) ListCatalog(actor dto.Actor, municipalityID string) ([]*dto.CatalogEntryResponse, error) {
	muniID := municipalityID
	if actor.Role != entity.RoleAdminSistema || muniID == "" {
		muniID = actor.MunicipalityID
	}
	list, err := uc.catalogRepo.ListByMunicipality(muniID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CatalogEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toCatalogResponse(e))
	}
	return out, nil
}

// UpsertCatalogEntry crea o actualiza una actividad del catálogo del
// municipio, identificada por su código CIIU.
func (uc *UseCase) UpsertCatalogEntry(actor dto.Actor, municipalityID string, in dto.CatalogEntryRequest) (*dto.CatalogEntryResponse, error) {
	muniID, err := resolveMunicipality(actor, municipalityID)
	if err != nil {
		return nil, err
	}
	var verrs domain.ValidationErrors
	if strings.TrimSpace(in.CIIUCode) == "" {
		verrs = append(verrs, domain.FieldError{Field: "ciiu_code", Reason: "es obligatorio"})
	}
	if strings.TrimSpace(in.Description) == "" {
		verrs = append(verrs, domain.FieldError{Field: "description", Reason: "es obligatoria"})
	}
	if in.RatePerMille.IsNegative() {
		verrs = append(verrs, domain.FieldError{Field: "rate_per_mille", Reason: "no puede ser negativa"})
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	existing, err := uc.catalogRepo.GetByCode(muniID, in.CIIUCode)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		e := &entity.ActivityCatalogEntry{
			ID:             uuid.New().String(),
			MunicipalityID: muniID,
			CIIUCode:       in.CIIUCode,
			Description:    in.Description,
			RatePerMille:   in.RatePerMille,
			IsActive:       true,
			CreatedAt:      uc.clock.Now(),
		}
		if in.IsActive != nil {
			e.IsActive = *in.IsActive
		}
		if err := uc.catalogRepo.Create(e); err != nil {
			return nil, err
		}
		return toCatalogResponse(e), nil
	}

	existing.Description = in.Description
	existing.RatePerMille = in.RatePerMille
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}
	if err := uc.catalogRepo.Update(existing); err != nil {
		return nil, err
	}
	return toCatalogResponse(existing), nil
}

// ListParams lista los parámetros de fórmula del municipio.
func (uc *UseCase) ListParams(actor dto.Actor, municipalityID string) ([]*dto.FormulaParamResponse, error) {
	muniID, err := resolveMunicipality(actor, municipalityID)
	if err != nil {
		return nil, err
	}
	list, err := uc.paramRepo.ListByMunicipality(muniID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.FormulaParamResponse, 0, len(list))
	for _, p := range list {
		out = append(out, &dto.FormulaParamResponse{
			MunicipalityID: p.MunicipalityID,
			Key:            p.Key,
			Value:          p.Value,
		})
	}
	return out, nil
}

// SetParam fija el valor de un parámetro de fórmula (ej. tarifa Ley 56 por
// kW). El motor lo consumirá en el siguiente recálculo; declaraciones ya
// firmadas no se ven afectadas.
func (uc *UseCase) SetParam(actor dto.Actor, municipalityID, key string, in dto.FormulaParamRequest) (*dto.FormulaParamResponse, error) {
	muniID, err := resolveMunicipality(actor, municipalityID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, domain.ValidationErrors{{Field: "key", Reason: "es obligatoria"}}
	}
	if in.Value.IsNegative() {
		return nil, domain.ValidationErrors{{Field: "value", Reason: "no puede ser negativo"}}
	}
	p := &entity.FormulaParam{
		ID:             uuid.New().String(),
		MunicipalityID: muniID,
		Key:            key,
		Value:          in.Value,
		UpdatedAt:      uc.clock.Now(),
	}
	if err := uc.paramRepo.Upsert(p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("municipality_id", muniID).Str("key", key).Str("value", in.Value.String()).Msg("parámetro de fórmula actualizado")
	return &dto.FormulaParamResponse{MunicipalityID: muniID, Key: key, Value: in.Value}, nil
}

// validateConfig valida los colores hex del request.
func validateConfig(in dto.WhiteLabelConfigRequest) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	checkColor := func(field, v string) {
		if v == "" {
			return
		}
		if !isHexColor(v) {
			verrs = append(verrs, domain.FieldError{Field: field, Reason: "debe ser un color hex, ej. #003366"})
		}
	}
	checkColor("primary_color", in.PrimaryColor)
	checkColor("secondary_color", in.SecondaryColor)
	checkColor("accent_color", in.AccentColor)
	// 0 significa "conservar el valor actual" (campo omitido en el body).
	if in.FilingDigits < 0 || in.FilingDigits > 20 {
		verrs = append(verrs, domain.FieldError{Field: "filing_digits", Reason: "debe estar entre 1 y 20, o 0 para conservar el actual"})
	}
	return verrs
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// defaultConfig identidad por defecto de la plataforma cuando el municipio
// aún no ha personalizado nada.
func defaultConfig(municipalityID string) *entity.WhiteLabelConfig {
	return &entity.WhiteLabelConfig{
		MunicipalityID: municipalityID,
		PrimaryColor:   "#003366",
		SecondaryColor: "#f0f4f8",
		AccentColor:    "#c8a415",
		FontFamily:     "Helvetica",
		FormTitle:      "Declaración Privada del Impuesto de Industria y Comercio",
		FilingDigits:   16,
	}
}

func toConfigResponse(cfg *entity.WhiteLabelConfig) *dto.WhiteLabelConfigResponse {
	return &dto.WhiteLabelConfigResponse{
		MunicipalityID: cfg.MunicipalityID,
		LogoPath:       cfg.LogoPath,
		PrimaryColor:   cfg.PrimaryColor,
		SecondaryColor: cfg.SecondaryColor,
		AccentColor:    cfg.AccentColor,
		FontFamily:     cfg.FontFamily,
		HeaderText:     cfg.HeaderText,
		FooterText:     cfg.FooterText,
		LegalNotes:     cfg.LegalNotes,
		FormTitle:      cfg.FormTitle,
		FilingPrefix:   cfg.FilingPrefix,
		FilingDigits:   cfg.FilingDigits,
	}
}

func toCatalogResponse(e *entity.ActivityCatalogEntry) *dto.CatalogEntryResponse {
	return &dto.CatalogEntryResponse{
		ID:             e.ID,
		MunicipalityID: e.MunicipalityID,
		CIIUCode:       e.CIIUCode,
		Description:    e.Description,
		RatePerMille:   e.RatePerMille,
		IsActive:       e.IsActive,
	}
}
