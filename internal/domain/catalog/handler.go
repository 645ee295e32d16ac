// Package catalog serves what a form renderer needs before any dataset is
// touched: the modes, the recognized choices of every closed field and the
// indicators placeholder.
package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/middleware"
)

// Mode is one entry of the top-level mode selector.
type Mode struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Available   bool   `json:"available"`
	Description string `json:"description"`
}

var Modes = []Mode{
	{Code: "register", Label: "Cadastrar", Available: true, Description: "Register a new case, stage by stage."},
	{Code: "edit", Label: "Editar", Available: true, Description: "Select an attendance and edit its stages."},
	{Code: "indicators", Label: "Indicadores", Available: false, Description: "Indicators and charts (coming soon)."},
}

// Response lists the choices of every closed field.
type Response struct {
	Hospitals  []string             `json:"hospitals"`
	CareLines  []string             `json:"care_lines"`
	Options    []careline.OptionSet `json:"options"`
	Stages     []careline.Stage     `json:"stages"`
	SurveyDays []int                `json:"survey_days"`
}

type Handler struct {
	catalog careline.Catalog
}

func NewHandler(catalog careline.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	cached := middleware.ETagMiddleware(middleware.StaticCacheConfig())
	api.GET("/modes", h.ListModes, cached)
	api.GET("/catalog", h.GetCatalog, cached)
	api.GET("/indicators", h.Indicators, cached)
}

func (h *Handler) ListModes(c echo.Context) error {
	return c.JSON(http.StatusOK, Modes)
}

func (h *Handler) GetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Hospitals: h.catalog.Hospitals,
		CareLines: h.catalog.CareLines,
		Options: []careline.OptionSet{
			careline.StatusOptions,
			careline.PerformedOptions,
			careline.SeverityOptions,
			careline.YesNoOptions,
		},
		Stages:     careline.Stages,
		SurveyDays: careline.SurveyDays,
	})
}

// Indicators is a placeholder; it has no behavior yet.
func (h *Handler) Indicators(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"title":     "Indicadores (em breve)",
		"message":   "Aqui virão gráficos e métricas geradas a partir dos datasets.",
		"available": false,
	})
}
