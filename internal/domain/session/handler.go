package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/register/sessions", auth.RequireRole(auth.RoleRegistrar))
	g.POST("", h.Open)
	g.GET("/:sid", h.Get)
	g.DELETE("/:sid", h.Close)
}

func (h *Handler) Open(c echo.Context) error {
	s := h.registry.Open()
	zerolog.Ctx(c.Request().Context()).Info().
		Str("session_id", s.ID.String()).
		Str("user_id", auth.UserIDFromContext(c.Request().Context())).
		Msg("register session opened")
	return c.JSON(http.StatusCreated, s.View())
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.registry.Get(c.Param("sid"))
	if err != nil {
		return careline.HTTPError(err)
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *Handler) Close(c echo.Context) error {
	if err := h.registry.Close(c.Param("sid")); err != nil {
		return careline.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
