package careline

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
)

// StageService is what every stage package implements for its form F.
type StageService[F any] interface {
	Register(ctx context.Context, sess *Session, f *F) (*SaveResult, error)
	Form(ctx context.Context, sel Selection) (*Prefill[F], error)
	Edit(ctx context.Context, sel Selection, f *F) (*SaveResult, error)
}

// StageHandler serves the register and edit endpoints of one stage.
type StageHandler[F any] struct {
	stage    Stage
	svc      StageService[F]
	sessions SessionSource
	selector Selector
}

func NewStageHandler[F any](stage Stage, svc StageService[F], sessions SessionSource, selector Selector) *StageHandler[F] {
	return &StageHandler[F]{stage: stage, svc: svc, sessions: sessions, selector: selector}
}

func (h *StageHandler[F]) RegisterRoutes(api *echo.Group) {
	reg := api.Group("/register/sessions/:sid", auth.RequireRole(auth.RoleRegistrar))
	reg.POST("/"+h.stage.Slug, h.Register)

	edit := api.Group("/edit/:attendance", auth.RequireRole(auth.RoleEditor))
	edit.GET("/"+h.stage.Slug, h.GetForm)
	edit.PUT("/"+h.stage.Slug, h.Save)
}

func (h *StageHandler[F]) Register(c echo.Context) error {
	sess, err := SessionParam(c, h.sessions)
	if err != nil {
		return err
	}
	var f F
	if err := c.Bind(&f); err != nil {
		return err
	}
	res, err := h.svc.Register(c.Request().Context(), sess, &f)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *StageHandler[F]) GetForm(c echo.Context) error {
	sel, err := SelectionParam(c, h.selector)
	if err != nil {
		return err
	}
	p, err := h.svc.Form(c.Request().Context(), sel)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *StageHandler[F]) Save(c echo.Context) error {
	sel, err := SelectionParam(c, h.selector)
	if err != nil {
		return err
	}
	var f F
	if err := c.Bind(&f); err != nil {
		return err
	}
	res, err := h.svc.Edit(c.Request().Context(), sel, &f)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}
