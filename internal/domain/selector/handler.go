package selector

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
	"github.com/i-monteiro/linhas-de-cuidado/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/edit", auth.RequireRole(auth.RoleEditor))
	g.GET("/candidates", h.ListCandidates)
}

// CandidatesResponse is the selector view: filter choices, the selectable
// attendance numbers and a page of the displayed rows.
type CandidatesResponse struct {
	*Candidates
	Rows *pagination.Response `json:"rows"`
}

func (h *Handler) ListCandidates(c echo.Context) error {
	var f careline.Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return err
	}
	cands, err := h.svc.Candidates(c.Request().Context(), f)
	if err != nil {
		return careline.HTTPError(err)
	}

	pg := pagination.FromContext(c)
	display := cands.Display()
	lo, hi := pg.Window(display.Len())
	page := make([]tabular.Record, 0, hi-lo)
	for i := lo; i < hi; i++ {
		page = append(page, display.Record(i))
	}
	return c.JSON(http.StatusOK, CandidatesResponse{
		Candidates: cands,
		Rows:       pagination.NewResponse(page, display.Len(), pg.Limit, pg.Offset),
	})
}
