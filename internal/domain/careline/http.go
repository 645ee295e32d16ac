package careline

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError maps a stage operation error onto an echo.HTTPError. Errors that
// are already HTTP errors pass through.
func HTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return err
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, ErrNothingToEdit):
		return echo.NewHTTPError(http.StatusNotFound, "nothing to edit").SetInternal(err)
	case errors.Is(err, ErrNotSelectable), errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, ErrNoIntake):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "dataset storage failure").SetInternal(err)
}

// SessionParam resolves the register session named by the :sid path param.
func SessionParam(c echo.Context, src SessionSource) (*Session, error) {
	sess, err := src.Get(c.Param("sid"))
	if err != nil {
		return nil, HTTPError(err)
	}
	return sess, nil
}

// SelectionParam resolves the :attendance path param through the selector,
// narrowed by the hospital and care_line query filters.
func SelectionParam(c echo.Context, sel Selector) (Selection, error) {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return Selection{}, err
	}
	s, err := sel.Select(c.Request().Context(), f, c.Param("attendance"))
	if err != nil {
		return Selection{}, HTTPError(err)
	}
	return s, nil
}
