package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor("/")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := paramsFor("/?limit=50&offset=10")
	if p.Limit != 50 || p.Offset != 10 {
		t.Errorf("expected 50/10, got %d/%d", p.Limit, p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := paramsFor("/?limit=1000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := paramsFor("/?offset=-5")
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestParams_Window(t *testing.T) {
	tests := []struct {
		p      Params
		total  int
		lo, hi int
	}{
		{Params{Limit: 20, Offset: 0}, 10, 0, 10},
		{Params{Limit: 3, Offset: 3}, 10, 3, 6},
		{Params{Limit: 5, Offset: 8}, 10, 8, 10},
		{Params{Limit: 5, Offset: 40}, 10, 10, 10},
	}
	for _, tt := range tests {
		lo, hi := tt.p.Window(tt.total)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("%+v.Window(%d) = %d,%d want %d,%d", tt.p, tt.total, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if resp.Total != 10 || !resp.HasMore {
		t.Errorf("unexpected response %+v", resp)
	}
	resp = NewResponse([]string{"a"}, 3, 2, 2)
	if resp.HasMore {
		t.Error("expected no more results on last page")
	}
}
