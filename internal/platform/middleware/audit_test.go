package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
)

type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// routedContext builds a context as the router leaves it for route, with
// the given path params.
func routedContext(method, path, route string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(auth.WithUser(req.Context(), "nurse-1", []string{auth.RoleEditor}))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath(route)
	var names, values []string
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	c.Set("request_id", "req-1")
	return c, rec
}

func TestAudit_EditSave(t *testing.T) {
	var buf bytes.Buffer
	recorder := &mockRecorder{}
	mw := Audit(zerolog.New(&buf), recorder)

	c, _ := routedContext(http.MethodPut, "/api/v1/edit/12345/stay", "/api/v1/edit/:attendance/stay",
		map[string]string{"attendance": "12345"})
	if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recorder.count() != 1 {
		t.Fatalf("expected 1 entry, got %d", recorder.count())
	}
	e := recorder.entries[0]
	if e.UserID != "nurse-1" || e.Area != "edit" || e.Resource != "stay" || e.AttendanceNumber != "12345" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Action != "update" || e.StatusCode != http.StatusOK || e.RequestID != "req-1" {
		t.Errorf("unexpected entry %+v", e)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["type"] != "case_audit" || line["resource"] != "stay" || line["message"] != "case_data_access" {
		t.Errorf("unexpected log line %v", line)
	}
}

func TestAudit_RegisterSessionError(t *testing.T) {
	recorder := &mockRecorder{}
	mw := Audit(zerolog.Nop(), recorder)

	c, _ := routedContext(http.MethodPost, "/api/v1/register/sessions/abc/admission",
		"/api/v1/register/sessions/:sid/admission", map[string]string{"sid": "abc"})
	err := mw(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "no intake")
	})(c)
	if err == nil {
		t.Fatal("expected the handler error to pass through")
	}

	e := recorder.entries[0]
	if e.Area != "register" || e.Resource != "admission" || e.SessionID != "abc" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Action != "create" || e.StatusCode != http.StatusConflict {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestAudit_SkipsPathsOutsideAPI(t *testing.T) {
	recorder := &mockRecorder{}
	mw := Audit(zerolog.Nop(), recorder)

	c, _ := routedContext(http.MethodGet, "/health", "/health", nil)
	if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.count() != 0 {
		t.Errorf("expected no audit entry, got %d", recorder.count())
	}
}

func TestAudit_RecorderFailureDoesNotFailRequest(t *testing.T) {
	recorder := &mockRecorder{err: errors.New("sink down")}
	mw := Audit(zerolog.Nop(), recorder)

	c, rec := routedContext(http.MethodGet, "/api/v1/edit/candidates", "/api/v1/edit/candidates", nil)
	if err := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c); err != nil {
		t.Fatalf("expected no error when recorder fails, got %v", err)
	}
	if rec.Code != http.StatusOK || recorder.count() != 1 {
		t.Errorf("code %d, entries %d", rec.Code, recorder.count())
	}
}

func TestRouteParts(t *testing.T) {
	tests := []struct {
		route, area, resource string
	}{
		{"/api/v1/edit/:attendance/post-discharge", "edit", "post-discharge"},
		{"/api/v1/register/sessions", "register", "sessions"},
		{"/api/v1/register/sessions/:sid", "register", "sessions"},
		{"/api/v1/catalog", "catalog", "catalog"},
		{"", "unknown", "unknown"},
		{"/health", "unknown", "unknown"},
	}
	for _, tt := range tests {
		area, resource := routeParts(tt.route)
		if area != tt.area || resource != tt.resource {
			t.Errorf("routeParts(%q) = %q, %q; want %q, %q", tt.route, area, resource, tt.area, tt.resource)
		}
	}
}
