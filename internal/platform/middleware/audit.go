package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
)

const auditPrefix = "/api/v1/"

// AuditEntry records who touched which case data, when and from where.
type AuditEntry struct {
	UserID    string
	UserRoles []string
	// Area is the first route segment under /api/v1: register, edit, catalog...
	Area string
	// Resource is the last static route segment: a stage slug, "sessions",
	// "candidates"...
	Resource         string
	AttendanceNumber string
	SessionID        string
	Action           string // read, create, update, delete
	IPAddress        string
	UserAgent        string
	Route            string
	Path             string
	Method           string
	Timestamp        time.Time
	RequestID        string
	StatusCode       int
}

// AuditRecorder persists audit entries beyond the log line the middleware
// always writes.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every /api/v1 request after it completes: the authenticated
// user, the route, the attendance number or register session involved and
// the resulting status. Requests outside /api/v1 pass through untouched.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, auditPrefix) {
				return next(c)
			}

			err := next(c)

			route := c.Path()
			entry := AuditEntry{
				Timestamp:        time.Now().UTC(),
				Route:            route,
				Path:             req.URL.Path,
				Method:           req.Method,
				Action:           httpMethodToAction(req.Method),
				IPAddress:        c.RealIP(),
				UserAgent:        req.UserAgent(),
				StatusCode:       responseStatus(c, err),
				AttendanceNumber: c.Param("attendance"),
				SessionID:        c.Param("sid"),
			}
			entry.Area, entry.Resource = routeParts(route)

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRoles = auth.RolesFromContext(ctx)
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			evt := logger.Info()
			if entry.StatusCode == http.StatusUnauthorized || entry.StatusCode == http.StatusForbidden {
				evt = logger.Warn()
			}
			evt.
				Str("type", "case_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("area", entry.Area).
				Str("resource", entry.Resource).
				Str("attendance_number", entry.AttendanceNumber).
				Str("session_id", entry.SessionID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("route", entry.Route).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("case_data_access")

			return err
		}
	}
}

func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if c.Response().Committed {
		return c.Response().Status
	}
	return http.StatusInternalServerError
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// routeParts splits a route template such as /api/v1/edit/:attendance/stay
// into its area ("edit") and its last static segment ("stay"). Unmatched
// routes yield "unknown".
func routeParts(route string) (area, resource string) {
	area, resource = "unknown", "unknown"
	if !strings.HasPrefix(route, auditPrefix) {
		return area, resource
	}
	var static []string
	for _, seg := range strings.Split(strings.TrimPrefix(route, auditPrefix), "/") {
		if seg != "" && !strings.HasPrefix(seg, ":") && seg != "*" {
			static = append(static, seg)
		}
	}
	if len(static) > 0 {
		area = static[0]
		resource = static[len(static)-1]
	}
	return area, resource
}
