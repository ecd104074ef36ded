package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/frontdesk/frontdesk/internal/platform/auth"
)

// AuditEntry records who touched which front-desk record.
type AuditEntry struct {
	UserID     int
	Role       string
	Resource   string
	ResourceID int
	Action     string // read, create, update, delete
	IPAddress  string
	Path       string
	Method     string
	StatusCode int
	RequestID  string
	Timestamp  time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// auditedResources are the /api collections holding personal data.
var auditedResources = map[string]bool{
	"patients":     true,
	"appointments": true,
	"queue":        true,
	"users":        true,
}

// Audit logs every access to personal data under /api. Entries always go
// to logger; recorder, when given, also receives them.
func Audit(logger zerolog.Logger, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			resource, id := splitAPIPath(req.URL.Path)
			if !auditedResources[resource] {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			rid, _ := c.Get("request_id").(string)
			ctx := req.Context()
			entry := AuditEntry{
				UserID:     auth.UserIDFromContext(ctx),
				Role:       auth.RoleFromContext(ctx),
				Resource:   resource,
				ResourceID: id,
				Action:     httpMethodToAction(req.Method),
				IPAddress:  c.RealIP(),
				Path:       req.URL.Path,
				Method:     req.Method,
				StatusCode: status,
				RequestID:  rid,
				Timestamp:  time.Now().UTC(),
			}

			if recorder != nil {
				if recErr := recorder.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).Str("request_id", rid).Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int("user_id", entry.UserID).
				Str("role", entry.Role).
				Str("resource", entry.Resource).
				Int("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Int("status", entry.StatusCode).
				Str("remote_ip", entry.IPAddress).
				Msg("record_access")

			return err
		}
	}
}

// splitAPIPath turns /api/patients/12/... into ("patients", 12).
func splitAPIPath(path string) (string, int) {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "", 0
	}
	segments := strings.Split(rest, "/")
	id := 0
	if len(segments) > 1 {
		id, _ = strconv.Atoi(segments[1])
	}
	return segments[0], id
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
