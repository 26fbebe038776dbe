package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/services"
)

const auditBodyLimit = 2000

// AuditLog records write operations (POST/PUT/PATCH/DELETE) performed by
// admins and moderators. Roles are resolved by the auth middleware further
// down the chain, so the decision is taken after the handler has run.
func AuditLog(audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if !isWriteMethod(method) {
			c.Next()
			return
		}

		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > auditBodyLimit {
				bodySnippet = bodySnippet[:auditBodyLimit] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		role := GetRole(c)
		if !models.IsStaffRole(role) {
			return
		}

		var uid *uint
		if userID := GetUserID(c); userID > 0 {
			uid = &userID
		}

		resource, action := parseRouteInfo(c.FullPath(), method)
		audit.Record(&models.AuditLog{
			UserID:    uid,
			Role:      role,
			Resource:  resource,
			Action:    action,
			Method:    method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Body:      bodySnippet,
		})
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// parseRouteInfo extracts resource and action from a gin route pattern.
//
//	"/api/ngo/:id" + PATCH                 → "ngo", "update"
//	"/api/admin/events/:id/approve" + POST → "events", "approve"
//	"/api/admin/users/:id" + DELETE        → "users", "delete"
func parseRouteInfo(fullPath, method string) (resource, action string) {
	var segments []string
	for _, s := range strings.Split(strings.TrimPrefix(fullPath, "/api/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 0 && segments[0] == "admin" {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "unknown", strings.ToLower(method)
	}

	resource = segments[0]
	if last := segments[len(segments)-1]; len(segments) > 1 && !strings.HasPrefix(last, ":") {
		return resource, last
	}

	switch method {
	case http.MethodPost:
		action = "create"
	case http.MethodPut, http.MethodPatch:
		action = "update"
	case http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return resource, action
}

// maskSensitiveFields replaces sensitive values in a JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "old_password", "new_password", "secret", "token", "refresh_token", "access_token"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of the JSON string value for key
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+key+"\"")
	if idx == -1 {
		return body
	}

	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(body) {
		return body
	}

	if body[valueStart] == '"' {
		endQuote := strings.Index(body[valueStart+1:], "\"")
		if endQuote == -1 {
			return body
		}
		return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
	}
	return body
}
