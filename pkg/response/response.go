package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/pkg/logger"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Application error codes. Conflict keeps its own code even though it is
// answered with 400 on the wire.
const (
	CodeValidation   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeTooMany      = 429
	CodeServer       = 500
)

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int          // HTTP status code (e.g. 400, 404, 500)
	Code       int          // Application-level error code
	Message    string       // Human-readable error message
	Details    []FieldError // Field-level validation details, if any
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any *AppError carrying the same application code, so callers can
// write errors.Is(err, response.ErrNotFound).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation   = &AppError{Code: CodeValidation}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized}
	ErrForbidden    = &AppError{Code: CodeForbidden}
	ErrNotFound     = &AppError{Code: CodeNotFound}
	ErrConflict     = &AppError{Code: CodeConflict}
)

// Pre-defined error constructors

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// NewValidation is a bad request carrying per-field details.
func NewValidation(msg string, details []FieldError) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: CodeValidation, Message: msg, Details: details}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// NewConflict reports duplicates, already-registered and full events.
// Clients of this API expect 400 for those, the body code tells them apart.
func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: CodeConflict, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: CodeServer, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its code and status
// are used; otherwise the error is logged and a generic 500 is returned
// without leaking the cause.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp := Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if len(appErr.Details) > 0 {
			resp.Data = gin.H{"errors": appErr.Details}
		}
		c.AbortWithStatusJSON(appErr.HTTPStatus, resp)
		return
	}

	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", c.GetString("request_id")).
		Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Code:    CodeServer,
		Message: "internal server error",
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: CodeValidation, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{Code: CodeForbidden, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

func TooManyRequests(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: CodeTooMany, Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Code: CodeServer, Message: msg})
}
