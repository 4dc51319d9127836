package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(c *gin.Context, logger *slog.Logger, status int, code, message string) {
	logger.Warn("http.error",
		"status", status,
		"code", code,
		"message", message,
		"path", c.Request.URL.Path,
		"request_id", RequestIDFromContext(c),
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// writeAppError maps the error taxonomy onto HTTP statuses.
func writeAppError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(c, logger, http.StatusNotFound, "not_found", "document not found")
	case errors.Is(err, common.ErrStorage):
		writeError(c, logger, http.StatusServiceUnavailable, "storage", "storage unavailable")
	default:
		writeError(c, logger, http.StatusInternalServerError, "internal", "Unexpected server error")
	}
}
