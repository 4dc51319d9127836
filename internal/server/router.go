package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

// HealthChecker is satisfied by *repository.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Deps are the collaborators behind the read-only query API.
type Deps struct {
	Docs   repository.DocumentRepository
	Export *export.Service
	Health HealthChecker
	Logger *slog.Logger
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(
		RequestID(),
		Logging(d.Logger),
		Recovery(d.Logger),
	)

	h := &documentsHandler{docs: d.Docs, export: d.Export, logger: d.Logger}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
				writeError(c, d.Logger, http.StatusServiceUnavailable, "storage", err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/documents", h.list)
	api.GET("/documents/export.xlsx", h.exportXLSX)
	api.GET("/documents/:id", h.get)
	return r
}
