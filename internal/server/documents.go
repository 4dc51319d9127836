package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type documentsHandler struct {
	docs   repository.DocumentRepository
	export *export.Service
	logger *slog.Logger
}

// documentJSON is the API view of a record; extracted data is inlined as JSON.
type documentJSON struct {
	ID            int64           `json:"id"`
	Filename      string          `json:"filename"`
	DocumentType  string          `json:"documentType"`
	ExtractedData json.RawMessage `json:"extractedData"`
	ProcessedDate time.Time       `json:"processedDate"`
}

func toJSON(r *entity.DocumentRecord) documentJSON {
	data := json.RawMessage(r.ExtractedData)
	if !json.Valid(data) {
		b, _ := json.Marshal(r.ExtractedData)
		data = b
	}
	return documentJSON{
		ID:            r.ID,
		Filename:      r.Filename,
		DocumentType:  r.DocumentType,
		ExtractedData: data,
		ProcessedDate: r.ProcessedAt,
	}
}

// parseFilter reads filename, documentType, limit and offset query params.
func parseFilter(c *gin.Context) (repository.ListFilter, string) {
	f := repository.ListFilter{
		Filename:     strings.TrimSpace(c.Query("filename")),
		DocumentType: strings.TrimSpace(c.Query("documentType")),
		Limit:        defaultLimit,
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, "limit must be a positive integer"
		}
		f.Limit = min(n, maxLimit)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "offset must be a non-negative integer"
		}
		f.Offset = n
	}
	return f, ""
}

func (h *documentsHandler) list(c *gin.Context) {
	filter, msg := parseFilter(c)
	if msg != "" {
		writeError(c, h.logger, http.StatusBadRequest, "invalid_argument", msg)
		return
	}
	ctx := c.Request.Context()

	recs, err := h.docs.List(ctx, filter)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	total, err := h.docs.Count(ctx, repository.ListFilter{Filename: filter.Filename, DocumentType: filter.DocumentType})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}

	items := make([]documentJSON, 0, len(recs))
	for _, r := range recs {
		items = append(items, toJSON(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *documentsHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, h.logger, http.StatusBadRequest, "invalid_argument", "id must be a positive integer")
		return
	}
	rec, err := h.docs.GetByID(c.Request.Context(), id)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toJSON(rec))
}

func (h *documentsHandler) exportXLSX(c *gin.Context) {
	if h.export == nil {
		writeError(c, h.logger, http.StatusNotImplemented, "unavailable", "export is not configured")
		return
	}
	filter, msg := parseFilter(c)
	if msg != "" {
		writeError(c, h.logger, http.StatusBadRequest, "invalid_argument", msg)
		return
	}
	// an export covers every match unless a limit was asked for
	if c.Query("limit") == "" {
		filter.Limit = 0
	}

	b, err := h.export.ExportDocumentsXLSX(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("export.xlsx.failed", "request_id", RequestIDFromContext(c), "error", err)
		writeAppError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, b)
}
