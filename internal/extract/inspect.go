package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

var disableConfigDir sync.Once

// Inspector reads structural facts about a PDF without extracting text.
type Inspector struct {
	logger *slog.Logger
}

func NewInspector(logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	// pdfcpu otherwise creates a config dir under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Inspector{logger: logger}
}

// PageCount validates data in relaxed mode and returns its page count.
func (i *Inspector) PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, common.ExtractionIOError("inspect pdf", err)
	}
	return n, nil
}

// PageLimited rejects documents with more than MaxPages pages before
// delegating to the wrapped extractor.
type PageLimited struct {
	Inner     TextExtractor
	Inspector *Inspector
	MaxPages  int
}

func (p *PageLimited) Extract(ctx context.Context, data []byte) (TextExtractionResult, error) {
	if p.MaxPages > 0 {
		n, err := p.Inspector.PageCount(data)
		if err != nil {
			return TextExtractionResult{}, err
		}
		if n > p.MaxPages {
			p.Inspector.logger.Warn("extract.page_limit_exceeded", "pages", n, "max_pages", p.MaxPages)
			return TextExtractionResult{Pages: n}, common.ExtractionIOError(
				fmt.Sprintf("document has %d pages, limit is %d", n, p.MaxPages), nil)
		}
	}
	return p.Inner.Extract(ctx, data)
}

// New builds the extractor selected by cfg.
func New(cfg common.TextConfig, logger *slog.Logger) (TextExtractor, error) {
	var inner TextExtractor
	switch cfg.Backend {
	case "", common.TextBackendNative:
		inner = NewNativeExtractor(logger)
	case common.TextBackendPdftotext:
		inner = NewPdftotextExtractor(cfg.Pdftotext, nil, logger)
	default:
		return nil, fmt.Errorf("unknown text backend %q", cfg.Backend)
	}
	if cfg.MaxPages <= 0 {
		return inner, nil
	}
	return &PageLimited{Inner: inner, Inspector: NewInspector(logger), MaxPages: cfg.MaxPages}, nil
}
