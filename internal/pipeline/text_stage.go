package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
)

// TextStage reads a document from disk and extracts its text.
type TextStage struct {
	TextExtractor extract.TextExtractor
	ReadFile      func(path string) ([]byte, error)
	Logger        *slog.Logger
}

func NewTextStage(tx extract.TextExtractor, readFile func(string) ([]byte, error), logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{TextExtractor: tx, ReadFile: readFile, Logger: logger}
}

// Run fills doc.RawText, doc.Pages and doc.InferredType and advances doc to
// TEXT_EXTRACTED. Empty text is not an error.
func (s *TextStage) Run(ctx context.Context, doc *entity.Document) error {
	data, err := s.ReadFile(doc.Path)
	if err != nil {
		return common.ExtractionIOError("read "+doc.Path, err)
	}

	res, err := s.TextExtractor.Extract(ctx, data)
	if err != nil {
		if common.CodeOf(err) == "" {
			err = common.ExtractionIOError("extract text", err)
		}
		return err
	}

	doc.RawText = res.Text
	doc.Pages = res.Pages
	doc.InferredType = llm.InferDocumentType(doc.Path)
	doc.Status = constants.DocStatusTextExtracted

	s.Logger.Info("pipeline.text.ok",
		"path", doc.Path,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	if res.Text == "" {
		s.Logger.Warn("pipeline.text.empty", "path", doc.Path, "pages", res.Pages)
	}
	return nil
}
