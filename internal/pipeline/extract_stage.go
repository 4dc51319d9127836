package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// ExtractStage builds the prompt and makes the single model call for a document.
type ExtractStage struct {
	Extractor llm.FieldExtractor
	Logger    *slog.Logger
}

func NewExtractStage(fe llm.FieldExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: fe, Logger: logger}
}

// Run expects doc in TEXT_EXTRACTED. It leaves doc in SUBMITTED once the
// provider was called, or in PROMPT_BUILT when the provider refused before
// sending anything (no credential, prompt over the limit).
func (s *ExtractStage) Run(ctx context.Context, doc *entity.Document) (schema.Result, error) {
	req := llm.ExtractRequest{
		Filename:     doc.Path,
		InferredType: doc.InferredType,
		Text:         doc.RawText,
	}
	req.Prompt = llm.BuildPrompt(req)
	doc.Status = constants.DocStatusPromptBuilt
	s.Logger.Debug("pipeline.prompt.built", "path", doc.Path, "inferred_type", doc.InferredType, "prompt_len", len(req.Prompt))

	doc.Status = constants.DocStatusSubmitted
	res, raw, err := s.Extractor.ExtractFields(ctx, req)
	if err != nil {
		if llm.NotSent(err) {
			doc.Status = constants.DocStatusPromptBuilt
		}
		if common.CodeOf(err) == "" {
			err = common.ServiceError("extract fields", err)
		}
		if len(raw) > 0 {
			s.Logger.Debug("pipeline.extract.raw", "path", doc.Path, "raw", common.Truncate(string(raw), 2048))
		}
		return schema.Result{}, err
	}
	return res.Normalize(), nil
}
