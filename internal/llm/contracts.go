package llm

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// ExtractRequest carries one document's prompt to a model provider.
type ExtractRequest struct {
	Filename     string
	InferredType string
	Text         string
	Prompt       string // built by BuildPrompt
}

// FieldExtractor is the interface the pipeline depends on.
// Implementations make at most one outbound call per request and return
// the validated result along with the raw payload text.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (schema.Result, []byte /*rawJSON*/, error)
}

// NotSent reports whether err was raised before any request left the process.
func NotSent(err error) bool {
	return errors.Is(err, common.ErrMissingKey) || errors.Is(err, common.ErrPromptLimit)
}
