package llm

import (
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// DecodePayload turns a provider's text payload into a validated result.
// It strips code fences, renames known key synonyms, then coerces and
// validates against sch. The returned bytes are the canonical JSON.
func DecodePayload(text string, sch *schema.Schema, logger *slog.Logger) (schema.Result, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw := []byte(CleanJSONResponse(text))

	normalized, _, err := NormalizeKeys(raw, logger)
	if err != nil {
		return schema.Result{}, raw, common.SchemaMismatchError("normalize payload", err)
	}

	res, canon, dropped, err := sch.Parse(normalized)
	if err != nil {
		return schema.Result{}, normalized, err
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.lenient_coerce_applied", "dropped", dropped)
	}
	return res, canon, nil
}
