// Package app wires configuration into the concrete components shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/doc-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// OpenStore opens the configured records store and ensures its schema.
func OpenStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.ConfigFrom(cfg.Database), logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewFieldExtractor builds the model client for cfg.LLM.Provider. A missing
// API key is not an error here; it fails each call as a service error.
// The returned close func releases provider resources.
func NewFieldExtractor(cfg *common.Config, logger *slog.Logger) (llm.FieldExtractor, func() error, error) {
	sch := schema.Document()
	switch cfg.LLM.Provider {
	case common.ProviderOpenAI, "":
		if cfg.LLM.APIKey == "" {
			logger.Warn("OPENAI_API_KEY not configured, every document will fail at the model call")
		}
		c := openai.NewClient(openai.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Temperature:    cfg.LLM.Temperature,
			Timeout:        cfg.LLM.Timeout,
			MaxPromptBytes: cfg.LLM.MaxPromptBytes,
		}, sch, logger)
		logger.Info("OpenAI client initialized", "model", c.Model())
		return c, func() error { return nil }, nil
	case common.ProviderGemini:
		if cfg.LLM.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not configured, every document will fail at the model call")
		}
		c := gemini.NewClient(gemini.Config{
			APIKey:         cfg.LLM.GeminiAPIKey,
			Model:          cfg.LLM.GeminiModel,
			Temperature:    cfg.LLM.Temperature,
			Timeout:        cfg.LLM.Timeout,
			MaxPromptBytes: cfg.LLM.MaxPromptBytes,
		}, sch, logger)
		logger.Info("Gemini client initialized", "model", c.Model())
		return c, c.Close, nil
	default:
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown LLM_PROVIDER %q", cfg.LLM.Provider), nil)
	}
}
