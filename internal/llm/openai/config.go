package openai

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// Config for the OpenAI client.
type Config struct {
	APIKey         string        // required at call time; never read from the environment here
	BaseURL        string        // default https://api.openai.com/v1
	Model          string        // e.g., "gpt-4o-mini"
	Temperature    float32       // 0..2, omitted from the request when 0
	Timeout        time.Duration // http client timeout
	MaxPromptBytes int           // 0 = no limit
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	schema     *schema.Schema
	log        *slog.Logger
}

// NewClient applies defaults and returns a client bound to sch
// (schema.Document() when nil).
func NewClient(cfg Config, sch *schema.Schema, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if sch == nil {
		sch = schema.Document()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		schema:     sch,
		log:        logger,
	}
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.cfg.Model }
