package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// Config for the Gemini client.
type Config struct {
	APIKey         string
	Model          string // default "gemini-1.5-flash"
	Temperature    float32
	Timeout        time.Duration
	MaxPromptBytes int
}

// Client implements llm.FieldExtractor on the Gemini generative API.
// The SDK client is created on first use so a missing key surfaces as a
// service error at call time.
type Client struct {
	cfg    Config
	schema *schema.Schema
	log    *slog.Logger
	opts   []option.ClientOption

	mu  sync.Mutex
	sdk *genai.Client
}

func NewClient(cfg Config, sch *schema.Schema, logger *slog.Logger, opts ...option.ClientOption) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
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
	return &Client{cfg: cfg, schema: sch, log: logger, opts: opts}
}

func (c *Client) Model() string { return c.cfg.Model }

// Close releases the SDK client, if one was created.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk == nil {
		return nil
	}
	err := c.sdk.Close()
	c.sdk = nil
	return err
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil {
		return c.sdk, nil
	}
	if c.cfg.APIKey == "" {
		return nil, common.ServiceError("gemini", common.ErrMissingKey)
	}
	opts := append([]option.ClientOption{option.WithAPIKey(c.cfg.APIKey)}, c.opts...)
	sdk, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, common.ServiceError("create gemini client", err)
	}
	c.sdk = sdk
	return sdk, nil
}

// ExtractFields sends one GenerateContent request. The SDK version in use has
// no response-schema option, so the JSON Schema travels inside the instruction.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (schema.Result, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"filename", req.Filename,
		"text_len", len(req.Text),
	)

	prompt := req.Prompt
	if prompt == "" {
		prompt = llm.BuildPrompt(req)
	}
	prompt = withSchemaInstruction(prompt, c.schema)
	if err := llm.CheckPromptSize(prompt, c.cfg.MaxPromptBytes); err != nil {
		return schema.Result{}, nil, err
	}

	sdk, err := c.client(ctx)
	if err != nil {
		return schema.Result{}, nil, err
	}

	model := sdk.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		c.log.Error("llm.extract.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return schema.Result{}, nil, common.ServiceError("gemini generate content", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return schema.Result{}, nil, err
	}

	out, canon, err := llm.DecodePayload(text, c.schema, c.log)
	if err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return schema.Result{}, []byte(text), err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"document_type", out.DocumentType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, canon, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", common.ServiceError("no candidates in gemini response", nil)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", common.ServiceError("empty gemini candidate", nil)
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", common.ServiceError("no text parts in gemini response", nil)
	}
	return b.String(), nil
}

func withSchemaInstruction(prompt string, sch *schema.Schema) string {
	js, err := json.MarshalIndent(sch.JSONSchema(), "", "  ")
	if err != nil {
		return prompt
	}
	return fmt.Sprintf("%s\n\nThe JSON object must conform to this JSON Schema:\n%s\n"+
		"Do not include any explanations, markdown formatting, or additional text outside the JSON object.",
		prompt, js)
}
