package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// responsesEnvelope is the subset of the Responses API reply we read.
type responsesEnvelope struct {
	Status string `json:"status"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text"`
			Refusal string `json:"refusal"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractFields implements llm.FieldExtractor using the Responses API with a
// json_schema text format. Exactly one HTTP request is made per call, or none
// when the key is missing or the prompt exceeds the configured limit.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (schema.Result, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"filename", req.Filename,
		"text_len", len(req.Text),
		"prompt_len", len(req.Prompt),
	)

	if c.cfg.APIKey == "" {
		return schema.Result{}, nil, common.ServiceError("openai", common.ErrMissingKey)
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = llm.BuildPrompt(req)
	}
	if err := llm.CheckPromptSize(prompt, c.cfg.MaxPromptBytes); err != nil {
		c.log.Warn("llm.extract.prompt_too_large", "req_id", rid, "error", err)
		return schema.Result{}, nil, err
	}

	body := map[string]any{
		"model": c.cfg.Model,
		"input": prompt,
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   c.schema.Name,
				"schema": c.schema.JSONSchema(),
				"strict": false,
			},
		},
	}
	if c.cfg.Temperature > 0 {
		body["temperature"] = c.cfg.Temperature
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/responses"
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return schema.Result{}, raw, httpErr
	}

	text, err := outputText(raw)
	if err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return schema.Result{}, raw, err
	}

	out, canon, err := llm.DecodePayload(text, c.schema, c.log)
	if err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", text,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return schema.Result{}, []byte(text), err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"document_type", out.DocumentType,
		"people", len(out.People),
		"amounts", len(out.Amounts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, canon, nil
}

// outputText returns the first output_text item of a Responses API reply.
// A reply without one (or carrying an error or refusal) is a service error.
func outputText(raw []byte) (string, error) {
	var env responsesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", common.ServiceError("decode openai response", err)
	}
	if env.Error != nil && env.Error.Message != "" {
		return "", common.ServiceError("openai error: "+env.Error.Message, nil)
	}
	for _, item := range env.Output {
		for _, part := range item.Content {
			if part.Refusal != "" {
				return "", common.ServiceError("model refused: "+part.Refusal, nil)
			}
			if part.Type == "output_text" || (part.Type == "" && part.Text != "") {
				return part.Text, nil
			}
		}
	}
	return "", common.ServiceError(fmt.Sprintf("no output text in openai response (status %q)", env.Status), nil)
}
