package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

func TestMissingKeyIsServiceError(t *testing.T) {
	c := NewClient(Config{}, nil, nil)
	defer c.Close()

	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Filename: "a.pdf", Prompt: "p"})
	if !errors.Is(err, common.ErrService) || !errors.Is(err, common.ErrMissingKey) {
		t.Fatalf("expected missing-key service error, got %v", err)
	}
}

func TestPromptLimit(t *testing.T) {
	c := NewClient(Config{APIKey: "k", MaxPromptBytes: 10}, nil, nil)
	defer c.Close()

	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Prompt: "p"})
	if !errors.Is(err, common.ErrService) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestSchemaInstruction(t *testing.T) {
	got := withSchemaInstruction("Extract things.", schema.Document())
	if !strings.HasPrefix(got, "Extract things.") {
		t.Fatalf("prompt not preserved: %q", got[:40])
	}
	for _, want := range []string{`"documentType"`, `"keyInformation"`, `"required"`, "JSON Schema"} {
		if !strings.Contains(got, want) {
			t.Fatalf("instruction missing %s", want)
		}
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{"nil", nil, "", true},
		{"no candidates", &genai.GenerateContentResponse{}, "", true},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, "", true},
		{"joined parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}}}, `{"a":1}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr {
				if !errors.Is(err, common.ErrService) {
					t.Fatalf("expected service error, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q, %v", got, err)
			}
		})
	}
}
