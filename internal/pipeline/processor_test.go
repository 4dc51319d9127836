package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
	"github.com/joseph-ayodele/doc-extractor/internal/testutil"
)

type fakeExtractor struct {
	calls []llm.ExtractRequest
	err   error
}

func (f *fakeExtractor) ExtractFields(_ context.Context, req llm.ExtractRequest) (schema.Result, []byte, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return schema.Result{}, nil, f.err
	}
	return schema.Result{DocumentType: req.InferredType, Summary: "about " + req.InferredType}, []byte(`{}`), nil
}

type failingRepo struct {
	repository.DocumentRepository
	failFor string
	appends int
}

func (r *failingRepo) Append(ctx context.Context, filename, documentType string, res schema.Result) (*entity.DocumentRecord, error) {
	r.appends++
	if filename == r.failFor {
		return nil, common.StorageError("insert document", errors.New("database is locked"))
	}
	return &entity.DocumentRecord{ID: int64(r.appends), Filename: filename, DocumentType: documentType}, nil
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func openRepo(t *testing.T) repository.DocumentRepository {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "documents.db")}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return repository.NewDocumentRepository(db, nil)
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", testutil.MinimalPDF("Invoice 42"))
	b := writeFile(t, dir, "b.pdf", []byte("this is not a pdf"))
	c := writeFile(t, dir, "c.pdf", testutil.MinimalPDF("Lease agreement"))

	repo := openRepo(t)
	fe := &fakeExtractor{}
	var out bytes.Buffer
	p := NewProcessor(nil, extract.NewNativeExtractor(nil), fe, repo, NewConsoleReporter(&out, true))

	sum := p.Run(context.Background(), []string{a, b, c})

	if sum.Processed != 3 || sum.Succeeded != 2 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	wantStatus := []constants.DocStatus{constants.DocStatusValidated, constants.DocStatusFailed, constants.DocStatusValidated}
	for i, o := range sum.Outcomes {
		if !o.Status.Terminal() || o.Status != wantStatus[i] {
			t.Fatalf("outcome %d (%s) = %s, want %s", i, o.Path, o.Status, wantStatus[i])
		}
	}
	failed := sum.Outcomes[1]
	if failed.Path != b || !errors.Is(failed.Err, common.ErrExtractionIO) || failed.Code != common.CodeExtractionIO {
		t.Fatalf("failed outcome = %+v", failed)
	}
	if failed.FailedAt != constants.DocStatusPending {
		t.Fatalf("failed at %s, want PENDING", failed.FailedAt)
	}
	if len(fe.calls) != 2 {
		t.Fatalf("model calls = %d, want 2", len(fe.calls))
	}
	if !strings.Contains(fe.calls[0].Text, "Invoice 42") || fe.calls[0].InferredType != "a" {
		t.Fatalf("first request = %+v", fe.calls[0])
	}

	n, err := repo.Count(context.Background(), repository.ListFilter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
	if sum.Err() == nil {
		t.Fatalf("summary error should report the failure")
	}

	report := out.String()
	for _, want := range []string{
		"Processing " + a + "...",
		"Extracted Document Details:",
		"---------",
		"An error occurred while processing " + b,
		"Processed 3 document(s): 2 succeeded, 1 failed",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Index(report, a) > strings.Index(report, b) || strings.Index(report, b) > strings.Index(report, c) {
		t.Fatalf("report not in input order:\n%s", report)
	}
}

func TestEmptyTextStillSubmittedOnce(t *testing.T) {
	dir := t.TempDir()
	blank := writeFile(t, dir, "scan.pdf", testutil.MinimalPDF(""))

	fe := &fakeExtractor{}
	repo := &failingRepo{}
	p := NewProcessor(nil, extract.NewNativeExtractor(nil), fe, repo, nil)

	out := p.ProcessFile(context.Background(), blank)
	if !out.OK() {
		t.Fatalf("outcome = %+v", out)
	}
	if len(fe.calls) != 1 {
		t.Fatalf("model calls = %d, want 1", len(fe.calls))
	}
	if fe.calls[0].Text != "" || !strings.Contains(fe.calls[0].Prompt, "<content>\n\n</content>") {
		t.Fatalf("request = %+v", fe.calls[0])
	}
	if repo.appends != 1 {
		t.Fatalf("appends = %d, want 1", repo.appends)
	}
}

func TestStageFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "memo.pdf", testutil.MinimalPDF("memo"))

	tests := []struct {
		name     string
		path     string
		llmErr   error
		failFor  string
		want     error
		failedAt constants.DocStatus
		calls    int
		appends  int
	}{
		{"missing file", filepath.Join(dir, "nope.pdf"), nil, "", common.ErrExtractionIO, constants.DocStatusPending, 0, 0},
		{"service error", good, common.ServiceError("status 429", nil), "", common.ErrService, constants.DocStatusSubmitted, 1, 0},
		{"schema mismatch", good, common.SchemaMismatchError("summary missing", nil), "", common.ErrSchemaMismatch, constants.DocStatusSubmitted, 1, 0},
		{"untyped model error", good, errors.New("boom"), "", common.ErrService, constants.DocStatusSubmitted, 1, 0},
		{"missing key not sent", good, common.ServiceError("openai", common.ErrMissingKey), "", common.ErrService, constants.DocStatusPromptBuilt, 1, 0},
		{"prompt limit not sent", good, llm.CheckPromptSize("too long", 3), "", common.ErrService, constants.DocStatusPromptBuilt, 1, 0},
		{"storage error", good, nil, good, common.ErrStorage, constants.DocStatusSubmitted, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := &fakeExtractor{err: tt.llmErr}
			repo := &failingRepo{failFor: tt.failFor}
			p := NewProcessor(nil, extract.NewNativeExtractor(nil), fe, repo, nil)

			out := p.ProcessFile(context.Background(), tt.path)
			if out.Status != constants.DocStatusFailed {
				t.Fatalf("status = %s", out.Status)
			}
			if !errors.Is(out.Err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, out.Err)
			}
			if out.FailedAt != tt.failedAt {
				t.Fatalf("failed at %s, want %s", out.FailedAt, tt.failedAt)
			}
			if len(fe.calls) != tt.calls || repo.appends != tt.appends {
				t.Fatalf("calls=%d appends=%d, want %d/%d", len(fe.calls), repo.appends, tt.calls, tt.appends)
			}
		})
	}
}

func TestStorageFailureDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", testutil.MinimalPDF("one"))
	b := writeFile(t, dir, "b.pdf", testutil.MinimalPDF("two"))

	repo := &failingRepo{failFor: a}
	p := NewProcessor(nil, extract.NewNativeExtractor(nil), &fakeExtractor{}, repo, nil)

	sum := p.Run(context.Background(), []string{a, b})
	if sum.Failed != 1 || sum.Succeeded != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Outcomes[1].Record == nil || sum.Outcomes[1].Record.Filename != b {
		t.Fatalf("second outcome = %+v", sum.Outcomes[1])
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fe := &fakeExtractor{}
	p := NewProcessor(nil, extract.NewNativeExtractor(nil), fe, &failingRepo{}, nil)
	sum := p.Run(ctx, []string{"a.pdf", "b.pdf"})
	if sum.Processed != 0 || len(fe.calls) != 0 {
		t.Fatalf("cancelled run processed %d documents", sum.Processed)
	}
}
