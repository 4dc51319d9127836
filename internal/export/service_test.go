package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

type stubDocs struct {
	repository.DocumentRepository
	recs   []*entity.DocumentRecord
	err    error
	filter repository.ListFilter
}

func (s *stubDocs) List(_ context.Context, f repository.ListFilter) ([]*entity.DocumentRecord, error) {
	s.filter = f
	return s.recs, s.err
}

func TestExportDocumentsXLSX(t *testing.T) {
	docs := &stubDocs{recs: []*entity.DocumentRecord{
		{
			ID:           2,
			Filename:     "invoice.pdf",
			DocumentType: "invoice",
			ExtractedData: `{"documentType":"invoice","summary":"ACME invoice","people":["Ada","Bob"],` +
				`"amounts":[{"value":99.5,"currency":"USD","description":"total"}],` +
				`"dates":[{"date":"2024-01-02","description":"issued"}]}`,
			ProcessedAt: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		},
		{ID: 1, Filename: "broken.pdf", DocumentType: "memo", ExtractedData: "not json"},
	}}

	b, err := NewService(docs, nil).ExportDocumentsXLSX(context.Background(), repository.ListFilter{DocumentType: "invoice"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if docs.filter.DocumentType != "invoice" {
		t.Fatalf("filter not forwarded: %+v", docs.filter)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][12] != "Extracted Data" {
		t.Fatalf("header = %v", rows[0])
	}

	first := rows[1]
	checks := map[int]string{
		0: "2",
		1: "2024-01-03T10:00:00Z",
		2: "invoice.pdf",
		3: "invoice",
		4: "ACME invoice",
		5: "Ada; Bob",
		8: "2024-01-02 (issued)",
		9: "99.5 USD (total)",
	}
	for col, want := range checks {
		if first[col] != want {
			t.Fatalf("col %d = %q, want %q", col, first[col], want)
		}
	}

	second := rows[2]
	if second[2] != "broken.pdf" || second[len(second)-1] != "not json" {
		t.Fatalf("bad payload row = %v", second)
	}
}

func TestExportListError(t *testing.T) {
	docs := &stubDocs{err: errors.New("db down")}
	if _, err := NewService(docs, nil).ExportDocumentsXLSX(context.Background(), repository.ListFilter{}); err == nil {
		t.Fatalf("expected error")
	}
}
