package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

type stubExporter struct {
	calls int
	err   error
}

func (s *stubExporter) ExportDocumentsXLSX(context.Context, repository.ListFilter) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("xlsx"), nil
}

func TestWriteExport(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		exportErr error
		written   bool
		wantErr   bool
		calls     int
	}{
		{"writes file", context.Background(), nil, true, false, 1},
		{"skipped after interrupt", cancelled, nil, false, false, 0},
		{"export error", context.Background(), errors.New("query failed"), false, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.xlsx")
			exp := &stubExporter{err: tt.exportErr}

			written, err := writeExport(tt.ctx, exp, path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if written != tt.written || exp.calls != tt.calls {
				t.Fatalf("written=%v calls=%d, want %v/%d", written, exp.calls, tt.written, tt.calls)
			}
			_, statErr := os.Stat(path)
			if tt.written != (statErr == nil) {
				t.Fatalf("file exists = %v, want %v", statErr == nil, tt.written)
			}
		})
	}
}
