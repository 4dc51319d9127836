package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/DATA-DOG/go-sqlmock"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "documents.db")}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func sampleResult(docType string) schema.Result {
	return schema.Result{
		DocumentType: docType,
		Summary:      "summary of " + docType,
		Amounts:      []schema.Amount{{Value: 12.5, Currency: "USD", Description: "total"}},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := db.HealthCheck(context.Background(), time.Second); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestAppendSameFileTwiceAddsTwoRows(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(openTestDB(t), nil)

	// a frozen clock still yields distinct timestamps
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.(*documentRepository).now = func() time.Time { return frozen }

	first, err := repo.Append(ctx, "a.pdf", "invoice", sampleResult("invoice"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	second, err := repo.Append(ctx, "a.pdf", "invoice", sampleResult("invoice"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids should differ, both %d", first.ID)
	}
	if !second.ProcessedAt.After(first.ProcessedAt) {
		t.Fatalf("timestamps not increasing: %v then %v", first.ProcessedAt, second.ProcessedAt)
	}

	n, err := repo.Count(ctx, ListFilter{Filename: "a.pdf"})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestGetByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(openTestDB(t), nil)

	in := sampleResult("contract")
	in.KeyInformation = map[string]any{"term": "12 months"}
	rec, err := repo.Append(ctx, "lease.pdf", "contract", in)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Filename != "lease.pdf" || got.DocumentType != "contract" {
		t.Fatalf("record = %+v", got)
	}
	if !got.ProcessedAt.Equal(rec.ProcessedAt) {
		t.Fatalf("processed_date = %v, want %v", got.ProcessedAt, rec.ProcessedAt)
	}
	res, err := schema.UnmarshalResult([]byte(got.ExtractedData))
	if err != nil {
		t.Fatalf("UnmarshalResult: %v", err)
	}
	if res.Summary != in.Summary || res.KeyInformation["term"] != "12 months" || len(res.Amounts) != 1 {
		t.Fatalf("stored result = %+v", res)
	}

	_, err = repo.GetByID(ctx, rec.ID+100)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(openTestDB(t), nil)

	for _, in := range []struct{ file, typ string }{
		{"a.pdf", "invoice"},
		{"b.pdf", "letter"},
		{"c.pdf", "invoice"},
	} {
		if _, err := repo.Append(ctx, in.file, in.typ, sampleResult(in.typ)); err != nil {
			t.Fatalf("Append %s: %v", in.file, err)
		}
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all newest first", ListFilter{}, []string{"c.pdf", "b.pdf", "a.pdf"}},
		{"by type", ListFilter{DocumentType: "invoice"}, []string{"c.pdf", "a.pdf"}},
		{"by filename", ListFilter{Filename: "b.pdf"}, []string{"b.pdf"}},
		{"both", ListFilter{Filename: "b.pdf", DocumentType: "invoice"}, nil},
		{"limit", ListFilter{Limit: 1}, []string{"c.pdf"}},
		{"offset", ListFilter{Limit: 2, Offset: 1}, []string{"b.pdf", "a.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(recs) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(recs), len(tt.want))
			}
			for i, rec := range recs {
				if rec.Filename != tt.want[i] {
					t.Fatalf("record %d = %s, want %s", i, rec.Filename, tt.want[i])
				}
			}
		})
	}
}

func TestAppendPostgresStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "documents" ("filename", "document_type", "extracted_data", "processed_date") VALUES ($1, $2, $3, $4) RETURNING "id"`)).
		WithArgs("a.pdf", "invoice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := NewDocumentRepository(NewDB(mockDB, dialect.Postgres, nil), nil)
	rec, err := repo.Append(context.Background(), "a.pdf", "invoice", sampleResult("invoice"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID != 7 {
		t.Fatalf("id = %d, want 7", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendWriteFailureIsStorageError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery(`INSERT INTO "documents"`).WillReturnError(errors.New("disk full"))

	repo := NewDocumentRepository(NewDB(mockDB, dialect.Postgres, nil), nil)
	_, err = repo.Append(context.Background(), "a.pdf", "invoice", sampleResult("invoice"))
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCountPostgresStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "documents" WHERE "document_type" = $1`)).
		WithArgs("invoice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := NewDocumentRepository(NewDB(mockDB, dialect.Postgres, nil), nil)
	n, err := repo.Count(context.Background(), ListFilter{DocumentType: "invoice"})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}
