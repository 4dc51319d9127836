package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

const (
	tableDocuments = "documents"

	colID            = "id"
	colFilename      = "filename"
	colDocumentType  = "document_type"
	colExtractedData = "extracted_data"
	colProcessedDate = "processed_date"
)

var documentColumns = []string{colID, colFilename, colDocumentType, colExtractedData, colProcessedDate}

// ListFilter narrows List and Count. Zero values match everything.
type ListFilter struct {
	Filename     string
	DocumentType string
	Limit        int
	Offset       int
}

// DocumentRepository is the append-only store of extraction results.
type DocumentRepository interface {
	Append(ctx context.Context, filename, documentType string, result schema.Result) (*entity.DocumentRecord, error)
	GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.DocumentRecord, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// timestamp returns a UTC time strictly after the previous one handed out,
// at the microsecond precision PostgreSQL keeps.
func (r *documentRepository) timestamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now().UTC().Truncate(time.Microsecond)
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

func (r *documentRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

// timeArg binds a timestamp the way each dialect's column expects it.
func (r *documentRepository) timeArg(t time.Time) any {
	if r.db.Dialect() == dialect.Postgres {
		return t
	}
	return t.Format(time.RFC3339Nano)
}

// Append inserts one row. It never updates: reprocessing a file adds a row.
func (r *documentRepository) Append(ctx context.Context, filename, documentType string, result schema.Result) (*entity.DocumentRecord, error) {
	data, err := result.Marshal()
	if err != nil {
		return nil, common.StorageError("serialize extraction result", err)
	}
	processed := r.timestamp()

	query, args := r.builder().
		Insert(tableDocuments).
		Columns(colFilename, colDocumentType, colExtractedData, colProcessedDate).
		Values(filename, documentType, string(data), r.timeArg(processed)).
		Returning(colID).
		Query()

	var rows entsql.Rows
	if err := r.db.Driver().Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to append document", "filename", filename, "error", err)
		return nil, common.StorageError("insert document", err)
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		err := rows.Err()
		if err == nil {
			err = sql.ErrNoRows
		}
		r.logger.Error("failed to append document", "filename", filename, "error", err)
		return nil, common.StorageError("insert document", err)
	}
	if err := rows.Scan(&id); err != nil {
		return nil, common.StorageError("read inserted id", err)
	}

	r.logger.Debug("document appended", "id", id, "filename", filename, "document_type", documentType)
	return &entity.DocumentRecord{
		ID:            id,
		Filename:      filename,
		DocumentType:  documentType,
		ExtractedData: string(data),
		ProcessedAt:   processed,
	}, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*entity.DocumentRecord, error) {
	query, args := r.builder().
		Select(documentColumns...).
		From(entsql.Table(tableDocuments)).
		Where(entsql.EQ(colID, id)).
		Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to get document", "id", id, "error", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.NewAppError(common.CodeNotFound, fmt.Sprintf("document %d", id), nil)
	}
	return recs[0], nil
}

// List returns matching rows newest first.
func (r *documentRepository) List(ctx context.Context, filter ListFilter) ([]*entity.DocumentRecord, error) {
	sel := r.builder().
		Select(documentColumns...).
		From(entsql.Table(tableDocuments)).
		OrderBy(entsql.Desc(colID))
	if p := filterPredicate(filter); p != nil {
		sel = sel.Where(p)
	}
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		sel = sel.Offset(filter.Offset)
	}
	query, args := sel.Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to list documents", "filename", filter.Filename, "document_type", filter.DocumentType, "error", err)
		return nil, err
	}
	return recs, nil
}

func (r *documentRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	sel := r.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(tableDocuments))
	if p := filterPredicate(filter); p != nil {
		sel = sel.Where(p)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.db.Driver().Query(ctx, query, args, &rows); err != nil {
		return 0, common.StorageError("count documents", err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, common.StorageError("count documents", err)
	}
	return n, nil
}

func filterPredicate(f ListFilter) *entsql.Predicate {
	var preds []*entsql.Predicate
	if f.Filename != "" {
		preds = append(preds, entsql.EQ(colFilename, f.Filename))
	}
	if f.DocumentType != "" {
		preds = append(preds, entsql.EQ(colDocumentType, f.DocumentType))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}

func (r *documentRepository) query(ctx context.Context, query string, args []any) ([]*entity.DocumentRecord, error) {
	var rows entsql.Rows
	if err := r.db.Driver().Query(ctx, query, args, &rows); err != nil {
		return nil, common.StorageError("query documents", err)
	}
	defer rows.Close()

	var out []*entity.DocumentRecord
	for rows.Next() {
		var (
			rec       entity.DocumentRecord
			data      []byte
			processed string
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.DocumentType, &data, &processed); err != nil {
			return nil, common.StorageError("scan document", err)
		}
		ts, err := parseTimestamp(processed)
		if err != nil {
			return nil, common.StorageError("scan document", err)
		}
		rec.ExtractedData = string(data)
		rec.ProcessedAt = ts
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageError("query documents", err)
	}
	return out, nil
}

// parseTimestamp reads processed_date. SQLite holds RFC 3339 text; a
// PostgreSQL timestamptz arrives as time.Time and database/sql formats it
// the same way when scanning into a string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.New("bad processed_date " + s)
	}
	return t.UTC(), nil
}
