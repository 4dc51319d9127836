package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// SheetName is the worksheet holding one row per persisted document.
const SheetName = "Documents"

var headers = []string{
	"ID",
	"Processed Date",
	"Filename",
	"Document Type",
	"Summary",
	"People",
	"Organizations",
	"Locations",
	"Dates",
	"Amounts",
	"Phone Numbers",
	"Emails",
	"Extracted Data",
}

// Service produces XLSX bytes for exports of the documents table.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportDocumentsXLSX returns a workbook of the records matching filter,
// newest first. Rows whose stored payload no longer decodes still export
// with the raw JSON in the last column.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	recs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, bold)
	}

	skipped := 0
	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, r.ID)
		write(2, r.ProcessedAt.UTC().Format(time.RFC3339))
		write(3, r.Filename)
		write(4, r.DocumentType)
		write(13, r.ExtractedData)

		res, err := schema.UnmarshalResult([]byte(r.ExtractedData))
		if err != nil {
			skipped++
			s.logger.Warn("export.xlsx.bad_payload", "id", r.ID, "error", err)
			continue
		}
		write(5, common.Truncate(res.Summary, 500))
		write(6, strings.Join(res.People, "; "))
		write(7, strings.Join(res.Organizations, "; "))
		write(8, strings.Join(res.Locations, "; "))
		write(9, joinDates(res.Dates))
		write(10, joinAmounts(res.Amounts))
		write(11, strings.Join(res.PhoneNumbers, "; "))
		write(12, strings.Join(res.Emails, "; "))
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "A", "A", 8)  // id
	_ = f.SetColWidth(SheetName, "B", "B", 22) // processed
	_ = f.SetColWidth(SheetName, "C", "C", 40) // filename
	_ = f.SetColWidth(SheetName, "D", "D", 18) // type
	_ = f.SetColWidth(SheetName, "E", "E", 60) // summary
	_ = f.SetColWidth(SheetName, "F", "L", 28)
	_ = f.SetColWidth(SheetName, "M", "M", 80) // raw json

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"bad_payloads", skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func joinDates(ds []schema.DateEntry) string {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		if d.Description == "" {
			parts = append(parts, d.Date)
			continue
		}
		parts = append(parts, d.Date+" ("+d.Description+")")
	}
	return strings.Join(parts, "; ")
}

func joinAmounts(as []schema.Amount) string {
	parts := make([]string, 0, len(as))
	for _, a := range as {
		v := fmt.Sprintf("%g", a.Value)
		if a.Currency != "" {
			v += " " + a.Currency
		}
		if a.Description != "" {
			v += " (" + a.Description + ")"
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "; ")
}
