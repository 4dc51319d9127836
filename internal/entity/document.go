package entity

import (
	"time"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// Document is a single input file for the duration of one batch run.
type Document struct {
	Path         string              `json:"path"`
	RawText      string              `json:"raw_text"`
	Pages        int                 `json:"pages"`
	InferredType string              `json:"inferred_type"`
	Status       constants.DocStatus `json:"status"`
}

// DocumentRecord is one persisted row of the documents table.
type DocumentRecord struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	DocumentType  string    `json:"document_type"`
	ExtractedData string    `json:"extracted_data"` // serialized extraction result
	ProcessedAt   time.Time `json:"processed_date"`
}
