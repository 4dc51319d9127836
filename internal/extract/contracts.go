package extract

import (
	"context"
	"time"
)

// TextExtractor is stage 1: document bytes -> text.
// Pages are concatenated in order with no separator. A document with no
// extractable text yields "" and a nil error; unreadable bytes yield an
// extraction I/O error.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-native" | "pdftotext"
	Duration time.Duration
	Warnings []string
}
