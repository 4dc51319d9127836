package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const MethodPdftotext = "pdftotext"

// PdftotextExtractor shells out to poppler's pdftotext, feeding the document on stdin.
type PdftotextExtractor struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

// NewPdftotextExtractor uses bin ("pdftotext" when empty) through runner
// (the real process runner when nil).
func NewPdftotextExtractor(bin string, runner Runner, logger *slog.Logger) *PdftotextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &PdftotextExtractor{bin: bin, runner: runner, logger: logger}
}

func (e *PdftotextExtractor) Extract(ctx context.Context, data []byte) (TextExtractionResult, error) {
	start := time.Now()
	res := TextExtractionResult{Method: MethodPdftotext}

	// pdftotext -enc UTF-8 -eol unix - -
	out, errb, err := e.runner.Run(ctx, data, e.bin, "-enc", "UTF-8", "-eol", "unix", "-", "-")
	res.Duration = time.Since(start)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = fmt.Sprintf("run %s", e.bin)
		}
		return res, common.ExtractionIOError(msg, err)
	}

	// A form feed terminates every page; drop them so pages concatenate directly.
	text := string(out)
	res.Pages = strings.Count(text, "\f")
	res.Text = strings.ReplaceAll(text, "\f", "")
	if len(errb) > 0 {
		res.Warnings = append(res.Warnings, strings.TrimSpace(string(errb)))
	}
	e.logger.Debug("extract.pdftotext.ok", "pages", res.Pages, "bytes", len(res.Text), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}
