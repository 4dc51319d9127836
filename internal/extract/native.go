package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const MethodNative = "pdf-native"

// NativeExtractor reads the PDF text layer in-process.
type NativeExtractor struct {
	logger *slog.Logger
}

func NewNativeExtractor(logger *slog.Logger) *NativeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeExtractor{logger: logger}
}

func (e *NativeExtractor) Extract(ctx context.Context, data []byte) (res TextExtractionResult, err error) {
	start := time.Now()
	res.Method = MethodNative

	// The parser panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			res = TextExtractionResult{Method: MethodNative, Duration: time.Since(start)}
			err = common.ExtractionIOError("parse pdf", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, common.ExtractionIOError("open pdf", err)
	}

	n := r.NumPage()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d missing", i))
			continue
		}
		// font names are page-scoped resources, so no cache across pages
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		b.WriteString(txt)
	}

	res.Text = b.String()
	res.Pages = n
	res.Duration = time.Since(start)
	e.logger.Debug("extract.native.ok",
		"pages", n,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
