package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/ingest"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		recursive = flag.Bool("recursive", false, "descend into sub-directories")
		out       = flag.String("export", "", "write all stored records to this XLSX file after the run")
		noColor   = flag.Bool("no-color", false, "disable coloured output")
	)
	flag.Usage = func() {
		printError("Usage: docextract [flags] <file.pdf | directory>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	// Load configuration (.env first)
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	files, err := ingest.Discover(path, ingest.Options{Recursive: *recursive, SkipHidden: true})
	switch {
	case errors.Is(err, ingest.ErrPathNotFound):
		printError("Error: The path '%s' does not exist.\n", path)
		os.Exit(1)
	case errors.Is(err, ingest.ErrNotPDF):
		printError("Error: The file '%s' is not a PDF file.\n", path)
		os.Exit(1)
	case errors.Is(err, ingest.ErrNoPDFs):
		fmt.Println("No PDF files found.")
		return
	case err != nil:
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	docs := repository.NewDocumentRepository(db, logger)

	textExtractor, err := extract.New(cfg.Text, logger)
	if err != nil {
		logger.Error("failed to set up text extraction", "error", err)
		os.Exit(1)
	}
	fe, closeLLM, err := app.NewFieldExtractor(cfg, logger)
	if err != nil {
		logger.Error("failed to set up model client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeLLM(); err != nil {
			logger.Error("close model client", "error", err)
		}
	}()

	reporter := pipeline.NewConsoleReporter(os.Stdout, *noColor)
	p := pipeline.NewProcessor(logger, textExtractor, fe, docs, reporter)
	sum := p.Run(ctx, files)

	if err := sum.Err(); err != nil {
		logger.Warn("run finished with failed documents", "run_id", sum.RunID, "failed", sum.Failed, "error", err)
	}

	if *out != "" {
		written, err := writeExport(ctx, export.NewService(docs, logger), *out)
		switch {
		case err != nil:
			logger.Error("failed to export documents", "error", err)
			os.Exit(1)
		case written:
			fmt.Printf("- Output: %s\n", *out)
		default:
			logger.Warn("export skipped, run was interrupted", "path", *out)
		}
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
}

type documentExporter interface {
	ExportDocumentsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error)
}

// writeExport writes every stored record to path. It does nothing once ctx
// is done so an interrupted run keeps its exit status.
func writeExport(ctx context.Context, exp documentExporter, path string) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	b, err := exp.ExportDocumentsXLSX(ctx, repository.ListFilter{})
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
