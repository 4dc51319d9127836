package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/schema"
)

// Outcome is what happened to one document.
type Outcome struct {
	Path     string
	Status   constants.DocStatus // VALIDATED or FAILED
	FailedAt constants.DocStatus // last state reached before the failure
	Code     string              // common.Code* of Err
	Err      error
	Result   schema.Result
	Record   *entity.DocumentRecord
	Elapsed  time.Duration
}

func (o Outcome) OK() bool { return o.Status == constants.DocStatusValidated }

// Summary aggregates a run. Outcomes are in input order.
type Summary struct {
	RunID     string
	Processed int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Processor coordinates text extraction, the model call and persistence for
// each document. Documents run one after another; a failure ends that
// document only.
type Processor struct {
	Logger   *slog.Logger
	Text     *TextStage
	Extract  *ExtractStage
	Docs     repository.DocumentRepository
	Reporter Reporter
}

func NewProcessor(logger *slog.Logger, tx extract.TextExtractor, fe llm.FieldExtractor, docs repository.DocumentRepository, reporter Reporter) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Processor{
		Logger:   logger,
		Text:     NewTextStage(tx, os.ReadFile, logger),
		Extract:  NewExtractStage(fe, logger),
		Docs:     docs,
		Reporter: reporter,
	}
}

// Run processes paths in order and reports each outcome as it completes.
// A cancelled context stops the run before the next document.
func (p *Processor) Run(ctx context.Context, paths []string) Summary {
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	sum := Summary{RunID: runID, Outcomes: make([]Outcome, 0, len(paths))}

	p.Logger.Info("pipeline.run.start", "run_id", runID, "documents", len(paths))
	start := time.Now()

	for _, path := range paths {
		if ctx.Err() != nil {
			p.Logger.Warn("pipeline.run.cancelled", "run_id", runID, "remaining", len(paths)-sum.Processed)
			break
		}
		p.Reporter.Start(path)
		out := p.ProcessFile(ctx, path)
		sum.Processed++
		if out.OK() {
			sum.Succeeded++
			p.Reporter.Success(out)
		} else {
			sum.Failed++
			p.Reporter.Failure(out)
		}
		sum.Outcomes = append(sum.Outcomes, out)
	}

	p.Logger.Info("pipeline.run.done",
		"run_id", runID,
		"processed", sum.Processed,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	p.Reporter.Summary(sum)
	return sum
}

// ProcessFile drives one document PENDING -> TEXT_EXTRACTED -> PROMPT_BUILT ->
// SUBMITTED -> VALIDATED. Any error moves it to FAILED; it is never retried.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	ctx = common.WithDocumentPath(ctx, path)
	start := time.Now()
	doc := &entity.Document{Path: path, Status: constants.DocStatusPending}

	fail := func(err error) Outcome {
		out := Outcome{
			Path:     path,
			Status:   constants.DocStatusFailed,
			FailedAt: doc.Status,
			Code:     common.CodeOf(err),
			Err:      err,
			Elapsed:  time.Since(start),
		}
		p.Logger.Error("pipeline.document.failed",
			"run_id", common.RunIDFromContext(ctx),
			"path", path,
			"stage", doc.Status,
			"code", out.Code,
			"error", err,
			"elapsed_ms", out.Elapsed.Milliseconds(),
		)
		doc.Status = constants.DocStatusFailed
		return out
	}

	// 1) bytes -> text
	if err := p.Text.Run(ctx, doc); err != nil {
		return fail(err)
	}

	// 2) prompt, 3) one model call
	res, err := p.Extract.Run(ctx, doc)
	if err != nil {
		return fail(err)
	}

	// 4) append
	rec, err := p.Docs.Append(ctx, path, res.DocumentType, res)
	if err != nil {
		if common.CodeOf(err) == "" {
			err = common.StorageError("append", err)
		}
		return fail(err)
	}
	doc.Status = constants.DocStatusValidated

	elapsed := time.Since(start)
	p.Logger.Info("pipeline.document.ok",
		"run_id", common.RunIDFromContext(ctx),
		"path", path,
		"id", rec.ID,
		"document_type", res.DocumentType,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return Outcome{
		Path:    path,
		Status:  doc.Status,
		Result:  res,
		Record:  rec,
		Elapsed: elapsed,
	}
}

// Err joins the errors of every failed outcome, or nil.
func (s Summary) Err() error {
	var errs []error
	for _, o := range s.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
