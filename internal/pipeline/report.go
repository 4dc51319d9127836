package pipeline

import (
	"io"
	"sync"

	"github.com/fatih/color"
)

// Reporter receives per-document progress from Processor.Run.
type Reporter interface {
	Start(path string)
	Success(out Outcome)
	Failure(out Outcome)
	Summary(sum Summary)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Start(string)    {}
func (NopReporter) Success(Outcome) {}
func (NopReporter) Failure(Outcome) {}
func (NopReporter) Summary(Summary) {}

// ConsoleReporter prints the operator-facing report: a "Processing" line per
// document, then the pretty-printed extraction and a separator, or one error
// line. Colour follows fatih/color's terminal detection unless NoColor is set.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer

	head *color.Color
	ok   *color.Color
	bad  *color.Color
	dim  *color.Color
}

func NewConsoleReporter(w io.Writer, noColor bool) *ConsoleReporter {
	r := &ConsoleReporter{
		w:    w,
		head: color.New(color.FgCyan, color.Bold),
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.head, r.ok, r.bad, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) Start(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head.Fprintf(r.w, "Processing %s...\n", path)
}

func (r *ConsoleReporter) Success(out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pretty, err := out.Result.MarshalIndent()
	if err != nil {
		r.bad.Fprintf(r.w, "An error occurred while processing %s: %v\n", out.Path, err)
		return
	}
	r.ok.Fprintln(r.w, "Extracted Document Details:")
	_, _ = r.w.Write(append(pretty, '\n'))
	r.dim.Fprintln(r.w, "---------")
}

func (r *ConsoleReporter) Failure(out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bad.Fprintf(r.w, "An error occurred while processing %s: %v\n", out.Path, out.Err)
}

func (r *ConsoleReporter) Summary(sum Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.ok
	if sum.Failed > 0 {
		c = r.bad
	}
	c.Fprintf(r.w, "Processed %d document(s): %d succeeded, %d failed\n", sum.Processed, sum.Succeeded, sum.Failed)
}
