package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"photoroom/ask"
	"photoroom/conflict"
	"photoroom/prapi"
)

var (
	colorOK    = color.New(color.FgGreen)
	colorErr   = color.New(color.FgRed)
	colorWarn  = color.New(color.FgYellow)
	colorMuted = color.New(color.FgHiBlack)
	colorBold  = color.New(color.Bold)
)

// Result is the processed output of one item
type Result struct {
	Data   []byte
	Note   string   // Shown after the output path, e.g. "(88% confidence)"
	Extras []string // Shown on following lines
	DryRun bool
}

// Item is one unit of work
type Item struct {
	Source  string // Input path or URL, for display
	Output  string // Wanted output path
	Process func(ctx context.Context) (*Result, error)
}

// Status of a finished item
type Status int

const (
	Succeeded Status = iota
	Failed
	Skipped
)

// Outcome reports what happened to one item
type Outcome struct {
	Source string
	Output string // Where the result was written; empty unless Succeeded
	Status Status
	Err    error
}

// Summary counts a batch's outcomes
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Outcomes  []Outcome
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case Succeeded:
		s.Succeeded++
	case Failed:
		s.Failed++
	case Skipped:
		s.Skipped++
	}
}

// Runner processes items one at a time: resolve the output conflict, call
// the API, write the file. Conflicts are resolved first so a skipped item
// costs no API call.
type Runner struct {
	resolver *conflict.Resolver
	state    *conflict.State
	out      io.Writer
	dryRun   bool
	log      *slog.Logger
}

// NewRunner creates a runner. state is shared by every item it processes.
func NewRunner(resolver *conflict.Resolver, state *conflict.State, out io.Writer, dryRun bool, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{resolver: resolver, state: state, out: out, dryRun: dryRun, log: log}
}

// Run processes items in order and prints a summary. Per-item failures are
// counted, never returned. The error is ask.ErrCancelled when the user
// interrupts a conflict prompt, or the context's error.
func (r *Runner) Run(ctx context.Context, items []Item) (Summary, error) {
	summary := Summary{Total: len(items)}
	fmt.Fprintf(r.out, "\nProcessing %d image(s)...\n", len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			r.printSummary(summary)
			return summary, err
		}

		outcome, err := r.Process(ctx, item)
		if err != nil {
			r.printSummary(summary)
			return summary, err
		}
		summary.add(outcome)
	}

	r.printSummary(summary)
	return summary, nil
}

// Process handles a single item. The error is non-nil only for
// cancellation; everything else lands in the Outcome.
func (r *Runner) Process(ctx context.Context, item Item) (Outcome, error) {
	outcome := Outcome{Source: item.Source}

	if r.dryRun {
		return r.processDryRun(ctx, item), nil
	}

	res, err := r.resolver.Resolve(item.Output, r.state)
	if err != nil {
		if errors.Is(err, ask.ErrCancelled) {
			return outcome, err
		}
		outcome.Status, outcome.Err = Failed, err
		r.printError(item.Source, err)
		return outcome, nil
	}
	if res.Skipped() {
		outcome.Status = Skipped
		fmt.Fprintln(r.out, colorWarn.Sprintf("⏭  Skipped %s (output exists)", item.Source))
		return outcome, nil
	}

	result, err := item.Process(ctx)
	if err == nil {
		err = write(res.Path, result.Data)
	}
	if err != nil {
		if rerr := res.Release(); rerr != nil {
			r.log.Warn("could not release reserved output", "path", res.Path, "err", rerr)
		}
		outcome.Status, outcome.Err = Failed, err
		r.printError(item.Source, err)
		return outcome, nil
	}

	outcome.Status, outcome.Output = Succeeded, res.Path
	r.printSuccess(item.Source, res.Path, result)
	return outcome, nil
}

func (r *Runner) processDryRun(ctx context.Context, item Item) Outcome {
	outcome := Outcome{Source: item.Source}
	result, err := item.Process(ctx)
	if err != nil {
		outcome.Status, outcome.Err = Failed, err
		r.printError(item.Source, err)
		return outcome
	}
	outcome.Status, outcome.Output = Succeeded, item.Output
	fmt.Fprintln(r.out, colorOK.Sprintf("[DRY RUN] %s → %s", item.Source, item.Output))
	if result != nil {
		for _, extra := range result.Extras {
			fmt.Fprintln(r.out, colorMuted.Sprint("   "+extra))
		}
	}
	return outcome
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (r *Runner) printSuccess(source, output string, result *Result) {
	line := fmt.Sprintf("✅ %s → %s", source, output)
	if result.Note != "" {
		line += " " + result.Note
	}
	fmt.Fprintln(r.out, colorOK.Sprint(line))
	for _, extra := range result.Extras {
		fmt.Fprintln(r.out, colorMuted.Sprint("   "+extra))
	}
}

func (r *Runner) printError(source string, err error) {
	PrintError(r.out, source, err)
}

// PrintError shows a failed item with the API's status, type and a hint
// for 403 responses
func PrintError(w io.Writer, source string, err error) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, colorErr.Sprint("❌ Error processing image"))
	fmt.Fprintf(w, "   File: %s\n", source)

	apiErr, ok := prapi.AsError(err)
	if !ok {
		fmt.Fprintf(w, "   Error: %v\n", err)
		return
	}
	if apiErr.StatusCode != 0 {
		fmt.Fprintf(w, "   Code: %d\n", apiErr.StatusCode)
	}
	if apiErr.Kind != "" {
		fmt.Fprintf(w, "   Type: %s\n", apiErr.Kind)
	}
	fmt.Fprintf(w, "   Error: %s\n", apiErr.Message)
	if apiErr.Forbidden() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, colorWarn.Sprint("⚠️  "+prapi.ForbiddenHint))
	}
}

func (r *Runner) printSummary(s Summary) {
	line := fmt.Sprintf("\n📊 Completed: %d/%d images processed successfully", s.Succeeded, s.Total)
	if s.Skipped > 0 {
		line += fmt.Sprintf(" (%d skipped)", s.Skipped)
	}
	fmt.Fprintln(r.out, colorBold.Sprint(line))
}

// OutputPath builds dir/<stem>_<suffix>.<ext> for a source path or URL
func OutputPath(dir, source, suffix, ext string) string {
	base := filepath.Base(source)
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		base = path.Base(u.Path)
		if base == "/" || base == "." {
			base = "image"
		}
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_"+suffix+"."+ext)
}
