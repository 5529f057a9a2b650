package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"photoroom/ask"
	"photoroom/batch"
	"photoroom/conflict"
	"photoroom/config"
	"photoroom/prapi"
)

// debouncer emits a path once it has been quiet for delay
type debouncer struct {
	delay  time.Duration
	ready  chan string
	done   chan struct{}
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string, 16),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

// Trigger restarts the quiet period for path
func (d *debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()

		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
}

// Ready delivers settled paths
func (d *debouncer) Ready() <-chan string {
	return d.ready
}

// Stop cancels pending timers
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
	close(d.done)
}

// neverAsk answers every prompt with cancellation; watch mode runs unattended
type neverAsk struct{}

func (neverAsk) AskAll([]ask.Question) (ask.Answers, error) {
	return nil, ask.ErrCancelled
}

func watchOptions(w config.Watch) prapi.SegmentOptions {
	return prapi.SegmentOptions{
		Format:   w.Format,
		Channels: w.Channels,
		BgColor:  w.BgColor,
		Size:     w.Size,
		Crop:     w.Crop,
		Despill:  w.Despill,
	}
}

// wantEvent reports whether ev may carry a new image to process
func wantEvent(ev fsnotify.Event, outputDir string) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !ask.IsImageFile(ev.Name) {
		return false
	}
	// Results written into the watched directory must not be reprocessed
	return filepath.Clean(filepath.Dir(ev.Name)) != filepath.Clean(outputDir)
}

// watchProcessor handles settled files
type watchProcessor struct {
	api       Segmenter
	runner    *batch.Runner
	opts      prapi.SegmentOptions
	outputDir string
	spin      func(string) func()
}

func (p *watchProcessor) handle(ctx context.Context, path string) (batch.Outcome, error) {
	info, err := ask.InspectImage(path)
	if err != nil {
		return batch.Outcome{Source: path, Status: batch.Skipped, Err: err}, nil
	}
	if !info.Valid {
		return batch.Outcome{Source: path, Status: batch.Skipped, Err: errors.New(info.Reason)}, nil
	}
	return p.runner.Process(ctx, segmentItem(p.api, path, p.outputDir, p.opts, p.spin))
}

func (a *app) watch(ctx context.Context, dir string) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}
	outputDir, err := filepath.Abs(a.cfg.Watch.OutputDir)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Rename every conflict so the loop never blocks on a prompt
	state := conflict.NewState()
	state.SetRenameAll()
	proc := &watchProcessor{
		api:       client,
		runner:    batch.NewRunner(conflict.NewResolver(neverAsk{}), state, a.out, a.dryRun, a.log),
		opts:      watchOptions(a.cfg.Watch),
		outputDir: outputDir,
		spin:      a.spinner,
	}

	deb := newDebouncer(a.cfg.Watch.Debounce)
	defer deb.Stop()

	printHeader(a.out, "👀 Watching "+dir)
	fmt.Fprintf(a.out, "Results go to %s. Press Ctrl-C to stop.\n", outputDir)
	if a.dryRun {
		printDryRunBanner(a.out)
	}

	var summary batch.Summary
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(a.out, "\n📊 Processed %d image(s), %d failed\n", summary.Succeeded, summary.Failed)
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			a.log.Debug("watch event", "op", ev.Op.String(), "path", ev.Name)
			if wantEvent(ev, outputDir) {
				deb.Trigger(ev.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "err", err)

		case path := <-deb.Ready():
			outcome, err := proc.handle(ctx, path)
			if err != nil {
				return err
			}
			if outcome.Status == batch.Skipped && outcome.Err != nil {
				colorYellow.Fprintf(a.out, "⏭  Skipped %s: %v\n", filepath.Base(path), outcome.Err)
			}
			summary.Total++
			switch outcome.Status {
			case batch.Succeeded:
				summary.Succeeded++
			case batch.Failed:
				summary.Failed++
			}
		}
	}
}
