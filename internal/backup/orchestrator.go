package backup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kebairia/repobak/internal/logger"
)

// Option configures an Orchestrator ("functional options pattern").
type Option func(*Orchestrator)

// WithConcurrency sets the number of download slots. The value is clamped
// into [MinConcurrency, MaxConcurrency].
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = ClampConcurrency(n)
	}
}

// WithReporter sets the sink for progress events.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAccount records the account name on produced reports.
func WithAccount(account string) Option {
	return func(o *Orchestrator) {
		o.account = account
	}
}

// Orchestrator downloads a batch of targets with bounded parallelism.
type Orchestrator struct {
	downloader  Downloader
	fs          Filesystem
	concurrency int
	reporter    Reporter
	log         logger.Logger
	account     string
}

// NewOrchestrator returns an Orchestrator with MaxConcurrency slots unless
// overridden.
func NewOrchestrator(downloader Downloader, fs Filesystem, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		downloader:  downloader,
		fs:          fs,
		concurrency: MaxConcurrency,
		reporter:    nopReporter{},
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Concurrency returns the effective number of slots.
func (o *Orchestrator) Concurrency() int { return o.concurrency }

// Run downloads every target into root and waits for all of them. It never
// fails as a whole: each target ends up as exactly one Outcome in the report.
// totalListed is carried into the report for accounting. A blank root means
// the working directory, matching the relative paths NewTargets builds for it.
func (o *Orchestrator) Run(ctx context.Context, targets []Target, root string, totalListed int) *Report {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	start := time.Now()
	report := &Report{
		Account:       o.account,
		Destination:   root,
		TotalListed:   totalListed,
		TotalFiltered: len(targets),
		Outcomes:      make([]Outcome, 0, len(targets)),
		StartedAt:     start,
	}
	c := &collector{report: report, reporter: o.reporter, total: len(targets)}

	if len(targets) > 0 {
		if err := o.fs.CreateDirectory(root); err != nil {
			o.log.Error("create destination failed",
				"path", root,
				"error", err.Error(),
			)
			for _, t := range targets {
				c.record(failure(t, start, ErrDownloadFailed, err))
			}
		} else {
			o.dispatch(ctx, targets, c)
		}
	}

	report.Duration = time.Since(start)
	o.reporter.Completed(report)
	return report
}

func (o *Orchestrator) dispatch(ctx context.Context, targets []Target, c *collector) {
	slots := semaphore.NewWeighted(int64(o.concurrency))

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			c.record(o.download(ctx, slots, t))
		}(t)
	}
	wg.Wait()
}

// download runs one task. The slot is released on every path out.
func (o *Orchestrator) download(ctx context.Context, slots *semaphore.Weighted, t Target) (out Outcome) {
	if err := slots.Acquire(ctx, 1); err != nil {
		return failure(t, time.Now(), ErrSlotAcquisitionCancelled, err)
	}
	defer slots.Release(1)

	started := time.Now()
	// Acquire may succeed on an already cancelled context.
	if err := ctx.Err(); err != nil {
		return failure(t, started, ErrSlotAcquisitionCancelled, err)
	}

	defer func() {
		if r := recover(); r != nil {
			out = failure(t, started, ErrDownloadFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	o.log.Debug("download started",
		"owner", t.Owner,
		"repository", t.Name,
		"branch", t.DefaultBranch,
		"path", t.Path,
	)
	path, err := o.downloader.Download(ctx, t.Owner, t.Name, t.DefaultBranch, t.Path)
	if err != nil {
		return failure(t, started, ErrDownloadFailed, err)
	}

	out = Outcome{
		Owner:     t.Owner,
		Name:      t.Name,
		Path:      path,
		Succeeded: true,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if size, err := o.fs.GetFileSize(path); err == nil {
		out.SizeBytes = size
	}
	return out
}

func failure(t Target, started time.Time, tag, cause error) Outcome {
	return Outcome{
		Owner:     t.Owner,
		Name:      t.Name,
		Err:       fmt.Errorf("%w: %s/%s: %w", tag, t.Owner, t.Name, cause),
		Cause:     cause.Error(),
		StartedAt: started,
		Duration:  time.Since(started),
	}
}

// collector owns the report while tasks are running.
type collector struct {
	mu       sync.Mutex
	report   *Report
	reporter Reporter
	total    int
}

func (c *collector) record(out Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.Succeeded {
		c.report.Succeeded++
	} else {
		c.report.Failed++
	}
	c.report.Outcomes = append(c.report.Outcomes, out)
	c.reporter.Downloaded(out, len(c.report.Outcomes), c.total)
}
