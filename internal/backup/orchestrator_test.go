package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyFilesystem records directory creation and written files in memory.
type spyFilesystem struct {
	mu        sync.Mutex
	dirs      map[string]int
	files     map[string][]byte
	createErr error
}

func newSpyFilesystem() *spyFilesystem {
	return &spyFilesystem{dirs: map[string]int{}, files: map[string][]byte{}}
}

func (f *spyFilesystem) CreateDirectory(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.dirs[path]++
	return nil
}

func (f *spyFilesystem) WriteAllBytes(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return nil
}

func (f *spyFilesystem) FileExists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *spyFilesystem) GetFileSize(path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return 0, fmt.Errorf("%s: not found", path)
	}
	return int64(len(data)), nil
}

func (f *spyFilesystem) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.dirs {
		n += c
	}
	return n
}

// stubDownloader writes a fixed payload unless the repository is listed in
// failures, in which case it returns that error. Repositories listed in
// panics make it panic.
type stubDownloader struct {
	fs       *spyFilesystem
	failures map[string]error
	panics   map[string]bool
	calls    atomic.Int32
}

func (d *stubDownloader) Download(_ context.Context, _, name, _, destination string) (string, error) {
	d.calls.Add(1)
	if d.panics[name] {
		panic("boom")
	}
	if err := d.failures[name]; err != nil {
		return "", err
	}
	return destination, d.fs.WriteAllBytes(destination, []byte("PK\x03\x04"))
}

// blockingDownloader holds every download until release is closed and
// tracks how many run at once.
type blockingDownloader struct {
	release chan struct{}
	running atomic.Int32
	peak    atomic.Int32
}

func (d *blockingDownloader) Download(ctx context.Context, _, _, _, destination string) (string, error) {
	n := d.running.Add(1)
	defer d.running.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-d.release:
		return destination, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// recordingReporter keeps every event it receives.
type recordingReporter struct {
	mu        sync.Mutex
	outcomes  []Outcome
	progress  []int
	completed []*Report
}

func (r *recordingReporter) Downloaded(o Outcome, done, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	r.progress = append(r.progress, done)
}

func (r *recordingReporter) Completed(report *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, report)
}

func targetsNamed(n ...string) []Target {
	descs := make([]Descriptor, 0, len(n))
	for _, name := range n {
		descs = append(descs, Descriptor{Owner: "octo", Name: name, DefaultBranch: "main"})
	}
	return NewTargets(descs, "/backups")
}

func outcomeFor(t *testing.T, report *Report, name string) Outcome {
	t.Helper()
	for _, o := range report.Outcomes {
		if o.Name == name {
			return o
		}
	}
	t.Fatalf("no outcome for %q", name)
	return Outcome{}
}

func TestRun_MixedOutcomes(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &stubDownloader{fs: fs, failures: map[string]error{"B": errors.New("network")}}
	reporter := &recordingReporter{}

	o := NewOrchestrator(downloader, fs, WithConcurrency(2), WithReporter(reporter), WithAccount("octo"))
	report := o.Run(context.Background(), targetsNamed("A", "B", "C"), "/backups", 5)

	assert.Equal(t, "octo", report.Account)
	assert.Equal(t, 5, report.TotalListed)
	assert.Equal(t, 3, report.TotalFiltered)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Outcomes, 3)

	b := outcomeFor(t, report, "B")
	assert.False(t, b.Succeeded)
	assert.Equal(t, "network", b.Cause)
	assert.ErrorIs(t, b.Err, ErrDownloadFailed)
	assert.Empty(t, b.Path)

	a := outcomeFor(t, report, "A")
	assert.True(t, a.Succeeded)
	assert.Equal(t, "/backups/A.zip", a.Path)
	assert.EqualValues(t, 4, a.SizeBytes)

	assert.Len(t, reporter.outcomes, 3)
	assert.Equal(t, []int{1, 2, 3}, reporter.progress)
	require.Len(t, reporter.completed, 1)
	assert.Same(t, report, reporter.completed[0])

	assert.Equal(t, 1, fs.dirs["/backups"])
	assert.ErrorIs(t, report.Err(), ErrDownloadFailed)
	assert.Len(t, report.Failures(), 1)
}

func TestRun_NoTargets(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &stubDownloader{fs: fs}

	report := NewOrchestrator(downloader, fs).Run(context.Background(), nil, "/backups", 4)

	assert.Equal(t, 0, report.TotalFiltered)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, downloader.calls.Load())
	assert.Zero(t, fs.createCalls())
	assert.NoError(t, report.Err())
}

func TestRun_OutcomeCompleteness(t *testing.T) {
	const n = 37
	fs := newSpyFilesystem()
	failures := map[string]error{}
	repoNames := make([]string, 0, n)
	for i := range n {
		name := fmt.Sprintf("repo-%02d", i)
		repoNames = append(repoNames, name)
		if i%3 == 0 {
			failures[name] = fmt.Errorf("failure %d", i)
		}
	}
	downloader := &stubDownloader{fs: fs, failures: failures}

	report := NewOrchestrator(downloader, fs, WithConcurrency(4)).
		Run(context.Background(), targetsNamed(repoNames...), "/backups", n)

	assert.Len(t, report.Outcomes, n)
	assert.Equal(t, n, report.Succeeded+report.Failed)
	assert.Equal(t, len(failures), report.Failed)

	seen := map[string]int{}
	for _, o := range report.Outcomes {
		seen[o.Name]++
	}
	for _, name := range repoNames {
		assert.Equal(t, 1, seen[name], "outcomes for %s", name)
	}
}

func TestRun_IsolatesFailingTarget(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &stubDownloader{
		fs:       fs,
		failures: map[string]error{"bad": errors.New("api error")},
		panics:   map[string]bool{"worse": true},
	}

	report := NewOrchestrator(downloader, fs, WithConcurrency(3)).
		Run(context.Background(), targetsNamed("one", "bad", "two", "worse", "three"), "/backups", 5)

	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	for _, name := range []string{"one", "two", "three"} {
		assert.True(t, outcomeFor(t, report, name).Succeeded, name)
	}
	worse := outcomeFor(t, report, "worse")
	assert.False(t, worse.Succeeded)
	assert.Contains(t, worse.Cause, "panic")
}

func TestRun_RespectsSlotBound(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{requested: 1, want: 1},
		{requested: 10, want: 10},
		{requested: 0, want: 1},
		{requested: 50, want: 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("concurrency=%d", tt.requested), func(t *testing.T) {
			fs := newSpyFilesystem()
			downloader := &blockingDownloader{release: make(chan struct{})}
			o := NewOrchestrator(downloader, fs, WithConcurrency(tt.requested))
			require.Equal(t, tt.want, o.Concurrency())

			repoNames := make([]string, 0, 25)
			for i := range 25 {
				repoNames = append(repoNames, fmt.Sprintf("r%d", i))
			}

			done := make(chan *Report, 1)
			go func() {
				done <- o.Run(context.Background(), targetsNamed(repoNames...), "/backups", 25)
			}()

			require.Eventually(t, func() bool {
				return downloader.running.Load() == int32(tt.want)
			}, 2*time.Second, 5*time.Millisecond)

			// Give extra tasks a chance to sneak past the bound.
			time.Sleep(50 * time.Millisecond)
			assert.Equal(t, int32(tt.want), downloader.running.Load())

			close(downloader.release)
			report := <-done

			assert.Equal(t, int32(tt.want), downloader.peak.Load())
			assert.Equal(t, 25, report.Succeeded)
		})
	}
}

func TestRun_CancellationRecordsFailures(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &blockingDownloader{release: make(chan struct{})}
	o := NewOrchestrator(downloader, fs, WithConcurrency(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *Report, 1)
	go func() {
		done <- o.Run(ctx, targetsNamed("a", "b", "c", "d", "e"), "/backups", 5)
	}()

	require.Eventually(t, func() bool {
		return downloader.running.Load() == 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	var report *Report
	select {
	case report = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish after cancellation")
	}

	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 5, report.Failed)
	assert.Len(t, report.Outcomes, 5)

	var waiting, inFlight int
	for _, o := range report.Outcomes {
		switch {
		case errors.Is(o.Err, ErrSlotAcquisitionCancelled):
			waiting++
		case errors.Is(o.Err, ErrDownloadFailed):
			inFlight++
		}
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Equal(t, 2, inFlight)
	assert.Equal(t, 3, waiting)
}

func TestRun_DestinationFailureFailsEveryTarget(t *testing.T) {
	fs := newSpyFilesystem()
	fs.createErr = errors.New("read-only filesystem")
	downloader := &stubDownloader{fs: fs}

	report := NewOrchestrator(downloader, fs).
		Run(context.Background(), targetsNamed("a", "b"), "/backups", 2)

	assert.Equal(t, 2, report.Failed)
	assert.Zero(t, downloader.calls.Load())
	for _, o := range report.Outcomes {
		assert.Equal(t, "read-only filesystem", o.Cause)
	}
}

func TestRun_CreatesDestinationOncePerRun(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &stubDownloader{fs: fs}
	o := NewOrchestrator(downloader, fs)

	o.Run(context.Background(), targetsNamed("a", "b", "c"), "/backups", 3)
	report := o.Run(context.Background(), targetsNamed("a", "b", "c"), "/backups", 3)

	assert.Equal(t, 2, fs.dirs["/backups"])
	assert.Equal(t, 3, report.Succeeded)
	assert.Len(t, fs.files, 3)
}

func TestRun_BlankRootUsesWorkingDirectory(t *testing.T) {
	fs := newSpyFilesystem()
	downloader := &stubDownloader{fs: fs}
	o := NewOrchestrator(downloader, fs)

	targets := NewTargets([]Descriptor{{Owner: "octo", Name: "a", DefaultBranch: "main"}}, "")
	report := o.Run(context.Background(), targets, "  ", 1)

	assert.Equal(t, ".", report.Destination)
	assert.Equal(t, 1, fs.dirs["."])
	assert.Empty(t, fs.dirs[""])
	assert.Equal(t, 1, report.Succeeded)
}
