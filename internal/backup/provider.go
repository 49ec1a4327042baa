package backup

import (
	"context"
	"errors"
)

var (
	// ErrListingFailed wraps any failure to enumerate an account's repositories.
	ErrListingFailed = errors.New("listing repositories failed")
	// ErrDownloadFailed tags an outcome whose transfer failed.
	ErrDownloadFailed = errors.New("download failed")
	// ErrSlotAcquisitionCancelled tags an outcome whose task was cancelled
	// while waiting for a free slot.
	ErrSlotAcquisitionCancelled = errors.New("slot acquisition cancelled")
)

// Lister enumerates the repositories of an account.
type Lister interface {
	ListRepositories(ctx context.Context, account string) ([]Descriptor, error)
}

// Downloader fetches one repository archive into destination and returns the
// path of the artifact it wrote. Implementations must be safe for concurrent
// use on distinct targets.
type Downloader interface {
	Download(ctx context.Context, owner, name, branch, destination string) (string, error)
}

// Provider is a remote hosting site.
type Provider interface {
	Name() string
	Lister
	Downloader
}

// Filesystem is the narrow set of filesystem primitives the backup needs.
type Filesystem interface {
	// CreateDirectory creates path and any parents; existing directories are
	// left untouched.
	CreateDirectory(path string) error
	WriteAllBytes(path string, data []byte) error
	FileExists(path string) bool
	GetFileSize(path string) (int64, error)
}

// Reporter receives progress events from the orchestrator. Calls are
// serialized.
type Reporter interface {
	Downloaded(outcome Outcome, done, total int)
	Completed(report *Report)
}

type nopReporter struct{}

func (nopReporter) Downloaded(Outcome, int, int) {}
func (nopReporter) Completed(*Report)            {}
