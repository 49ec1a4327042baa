package operations

import (
	"context"
	"fmt"

	"github.com/kebairia/repobak/internal/backup"
)

// BackupAll lists the account's repositories, filters them and downloads
// the selection. Only listing failures are returned as errors; per-repository
// failures are reported in the returned Report.
func (om *OperationManager) BackupAll(ctx context.Context) (*backup.Report, error) {
	account := om.cfg.Account

	repos, err := om.provider.ListRepositories(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("list %s repositories for %q: %w", om.provider.Name(), account, err)
	}

	opts := om.filterOptions()
	summary := backup.Summarize(repos, opts)
	om.log.Info("repositories listed",
		"account", account,
		"site", om.provider.Name(),
		"listed", summary.Listed,
		"selected", summary.Selected,
		"skipped_empty", summary.Empty,
		"skipped_public", summary.Public,
		"skipped_archived", summary.Archived,
	)

	destination := om.Destination()
	targets := backup.NewTargets(backup.Filter(repos, opts), destination)

	var downloader backup.Downloader = om.provider
	if om.cfg.Backup.Compress {
		downloader = &compressingDownloader{next: om.provider, fs: om.fs.Afero()}
	}

	orchestrator := backup.NewOrchestrator(downloader, om.fs,
		backup.WithConcurrency(om.cfg.Backup.MaxConcurrency),
		backup.WithReporter(NewLogReporter(om.log)),
		backup.WithLogger(om.log),
		backup.WithAccount(account),
	)
	if orchestrator.Concurrency() != om.cfg.Backup.MaxConcurrency {
		om.log.Warn("max concurrency clamped",
			"requested", om.cfg.Backup.MaxConcurrency,
			"effective", orchestrator.Concurrency(),
		)
	}

	om.log.Info("backup started",
		"repositories", len(targets),
		"destination", destination,
		"max_concurrency", orchestrator.Concurrency(),
		"compress", om.cfg.Backup.Compress,
	)
	report := orchestrator.Run(ctx, targets, destination, len(repos))

	if len(targets) > 0 {
		if err := WriteMetadata(om.fs.Afero(), destination, report); err != nil {
			om.log.Warn("writing metadata failed",
				"destination", destination,
				"error", err.Error(),
			)
		}
	}

	return report, nil
}
