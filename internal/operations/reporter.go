package operations

import (
	"fmt"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/logger"
)

// LogReporter writes orchestrator events to the structured log.
type LogReporter struct {
	log logger.Logger
}

var _ backup.Reporter = (*LogReporter)(nil)

// NewLogReporter returns a LogReporter writing to log.
func NewLogReporter(log logger.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Downloaded(o backup.Outcome, done, total int) {
	progress := fmt.Sprintf("%d/%d", done, total)
	if o.Succeeded {
		r.log.Info("repository backed up",
			"progress", progress,
			"repository", o.Name,
			"path", o.Path,
			"size_bytes", o.SizeBytes,
			"duration", o.Duration.String(),
		)
		return
	}
	r.log.Error("repository backup failed",
		"progress", progress,
		"repository", o.Name,
		"error", o.Cause,
	)
}

func (r *LogReporter) Completed(report *backup.Report) {
	r.log.Info("backup completed",
		"account", report.Account,
		"destination", report.Destination,
		"listed", report.TotalListed,
		"selected", report.TotalFiltered,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.Duration.String(),
	)
}
