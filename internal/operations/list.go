package operations

import (
	"context"
	"fmt"

	"github.com/kebairia/repobak/internal/backup"
)

// ListedRepository is a listed repository and whether the current filter
// options would back it up. SkipReason is one of the backup.Skip* values
// when Selected is false.
type ListedRepository struct {
	backup.Descriptor
	Selected   bool   `json:"selected"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// ListRepositories lists the account's repositories and marks the ones the
// filter selects.
func (om *OperationManager) ListRepositories(ctx context.Context) ([]ListedRepository, backup.FilterSummary, error) {
	repos, err := om.provider.ListRepositories(ctx, om.cfg.Account)
	if err != nil {
		return nil, backup.FilterSummary{}, fmt.Errorf("list %s repositories for %q: %w", om.provider.Name(), om.cfg.Account, err)
	}

	opts := om.filterOptions()
	listed := make([]ListedRepository, 0, len(repos))
	for _, r := range repos {
		reason := backup.SkipReason(r, opts)
		listed = append(listed, ListedRepository{
			Descriptor: r,
			Selected:   reason == "",
			SkipReason: reason,
		})
	}
	return listed, backup.Summarize(repos, opts), nil
}
