package backup

import (
	"errors"
	"fmt"
)

// Failures returns the failed outcomes in completion order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins the errors of every failed outcome, or returns nil when the run
// was clean.
func (r *Report) Err() error {
	if r.Failed == 0 {
		return nil
	}
	errs := make([]error, 0, r.Failed)
	for _, o := range r.Failures() {
		if o.Err != nil {
			errs = append(errs, o.Err)
			continue
		}
		// Reports loaded from disk only carry the cause text.
		errs = append(errs, fmt.Errorf("%w: %s/%s: %s", ErrDownloadFailed, o.Owner, o.Name, o.Cause))
	}
	return errors.Join(errs...)
}
