package backup

import "time"

// Descriptor describes one repository as listed by a remote provider.
type Descriptor struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Private       bool   `json:"private"`
	Archived      bool   `json:"archived"`
	Empty         bool   `json:"empty"`
	DefaultBranch string `json:"default_branch"`
}

// Target is a Descriptor that passed the filter, paired with the path its
// archive is written to.
type Target struct {
	Descriptor
	Path string
}

// Outcome records the result of one download attempt.
type Outcome struct {
	Owner     string        `json:"owner"`
	Name      string        `json:"name"`
	Path      string        `json:"path,omitempty"`
	Succeeded bool          `json:"success"`
	Err       error         `json:"-"`
	Cause     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	SizeBytes int64         `json:"size_bytes"`
}

// Report is the aggregate result of one orchestration run.
type Report struct {
	Account       string        `json:"account,omitempty"`
	Destination   string        `json:"destination"`
	TotalListed   int           `json:"total_listed"`
	TotalFiltered int           `json:"total_filtered"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Outcomes      []Outcome     `json:"outcomes"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration_ns"`
}
