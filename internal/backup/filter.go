package backup

// FilterOptions are the user-supplied selection flags.
type FilterOptions struct {
	PrivateOnly     bool
	IncludeArchived bool
}

// FilterSummary counts the repositories dropped by each rule. A repository is
// counted once, under the first rule that drops it.
type FilterSummary struct {
	Listed   int
	Selected int
	Empty    int
	Public   int
	Archived int
}

// Filter returns the repositories that qualify for backup, in input order.
// Empty repositories never qualify.
func Filter(repos []Descriptor, opts FilterOptions) []Descriptor {
	selected := make([]Descriptor, 0, len(repos))
	for _, r := range repos {
		if keep(r, opts) {
			selected = append(selected, r)
		}
	}
	return selected
}

func keep(r Descriptor, opts FilterOptions) bool {
	return !r.Empty &&
		(!opts.PrivateOnly || r.Private) &&
		(opts.IncludeArchived || !r.Archived)
}

// Reasons a repository is left out of a backup, as returned by SkipReason.
const (
	SkipEmpty    = "empty"
	SkipPublic   = "public"
	SkipArchived = "archived"
)

// SkipReason names the first rule that drops r under opts, or returns ""
// when Filter keeps it. Rules are checked in the order empty, public,
// archived.
func SkipReason(r Descriptor, opts FilterOptions) string {
	switch {
	case r.Empty:
		return SkipEmpty
	case opts.PrivateOnly && !r.Private:
		return SkipPublic
	case !opts.IncludeArchived && r.Archived:
		return SkipArchived
	default:
		return ""
	}
}

// Summarize explains what Filter would do with repos.
func Summarize(repos []Descriptor, opts FilterOptions) FilterSummary {
	s := FilterSummary{Listed: len(repos)}
	for _, r := range repos {
		switch SkipReason(r, opts) {
		case SkipEmpty:
			s.Empty++
		case SkipPublic:
			s.Public++
		case SkipArchived:
			s.Archived++
		default:
			s.Selected++
		}
	}
	return s
}
