package backup

import (
	"path/filepath"
	"strings"
)

const (
	// ArchiveExtension is appended to every sanitized repository name.
	ArchiveExtension = ".zip"
	// DefaultFolderPrefix names the folder used when no destination is given.
	DefaultFolderPrefix = "GitRepoBackups-"

	MinConcurrency = 1
	MaxConcurrency = 10
)

// invalidFileNameChars covers what Windows rejects, which is a superset of
// what unix filesystems reject.
const invalidFileNameChars = `<>:"/\|?*`

// SanitizeFileName replaces every character that is illegal in a file name
// with an underscore.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(invalidFileNameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// ArchiveFileName returns the file name a repository archive is stored under.
func ArchiveFileName(repository string) string {
	return SanitizeFileName(repository) + ArchiveExtension
}

// ResolveDestination returns dir unchanged unless it is blank, in which case
// it returns <cwd>/GitRepoBackups-<account>.
func ResolveDestination(dir, account, cwd string) string {
	if strings.TrimSpace(dir) != "" {
		return dir
	}
	return filepath.Join(cwd, DefaultFolderPrefix+SanitizeFileName(account))
}

// NewTargets pairs each descriptor with its archive path under root.
func NewTargets(descriptors []Descriptor, root string) []Target {
	targets := make([]Target, 0, len(descriptors))
	for _, d := range descriptors {
		targets = append(targets, Target{
			Descriptor: d,
			Path:       filepath.Join(root, ArchiveFileName(d.Name)),
		})
	}
	return targets
}

// ClampConcurrency forces n into [MinConcurrency, MaxConcurrency].
func ClampConcurrency(n int) int {
	return min(max(n, MinConcurrency), MaxConcurrency)
}
