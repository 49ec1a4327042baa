package backup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"repo":            "repo",
		"test<>repo:name": "test__repo_name",
		`a/b\c|d?e*f"g`:   "a_b_c_d_e_f_g",
		"tab\there":       "tab_here",
		"dotted.name-1":   "dotted.name-1",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}
}

func TestArchiveFileName(t *testing.T) {
	assert.Equal(t, "test__repo_name.zip", ArchiveFileName("test<>repo:name"))
}

func TestResolveDestination(t *testing.T) {
	cwd := filepath.FromSlash("/work")

	assert.Equal(t, "/explicit", ResolveDestination("/explicit", "octo", cwd))
	assert.Equal(t, filepath.Join(cwd, "GitRepoBackups-octo"), ResolveDestination("", "octo", cwd))
	assert.Equal(t, filepath.Join(cwd, "GitRepoBackups-octo"), ResolveDestination("   ", "octo", cwd))
}

func TestNewTargets(t *testing.T) {
	targets := NewTargets([]Descriptor{
		{Owner: "octo", Name: "one", DefaultBranch: "main"},
		{Owner: "octo", Name: "two:x", DefaultBranch: "dev"},
	}, "/backups")

	if assert.Len(t, targets, 2) {
		assert.Equal(t, filepath.Join("/backups", "one.zip"), targets[0].Path)
		assert.Equal(t, filepath.Join("/backups", "two_x.zip"), targets[1].Path)
		assert.Equal(t, "dev", targets[1].DefaultBranch)
	}
}

func TestClampConcurrency(t *testing.T) {
	tests := map[int]int{-3: 1, 0: 1, 1: 1, 5: 5, 10: 10, 11: 10, 50: 10}
	for in, want := range tests {
		assert.Equal(t, want, ClampConcurrency(in), "input %d", in)
	}
}
