package provider

import (
	"errors"
	"net/http"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/logger"
)

// ErrUnsupportedSite is returned for a site with no registered provider.
var ErrUnsupportedSite = errors.New("unsupported site")

// DefaultBranch is used when the remote does not report a default branch.
const DefaultBranch = "main"

// ResolveBranch returns branch, or DefaultBranch when it is blank.
func ResolveBranch(branch string) string {
	if branch == "" {
		return DefaultBranch
	}
	return branch
}

// Option lets you override default settings on a provider.
type Option func(*settings)

type settings struct {
	token      string
	baseURL    string
	httpClient *http.Client
	fs         backup.Filesystem
	log        logger.Logger
}

// WithToken sets the personal access token. Without one only public
// repositories are visible.
func WithToken(token string) Option {
	return func(s *settings) {
		if token != "" {
			s.token = token
		}
	}
}

// WithBaseURL points the provider at another API root (GitHub Enterprise,
// test servers).
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithFilesystem overrides where archives are written.
func WithFilesystem(fs backup.Filesystem) Option {
	return func(s *settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}
