package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	"github.com/kebairia/repobak/internal/backup"
	"github.com/kebairia/repobak/internal/logger"
	"github.com/kebairia/repobak/internal/storage"
)

const (
	SiteGitHub = "github"

	perPage      = 100
	maxRedirects = 3
	bytesPerMB   = 1024.0 * 1024.0
)

// GitHub lists and downloads repositories through the GitHub REST API.
type GitHub struct {
	client *github.Client
	http   *http.Client
	fs     backup.Filesystem
	log    logger.Logger
	token  string
}

var _ backup.Provider = (*GitHub)(nil)

// NewGitHub returns a GitHub provider configured from opts.
func NewGitHub(opts ...Option) (*GitHub, error) {
	s := &settings{
		log: logger.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = storage.NewOS()
	}

	httpClient := s.httpClient
	if s.token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token})
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		s.log.Warn("no GitHub personal access token provided; only public repositories are visible and rate limits are low")
		if httpClient == nil {
			httpClient = &http.Client{}
		}
	}

	client := github.NewClient(httpClient)
	if s.baseURL != "" {
		base := s.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL %q: %w", s.baseURL, err)
		}
		client.BaseURL = u
	}

	return &GitHub{
		client: client,
		http:   httpClient,
		fs:     s.fs,
		log:    s.log,
		token:  s.token,
	}, nil
}

// Name returns the site name.
func (g *GitHub) Name() string { return SiteGitHub }

// ListRepositories returns every repository owned by account. When the token
// belongs to account, private repositories are included.
func (g *GitHub) ListRepositories(ctx context.Context, account string) ([]backup.Descriptor, error) {
	g.log.Debug("listing repositories", "account", account)

	var (
		repos []*github.Repository
		err   error
	)
	if g.authenticatedAs(ctx, account) {
		repos, err = g.listOwned(ctx)
	} else {
		repos, err = g.listForUser(ctx, account)
	}
	if err != nil {
		g.log.Error("listing repositories failed",
			"account", account,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %s: %w", backup.ErrListingFailed, account, err)
	}

	descriptors := make([]backup.Descriptor, 0, len(repos))
	for _, r := range repos {
		descriptors = append(descriptors, describe(r, account))
	}
	g.log.Debug("repositories listed", "account", account, "count", len(descriptors))
	return descriptors, nil
}

func (g *GitHub) authenticatedAs(ctx context.Context, account string) bool {
	if g.token == "" {
		return false
	}
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		g.log.Warn("could not resolve token owner", "error", err.Error())
		return false
	}
	return strings.EqualFold(user.GetLogin(), account)
}

func (g *GitHub) listOwned(ctx context.Context) ([]*github.Repository, error) {
	var all []*github.Repository
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Visibility:  "all",
		Affiliation: "owner",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for {
		repos, resp, err := g.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (g *GitHub) listForUser(ctx context.Context, user string) ([]*github.Repository, error) {
	var all []*github.Repository
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for {
		repos, resp, err := g.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func describe(r *github.Repository, account string) backup.Descriptor {
	owner := r.GetOwner().GetLogin()
	if owner == "" {
		owner = account
	}
	return backup.Descriptor{
		Owner:         owner,
		Name:          r.GetName(),
		Private:       r.GetPrivate(),
		Archived:      r.GetArchived(),
		Empty:         r.GetSize() <= 0,
		DefaultBranch: ResolveBranch(r.GetDefaultBranch()),
	}
}

// Download fetches the zipball of branch and writes it to destination.
func (g *GitHub) Download(ctx context.Context, owner, name, branch, destination string) (string, error) {
	link, _, err := g.client.Repositories.GetArchiveLink(ctx, owner, name, github.Zipball,
		&github.RepositoryContentGetOptions{Ref: branch}, maxRedirects)
	if err != nil {
		return "", fmt.Errorf("resolve archive link: %w", err)
	}

	data, err := g.fetch(ctx, link.String())
	if err != nil {
		return "", err
	}

	if err := g.fs.CreateDirectory(filepath.Dir(destination)); err != nil {
		return "", err
	}
	if err := g.fs.WriteAllBytes(destination, data); err != nil {
		return "", err
	}

	size, err := g.fs.GetFileSize(destination)
	if err != nil {
		return "", err
	}
	g.log.Info("repository downloaded",
		"repository", name,
		"branch", branch,
		"path", destination,
		"size_mb", fmt.Sprintf("%.2f", float64(size)/bytesPerMB),
	)
	return destination, nil
}

func (g *GitHub) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch archive: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}
