package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"leverage/internal/config"
	"leverage/internal/errs"
	"leverage/internal/model"
	"leverage/pkg/logger"
)

const (
	githubHost       = "github.com"
	defaultRef       = "HEAD"
	maxErrorBodySize = 512
)

//go:generate mockgen -source=github.go -destination=../../test/mocks/mock_tree_fetcher.go -package=mocks

// TreeFetcher lists every path of a remote repository.
type TreeFetcher interface {
	FetchTree(ctx context.Context, repoURL string) ([]model.TreeEntry, error)
}

// RepoRef identifies a repository and the ref to list.
type RepoRef struct {
	Owner string
	Repo  string
	Ref   string
}

// ParseRepoRef accepts https://github.com/<owner>/<repo>, optionally with a
// .git suffix, a trailing slash, a www. host or a /tree/<ref> suffix. The
// scheme may be omitted.
func ParseRepoRef(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("%w: empty repository url", errs.ErrInvalidReference)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %v", errs.ErrInvalidReference, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return RepoRef{}, fmt.Errorf("%w: unsupported scheme %q", errs.ErrInvalidReference, u.Scheme)
	}
	if host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."); host != githubHost {
		return RepoRef{}, fmt.Errorf("%w: unsupported host %q", errs.ErrInvalidReference, u.Hostname())
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	ref := RepoRef{Ref: defaultRef}
	switch {
	case len(parts) == 2:
	case len(parts) >= 4 && parts[2] == "tree":
		ref.Ref = strings.Join(parts[3:], "/")
	default:
		return RepoRef{}, fmt.Errorf("%w: expected github.com/<owner>/<repo>, got %q", errs.ErrInvalidReference, raw)
	}
	ref.Owner = parts[0]
	ref.Repo = strings.TrimSuffix(parts[1], ".git")
	if ref.Owner == "" || ref.Repo == "" || ref.Ref == "" {
		return RepoRef{}, fmt.Errorf("%w: expected github.com/<owner>/<repo>, got %q", errs.ErrInvalidReference, raw)
	}
	return ref, nil
}

// GitHubFetcher lists repositories through the GitHub git trees API.
type GitHubFetcher struct {
	config     config.ConfigFetcher
	httpClient *fasthttp.Client
	logger     logger.Logger
}

func NewGitHubFetcher(cfg config.ConfigFetcher, logger logger.Logger) *GitHubFetcher {
	return &GitHubFetcher{
		config: cfg,
		httpClient: &fasthttp.Client{
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxConnsPerHost:     64,
		},
		logger: logger,
	}
}

// FetchTree makes exactly one request. Any transport failure, timeout or
// non-2xx status is reported as an *errs.UpstreamError.
func (f *GitHubFetcher) FetchTree(ctx context.Context, repoURL string) ([]model.TreeEntry, error) {
	ref, err := ParseRepoRef(repoURL)
	if err != nil {
		return nil, err
	}

	timeout := f.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, &errs.UpstreamError{Err: context.DeadlineExceeded}
	}

	apiURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		strings.TrimRight(f.config.APIBaseURL, "/"),
		url.PathEscape(ref.Owner), url.PathEscape(ref.Repo), escapeRef(ref.Ref))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(apiURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.SetUserAgent(f.config.UserAgent)
	if f.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.config.Token)
	}

	f.logger.Info("fetcher: listing %s/%s@%s", ref.Owner, ref.Repo, ref.Ref)
	start := time.Now()
	if err := f.httpClient.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			err = fmt.Errorf("%w after %s", context.DeadlineExceeded, timeout)
		}
		f.logger.Warn("fetcher: request to %s failed: %v", apiURL, err)
		return nil, &errs.UpstreamError{Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		body := string(resp.Body())
		if len(body) > maxErrorBodySize {
			body = body[:maxErrorBodySize]
		}
		if msg := gjson.Get(body, "message").String(); msg != "" {
			body = msg
		}
		f.logger.Warn("fetcher: %s returned status %d", apiURL, status)
		return nil, &errs.UpstreamError{Status: status, Body: body}
	}

	entries, truncated, err := parseTreeBody(resp.Body())
	if err != nil {
		return nil, &errs.UpstreamError{Status: status, Err: err}
	}
	if truncated {
		f.logger.Warn("fetcher: listing of %s/%s was truncated by the upstream at %d entries", ref.Owner, ref.Repo, len(entries))
	}
	f.logger.Info("fetcher: listed %d entries of %s/%s in %s", len(entries), ref.Owner, ref.Repo, time.Since(start))
	return entries, nil
}

// escapeRef keeps the slashes of branch names such as feature/x.
func escapeRef(ref string) string {
	segments := strings.Split(ref, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// parseTreeBody reads the "tree" array of a git trees response. Submodule
// ("commit") entries are skipped.
func parseTreeBody(body []byte) ([]model.TreeEntry, bool, error) {
	if !gjson.ValidBytes(body) {
		return nil, false, errors.New("malformed tree response")
	}
	doc := gjson.ParseBytes(body)
	tree := doc.Get("tree")
	if !tree.IsArray() {
		return nil, false, errors.New("tree response has no tree array")
	}

	entries := make([]model.TreeEntry, 0, len(tree.Array()))
	tree.ForEach(func(_, item gjson.Result) bool {
		path := item.Get("path").String()
		if path == "" {
			return true
		}
		var kind model.NodeType
		switch item.Get("type").String() {
		case "blob":
			kind = model.NodeTypeBlob
		case "tree":
			kind = model.NodeTypeTree
		default:
			return true
		}
		entry := model.TreeEntry{Path: path, Kind: kind}
		if size := item.Get("size"); size.Exists() {
			n := size.Int()
			entry.Size = &n
		}
		entries = append(entries, entry)
		return true
	})
	return entries, doc.Get("truncated").Bool(), nil
}
