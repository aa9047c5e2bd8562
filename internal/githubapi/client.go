// Package githubapi is a thin REST client for the handful of GitHub
// endpoints the topology service needs: repository metadata, branch
// listing, two-ref comparison, and branch/PR creation.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"

	// branchPageSize is the per_page value for branch listing.
	branchPageSize = 100

	httpTimeout = 30 * time.Second
)

// ErrRateLimited marks responses where the API quota is exhausted.
// Callers treat it as retryable at a higher level.
var ErrRateLimited = errors.New("github api rate limit exceeded")

// HTTPClient is the transport surface, injectable for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig carries connection settings for a Client.
type ClientConfig struct {
	BaseURL string
	Token   string
	// Headers are forwarded verbatim on every request, after the
	// standard auth and version headers.
	Headers map[string]string
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	headers map[string]string
	http    HTTPClient
	logger  *log.Logger
}

// NewClient builds a Client. A nil httpClient gets a default with a
// request timeout.
func NewClient(cfg ClientConfig, httpClient HTTPClient) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		headers: cfg.Headers,
		http:    httpClient,
		logger:  log.WithPrefix("github"),
	}
}

// GetRepository fetches repository metadata, including the default
// branch that roots the inferred tree.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)

	var r Repository
	if err := c.get(ctx, url, &r); err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}

// ListBranches fetches all branches for a repository, following
// pagination until a short page.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]BranchRef, error) {
	var all []BranchRef
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/branches?per_page=%d&page=%d",
			c.baseURL, owner, repo, branchPageSize, page)

		var batch []BranchRef
		if err := c.get(ctx, url, &batch); err != nil {
			return nil, fmt.Errorf("failed to list branches for %s/%s: %w", owner, repo, err)
		}
		all = append(all, batch...)
		if len(batch) < branchPageSize {
			return all, nil
		}
	}
}

// CompareRefs issues the three-dot comparison between two refs. Only
// ahead_by, behind_by and status are consumed downstream.
func (c *Client) CompareRefs(ctx context.Context, owner, repo, base, head string) (*Compare, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s", c.baseURL, owner, repo, base, head)

	var cmp Compare
	if err := c.get(ctx, url, &cmp); err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s: %w", base, head, err)
	}
	return &cmp, nil
}

// CreateRef creates a branch pointing at the given commit.
func (c *Client) CreateRef(ctx context.Context, owner, repo, branch, sha string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/git/refs", c.baseURL, owner, repo)
	body := map[string]string{
		"ref": "refs/heads/" + branch,
		"sha": sha,
	}
	if err := c.post(ctx, url, body, nil); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// CreatePull opens a pull request from head into base.
func (c *Client) CreatePull(ctx context.Context, owner, repo string, req PullRequestInput) (*PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls", c.baseURL, owner, repo)

	var pr PullRequest
	if err := c.post(ctx, url, req, &pr); err != nil {
		return nil, fmt.Errorf("failed to create pull request %s -> %s: %w", req.Head, req.Base, err)
	}
	return &pr, nil
}

func (c *Client) get(ctx context.Context, url string, result any) error {
	return c.do(ctx, http.MethodGet, url, nil, result)
}

func (c *Client) post(ctx context.Context, url string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, payload, result)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if isRateLimited(resp) {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s", ErrRateLimited, method, url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
	}

	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isRateLimited reports whether a response signals an exhausted quota:
// a 429, or a 403 with the remaining-quota header at zero.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}
