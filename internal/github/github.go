package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/nayouta/pr-review-helper/internal/cache"
)

const defaultAPIURL = "https://api.github.com"

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
	cache   *cache.Cache
}

// NewClient creates a new GitHub client. Requires GITHUB_TOKEN env var.
// apiURL overrides the endpoint (GitHub Enterprise); empty means github.com.
// diffCache may be nil to disable commit-diff memoization.
func NewClient(apiURL string, diffCache *cache.Cache) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, &AuthError{message: "GITHUB_TOKEN environment variable is not set"}
	}

	if apiURL == "" {
		apiURL = os.Getenv("GITHUB_API_URL")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	return &Client{
		token:   token,
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 60 * time.Second},
		cache:   diffCache,
	}, nil
}

// PullRequest holds the change-request metadata passed through into the report.
type PullRequest struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	CreatedAt    string `json:"createdAt"`
	ChangedFiles int    `json:"changedFiles"`
}

// Commit identifies one commit within a pull request. Commits arrive in the
// order GitHub reports them.
type Commit struct {
	SHA string `json:"sha"`
}

// CommitFile is one file changed by a commit. Patch is empty for binary or
// oversized files; such files contribute no line sets and no findings.
type CommitFile struct {
	Filename string `json:"filename"`
	Patch    string `json:"patch"`
}

// GetPullRequest fetches the pull request's metadata.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, prNumber int) (PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
	body, err := c.get(ctx, url)
	if err != nil {
		return PullRequest{}, fmt.Errorf("fetching PR #%d: %w", prNumber, err)
	}

	var raw struct {
		Title        string `json:"title"`
		CreatedAt    string `json:"created_at"`
		ChangedFiles int    `json:"changed_files"`
		User         struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PullRequest{}, fmt.Errorf("parsing PR response: %w", err)
	}
	return PullRequest{
		Number:       prNumber,
		Title:        raw.Title,
		Author:       raw.User.Login,
		CreatedAt:    raw.CreatedAt,
		ChangedFiles: raw.ChangedFiles,
	}, nil
}

// ListCommits fetches the ordered commit list of a pull request.
func (c *Client) ListCommits(ctx context.Context, owner, repo string, prNumber int) ([]Commit, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits?per_page=100", c.apiURL, owner, repo, prNumber)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching commits for PR #%d: %w", prNumber, err)
	}

	var commits []Commit
	if err := json.Unmarshal(body, &commits); err != nil {
		return nil, fmt.Errorf("parsing commit list: %w", err)
	}
	return commits, nil
}

// GetCommitFiles fetches the file diffs of one commit. A commit's diff never
// changes, so responses are served from the cache when one is configured.
func (c *Client) GetCommitFiles(ctx context.Context, owner, repo, sha string) ([]CommitFile, error) {
	cacheKey := fmt.Sprintf("commit:%s/%s/%s", owner, repo, sha)
	var body []byte
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			body = []byte(cached)
		}
	}

	if body == nil {
		url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.apiURL, owner, repo, sha)
		fetched, err := c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetching commit %s: %w", sha, err)
		}
		body = fetched
		if c.cache != nil {
			_ = c.cache.Put(cacheKey, string(body))
		}
	}

	var raw struct {
		Files []CommitFile `json:"files"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing commit %s: %w", sha, err)
	}
	return raw.Files, nil
}

// CreateGist creates a private gist holding the rendered report and returns
// its html_url.
func (c *Client) CreateGist(ctx context.Context, description, filename, content string) (string, error) {
	payload := map[string]any{
		"description": description,
		"public":      false,
		"files": map[string]any{
			filename: map[string]string{"content": content},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling gist: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/gists", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("creating gist: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gist creation failed (status %d): %s", resp.StatusCode, string(body))
	}

	var raw struct {
		HTMLURL string `json:"html_url"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("parsing gist response: %w", err)
	}
	return raw.HTMLURL, nil
}

// get performs an authenticated GET, retrying rate-limited requests with
// exponential backoff.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retryWithBackoff(ctx, maxRetries, func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpCli.Do(req)
		if err != nil {
			return fmt.Errorf("requesting %s: %w", url, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return &AuthError{message: string(data)}
		case resp.StatusCode == http.StatusForbidden && isRateLimited(resp):
			return &rateLimitError{}
		case resp.StatusCode == http.StatusForbidden:
			return &AuthError{message: string(data)}
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("not found: %s", url)
		case resp.StatusCode == http.StatusTooManyRequests:
			return &rateLimitError{}
		default:
			return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(data))
		}
	})
	return body, err
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

func isRateLimited(resp *http.Response) bool {
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	url := strings.TrimSpace(string(out))
	return ParseRemoteURL(url)
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
