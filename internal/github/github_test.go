package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nayouta/pr-review-helper/internal/cache"
)

func testClient(server *httptest.Server, diffCache *cache.Cache) *Client {
	return &Client{
		token:   "test-token",
		apiURL:  server.URL,
		httpCli: server.Client(),
		cache:   diffCache,
	}
}

func TestGetPullRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", r.Header.Get("Authorization"), "Bearer test-token")
		}
		if r.Header.Get("Accept") != "application/vnd.github.v3+json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q, want %q", r.URL.Path, "/repos/owner/repo/pulls/42")
		}
		w.Write([]byte(`{"title":"Fix parser","created_at":"2024-05-01T12:00:00Z","changed_files":3,"user":{"login":"alice"}}`))
	}))
	defer server.Close()

	pr, err := testClient(server, nil).GetPullRequest(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetPullRequest error: %v", err)
	}
	if pr.Number != 42 || pr.Title != "Fix parser" || pr.Author != "alice" || pr.ChangedFiles != 3 {
		t.Errorf("pr = %+v", pr)
	}
	if pr.CreatedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q", pr.CreatedAt)
	}
}

func TestGetPullRequest_401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	_, err := testClient(server, nil).GetPullRequest(context.Background(), "owner", "repo", 1)
	if err == nil {
		t.Fatal("Expected error for 401")
	}
	if !IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestListCommits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/7/commits" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Commit{{SHA: "abc123"}, {SHA: "def456"}})
	}))
	defer server.Close()

	commits, err := testClient(server, nil).ListCommits(context.Background(), "owner", "repo", 7)
	if err != nil {
		t.Fatalf("ListCommits error: %v", err)
	}
	if len(commits) != 2 || commits[0].SHA != "abc123" || commits[1].SHA != "def456" {
		t.Errorf("commits = %+v", commits)
	}
}

func TestGetCommitFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/commits/abc123" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"files":[{"filename":"a.py","patch":"+x = 1\n-x = 1"},{"filename":"img.png"}]}`))
	}))
	defer server.Close()

	files, err := testClient(server, nil).GetCommitFiles(context.Background(), "owner", "repo", "abc123")
	if err != nil {
		t.Fatalf("GetCommitFiles error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Filename != "a.py" || files[0].Patch == "" {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1].Patch != "" {
		t.Errorf("binary file should have empty patch, got %q", files[1].Patch)
	}
}

func TestGetCommitFiles_CacheHit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"files":[{"filename":"a.py","patch":"+x"}]}`))
	}))
	defer server.Close()

	c, err := cache.New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("cache.New error: %v", err)
	}
	client := testClient(server, c)

	for i := 0; i < 2; i++ {
		files, err := client.GetCommitFiles(context.Background(), "owner", "repo", "abc123")
		if err != nil {
			t.Fatalf("GetCommitFiles error: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("len(files) = %d", len(files))
		}
	}

	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (second read should hit cache)", calls)
	}
}

func TestCreateGist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/gists" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Public bool                         `json:"public"`
			Files  map[string]map[string]string `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		if payload.Public {
			t.Error("gist must be private")
		}
		if payload.Files["report.md"]["content"] != "# Report" {
			t.Errorf("files = %+v", payload.Files)
		}
		w.WriteHeader(201)
		w.Write([]byte(`{"html_url":"https://gist.github.com/abc"}`))
	}))
	defer server.Close()

	url, err := testClient(server, nil).CreateGist(context.Background(), "Review Report", "report.md", "# Report")
	if err != nil {
		t.Fatalf("CreateGist error: %v", err)
	}
	if url != "https://gist.github.com/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestCreateGist_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(422)
		w.Write([]byte(`{"message":"Validation Failed"}`))
	}))
	defer server.Close()

	_, err := testClient(server, nil).CreateGist(context.Background(), "d", "f.md", "c")
	if err == nil {
		t.Fatal("Expected error for 422")
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		url       string
		owner     string
		repo      string
		expectErr bool
	}{
		{"https://github.com/alice/widgets.git", "alice", "widgets", false},
		{"https://github.com/alice/widgets", "alice", "widgets", false},
		{"git@github.com:alice/widgets.git", "alice", "widgets", false},
		{"https://ghe.example.com/team/tool.git", "team", "tool", false},
		{"not-a-url", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRemoteURL(tt.url)
		if tt.expectErr {
			if err == nil {
				t.Errorf("ParseRemoteURL(%q): expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRemoteURL(%q) error: %v", tt.url, err)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRemoteURL(%q) = %s/%s, want %s/%s", tt.url, owner, repo, tt.owner, tt.repo)
		}
	}
}
