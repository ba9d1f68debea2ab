package review

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nayouta/pr-review-helper/internal/analyze"
	"github.com/nayouta/pr-review-helper/internal/config"
	"github.com/nayouta/pr-review-helper/internal/diffset"
	"github.com/nayouta/pr-review-helper/internal/github"
)

const (
	toolName    = "prreview"
	toolVersion = "1.0"
)

// Fetcher is the subset of the GitHub client the engine needs.
type Fetcher interface {
	GetPullRequest(ctx context.Context, owner, repo string, prNumber int) (github.PullRequest, error)
	ListCommits(ctx context.Context, owner, repo string, prNumber int) ([]github.Commit, error)
	GetCommitFiles(ctx context.Context, owner, repo, sha string) ([]github.CommitFile, error)
}

// Engine reviews pull requests: it walks every commit, reconciles added and
// removed lines into cancelled sets, and dispatches added code to the
// per-language analyzers.
type Engine struct {
	client Fetcher
	router *analyze.Router
	cfg    config.Config
	log    *zap.Logger
}

// New creates an Engine. A nil logger is replaced with a no-op logger.
func New(client Fetcher, cfg config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := analyze.NewRouter(analyze.Options{
		DebugCalls:  cfg.DebugCalls,
		NodeScript:  cfg.NodeScript,
		ToolTimeout: time.Duration(cfg.ToolTimeoutSeconds) * time.Second,
	})
	return &Engine{client: client, router: router, cfg: cfg, log: log}
}

// commitFile pairs a commit SHA with one file it touched.
type commitFile struct {
	sha  string
	file github.CommitFile
}

// Run reviews the given pull request and returns the report. Metadata,
// commit-list, and per-commit diff fetch failures are fatal; per-file
// analysis failures surface as findings instead.
func (e *Engine) Run(ctx context.Context, prNumber int) (*Report, error) {
	startTime := time.Now()
	owner, repo := e.cfg.Owner, e.cfg.Repo

	pr, err := e.client.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request %s/%s#%d: %w", owner, repo, prNumber, err)
	}
	e.log.Info("fetched pull request",
		zap.Int("number", pr.Number),
		zap.String("author", pr.Author),
		zap.Int("changedFiles", pr.ChangedFiles))

	commits, err := e.client.ListCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("listing commits for #%d: %w", prNumber, err)
	}

	var work []commitFile
	for _, c := range commits {
		files, err := e.client.GetCommitFiles(ctx, owner, repo, c.SHA)
		if err != nil {
			return nil, fmt.Errorf("fetching files for commit %s: %w", c.SHA, err)
		}
		for _, f := range files {
			work = append(work, commitFile{sha: c.SHA, file: f})
		}
	}
	fetchMs := time.Since(startTime).Milliseconds()

	scratch, err := os.MkdirTemp("", "prreview-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	rec := diffset.NewReconciler()
	var (
		mu       sync.Mutex
		findings []analyze.Finding
	)

	analyzeStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	limit := e.cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, cf := range work {
		cf := cf
		g.Go(func() error {
			if cf.file.Patch == "" {
				return nil // binary or too-large file, no patch body
			}
			added, removed := diffset.Extract(cf.file.Patch)
			rec.Record(cf.file.Filename, added, removed)

			fs := e.analyzeFile(gctx, scratch, cf)
			if len(fs) > 0 {
				mu.Lock()
				findings = append(findings, fs...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	analyzeMs := time.Since(analyzeStart).Milliseconds()

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Reason < findings[j].Reason
	})

	cancelled := make(map[string][]string)
	for file, set := range rec.Cancelled() {
		lines := set.Lines()
		sort.Strings(lines)
		cancelled[file] = lines
	}

	return &Report{
		Tool:      toolName,
		Version:   toolVersion,
		RunID:     generateRunID(),
		Owner:     owner,
		Repo:      repo,
		PR:        pr,
		Commits:   len(commits),
		Cancelled: cancelled,
		Findings:  findings,
		Timing: Timing{
			FetchMs:   fetchMs,
			AnalyzeMs: analyzeMs,
			TotalMs:   time.Since(startTime).Milliseconds(),
		},
	}, nil
}

// analyzeFile materializes the added code to a scratch file and runs the
// analyzer registered for the file's extension. Failures to materialize are
// reported as findings, not errors.
func (e *Engine) analyzeFile(ctx context.Context, scratch string, cf commitFile) []analyze.Finding {
	if _, ok := e.router.For(cf.file.Filename); !ok {
		return nil
	}
	code := diffset.AddedCode(cf.file.Patch)
	if strings.TrimSpace(code) == "" {
		return nil
	}

	path, err := materialize(scratch, cf.file.Filename, code)
	if err != nil {
		e.log.Warn("materializing added code failed",
			zap.String("file", cf.file.Filename),
			zap.String("commit", cf.sha),
			zap.Error(err))
		return []analyze.Finding{{
			File:    cf.file.Filename,
			Line:    0,
			Snippet: err.Error(),
			Reason:  analyze.ReasonFileReadError,
		}}
	}

	return e.router.Analyze(ctx, analyze.Target{
		File:      cf.file.Filename,
		AddedCode: code,
		Path:      path,
	})
}

// materialize writes code to a uniquely named file under dir, preserving the
// source extension so tools that sniff it keep working.
func materialize(dir, filename, code string) (string, error) {
	ext := filepath.Ext(filename)
	f, err := os.CreateTemp(dir, "added-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return "", fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing scratch file: %w", err)
	}
	return f.Name(), nil
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}
