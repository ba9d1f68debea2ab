package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nayouta/pr-review-helper/internal/cache"
	"github.com/nayouta/pr-review-helper/internal/config"
	"github.com/nayouta/pr-review-helper/internal/github"
	"github.com/nayouta/pr-review-helper/internal/notify"
	"github.com/nayouta/pr-review-helper/internal/output"
	"github.com/nayouta/pr-review-helper/internal/redact"
	"github.com/nayouta/pr-review-helper/internal/review"
)

// Review flags
var (
	flagOwner       string
	flagRepo        string
	flagFormat      string
	flagOut         string
	flagOutputDir   string
	flagConcurrency int
	flagToolTimeout int
	flagNodeScript  string
	flagDebugCalls  string
	flagWebhookURL  string
	flagNoGist      bool
	flagNoNotify    bool
	flagNoRedact    bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	cmd.Flags().StringVar(&flagRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for the durable markdown report")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Number of files analyzed in parallel")
	cmd.Flags().IntVar(&flagToolTimeout, "tool-timeout", 0, "Per-tool timeout for external analyzers (seconds)")
	cmd.Flags().StringVar(&flagNodeScript, "node-script", "", "Path to the TypeScript/JavaScript analysis script")
	cmd.Flags().StringVar(&flagDebugCalls, "debug-calls", "", "Python debug call names to flag (comma-separated)")
	cmd.Flags().StringVar(&flagWebhookURL, "webhook-url", "", "Discord webhook URL for the summary")
	cmd.Flags().BoolVar(&flagNoGist, "no-gist", false, "Skip uploading the report as a gist")
	cmd.Flags().BoolVar(&flagNoNotify, "no-notify", false, "Skip the Discord notification")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagOwner != "" {
		m["owner"] = flagOwner
	}
	if flagRepo != "" {
		m["repo"] = flagRepo
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutputDir != "" {
		m["outputDir"] = flagOutputDir
	}
	if flagConcurrency > 0 {
		m["concurrency"] = fmt.Sprintf("%d", flagConcurrency)
	}
	if flagToolTimeout > 0 {
		m["toolTimeout"] = fmt.Sprintf("%d", flagToolTimeout)
	}
	if flagNodeScript != "" {
		m["nodeScript"] = flagNodeScript
	}
	if flagDebugCalls != "" {
		m["debugCalls"] = flagDebugCalls
	}
	if flagWebhookURL != "" {
		m["webhookUrl"] = flagWebhookURL
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

var reviewCmd = &cobra.Command{
	Use:   "review <pr-number>",
	Short: "Review a GitHub pull request",
	Long:  "Fetch a PR's commits from GitHub, reconcile added and removed lines, analyze added code per language, and publish the report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
			fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
		}

		// Detect owner/repo from the local git remote if not configured
		if cfg.Owner == "" || cfg.Repo == "" {
			owner, repo, err := github.DetectRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\nUse --owner and --repo flags to specify manually.\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if cfg.Owner == "" {
				cfg.Owner = owner
			}
			if cfg.Repo == "" {
				cfg.Repo = repo
			}
		}

		diffCache, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		client, err := github.NewClient(cfg.APIURL, diffCache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx := context.Background()
		log().Info("reviewing pull request",
			zap.String("repo", cfg.Owner+"/"+cfg.Repo),
			zap.Int("pr", prNumber))

		report, err := review.New(client, cfg, logger).Run(ctx, prNumber)
		if err != nil {
			if github.IsAuthError(err) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitAuthError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		applyRedaction(report, cfg.Privacy)
		publishReport(ctx, client, cfg, report)

		if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		return nil
	},
}

// applyRedaction scrubs file content carried by the report before it is
// rendered anywhere. Content from files matching the path policy is dropped
// wholesale; everything else goes through secret-pattern redaction when
// enabled. The path policy is independent of --no-redact.
func applyRedaction(report *review.Report, p config.PrivacyConfig) {
	for i := range report.Findings {
		f := &report.Findings[i]
		if redact.ShouldRedactPath(f.File, p.RedactPaths) {
			f.Snippet = redact.Content(f.Snippet, f.File, p.RedactPaths)
		} else if p.RedactSecrets {
			f.Snippet = redact.Secrets(f.Snippet)
		}
	}
	for file, lines := range report.Cancelled {
		if redact.ShouldRedactPath(file, p.RedactPaths) {
			report.Cancelled[file] = []string{redact.Content("", file, p.RedactPaths)}
			continue
		}
		if p.RedactSecrets {
			for i := range lines {
				lines[i] = redact.Secrets(lines[i])
			}
		}
	}
}

// publishReport writes the durable markdown report, uploads it as a gist, and
// sends the Discord summary. All three are best-effort: failures are logged
// and the command proceeds.
func publishReport(ctx context.Context, client *github.Client, cfg config.Config, report *review.Report) {
	content := renderMarkdown(report)
	if cfg.Privacy.RedactSecrets {
		content = redact.Secrets(content)
	}

	filename := fmt.Sprintf("pr_%d_review_report.md", report.PR.Number)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log().Warn("creating report directory failed", zap.String("dir", cfg.OutputDir), zap.Error(err))
	} else {
		path := filepath.Join(cfg.OutputDir, filename)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			log().Warn("writing report file failed", zap.String("path", path), zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Markdown report written to %s\n", path)
		}
	}

	if !flagNoGist {
		url, err := client.CreateGist(ctx, "Review Report: "+filename, filename, content)
		if err != nil {
			log().Warn("gist upload failed", zap.Error(err))
		} else {
			report.GistURL = url
			fmt.Fprintf(os.Stderr, "Report uploaded to %s\n", url)
		}
	}

	if !flagNoNotify && cfg.WebhookURL != "" {
		summary := report.Summary()
		if cfg.Privacy.RedactSecrets {
			summary = redact.Secrets(summary)
		}
		if err := notify.NewDiscord(cfg.WebhookURL).SendSummary(ctx, summary); err != nil {
			log().Warn("discord notification failed", zap.Error(err))
		}
	}
}

func renderMarkdown(report *review.Report) string {
	var buf bytes.Buffer
	// MarkdownWriter only errors on writer failures; bytes.Buffer has none.
	_ = (&output.MarkdownWriter{}).Write(&buf, report)
	return buf.String()
}

func init() {
	addReviewFlags(reviewCmd)
}
