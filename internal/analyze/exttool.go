package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Reason labels for external tool diagnostics and invocation failures.
const (
	ReasonVetWarning       = "vet warning"
	ReasonTerraformFormat  = "Terraform format mismatch"
	ReasonTerraformInvalid = "Terraform syntax error"
	ReasonRubySyntax       = "Ruby syntax error"
	ReasonRubocopWarning   = "RuboCop warning"
	ReasonGoToolFailure    = "Go analysis failed"
	ReasonTfToolFailure    = "Terraform analysis failed"
	ReasonRubyToolFailure  = "Ruby analysis failed"
	ReasonTSToolFailure    = "TypeScript analysis failed"
)

// toolResult captures one subprocess invocation. A non-zero exit is a tool
// diagnostic, not an invocation failure; only failure to run the binary
// (missing, crashed, timed out) is returned as an error.
type toolResult struct {
	stdout   string
	stderr   string
	exitCode int
}

func runTool(ctx context.Context, dir, name string, args ...string) (toolResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := toolResult{stdout: stdout.String(), stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s timed out: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("running %s: %w", name, err)
}

func invocationFailure(t Target, reason string, err error) []Finding {
	return []Finding{{File: t.File, Snippet: err.Error(), Reason: reason}}
}

// GoVetAnalyzer shells out to go vet and reports one finding per stderr line.
type GoVetAnalyzer struct {
	bin     string
	timeout time.Duration
}

// NewGoVetAnalyzer creates a GoVetAnalyzer with the given invocation timeout.
func NewGoVetAnalyzer(timeout time.Duration) *GoVetAnalyzer {
	return &GoVetAnalyzer{bin: "go", timeout: timeout}
}

func (a *GoVetAnalyzer) Analyze(ctx context.Context, t Target) []Finding {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := runTool(ctx, "", a.bin, "vet", t.Path)
	if err != nil {
		return invocationFailure(t, ReasonGoToolFailure, err)
	}

	var findings []Finding
	for _, line := range strings.Split(res.stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		findings = append(findings, Finding{File: t.File, Snippet: line, Reason: ReasonVetWarning})
	}
	return findings
}

// TerraformAnalyzer runs terraform fmt -check on the file and terraform
// validate in its directory.
type TerraformAnalyzer struct {
	bin     string
	timeout time.Duration
}

// NewTerraformAnalyzer creates a TerraformAnalyzer with the given timeout,
// applied per invocation.
func NewTerraformAnalyzer(timeout time.Duration) *TerraformAnalyzer {
	return &TerraformAnalyzer{bin: "terraform", timeout: timeout}
}

func (a *TerraformAnalyzer) Analyze(ctx context.Context, t Target) []Finding {
	var findings []Finding

	fmtCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err := runTool(fmtCtx, "", a.bin, "fmt", "-check", t.Path)
	if err != nil {
		return invocationFailure(t, ReasonTfToolFailure, err)
	}
	if res.exitCode != 0 {
		findings = append(findings, Finding{File: t.File, Snippet: "terraform fmt check failed", Reason: ReasonTerraformFormat})
	}

	valCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err = runTool(valCtx, filepath.Dir(t.Path), a.bin, "validate")
	if err != nil {
		return append(findings, invocationFailure(t, ReasonTfToolFailure, err)...)
	}
	if res.exitCode != 0 {
		findings = append(findings, Finding{File: t.File, Snippet: strings.TrimSpace(res.stderr), Reason: ReasonTerraformInvalid})
	}
	return findings
}

// RubyAnalyzer runs ruby -c for a syntax check and, when installed, rubocop
// for style offenses.
type RubyAnalyzer struct {
	rubyBin    string
	rubocopBin string
	timeout    time.Duration
}

// NewRubyAnalyzer creates a RubyAnalyzer with the given timeout per invocation.
func NewRubyAnalyzer(timeout time.Duration) *RubyAnalyzer {
	return &RubyAnalyzer{rubyBin: "ruby", rubocopBin: "rubocop", timeout: timeout}
}

func (a *RubyAnalyzer) Analyze(ctx context.Context, t Target) []Finding {
	var findings []Finding

	synCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err := runTool(synCtx, "", a.rubyBin, "-c", t.Path)
	if err != nil {
		return invocationFailure(t, ReasonRubyToolFailure, err)
	}
	if !strings.Contains(res.stdout, "Syntax OK") {
		detail := strings.TrimSpace(res.stdout)
		if detail == "" {
			detail = strings.TrimSpace(res.stderr)
		}
		findings = append(findings, Finding{File: t.File, Snippet: detail, Reason: ReasonRubySyntax})
	}

	// rubocop is optional; skip silently when not installed.
	if _, err := exec.LookPath(a.rubocopBin); err != nil {
		return findings
	}

	rbCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err = runTool(rbCtx, "", a.rubocopBin, "--format", "simple", t.Path)
	if err != nil {
		return append(findings, invocationFailure(t, ReasonRubyToolFailure, err)...)
	}
	for _, line := range strings.Split(res.stdout, "\n") {
		if strings.Contains(line, ":") && strings.Contains(line, "Offense") {
			findings = append(findings, Finding{File: t.File, Snippet: strings.TrimSpace(line), Reason: ReasonRubocopWarning})
		}
	}
	return findings
}

// nodeFinding is the JSON shape emitted by the node analysis script.
type nodeFinding struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// NodeScriptAnalyzer delegates TypeScript/JavaScript analysis to a node
// script that parses the source with the language's own parser and prints a
// JSON array of findings.
type NodeScriptAnalyzer struct {
	bin     string
	script  string
	timeout time.Duration
}

// NewNodeScriptAnalyzer creates a NodeScriptAnalyzer invoking the given
// script path.
func NewNodeScriptAnalyzer(script string, timeout time.Duration) *NodeScriptAnalyzer {
	return &NodeScriptAnalyzer{bin: "node", script: script, timeout: timeout}
}

func (a *NodeScriptAnalyzer) Analyze(ctx context.Context, t Target) []Finding {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := runTool(ctx, "", a.bin, a.script, t.Path)
	if err != nil {
		return invocationFailure(t, ReasonTSToolFailure, err)
	}
	if strings.TrimSpace(res.stdout) == "" {
		return nil
	}

	var raw []nodeFinding
	if err := json.Unmarshal([]byte(res.stdout), &raw); err != nil {
		return invocationFailure(t, ReasonTSToolFailure, fmt.Errorf("parsing analyzer output: %w", err))
	}
	findings := make([]Finding, 0, len(raw))
	for _, f := range raw {
		findings = append(findings, Finding{File: t.File, Line: f.Line, Snippet: f.Content, Reason: f.Reason})
	}
	return findings
}
