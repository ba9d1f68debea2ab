package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nayouta/pr-review-helper/internal/analyze"
	"github.com/nayouta/pr-review-helper/internal/review"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *review.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

func buildSARIF(report *review.Report) sarifLog {
	rulesMap := make(map[string]sarifRule)
	var ruleOrder []string
	var results []sarifResult

	for _, f := range report.Findings {
		ruleID := ruleIDFor(f.Reason)

		if _, ok := rulesMap[ruleID]; !ok {
			rulesMap[ruleID] = sarifRule{
				ID:               ruleID,
				Name:             f.Reason,
				ShortDescription: sarifMessage{Text: f.Reason},
				DefaultConfig:    sarifDefaultConfig{Level: reasonToLevel(f.Reason)},
			}
			ruleOrder = append(ruleOrder, ruleID)
		}

		msg := f.Reason
		if f.Snippet != "" {
			msg = fmt.Sprintf("%s: %s", f.Reason, f.Snippet)
		}

		result := sarifResult{
			RuleID:  ruleID,
			Level:   reasonToLevel(f.Reason),
			Message: sarifMessage{Text: msg},
		}

		// SARIF requires line numbers >= 1; file-level findings map to line 1.
		line := f.Line
		if line < 1 {
			line = 1
		}
		result.Locations = append(result.Locations, sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: f.File},
				Region:           sarifRegion{StartLine: line, EndLine: line},
			},
		})

		results = append(results, result)
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, rid := range ruleOrder {
		rules = append(rules, rulesMap[rid])
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "prreview",
						Version:        report.Version,
						InformationURI: "https://github.com/nayouta/pr-review-helper",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// reasonToLevel maps finding reasons to SARIF levels. Diagnostics produced by
// a broken analysis (parse, read, or tool invocation failures) are errors;
// everything else is a warning about the code under review.
func reasonToLevel(reason string) string {
	switch reason {
	case analyze.ReasonParseFailure,
		analyze.ReasonFileReadError,
		analyze.ReasonGoToolFailure,
		analyze.ReasonTfToolFailure,
		analyze.ReasonRubyToolFailure,
		analyze.ReasonTSToolFailure:
		return "error"
	default:
		return "warning"
	}
}

// ruleIDFor creates a stable rule ID from the finding reason.
func ruleIDFor(reason string) string {
	slug := strings.ToLower(reason)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return "prreview/" + slug
}
