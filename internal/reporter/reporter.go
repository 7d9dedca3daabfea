package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/synapsespectre/internal/advisor"
)

// Format specifies the output format.
type Format string

const (
	FormatLog  Format = "log"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formats lists every accepted --format value.
var Formats = []string{string(FormatLog), string(FormatText), string(FormatJSON), string(FormatSARIF)}

// Report holds the structured readiness output.
type Report struct {
	Metadata Metadata          `json:"metadata"`
	Errors   []advisor.Finding `json:"errors"`
	Warnings []advisor.Finding `json:"warnings"`
	Infos    []advisor.Finding `json:"infos"`
	Outcome  advisor.Outcome   `json:"outcome"`
	Summary  Summary           `json:"summary"`
}

// Metadata describes the analyzed deployment.
type Metadata struct {
	Version        string `json:"version"`
	Command        string `json:"command"`
	ServerName     string `json:"serverName,omitempty"`
	DatabaseEngine string `json:"databaseEngine,omitempty"`
	ConfigPath     string `json:"configPath,omitempty"`
	Checks         int    `json:"checks"`
}

// Summary counts findings by severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// NewReport builds a report from a completed collector.
func NewReport(c *advisor.Collector) Report {
	r := Report{
		Errors:   nonNil(c.Errors()),
		Warnings: nonNil(c.Warnings()),
		Infos:    nonNil(c.Infos()),
		Outcome:  c.Outcome(),
	}
	r.Summary = Summary{
		Errors:   len(r.Errors),
		Warnings: len(r.Warnings),
		Infos:    len(r.Infos),
	}
	r.Summary.Total = r.Summary.Errors + r.Summary.Warnings + r.Summary.Infos
	return r
}

// Findings returns every finding, errors first.
func (r *Report) Findings() []advisor.Finding {
	out := make([]advisor.Finding, 0, r.Summary.Total)
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	out = append(out, r.Infos...)
	return out
}

// Write outputs the report in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatSARIF:
		return writeSARIF(w, report)
	case FormatText:
		return writeText(w, report)
	default:
		Log(context.Background(), slog.New(slog.NewTextHandler(w, nil)), report)
		return nil
	}
}

// Log emits one log line per finding at the level matching its severity,
// followed by a summary line.
func Log(ctx context.Context, logger *slog.Logger, report *Report) {
	for _, f := range report.Findings() {
		logger.Log(ctx, levelFor(f.Severity), f.Message, "rule", string(f.Rule), "severity", string(f.Severity))
	}
	level := slog.LevelInfo
	if report.Outcome == advisor.OutcomeFail {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "analysis complete",
		"outcome", string(report.Outcome),
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"infos", report.Summary.Infos)
}

func levelFor(s advisor.Severity) slog.Level {
	switch s {
	case advisor.SeverityInfo:
		return slog.LevelInfo
	case advisor.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeText(w io.Writer, report *Report) error {
	if report.Summary.Total == 0 {
		_, err := fmt.Fprintln(w, "No findings.")
		if err != nil {
			return err
		}
	}

	severityLabel := map[advisor.Severity]string{
		advisor.SeverityError:   "ERROR",
		advisor.SeverityWarning: "WARN",
		advisor.SeverityInfo:    "INFO",
	}

	for _, f := range report.Findings() {
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", severityLabel[f.Severity], f.Rule, f.Message); err != nil {
			return err
		}
	}

	verdict := "PASS: no blocking issues found"
	if report.Outcome == advisor.OutcomeFail {
		verdict = "FAIL: migration is blocked"
	}
	_, err := fmt.Fprintf(w, "\nSummary: %d findings (errors=%d warnings=%d infos=%d)\n%s\n",
		report.Summary.Total, report.Summary.Errors, report.Summary.Warnings,
		report.Summary.Infos, verdict)
	return err
}

func nonNil(fs []advisor.Finding) []advisor.Finding {
	if fs == nil {
		return []advisor.Finding{}
	}
	return fs
}
