// Package report provides session report domain models.
package report

import (
	"fmt"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
)

// ReportFormat represents the output format for a report.
type ReportFormat string

const (
	// FormatMarkdown generates Markdown format reports.
	FormatMarkdown ReportFormat = "markdown"
	// FormatHTML generates HTML format reports.
	FormatHTML ReportFormat = "html"
	// FormatJSON generates JSON format reports.
	FormatJSON ReportFormat = "json"
)

// Formats lists the supported formats.
var Formats = []ReportFormat{FormatMarkdown, FormatHTML, FormatJSON}

// String returns the string representation of the format.
func (f ReportFormat) String() string {
	return string(f)
}

// Validate checks if the format is valid.
func (f ReportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatHTML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid report format: %s", f)
	}
}

// FileExtension returns the file extension for this format.
func (f ReportFormat) FileExtension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(s string) (ReportFormat, error) {
	if s == "md" {
		return FormatMarkdown, nil
	}
	f := ReportFormat(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// ReportConfig represents configuration for report generation.
type ReportConfig struct {
	// Format is the output format.
	Format ReportFormat

	// IncludeCharts enables text charts in markdown reports.
	IncludeCharts bool

	// IncludeRuns lists every run, not only the summary.
	IncludeRuns bool

	// ChartWidth is the width for text-based charts (default: 60).
	ChartWidth int

	// ChartHeight is the height for text-based charts (default: 8).
	ChartHeight int

	// Title is the custom report title (optional).
	Title string
}

// DefaultConfig returns a default report configuration.
func DefaultConfig(format ReportFormat) *ReportConfig {
	return &ReportConfig{
		Format:        format,
		IncludeCharts: true,
		IncludeRuns:   true,
		ChartWidth:    60,
		ChartHeight:   8,
	}
}

// Report represents a generated report.
type Report struct {
	Format      ReportFormat
	Content     []byte
	GeneratedAt time.Time
	SessionID   string

	// FilePath is the file path if saved to disk.
	FilePath string
}

// Generator is the interface for report generators.
type Generator interface {
	// Generate generates a report from the session data.
	Generate(data *SessionReport) (*Report, error)

	// Format returns the format this generator produces.
	Format() ReportFormat
}

// ScenarioSection is the part of a report covering one scenario.
type ScenarioSection struct {
	Scenario   benchmark.Scenario
	QueryLogic string
	Records    []benchmark.RunRecord
	Summary    comparison.Summary
}

// SessionReport contains the data of one process session's history.
type SessionReport struct {
	// SessionID identifies the process session.
	SessionID string

	// StartedAt is when the session started.
	StartedAt time.Time

	// GeneratedAt is when the report was requested.
	GeneratedAt time.Time

	Scenarios []ScenarioSection

	Config *ReportConfig
}

// Validate validates the session report.
func (r *SessionReport) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if r.Config == nil {
		return fmt.Errorf("config is required")
	}
	if err := r.Config.Format.Validate(); err != nil {
		return err
	}
	return nil
}

// TotalRuns returns the number of runs over all scenarios.
func (r *SessionReport) TotalRuns() int {
	n := 0
	for _, s := range r.Scenarios {
		n += len(s.Records)
	}
	return n
}
