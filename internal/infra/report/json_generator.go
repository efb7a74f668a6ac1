// Package report provides JSON report generator implementation.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// JSONGenerator generates JSON format reports.
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate generates a JSON report.
func (g *JSONGenerator) Generate(data *report.SessionReport) (*report.Report, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	content, err := json.MarshalIndent(g.buildJSON(data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return &report.Report{
		Format:      report.FormatJSON,
		Content:     content,
		GeneratedAt: time.Now(),
		SessionID:   data.SessionID,
	}, nil
}

// Format returns the format this generator produces.
func (g *JSONGenerator) Format() report.ReportFormat {
	return report.FormatJSON
}

// jsonReport represents the JSON report structure.
type jsonReport struct {
	Meta      jsonMeta       `json:"meta"`
	Scenarios []jsonScenario `json:"scenarios"`
}

type jsonMeta struct {
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	TotalRuns   int       `json:"total_runs"`
}

type jsonScenario struct {
	Scenario   benchmark.Scenario    `json:"scenario"`
	QueryLogic string                `json:"query_logic"`
	Summary    comparison.Summary    `json:"summary"`
	Winner     benchmark.BackendID   `json:"winner,omitempty"`
	Runs       []benchmark.RunRecord `json:"runs,omitempty"`
}

func (g *JSONGenerator) buildJSON(data *report.SessionReport) *jsonReport {
	out := &jsonReport{
		Meta: jsonMeta{
			SessionID:   data.SessionID,
			StartedAt:   data.StartedAt,
			GeneratedAt: data.GeneratedAt,
			TotalRuns:   data.TotalRuns(),
		},
		Scenarios: make([]jsonScenario, 0, len(data.Scenarios)),
	}

	for _, s := range data.Scenarios {
		js := jsonScenario{
			Scenario:   s.Scenario,
			QueryLogic: s.QueryLogic,
			Summary:    s.Summary,
			Winner:     s.Summary.Winner(),
		}
		if data.Config.IncludeRuns {
			js.Runs = s.Records
		}
		out.Scenarios = append(out.Scenarios, js)
	}
	return out
}
