// Package report provides Markdown report generator implementation.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// MarkdownGenerator generates Markdown format reports.
type MarkdownGenerator struct {
	chartGen *ChartGenerator
}

// NewMarkdownGenerator creates a new Markdown generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{
		chartGen: NewChartGenerator(),
	}
}

// Generate generates a Markdown report.
func (g *MarkdownGenerator) Generate(data *report.SessionReport) (*report.Report, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var sb strings.Builder

	g.writeTitle(&sb, data)
	g.writeSession(&sb, data)

	for _, section := range data.Scenarios {
		g.writeScenario(&sb, data.Config, section)
	}

	g.writeFooter(&sb)

	return &report.Report{
		Format:      report.FormatMarkdown,
		Content:     []byte(sb.String()),
		GeneratedAt: time.Now(),
		SessionID:   data.SessionID,
	}, nil
}

// Format returns the format this generator produces.
func (g *MarkdownGenerator) Format() report.ReportFormat {
	return report.FormatMarkdown
}

func (g *MarkdownGenerator) writeTitle(sb *strings.Builder, data *report.SessionReport) {
	title := data.Config.Title
	if title == "" {
		title = "MSSQL vs ClickHouse Showdown"
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")
}

func (g *MarkdownGenerator) writeSession(sb *strings.Builder, data *report.SessionReport) {
	sb.WriteString("## Session\n\n")
	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Session ID | `%s` |\n", data.SessionID))
	if !data.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("| Started | %s |\n", data.StartedAt.Format(time.RFC1123)))
	}
	sb.WriteString(fmt.Sprintf("| Generated | %s |\n", data.GeneratedAt.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("| Total Runs | %d |\n", data.TotalRuns()))
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) writeScenario(sb *strings.Builder, cfg *report.ReportConfig, section report.ScenarioSection) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", section.Scenario.Title()))
	sb.WriteString("```sql\n")
	sb.WriteString(section.QueryLogic)
	sb.WriteString("\n```\n\n")

	if len(section.Records) == 0 {
		sb.WriteString("*No runs recorded*\n\n")
		return
	}

	g.writeSummary(sb, section.Summary)

	if cfg.IncludeCharts {
		g.writeCharts(sb, cfg, section)
	}
	if cfg.IncludeRuns {
		g.writeRuns(sb, section.Records)
	}
}

func (g *MarkdownGenerator) writeSummary(sb *strings.Builder, s comparison.Summary) {
	sb.WriteString("| Backend | Mean ± StdDev | Median | P95 | Min .. Max | CV |\n")
	sb.WriteString("|---------|---------------|--------|-----|------------|----|\n")
	for _, b := range benchmark.Backends {
		stats := s.Stats(b)
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %s | %.1f%% |\n",
			b.DisplayName(),
			comparison.FormatMeanStdDev(stats),
			stats.Median,
			stats.P95,
			comparison.FormatMinMax(stats),
			comparison.CalculateCV(stats.Mean, stats.StdDev),
		))
	}
	sb.WriteString("\n")

	if winner := s.Winner(); winner != "" {
		sb.WriteString(fmt.Sprintf("- **Faster on average**: %s\n", winner.DisplayName()))
	}
	sb.WriteString(fmt.Sprintf("- **Mean speedup (MSSQL / ClickHouse)**: %.2fx\n\n", s.MeanSpeedup))
}

func (g *MarkdownGenerator) writeCharts(sb *strings.Builder, cfg *report.ReportConfig, section report.ScenarioSection) {
	sb.WriteString("### Latency per run\n\n")
	sb.WriteString("```\n")
	for _, b := range benchmark.Backends {
		sb.WriteString(g.chartGen.GenerateLatencySparkline(section.Records, b, cfg.ChartWidth, cfg.ChartHeight))
		sb.WriteString("\n")
	}
	sb.WriteString(g.chartGen.GenerateBarChart(
		[]string{benchmark.BackendSQLServer.DisplayName(), benchmark.BackendClickHouse.DisplayName()},
		[]float64{section.Summary.MSSQL.Mean, section.Summary.ClickHouse.Mean},
		cfg.ChartWidth,
	))
	sb.WriteString("```\n\n")
}

func (g *MarkdownGenerator) writeRuns(sb *strings.Builder, records []benchmark.RunRecord) {
	sb.WriteString("### Runs\n\n")
	sb.WriteString("| Run | MSSQL (ms) | ClickHouse (ms) | Speedup |\n")
	sb.WriteString("|-----|------------|-----------------|---------|\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2fx |\n",
			r.RunIndex, r.MSSQLMillis, r.ClickHouseMillis, r.Speedup()))
	}
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) writeFooter(sb *strings.Builder) {
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("*Generated by DB-Showdown on %s*\n", time.Now().Format("2006-01-02 15:04:05")))
}
