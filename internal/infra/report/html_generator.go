// Package report provides HTML report generator implementation.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// HTMLGenerator generates self-contained HTML reports.
type HTMLGenerator struct {
	chartGen *ChartGenerator
}

// NewHTMLGenerator creates a new HTML generator.
func NewHTMLGenerator() *HTMLGenerator {
	return &HTMLGenerator{
		chartGen: NewChartGenerator(),
	}
}

// Generate generates an HTML report.
func (g *HTMLGenerator) Generate(data *report.SessionReport) (*report.Report, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	title := data.Config.Title
	if title == "" {
		title = "MSSQL vs ClickHouse Showdown"
	}

	var sb strings.Builder
	g.writeHeader(&sb, title)
	sb.WriteString(`<body><div class="container">`)
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))
	g.writeSession(&sb, data)
	for _, section := range data.Scenarios {
		g.writeScenario(&sb, data.Config, section)
	}
	g.writeFooter(&sb)
	sb.WriteString("</div></body></html>\n")

	return &report.Report{
		Format:      report.FormatHTML,
		Content:     []byte(sb.String()),
		GeneratedAt: time.Now(),
		SessionID:   data.SessionID,
	}, nil
}

// Format returns the format this generator produces.
func (g *HTMLGenerator) Format() report.ReportFormat {
	return report.FormatHTML
}

// writeHeader writes the HTML header with embedded CSS.
func (g *HTMLGenerator) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(`</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; color: #333; background: #f5f5f5; padding: 20px; }
        .container { max-width: 1100px; margin: 0 auto; background: white; border-radius: 8px; padding: 40px; }
        h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background-color: #3498db; color: white; }
        .winner { color: #27ae60; font-weight: bold; }
        pre { background: #2c3e50; color: #ecf0f1; padding: 15px; border-radius: 5px; overflow-x: auto; }
        .footer { margin-top: 40px; text-align: center; color: #7f8c8d; font-size: 0.9em; }
    </style>
</head>
`)
}

func (g *HTMLGenerator) writeSession(sb *strings.Builder, data *report.SessionReport) {
	sb.WriteString(`<table>`)
	sb.WriteString(`<tr><th>Property</th><th>Value</th></tr>`)
	sb.WriteString(fmt.Sprintf(`<tr><td>Session ID</td><td><code>%s</code></td></tr>`, html.EscapeString(data.SessionID)))
	sb.WriteString(fmt.Sprintf(`<tr><td>Generated</td><td>%s</td></tr>`, data.GeneratedAt.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf(`<tr><td>Total Runs</td><td>%d</td></tr>`, data.TotalRuns()))
	sb.WriteString(`</table>`)
}

func (g *HTMLGenerator) writeScenario(sb *strings.Builder, cfg *report.ReportConfig, section report.ScenarioSection) {
	sb.WriteString(fmt.Sprintf(`<h2>%s</h2>`, html.EscapeString(section.Scenario.Title())))
	sb.WriteString(fmt.Sprintf(`<pre>%s</pre>`, html.EscapeString(section.QueryLogic)))

	if len(section.Records) == 0 {
		sb.WriteString(`<p><em>No runs recorded</em></p>`)
		return
	}

	winner := section.Summary.Winner()
	sb.WriteString(`<table>`)
	sb.WriteString(`<tr><th>Backend</th><th>Mean ± StdDev</th><th>Median</th><th>P95</th><th>Min .. Max</th></tr>`)
	for _, b := range benchmark.Backends {
		stats := section.Summary.Stats(b)
		name := html.EscapeString(b.DisplayName())
		if b == winner {
			name = `<span class="winner">` + name + `</span>`
		}
		sb.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%.2f</td><td>%.2f</td><td>%s</td></tr>`,
			name,
			comparison.FormatMeanStdDev(stats),
			stats.Median,
			stats.P95,
			comparison.FormatMinMax(stats),
		))
	}
	sb.WriteString(`</table>`)
	sb.WriteString(fmt.Sprintf(`<p>Mean speedup (MSSQL / ClickHouse): <strong>%.2fx</strong></p>`, section.Summary.MeanSpeedup))

	if cfg.IncludeCharts {
		sb.WriteString(`<pre>`)
		for _, b := range benchmark.Backends {
			sb.WriteString(html.EscapeString(g.chartGen.GenerateLatencySparkline(section.Records, b, cfg.ChartWidth, cfg.ChartHeight)))
			sb.WriteString("\n")
		}
		sb.WriteString(`</pre>`)
	}

	if cfg.IncludeRuns {
		sb.WriteString(`<table>`)
		sb.WriteString(`<tr><th>Run</th><th>MSSQL (ms)</th><th>ClickHouse (ms)</th><th>Speedup</th></tr>`)
		for _, r := range section.Records {
			sb.WriteString(fmt.Sprintf(`<tr><td>%d</td><td>%.2f</td><td>%.2f</td><td>%.2fx</td></tr>`,
				r.RunIndex, r.MSSQLMillis, r.ClickHouseMillis, r.Speedup()))
		}
		sb.WriteString(`</table>`)
	}
}

// writeFooter writes the report footer.
func (g *HTMLGenerator) writeFooter(sb *strings.Builder) {
	sb.WriteString(`<div class="footer">`)
	sb.WriteString(fmt.Sprintf("<p>Generated by DB-Showdown at %s</p>", time.Now().Format(time.RFC1123)))
	sb.WriteString(`</div>`)
}
