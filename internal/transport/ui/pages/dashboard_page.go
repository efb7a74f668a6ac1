// Package pages provides GUI pages for DB-Showdown.
package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// ScenarioRunner runs paired comparisons and clears the engine caches.
type ScenarioRunner interface {
	RunScenario(ctx context.Context, scenario benchmark.Scenario) (benchmark.RunRecord, error)
	ClearCaches(ctx context.Context) error
}

// HistoryReader reads a scenario's run history.
type HistoryReader interface {
	Records(ctx context.Context, scenario benchmark.Scenario) ([]benchmark.RunRecord, error)
}

// ReportExporter writes the session history to a report file.
type ReportExporter interface {
	Export(ctx context.Context, format report.ReportFormat) (string, error)
}

const explanation = `### Why the difference?
* **Point Lookup:** SQL Server seeks the clustered B-tree index straight to one page. ClickHouse uses a sparse primary index and reads a whole granule of 8,192 rows even for a single match.
* **Aggregation:** ClickHouse reads only the Amount and Region columns with vectorized execution. SQL Server has to read entire rows to get at two columns.`

// busyState allows one blocking backend call at a time across the dashboard.
// It is only touched on the UI goroutine.
type busyState struct {
	running    bool
	buttons    []*widget.Button
	indicators []*widget.ProgressBarInfinite
}

func (b *busyState) begin(indicator *widget.ProgressBarInfinite) bool {
	if b.running {
		return false
	}
	b.running = true
	for _, btn := range b.buttons {
		btn.Disable()
	}
	indicator.Show()
	indicator.Start()
	return true
}

func (b *busyState) end() {
	b.running = false
	for _, btn := range b.buttons {
		btn.Enable()
	}
	for _, ind := range b.indicators {
		ind.Stop()
		ind.Hide()
	}
}

// DashboardPage shows one panel per scenario plus the export toolbar.
type DashboardPage struct {
	win      fyne.Window
	runner   ScenarioRunner
	history  HistoryReader
	exporter ReportExporter
	ctx      context.Context
	async    func(func())
	busy     *busyState

	panels       []*ScenarioPanel
	formatSelect *widget.Select
	exportButton *widget.Button
	exportBusy   *widget.ProgressBarInfinite
}

// ScenarioPanel is the header, query logic, actions, chart and summary of one scenario.
type ScenarioPanel struct {
	page     *DashboardPage
	scenario benchmark.Scenario

	runButton    *widget.Button
	clearButton  *widget.Button
	busy         *widget.ProgressBarInfinite
	chart        *TrendChart
	summaryLabel *widget.Label
}

// NewDashboardPage creates the dashboard. exporter may be nil, which hides the export toolbar.
// Returns both the page and its canvas object.
func NewDashboardPage(win fyne.Window, runner ScenarioRunner, history HistoryReader, exporter ReportExporter) (*DashboardPage, fyne.CanvasObject) {
	page := &DashboardPage{
		win:      win,
		runner:   runner,
		history:  history,
		exporter: exporter,
		ctx:      context.Background(),
		async:    func(f func()) { go f() },
		busy:     &busyState{},
	}

	sections := []fyne.CanvasObject{}
	for _, s := range benchmark.Scenarios {
		panel := page.newScenarioPanel(s)
		page.panels = append(page.panels, panel)
		sections = append(sections, panel.content(), widget.NewSeparator())
	}
	sections = append(sections, widget.NewRichTextFromMarkdown(explanation))

	var top fyne.CanvasObject = widget.NewLabelWithStyle(
		"Row-Store (SQL Server) vs Column-Store (ClickHouse)",
		fyne.TextAlignLeading,
		fyne.TextStyle{Bold: true},
	)
	if exporter != nil {
		top = container.NewVBox(top, page.newExportToolbar())
	}

	page.Refresh()
	return page, container.NewBorder(top, nil, nil, nil, container.NewVScroll(container.NewVBox(sections...)))
}

// Panels returns the scenario panels in scenario order.
func (p *DashboardPage) Panels() []*ScenarioPanel {
	return p.panels
}

// Refresh reloads every panel from the history.
func (p *DashboardPage) Refresh() {
	for _, panel := range p.panels {
		panel.Refresh()
	}
}

func (p *DashboardPage) newScenarioPanel(s benchmark.Scenario) *ScenarioPanel {
	panel := &ScenarioPanel{
		page:         p,
		scenario:     s,
		busy:         widget.NewProgressBarInfinite(),
		chart:        NewTrendChart(),
		summaryLabel: widget.NewLabel(""),
	}
	panel.busy.Stop()
	panel.busy.Hide()
	panel.summaryLabel.Wrapping = fyne.TextWrapWord

	panel.runButton = widget.NewButton(fmt.Sprintf("Run %s Comparison", shortTitle(s)), panel.onRun)
	panel.runButton.Importance = widget.HighImportance
	panel.clearButton = widget.NewButton("Clear All Caches", panel.onClearCaches)

	p.busy.buttons = append(p.busy.buttons, panel.runButton, panel.clearButton)
	p.busy.indicators = append(p.busy.indicators, panel.busy)
	return panel
}

func (panel *ScenarioPanel) content() fyne.CanvasObject {
	s := panel.scenario
	description := widget.NewLabel(s.Description())
	description.Wrapping = fyne.TextWrapWord

	logic := widget.NewAccordion(widget.NewAccordionItem("Show Query Logic",
		widget.NewLabelWithStyle(benchmark.QueryLogic(s), fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})))

	return container.NewVBox(
		widget.NewLabelWithStyle(s.Title(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		description,
		logic,
		container.NewHBox(panel.runButton, panel.clearButton),
		panel.busy,
		panel.chart,
		panel.summaryLabel,
	)
}

// Scenario returns the panel's scenario.
func (panel *ScenarioPanel) Scenario() benchmark.Scenario {
	return panel.scenario
}

// Refresh reloads the chart and summary from the history.
func (panel *ScenarioPanel) Refresh() {
	p := panel.page
	records, err := p.history.Records(p.ctx, panel.scenario)
	if err != nil {
		slog.Error("Dashboard: Failed to load history", "scenario", panel.scenario, "error", err)
		dialog.ShowError(fmt.Errorf("failed to load history: %w", err), p.win)
		return
	}
	panel.chart.SetRecords(records)
	panel.summaryLabel.SetText(formatSummary(comparison.Summarize(panel.scenario, records)))
}

func (panel *ScenarioPanel) onRun() {
	p := panel.page
	if !p.busy.begin(panel.busy) {
		return
	}
	slog.Info("Dashboard: Running comparison", "scenario", panel.scenario)

	p.async(func() {
		rec, err := p.runner.RunScenario(p.ctx, panel.scenario)
		fyne.Do(func() {
			p.busy.end()
			if err != nil {
				slog.Error("Dashboard: Comparison failed", "scenario", panel.scenario, "error", err)
				dialog.ShowError(fmt.Errorf("%s failed: %w", panel.scenario.Title(), err), p.win)
				return
			}
			slog.Info("Dashboard: Comparison recorded",
				"scenario", panel.scenario,
				"run", rec.RunIndex,
				"mssql_ms", rec.MSSQLMillis,
				"clickhouse_ms", rec.ClickHouseMillis)
			panel.Refresh()
		})
	})
}

func (panel *ScenarioPanel) onClearCaches() {
	p := panel.page
	if !p.busy.begin(panel.busy) {
		return
	}
	slog.Info("Dashboard: Clearing caches")

	p.async(func() {
		err := p.runner.ClearCaches(p.ctx)
		fyne.Do(func() {
			p.busy.end()
			if err != nil {
				slog.Error("Dashboard: Cache clear failed", "error", err)
				dialog.ShowError(fmt.Errorf("clear caches: %w", err), p.win)
				return
			}
			dialog.ShowInformation("Caches Cleared", "Caches cleared for both platforms!", p.win)
		})
	})
}

func (p *DashboardPage) newExportToolbar() fyne.CanvasObject {
	options := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		options = append(options, string(f))
	}
	p.formatSelect = widget.NewSelect(options, nil)
	p.formatSelect.SetSelected(string(report.FormatMarkdown))

	p.exportBusy = widget.NewProgressBarInfinite()
	p.exportBusy.Stop()
	p.exportBusy.Hide()

	p.exportButton = widget.NewButton("Export Report", p.onExport)
	p.busy.buttons = append(p.busy.buttons, p.exportButton)
	p.busy.indicators = append(p.busy.indicators, p.exportBusy)

	return container.NewHBox(widget.NewLabel("Format:"), p.formatSelect, p.exportButton, p.exportBusy)
}

func (p *DashboardPage) onExport() {
	format, err := report.ParseFormat(p.formatSelect.Selected)
	if err != nil {
		dialog.ShowError(err, p.win)
		return
	}
	if !p.busy.begin(p.exportBusy) {
		return
	}

	p.async(func() {
		path, err := p.exporter.Export(p.ctx, format)
		fyne.Do(func() {
			p.busy.end()
			if err != nil {
				slog.Error("Dashboard: Export failed", "format", format, "error", err)
				dialog.ShowError(fmt.Errorf("export failed: %w", err), p.win)
				return
			}
			dialog.ShowInformation("Export Successful", fmt.Sprintf("Report exported to:\n%s", path), p.win)
		})
	})
}

// shortTitle strips the "Scenario X: " prefix of a title.
func shortTitle(s benchmark.Scenario) string {
	title := s.Title()
	if i := strings.Index(title, ": "); i >= 0 {
		return title[i+2:]
	}
	return title
}

// formatSummary renders the one-line comparison shown under the chart.
func formatSummary(s comparison.Summary) string {
	if s.Runs == 0 {
		return "No runs recorded yet."
	}

	verdict := "Tied on average"
	if winner := s.Winner(); winner != "" {
		verdict = winner.DisplayName() + " faster on average"
		factor := s.MeanSpeedup
		if winner == benchmark.BackendSQLServer && factor > 0 {
			factor = 1 / factor
		}
		if factor > 0 {
			verdict += fmt.Sprintf(" (%.2fx)", factor)
		}
	}

	return fmt.Sprintf("Runs: %d | MSSQL %s | ClickHouse %s | Last: %.2f vs %.2f ms | %s",
		s.Runs,
		comparison.FormatMeanStdDev(s.MSSQL),
		comparison.FormatMeanStdDev(s.ClickHouse),
		s.MSSQL.Last,
		s.ClickHouse.Last,
		verdict)
}
