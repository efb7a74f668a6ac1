package pages

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// fakeBackend implements ScenarioRunner, HistoryReader and ReportExporter.
type fakeBackend struct {
	mu       sync.Mutex
	records  map[benchmark.Scenario][]benchmark.RunRecord
	runErr   error
	clearErr error
	runs     int
	clears   int
	exported []report.ReportFormat
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: make(map[benchmark.Scenario][]benchmark.RunRecord)}
}

func (f *fakeBackend) RunScenario(_ context.Context, s benchmark.Scenario) (benchmark.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.runErr != nil {
		return benchmark.RunRecord{}, f.runErr
	}
	rec := benchmark.RunRecord{
		RunIndex:         len(f.records[s]) + 1,
		MSSQLMillis:      40,
		ClickHouseMillis: 4,
		RecordedAt:       time.Now(),
	}
	f.records[s] = append(f.records[s], rec)
	return rec, nil
}

func (f *fakeBackend) ClearCaches(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	return f.clearErr
}

func (f *fakeBackend) Records(_ context.Context, s benchmark.Scenario) ([]benchmark.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]benchmark.RunRecord(nil), f.records[s]...), nil
}

func (f *fakeBackend) Export(_ context.Context, format report.ReportFormat) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, format)
	return "exports/showdown" + format.FileExtension(), nil
}

func (f *fakeBackend) counts() (runs, clears int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs, f.clears
}

func newTestDashboard(t *testing.T, backend *fakeBackend) (*DashboardPage, fyne.Window) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	win := a.NewWindow("Test Window")

	page, content := NewDashboardPage(win, backend, backend, backend)
	require.NotNil(t, content)
	win.SetContent(content)
	page.async = func(f func()) { f() }
	return page, win
}

func TestDashboardPage_Initialization(t *testing.T) {
	page, _ := newTestDashboard(t, newFakeBackend())

	require.Len(t, page.Panels(), len(benchmark.Scenarios))
	for i, panel := range page.Panels() {
		assert.Equal(t, benchmark.Scenarios[i], panel.Scenario())
		assert.Empty(t, panel.chart.Records())
		assert.Equal(t, "No runs recorded yet.", panel.summaryLabel.Text)
		assert.False(t, panel.runButton.Disabled())
		assert.True(t, panel.busy.Hidden)
	}
	assert.Equal(t, "Run Point Lookup Comparison", page.Panels()[0].runButton.Text)
	assert.Equal(t, "Run Analytical Aggregation Comparison", page.Panels()[1].runButton.Text)
}

func TestScenarioPanel_RunAppendsToChart(t *testing.T) {
	backend := newFakeBackend()
	page, _ := newTestDashboard(t, backend)
	panel := page.Panels()[1]

	test.Tap(panel.runButton)
	test.Tap(panel.runButton)

	assert.Eventually(t, func() bool { return len(panel.chart.Records()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, panel.summaryLabel.Text, "Runs: 2")
	assert.Contains(t, panel.summaryLabel.Text, "ClickHouse faster on average (10.00x)")
	assert.False(t, panel.runButton.Disabled())
	assert.Empty(t, page.Panels()[0].chart.Records(), "other scenario untouched")
}

func TestScenarioPanel_RunFailureLeavesHistory(t *testing.T) {
	backend := newFakeBackend()
	backend.runErr = benchmark.NewScenarioError(benchmark.ScenarioPointLookup, benchmark.BackendSQLServer,
		benchmark.NewConnectionError(benchmark.BackendSQLServer, errors.New("login failed")))
	page, _ := newTestDashboard(t, backend)
	panel := page.Panels()[0]

	test.Tap(panel.runButton)

	assert.Eventually(t, func() bool { return !panel.runButton.Disabled() }, time.Second, 10*time.Millisecond)
	runs, _ := backend.counts()
	assert.Equal(t, 1, runs)
	assert.Empty(t, panel.chart.Records())
	assert.Equal(t, "No runs recorded yet.", panel.summaryLabel.Text)
}

func TestDashboardPage_OneCallAtATime(t *testing.T) {
	backend := newFakeBackend()
	page, _ := newTestDashboard(t, backend)

	var pending []func()
	page.async = func(f func()) { pending = append(pending, f) }

	first := page.Panels()[0]
	second := page.Panels()[1]

	test.Tap(first.runButton)
	assert.True(t, first.runButton.Disabled())
	assert.True(t, second.clearButton.Disabled())
	assert.False(t, first.busy.Hidden)

	// Calls made while busy are ignored.
	second.onClearCaches()
	first.onRun()
	require.Len(t, pending, 1)

	pending[0]()
	assert.Eventually(t, func() bool { return !second.clearButton.Disabled() }, time.Second, 10*time.Millisecond)
	assert.True(t, first.busy.Hidden)

	runs, clears := backend.counts()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 0, clears)
}

func TestScenarioPanel_ClearCaches(t *testing.T) {
	backend := newFakeBackend()
	page, _ := newTestDashboard(t, backend)
	panel := page.Panels()[0]

	test.Tap(panel.runButton)
	test.Tap(panel.clearButton)

	assert.Eventually(t, func() bool {
		_, clears := backend.counts()
		return clears == 1
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, panel.chart.Records(), 1, "clearing caches keeps the history")
}

func TestScenarioPanel_ClearCachesFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.clearErr = benchmark.NewAdminError(benchmark.BackendSQLServer, "DBCC DROPCLEANBUFFERS;", errors.New("permission denied"))
	page, _ := newTestDashboard(t, backend)
	panel := page.Panels()[1]

	test.Tap(panel.clearButton)

	assert.Eventually(t, func() bool { return !panel.clearButton.Disabled() }, time.Second, 10*time.Millisecond)
	_, clears := backend.counts()
	assert.Equal(t, 1, clears)
}

func TestDashboardPage_Export(t *testing.T) {
	backend := newFakeBackend()
	page, _ := newTestDashboard(t, backend)

	page.formatSelect.SetSelected(string(report.FormatHTML))
	test.Tap(page.exportButton)

	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.exported) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, report.FormatHTML, backend.exported[0])
}

func TestDashboardPage_NoExporter(t *testing.T) {
	a := test.NewApp()
	t.Cleanup(a.Quit)
	backend := newFakeBackend()

	page, content := NewDashboardPage(a.NewWindow("Test"), backend, backend, nil)
	require.NotNil(t, content)
	assert.Nil(t, page.exportButton)
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name    string
		records []benchmark.RunRecord
		want    []string
	}{
		{
			name: "empty",
			want: []string{"No runs recorded yet."},
		},
		{
			name:    "clickhouse faster",
			records: []benchmark.RunRecord{{RunIndex: 1, MSSQLMillis: 100, ClickHouseMillis: 10}},
			want:    []string{"Runs: 1", "MSSQL 100.00 ms", "ClickHouse 10.00 ms", "Last: 100.00 vs 10.00 ms", "ClickHouse faster on average (10.00x)"},
		},
		{
			name:    "mssql faster",
			records: []benchmark.RunRecord{{RunIndex: 1, MSSQLMillis: 2, ClickHouseMillis: 8}},
			want:    []string{"MSSQL faster on average (4.00x)"},
		},
		{
			name: "tie",
			records: []benchmark.RunRecord{
				{RunIndex: 1, MSSQLMillis: 5, ClickHouseMillis: 5},
				{RunIndex: 2, MSSQLMillis: 7, ClickHouseMillis: 7},
			},
			want: []string{"Runs: 2", "Tied on average"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatSummary(comparison.Summarize(benchmark.ScenarioAggregation, tt.records))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatSummary() = %q, want substring %q", got, w)
				}
			}
		})
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Point Lookup", shortTitle(benchmark.ScenarioPointLookup))
	assert.Equal(t, "Analytical Aggregation", shortTitle(benchmark.ScenarioAggregation))
	assert.Equal(t, "custom", shortTitle(benchmark.Scenario("custom")))
}
