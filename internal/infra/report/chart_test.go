// Package report provides unit tests for chart generator.
package report

import (
	"strings"
	"testing"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

// TestChartGenerator_GenerateLatencySparkline tests sparkline generation.
func TestChartGenerator_GenerateLatencySparkline(t *testing.T) {
	gen := NewChartGenerator()

	// Empty records
	result := gen.GenerateLatencySparkline(nil, benchmark.BackendSQLServer, 60, 8)
	if result != "" {
		t.Errorf("Empty records should return empty string, got: %s", result)
	}

	records := []benchmark.RunRecord{
		{RunIndex: 1, MSSQLMillis: 50, ClickHouseMillis: 5},
		{RunIndex: 2, MSSQLMillis: 70, ClickHouseMillis: 6},
		{RunIndex: 3, MSSQLMillis: 60, ClickHouseMillis: 4},
	}

	result = gen.GenerateLatencySparkline(records, benchmark.BackendClickHouse, 40, 5)
	if !strings.HasPrefix(result, "ClickHouse (ms)\n") {
		t.Errorf("Chart should start with its label, got: %q", result)
	}
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 6 {
		t.Errorf("Chart should have label + 5 rows, got %d", len(lines))
	}
	if strings.Count(result, "█") != 3 {
		t.Errorf("Chart should plot one point per run, got %d", strings.Count(result, "█"))
	}
	if !strings.Contains(lines[1], "6.00") {
		t.Errorf("Top row should be labelled with the max, got %q", lines[1])
	}
}

// TestChartGenerator_GenerateBarChart tests bar chart generation.
func TestChartGenerator_GenerateBarChart(t *testing.T) {
	gen := NewChartGenerator()

	// Mismatched lengths
	result := gen.GenerateBarChart([]string{"A", "B"}, []float64{1.0}, 40)
	if result != "" {
		t.Error("Mismatched lengths should return empty string")
	}

	// Empty data
	result = gen.GenerateBarChart([]string{}, []float64{}, 40)
	if result != "" {
		t.Error("Empty data should return empty string")
	}

	result = gen.GenerateBarChart([]string{"MSSQL", "ClickHouse"}, []float64{60, 5}, 40)
	if !strings.Contains(result, "60.00") || !strings.Contains(result, "5.00") {
		t.Errorf("Chart should print the values, got: %q", result)
	}
}

// TestChartGenerator_downsample tests downsampling.
func TestChartGenerator_downsample(t *testing.T) {
	gen := &ChartGenerator{}

	// No downsampling needed
	values := []float64{1, 2, 3, 4, 5}
	result := gen.downsample(values, 10)
	if len(result) != 5 {
		t.Errorf("No downsampling needed, should return same length, got %d", len(result))
	}

	values = make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	result = gen.downsample(values, 10)
	if len(result) != 10 {
		t.Errorf("Should downsample to 10, got %d", len(result))
	}
	if result[0] != 0 || result[9] != 99 {
		t.Errorf("Downsampling should keep both ends, got %v..%v", result[0], result[9])
	}
}

// TestChartGenerator_minMax tests min/max calculation.
func TestChartGenerator_minMax(t *testing.T) {
	gen := &ChartGenerator{}

	min, max := gen.minMax([]float64{1.5, 2.0, 0.5, 3.0, 2.5})
	if min != 0.5 || max != 3.0 {
		t.Errorf("minMax = %v, %v, want 0.5, 3.0", min, max)
	}

	min, max = gen.minMax([]float64{})
	if min != 0 || max != 1 {
		t.Errorf("empty should return 0, 1, got %v, %v", min, max)
	}
}
