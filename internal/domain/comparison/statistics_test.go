package comparison

import (
	"math"
	"testing"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

func TestCalculateMetricStats(t *testing.T) {
	stats := CalculateMetricStats([]float64{4, 2, 6, 8})

	if stats.N != 4 || stats.Min != 2 || stats.Max != 8 {
		t.Errorf("unexpected bounds: %+v", stats)
	}
	if stats.Mean != 5 {
		t.Errorf("Mean = %v, want 5", stats.Mean)
	}
	if stats.Median != 5 {
		t.Errorf("Median = %v, want 5", stats.Median)
	}
	if stats.Last != 8 {
		t.Errorf("Last = %v, want 8 (insertion order)", stats.Last)
	}
	want := math.Sqrt(20.0 / 3.0)
	if math.Abs(stats.StdDev-want) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", stats.StdDev, want)
	}

	if CalculateMetricStats(nil).IsValid() {
		t.Error("empty series should not be valid")
	}
	single := CalculateMetricStats([]float64{3})
	if single.StdDev != 0 || single.Median != 3 || single.P95 != 3 {
		t.Errorf("single value stats wrong: %+v", single)
	}
}

func TestSummarize(t *testing.T) {
	records := []benchmark.RunRecord{
		{RunIndex: 1, MSSQLMillis: 50, ClickHouseMillis: 5},
		{RunIndex: 2, MSSQLMillis: 70, ClickHouseMillis: 15},
	}
	s := Summarize(benchmark.ScenarioAggregation, records)

	if s.Runs != 2 {
		t.Errorf("Runs = %d", s.Runs)
	}
	if s.MSSQL.Mean != 60 || s.ClickHouse.Mean != 10 {
		t.Errorf("means = %v / %v", s.MSSQL.Mean, s.ClickHouse.Mean)
	}
	if s.MeanSpeedup != 6 {
		t.Errorf("MeanSpeedup = %v, want 6", s.MeanSpeedup)
	}
	if s.Winner() != benchmark.BackendClickHouse {
		t.Errorf("Winner() = %s", s.Winner())
	}
	if s.Stats(benchmark.BackendSQLServer).Max != 70 {
		t.Errorf("Stats(sqlserver).Max = %v", s.Stats(benchmark.BackendSQLServer).Max)
	}

	empty := Summarize(benchmark.ScenarioPointLookup, nil)
	if empty.Runs != 0 || empty.Winner() != "" || empty.MeanSpeedup != 0 {
		t.Errorf("empty summary wrong: %+v", empty)
	}
}

func TestGetPercentile(t *testing.T) {
	values := []float64{10, 1, 5}
	if got := GetPercentile(values, 50); got != 5 {
		t.Errorf("P50 = %v, want 5", got)
	}
	if got := GetPercentile(values, 100); got != 10 {
		t.Errorf("P100 = %v, want 10", got)
	}
	if values[0] != 10 {
		t.Error("GetPercentile must not reorder its input")
	}
}

func TestFormatting(t *testing.T) {
	if FormatMeanStdDev(MetricStats{}) != "N/A" {
		t.Error("invalid stats should format as N/A")
	}
	if got := FormatMeanStdDev(MetricStats{N: 1, Mean: 2}); got != "2.00 ms" {
		t.Errorf("FormatMeanStdDev = %q", got)
	}
	if got := FormatMinMax(MetricStats{N: 2, Min: 1, Max: 3}); got != "1.00 .. 3.00" {
		t.Errorf("FormatMinMax = %q", got)
	}
	if CalculateCV(0, 1) != 0 || CalculateCV(10, 1) != 10 {
		t.Error("CalculateCV wrong")
	}
}
