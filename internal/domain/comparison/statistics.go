// Package comparison provides statistics over a scenario's run history.
package comparison

import (
	"fmt"
	"math"
	"sort"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

// MetricStats describes one latency series.
type MetricStats struct {
	N      int     `json:"n"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
	Mean   float64 `json:"mean_ms"`
	Median float64 `json:"median_ms"`
	P95    float64 `json:"p95_ms"`
	StdDev float64 `json:"stddev_ms"` // Sample stddev (n-1)
	Last   float64 `json:"last_ms"`
}

// IsValid reports whether the stats were computed from at least one value.
func (s MetricStats) IsValid() bool {
	return s.N > 0
}

// Summary compares both backends over the history of one scenario.
type Summary struct {
	Scenario   benchmark.Scenario `json:"scenario"`
	Runs       int                `json:"runs"`
	MSSQL      MetricStats        `json:"mssql"`
	ClickHouse MetricStats        `json:"clickhouse"`

	// MeanSpeedup is the mean row-store latency divided by the mean
	// column-store latency. Above 1 means the column-store was faster.
	MeanSpeedup float64 `json:"mean_speedup"`
}

// Winner returns the backend with the lower mean latency, or "" on a tie or no data.
func (s Summary) Winner() benchmark.BackendID {
	if s.Runs == 0 || s.MSSQL.Mean == s.ClickHouse.Mean {
		return ""
	}
	if s.MSSQL.Mean < s.ClickHouse.Mean {
		return benchmark.BackendSQLServer
	}
	return benchmark.BackendClickHouse
}

// Stats returns the stats of one backend.
func (s Summary) Stats(backend benchmark.BackendID) MetricStats {
	if backend == benchmark.BackendClickHouse {
		return s.ClickHouse
	}
	return s.MSSQL
}

// Summarize computes the per-backend statistics of a scenario's records.
func Summarize(scenario benchmark.Scenario, records []benchmark.RunRecord) Summary {
	summary := Summary{Scenario: scenario, Runs: len(records)}
	if len(records) == 0 {
		return summary
	}

	mssql := make([]float64, len(records))
	ch := make([]float64, len(records))
	for i, r := range records {
		mssql[i] = r.MSSQLMillis
		ch[i] = r.ClickHouseMillis
	}

	summary.MSSQL = CalculateMetricStats(mssql)
	summary.ClickHouse = CalculateMetricStats(ch)
	summary.MeanSpeedup = CalculateSpeedup(summary.MSSQL.Mean, summary.ClickHouse.Mean)
	return summary
}

// CalculateMetricStats calculates statistics for one series, preserving
// the last value in insertion order.
func CalculateMetricStats(values []float64) MetricStats {
	n := len(values)
	if n == 0 {
		return MetricStats{}
	}

	stats := MetricStats{
		N:    n,
		Min:  values[0],
		Max:  values[0],
		Last: values[n-1],
	}

	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(n)

	if n > 1 {
		var varianceSum float64
		for _, v := range values {
			diff := v - stats.Mean
			varianceSum += diff * diff
		}
		stats.StdDev = math.Sqrt(varianceSum / float64(n-1))
	}

	stats.Median = GetPercentile(values, 50)
	stats.P95 = GetPercentile(values, 95)
	return stats
}

// CalculateCV calculates the Coefficient of Variation (CV%).
// CV = (StdDev / Mean) × 100
func CalculateCV(mean, stddev float64) float64 {
	if mean == 0 {
		return 0
	}
	return (stddev / mean) * 100
}

// CalculateSpeedup calculates speedup vs baseline.
// Speedup = value / baseline
func CalculateSpeedup(value, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return value / baseline
}

// GetPercentile calculates the percentile of values with linear interpolation.
func GetPercentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := (percentile / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// FormatMeanStdDev formats mean and stddev as "mean ± stddev" in milliseconds.
func FormatMeanStdDev(stats MetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f ms", stats.Mean)
	}
	return fmt.Sprintf("%.2f ± %.2f ms", stats.Mean, stats.StdDev)
}

// FormatMinMax formats min and max as "min .. max".
func FormatMinMax(stats MetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f", stats.Min)
	}
	return fmt.Sprintf("%.2f .. %.2f", stats.Min, stats.Max)
}
