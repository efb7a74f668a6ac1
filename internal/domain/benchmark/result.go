package benchmark

import (
	"time"
)

// TimingResult is the wall-clock measurement of exactly one query executed to
// completion on one backend, including full row materialisation.
type TimingResult struct {
	Backend       BackendID `json:"backend"`
	ElapsedMillis float64   `json:"elapsed_ms"` // Never negative
	Rows          int64     `json:"rows"`       // Rows drained from the result set
}

// DurationToMillis converts a duration to fractional milliseconds, clamping
// negative values to zero.
func DurationToMillis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

// RunRecord pairs the timings of one comparison run.
// RunIndex is 1-based and strictly increasing within a scenario.
type RunRecord struct {
	RunIndex         int       `json:"run"`
	MSSQLMillis      float64   `json:"mssql_ms"`
	ClickHouseMillis float64   `json:"clickhouse_ms"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// Millis returns the timing of the given backend.
func (r RunRecord) Millis(backend BackendID) float64 {
	if backend == BackendClickHouse {
		return r.ClickHouseMillis
	}
	return r.MSSQLMillis
}

// Speedup returns how many times faster the column-store was than the row-store.
// Returns 0 when the column-store timing is zero.
func (r RunRecord) Speedup() float64 {
	if r.ClickHouseMillis <= 0 {
		return 0
	}
	return r.MSSQLMillis / r.ClickHouseMillis
}
