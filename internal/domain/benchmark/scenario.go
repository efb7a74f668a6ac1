// Package benchmark provides the scenario, timing and error models of the
// row-store vs column-store comparison.
package benchmark

import (
	"fmt"
	"strings"
)

// BackendID identifies one of the two compared database engines.
type BackendID string

const (
	BackendSQLServer  BackendID = "sqlserver"
	BackendClickHouse BackendID = "clickhouse"
)

// Backends lists the compared engines in measurement order (row-store first).
var Backends = []BackendID{BackendSQLServer, BackendClickHouse}

// String returns the backend identifier.
func (b BackendID) String() string {
	return string(b)
}

// DisplayName returns the human-readable engine name used in charts and reports.
func (b BackendID) DisplayName() string {
	switch b {
	case BackendSQLServer:
		return "MSSQL"
	case BackendClickHouse:
		return "ClickHouse"
	default:
		return string(b)
	}
}

// Scenario identifies one of the fixed comparative query workloads.
type Scenario string

const (
	ScenarioPointLookup Scenario = "point_lookup"
	ScenarioAggregation Scenario = "aggregation"
)

// Scenarios lists every known scenario in display order.
var Scenarios = []Scenario{ScenarioPointLookup, ScenarioAggregation}

// String returns the scenario identifier.
func (s Scenario) String() string {
	return string(s)
}

// Title returns the dashboard heading of the scenario.
func (s Scenario) Title() string {
	switch s {
	case ScenarioPointLookup:
		return "Scenario A: Point Lookup"
	case ScenarioAggregation:
		return "Scenario B: Analytical Aggregation"
	default:
		return string(s)
	}
}

// Description returns a one-line explanation of what the scenario measures.
func (s Scenario) Description() string {
	switch s {
	case ScenarioPointLookup:
		return "Retrieve 1 specific row by primary key on both engines."
	case ScenarioAggregation:
		return "Sum every order amount grouped by region on both engines."
	default:
		return ""
	}
}

// NeedsKey reports whether the scenario's query is parameterised by an order key.
func (s Scenario) NeedsKey() bool {
	return s == ScenarioPointLookup
}

// Validate checks that the scenario is one of the known workloads.
func (s Scenario) Validate() error {
	switch s {
	case ScenarioPointLookup, ScenarioAggregation:
		return nil
	default:
		return fmt.Errorf("unknown scenario: %q", string(s))
	}
}

// ParseScenario maps user input such as "point", "point-lookup" or "agg" to a Scenario.
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point", "point_lookup", "point-lookup", "lookup":
		return ScenarioPointLookup, nil
	case "agg", "aggregation", "aggregate":
		return ScenarioAggregation, nil
	default:
		return "", fmt.Errorf("unknown scenario: %q (want point or agg)", s)
	}
}

// Query returns the backend-specific query text of a scenario.
// key is only used by ScenarioPointLookup.
func Query(s Scenario, backend BackendID, key int64) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch backend {
	case BackendSQLServer, BackendClickHouse:
	default:
		return "", fmt.Errorf("unknown backend: %q", string(backend))
	}

	// Both dialects accept the same text for these two workloads; the table is
	// resolved through the connection's default database.
	switch s {
	case ScenarioPointLookup:
		return fmt.Sprintf("SELECT * FROM Orders WHERE OrderID = %d", key), nil
	default:
		return "SELECT Region, SUM(Amount) FROM Orders GROUP BY Region", nil
	}
}

// QueryLogic returns the query shown to users, with the key left as a placeholder.
func QueryLogic(s Scenario) string {
	switch s {
	case ScenarioPointLookup:
		return "SELECT * FROM Orders WHERE OrderID = {random_id}"
	case ScenarioAggregation:
		return "SELECT Region, SUM(Amount) FROM Orders GROUP BY Region"
	default:
		return ""
	}
}

// CacheClearCommands returns the administrative statements that drop the
// engine-internal caches of a backend, in execution order.
func CacheClearCommands(backend BackendID) []string {
	switch backend {
	case BackendSQLServer:
		return []string{
			"CHECKPOINT;",
			"DBCC DROPCLEANBUFFERS;",
			"DBCC FREEPROCCACHE;",
			"EXEC sp_updatestats;",
		}
	case BackendClickHouse:
		return []string{
			"SYSTEM DROP MARK CACHE",
			"SYSTEM DROP UNCOMPRESSED CACHE",
			"SYSTEM DROP COMPILED EXPRESSION CACHE",
		}
	default:
		return nil
	}
}
