package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
	infrareport "github.com/whhaicheng/DB-Showdown/internal/infra/report"
)

func newTestExport(t *testing.T) (*ExportUseCase, *MemoryHistoryStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	store := NewMemoryHistoryStore()
	uc := NewExportUseCase(NewHistoryUseCase(store), dir,
		infrareport.NewJSONGenerator(),
		infrareport.NewMarkdownGenerator(),
		infrareport.NewHTMLGenerator(),
	)
	return uc, store, dir
}

func TestExportUseCase_Export(t *testing.T) {
	ctx := context.Background()
	uc, store, dir := newTestExport(t)

	_, err := store.Append(ctx, benchmark.ScenarioAggregation, benchmark.RunRecord{MSSQLMillis: 50, ClickHouseMillis: 5})
	require.NoError(t, err)
	before, _ := store.Get(ctx, benchmark.ScenarioAggregation)

	for _, format := range report.Formats {
		path, err := uc.Export(ctx, format)
		require.NoError(t, err, format)

		assert.Equal(t, dir, filepath.Dir(path))
		name := filepath.Base(path)
		assert.True(t, strings.HasPrefix(name, "showdown-"+uc.SessionID()[:8]+"-"), name)
		assert.Equal(t, format.FileExtension(), filepath.Ext(name))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
		if format == report.FormatJSON {
			assert.True(t, json.Valid(content))
		}
	}

	after, _ := store.Get(ctx, benchmark.ScenarioAggregation)
	assert.Equal(t, before, after, "export must not mutate history")
}

func TestExportUseCase_BuildReport(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newTestExport(t)
	_, err := store.Append(ctx, benchmark.ScenarioPointLookup, benchmark.RunRecord{MSSQLMillis: 3, ClickHouseMillis: 1})
	require.NoError(t, err)

	data, err := uc.BuildReport(ctx, report.DefaultConfig(report.FormatMarkdown))
	require.NoError(t, err)
	require.NoError(t, data.Validate())
	assert.Equal(t, uc.SessionID(), data.SessionID)
	assert.Equal(t, 1, data.TotalRuns())
	require.Len(t, data.Scenarios, 2)
	assert.Equal(t, benchmark.QueryLogic(benchmark.ScenarioPointLookup), data.Scenarios[0].QueryLogic)
}

func TestExportUseCase_Errors(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestExport(t)

	_, err := uc.Export(ctx, report.ReportFormat("pdf"))
	assert.Error(t, err)

	bare := NewExportUseCase(NewHistoryUseCase(NewMemoryHistoryStore()), t.TempDir())
	_, err = bare.Export(ctx, report.FormatJSON)
	assert.ErrorContains(t, err, "no generator")
}
