// Package usecase provides export business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
)

// ExportUseCase writes the session history to report files.
// It only reads the history.
type ExportUseCase struct {
	historyUC  *HistoryUseCase
	generators map[report.ReportFormat]report.Generator
	exportDir  string
	sessionID  string
	startedAt  time.Time
	now        func() time.Time
}

// NewExportUseCase creates a new export use case. Each instance is one
// session, identified by a random UUID.
func NewExportUseCase(historyUC *HistoryUseCase, exportDir string, generators ...report.Generator) *ExportUseCase {
	if exportDir == "" {
		exportDir = "./exports"
	}
	uc := &ExportUseCase{
		historyUC:  historyUC,
		generators: make(map[report.ReportFormat]report.Generator),
		exportDir:  exportDir,
		sessionID:  uuid.New().String(),
		startedAt:  time.Now(),
		now:        time.Now,
	}
	for _, g := range generators {
		uc.generators[g.Format()] = g
	}
	return uc
}

// SessionID returns the id of this session.
func (uc *ExportUseCase) SessionID() string {
	return uc.sessionID
}

// BuildReport collects the current history into a session report.
func (uc *ExportUseCase) BuildReport(ctx context.Context, cfg *report.ReportConfig) (*report.SessionReport, error) {
	snapshot, err := uc.historyUC.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	data := &report.SessionReport{
		SessionID:   uc.sessionID,
		StartedAt:   uc.startedAt,
		GeneratedAt: uc.now(),
		Config:      cfg,
	}
	for _, s := range snapshot {
		data.Scenarios = append(data.Scenarios, report.ScenarioSection{
			Scenario:   s.Scenario,
			QueryLogic: benchmark.QueryLogic(s.Scenario),
			Records:    s.Records,
			Summary:    s.Summary,
		})
	}
	return data, nil
}

// Export renders the session history in format and writes it under the
// export directory. Returns the written file path.
func (uc *ExportUseCase) Export(ctx context.Context, format report.ReportFormat) (string, error) {
	if err := format.Validate(); err != nil {
		return "", err
	}
	gen, ok := uc.generators[format]
	if !ok {
		return "", fmt.Errorf("no generator for format: %s", format)
	}

	data, err := uc.BuildReport(ctx, report.DefaultConfig(format))
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}

	rpt, err := gen.Generate(data)
	if err != nil {
		return "", fmt.Errorf("generate %s report: %w", format, err)
	}

	if err := os.MkdirAll(uc.exportDir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(uc.exportDir, uc.generateFilename(data.GeneratedAt, format))
	if err := os.WriteFile(path, rpt.Content, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	slog.Info("Export: Report written", "path", path, "format", format, "runs", data.TotalRuns())
	return path, nil
}

// generateFilename generates showdown-<session>-<timestamp>.<ext>.
func (uc *ExportUseCase) generateFilename(at time.Time, format report.ReportFormat) string {
	return fmt.Sprintf("showdown-%s-%s%s", uc.sessionID[:8], at.Format("20060102-150405"), format.FileExtension())
}
