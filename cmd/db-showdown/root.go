package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/DB-Showdown/internal/app/usecase"
	"github.com/whhaicheng/DB-Showdown/internal/domain/config"
	"github.com/whhaicheng/DB-Showdown/internal/infra/adapter"
	"github.com/whhaicheng/DB-Showdown/internal/infra/metrics"
	infrareport "github.com/whhaicheng/DB-Showdown/internal/infra/report"
	"github.com/whhaicheng/DB-Showdown/internal/infra/settings"
)

// Version is the application version.
const Version = "1.0.0"

// app holds the configuration and the wired use cases of one invocation.
type app struct {
	configFile string
	logLevel   string

	cfg        *config.Config
	closeLog   func() error
	recorder   *metrics.Recorder
	metricsSrv *http.Server

	benchmarkUC *usecase.BenchmarkUseCase
	historyUC   *usecase.HistoryUseCase
	exportUC    *usecase.ExportUseCase
}

// execute runs the command line. The log file and the metrics server are
// released on every exit path, including failed commands.
func execute(ctx context.Context) error {
	cmd, a := newRootCmd()
	return a.execute(ctx, cmd)
}

func (a *app) execute(ctx context.Context, cmd *cobra.Command) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return cmd.ExecuteContext(ctx)
}

// newRootCmd builds the root Cobra command and the app it configures.
// All other sub-commands are registered here.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "db-showdown",
		Short: "Compare SQL Server (row-store) and ClickHouse (column-store) on canned workloads.",
		Long: `db-showdown loads a synthetic Orders dataset into SQL Server and ClickHouse
and times a point lookup and a grouped aggregation on both engines.

Connection settings come from the environment (MSSQL_*, CLICKHOUSE_*) and
benchmark settings from SHOWDOWN_* variables. A config file passed with
--config is read first; the environment wins over it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "optional config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override SHOWDOWN_LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		guiCmd(a),
		runCmd(a),
		clearCacheCmd(a),
		provisionCmd(a),
		exportCmd(a),
	)
	return cmd, a
}

// init loads the settings and sets up logging.
func (a *app) init() error {
	v, err := settings.New(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		v.Set(settings.KeyLogLevel, a.logLevel)
	}
	cfg, err := settings.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	a.closeLog = closeLog

	slog.Info("Starting DB-Showdown",
		"version", Version,
		"mssql", cfg.SQLServer.Redact(),
		"clickhouse", cfg.ClickHouse.Redact())
	return nil
}

// wire builds the benchmark, history and export use cases over one
// in-memory session history, and starts the metrics endpoint if configured.
func (a *app) wire() error {
	a.recorder = metrics.NewRecorder()
	if a.cfg.MetricsAddr != "" {
		a.startMetricsServer()
	}

	registry := adapter.NewRegistry(
		adapter.NewSQLServerAdapter(&a.cfg.SQLServer),
		adapter.NewClickHouseAdapter(&a.cfg.ClickHouse),
	)
	slog.Info("Adapters: Registered", "backends", registry.List())
	history := usecase.NewMemoryHistoryStore()

	benchmarkUC, err := usecase.NewBenchmarkUseCaseFromRegistry(registry, history, a.cfg.Benchmark)
	if err != nil {
		return err
	}
	a.benchmarkUC = benchmarkUC.WithMetrics(a.recorder)
	a.historyUC = usecase.NewHistoryUseCase(history)
	a.exportUC = usecase.NewExportUseCase(a.historyUC, a.cfg.ExportDir,
		infrareport.NewMarkdownGenerator(),
		infrareport.NewHTMLGenerator(),
		infrareport.NewJSONGenerator(),
	)

	slog.Info("Use cases initialized", "session", a.exportUC.SessionID())
	return nil
}

func (a *app) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.recorder.Handler())
	a.metricsSrv = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics: Serving", "addr", a.cfg.MetricsAddr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics: Server stopped", "error", err)
		}
	}()
}

// close stops the metrics server and closes the log file. Safe to call more than once.
func (a *app) close() error {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			slog.Warn("Metrics: Shutdown failed", "error", err)
		}
		a.metricsSrv = nil
	}
	if a.closeLog != nil {
		closeLog := a.closeLog
		a.closeLog = nil
		return closeLog()
	}
	return nil
}
