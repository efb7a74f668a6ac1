package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/whhaicheng/DB-Showdown/internal/app/usecase"
	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
	"github.com/whhaicheng/DB-Showdown/internal/domain/comparison"
	"github.com/whhaicheng/DB-Showdown/internal/domain/report"
	"github.com/whhaicheng/DB-Showdown/internal/infra/database"
	"github.com/whhaicheng/DB-Showdown/internal/transport/ui"
)

// Open the dashboard.
func guiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the comparison dashboard.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wire(); err != nil {
				return err
			}
			slog.Info("Starting GUI")
			ui.NewApplication(a.benchmarkUC, a.historyUC, a.exportUC).Run()
			return nil
		},
	}
}

// Run one scenario a number of times and print every run plus a summary.
func runCmd(a *app) *cobra.Command {
	var count int
	var exportFormat string

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a paired comparison (point or agg) and print the timings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := benchmark.ParseScenario(args[0])
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			var format report.ReportFormat
			if exportFormat != "" {
				if format, err = report.ParseFormat(exportFormat); err != nil {
					return err
				}
			}
			if err := a.wire(); err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(out, "%s\n", scenario.Title())
			fmt.Fprintln(out, "RUN\tMSSQL (ms)\tCLICKHOUSE (ms)\tSPEEDUP")
			for i := 0; i < count; i++ {
				rec, err := a.benchmarkUC.RunScenario(cmd.Context(), scenario)
				if err != nil {
					out.Flush()
					return err
				}
				fmt.Fprintf(out, "%d\t%.2f\t%.2f\t%.2fx\n", rec.RunIndex, rec.MSSQLMillis, rec.ClickHouseMillis, rec.Speedup())
			}
			if err := out.Flush(); err != nil {
				return err
			}

			summary, err := a.historyUC.Summary(cmd.Context(), scenario)
			if err != nil {
				return err
			}
			printSummary(cmd, summary)

			if format != "" {
				return exportReport(cmd, a, format)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of paired runs")
	cmd.Flags().StringVar(&exportFormat, "export", "", "write a session report afterwards (markdown, html, json)")
	return cmd
}

// Clear the engine caches of both backends.
func clearCacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop the buffer, plan and mark caches of both engines.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wire(); err != nil {
				return err
			}
			if err := a.benchmarkUC.ClearCaches(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Caches cleared for both platforms.")
			return nil
		},
	}
}

// Generate the synthetic dataset and load it into both engines.
func provisionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Recreate the Orders table on both engines and bulk-load the synthetic dataset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlServer := database.NewSQLServerLoader(&a.cfg.SQLServer)
			clickHouse := database.NewClickHouseLoader(&a.cfg.ClickHouse)
			defer func() {
				for _, l := range []usecase.Loader{sqlServer, clickHouse} {
					if err := l.Close(); err != nil {
						slog.Warn("Provision: Close failed", "backend", l.Backend(), "error", err)
					}
				}
			}()

			uc, err := usecase.NewProvisionUseCase(a.cfg.Provision, sqlServer, clickHouse)
			if err != nil {
				return err
			}
			stats, err := uc.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(out, "BACKEND\tROWS\tELAPSED")
			for _, s := range stats {
				fmt.Fprintf(out, "%s\t%d\t%s\n", s.Backend.DisplayName(), s.Rows, s.Elapsed.Round(10*time.Millisecond))
			}
			return out.Flush()
		},
	}
}

// Run every scenario a number of times and write the session report.
func exportCmd(a *app) *cobra.Command {
	var count int
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run every scenario --count times and write the session report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if count < 0 {
				return fmt.Errorf("--count cannot be negative")
			}
			if err := a.wire(); err != nil {
				return err
			}

			for _, s := range benchmark.Scenarios {
				for i := 0; i < count; i++ {
					if _, err := a.benchmarkUC.RunScenario(cmd.Context(), s); err != nil {
						return err
					}
				}
			}
			return exportReport(cmd, a, format)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(report.FormatMarkdown), "report format (markdown, html, json)")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "paired runs per scenario before exporting")
	return cmd
}

func exportReport(cmd *cobra.Command, a *app, format report.ReportFormat) error {
	path, err := a.exportUC.Export(cmd.Context(), format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report exported to %s\n", path)
	return nil
}

func printSummary(cmd *cobra.Command, s comparison.Summary) {
	out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "BACKEND\tMEAN ± STDDEV\tMEDIAN\tP95\tMIN .. MAX")
	for _, b := range benchmark.Backends {
		stats := s.Stats(b)
		fmt.Fprintf(out, "%s\t%s\t%.2f\t%.2f\t%s\n",
			b.DisplayName(),
			comparison.FormatMeanStdDev(stats),
			stats.Median,
			stats.P95,
			comparison.FormatMinMax(stats))
	}
	out.Flush()

	if w := s.Winner(); w != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s faster on average; mean speedup (MSSQL / ClickHouse) %.2fx\n", w.DisplayName(), s.MeanSpeedup)
	}
}
