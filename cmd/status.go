package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"autoqa/internal/bootstrap"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/usecase/ingest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the result of the last ingestion run",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		report, found, err := svcs.Ingest.LastReport(ctx)
		if err != nil {
			logging.Error(ctx, "load last ingestion report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load last ingestion report")
		}

		out := cmd.OutOrStdout()
		if !found {
			fmt.Fprintln(out, "no ingestion run recorded yet")
			return nil
		}

		fmt.Fprintf(out, "last ingestion: %s (mode=%s)\n", report.Outcome, report.Mode)
		fmt.Fprintf(out, "  started:  %s\n", report.StartedAt)
		fmt.Fprintf(out, "  finished: %s\n", report.FinishedAt)
		if report.Mode == ingest.ModeFields {
			fmt.Fprintf(out, "  customers created: %d\n", report.CustomersCreated)
			fmt.Fprintf(out, "  platforms created: %d\n", report.PlatformsCreated)
		} else {
			fmt.Fprintf(out, "  pages fetched:  %d\n", report.Pages)
			fmt.Fprintf(out, "  cases imported: %d\n", report.CasesImported)
			fmt.Fprintf(out, "  cases failed:   %d\n", report.CasesFailed)
			for _, sourceID := range report.FailedSourceIDs {
				fmt.Fprintf(out, "    failed source id: %d\n", sourceID)
			}
		}
		if report.Message != "" {
			fmt.Fprintf(out, "  message: %s\n", report.Message)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
