package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"autoqa/internal/bootstrap"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/usecase/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Synchronize the test-case catalog from TestRail",
	Long:  "Fetches project, suite, sections and cases from TestRail and inserts them into the catalog. With --fetch-fields only the customer/platform lookup tables are populated from field definitions.",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		fetchFields, _ := cmd.Flags().GetBool("fetch-fields")

		report := svcs.Ingest.Run(ctx, ingest.RunOptions{FetchFields: fetchFields})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ingestion %s (mode=%s)\n", report.Outcome, report.Mode)
		if report.Mode == ingest.ModeFields {
			fmt.Fprintf(out, "  customers created: %d\n", report.CustomersCreated)
			fmt.Fprintf(out, "  platforms created: %d\n", report.PlatformsCreated)
		} else {
			fmt.Fprintf(out, "  pages fetched:  %d\n", report.Pages)
			fmt.Fprintf(out, "  cases imported: %d\n", report.CasesImported)
			fmt.Fprintf(out, "  cases failed:   %d\n", report.CasesFailed)
		}
		if report.Message != "" {
			fmt.Fprintf(out, "  message: %s\n", report.Message)
		}

		if report.Outcome == ingest.OutcomeFailed {
			return fmt.Errorf("ingestion failed: %s", report.Message)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("fetch-fields", false, "Only fetch field definitions and populate customer/platform lookups")
}
