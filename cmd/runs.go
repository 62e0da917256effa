package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"autoqa/internal/bootstrap"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Test run commands",
}

var runsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a test run from catalog cases",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		caseIDs, _ := cmd.Flags().GetStringSlice("case")
		keep, _ := cmd.Flags().GetBool("keep-artifacts")

		if name == "" {
			return errors.New("--name is required")
		}
		if len(caseIDs) == 0 {
			return errors.New("at least one --case is required")
		}

		// Run creation and case membership commit together.
		var run ports.TestRun
		err := svcs.Uow.WithTx(ctx, func(txCtx context.Context) error {
			created, err := svcs.Catalog.CreateTestRun(txCtx, ports.TestRunCreate{
				Name:                 name,
				SaveBeyondExpiration: keep,
			})
			if err != nil {
				return err
			}

			for _, caseID := range caseIDs {
				if _, err := svcs.Catalog.GetTestCase(txCtx, caseID); err != nil {
					return errs.Wrapf(err, "resolve case %s", caseID)
				}
			}
			if err := svcs.Catalog.AddRunCases(txCtx, created.TestRunID, caseIDs); err != nil {
				return err
			}

			run = created
			return nil
		})
		if err != nil {
			logging.Error(ctx, "create test run failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create test run")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d case(s))\n", run.TestRunID, len(caseIDs))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsCreateCmd)

	runsCreateCmd.Flags().String("name", "", "Run name")
	runsCreateCmd.Flags().StringSlice("case", nil, "Catalog case id to include (repeatable)")
	runsCreateCmd.Flags().Bool("keep-artifacts", false, "Retain artifacts beyond normal retention")
}
