package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"autoqa/internal/bootstrap"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
	"autoqa/internal/usecase/scripts"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Generated-script artifact commands",
}

var scriptsUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a generated script for a test case",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caseID, _ := cmd.Flags().GetString("case")
		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("name")

		content, err := os.ReadFile(file)
		if err != nil {
			return errs.Wrapf(err, "read script file %s", file)
		}
		if name == "" {
			name = filepath.Base(file)
		}

		script, err := svcs.Scripts.Upload(ctx, scripts.UploadInput{
			TestCaseID: caseID,
			Name:       name,
			Content:    content,
		})
		if err != nil {
			logging.Error(ctx, "upload script failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "upload script")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s version %d (key %s, etag %s)\n", script.Name, script.Version, script.StorageKey, script.ETag)
		return nil
	}),
}

var scriptsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the script for a test case",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caseID, _ := cmd.Flags().GetString("case")
		priorETag, _ := cmd.Flags().GetString("etag")
		outPath, _ := cmd.Flags().GetString("out")

		result, err := svcs.Scripts.Fetch(ctx, caseID, priorETag)
		if err != nil {
			logging.Error(ctx, "fetch script failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "fetch script")
		}

		out := cmd.OutOrStdout()
		if result.Unchanged {
			fmt.Fprintf(out, "%s unchanged (etag %s)\n", result.Script.Name, result.ETag)
			return nil
		}

		if outPath == "" {
			outPath = result.Script.Name
		}
		if err := os.WriteFile(outPath, result.Content, 0o644); err != nil {
			return errs.Wrapf(err, "write script to %s", outPath)
		}
		fmt.Fprintf(out, "fetched %s to %s (etag %s)\n", result.Script.Name, outPath, result.ETag)
		return nil
	}),
}

var scriptsRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a script execution result",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caseID, _ := cmd.Flags().GetString("case")
		result, _ := cmd.Flags().GetString("result")
		seconds, _ := cmd.Flags().GetFloat64("seconds")
		logKey, _ := cmd.Flags().GetString("log-key")
		screenshotsKey, _ := cmd.Flags().GetString("screenshots-key")

		err := svcs.Scripts.RecordExecution(ctx, ports.ExecutionResultRecord{
			TestCaseID:            caseID,
			Result:                result,
			ExecutionSeconds:      seconds,
			LogStorageKey:         logKey,
			ScreenshotsStorageKey: screenshotsKey,
		})
		if err != nil {
			logging.Error(ctx, "record execution result failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "record execution result")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s for %s\n", result, caseID)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
	scriptsCmd.AddCommand(scriptsUploadCmd)
	scriptsCmd.AddCommand(scriptsFetchCmd)
	scriptsCmd.AddCommand(scriptsRecordCmd)

	scriptsUploadCmd.Flags().String("case", "", "Catalog case id")
	scriptsUploadCmd.Flags().String("file", "", "Path to the script file")
	scriptsUploadCmd.Flags().String("name", "", "Stored script name (defaults to the file name)")
	_ = scriptsUploadCmd.MarkFlagRequired("case")
	_ = scriptsUploadCmd.MarkFlagRequired("file")

	scriptsFetchCmd.Flags().String("case", "", "Catalog case id")
	scriptsFetchCmd.Flags().String("etag", "", "Prior ETag for a conditional fetch")
	scriptsFetchCmd.Flags().String("out", "", "Output path (defaults to the stored script name)")
	_ = scriptsFetchCmd.MarkFlagRequired("case")

	scriptsRecordCmd.Flags().String("case", "", "Catalog case id")
	scriptsRecordCmd.Flags().String("result", "", "Execution result (pending/passed/failed/error)")
	scriptsRecordCmd.Flags().Float64("seconds", 0, "Execution duration in seconds")
	scriptsRecordCmd.Flags().String("log-key", "", "Storage key of the execution log")
	scriptsRecordCmd.Flags().String("screenshots-key", "", "Storage key of the screenshots archive")
	_ = scriptsRecordCmd.MarkFlagRequired("case")
	_ = scriptsRecordCmd.MarkFlagRequired("result")
}
