package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"autoqa/internal/bootstrap"
	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

var (
	caseIDStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	scopeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyles = map[string]lipgloss.Style{
		"ready":         lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"automated":     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		"manual_review": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"no_auto":       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Catalog test-case commands",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog test cases",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		project, _ := cmd.Flags().GetString("project")
		suite, _ := cmd.Flags().GetString("suite")
		section, _ := cmd.Flags().GetString("section")

		items, err := svcs.Catalog.ListTestCases(ctx, ports.TestCaseFilter{
			Status:  status,
			Project: project,
			Suite:   suite,
			Section: section,
		})
		if err != nil {
			logging.Error(ctx, "list test cases failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list test cases")
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "no test cases found")
			return nil
		}

		for _, item := range items {
			statusStyle, ok := statusStyles[item.Status]
			if !ok {
				statusStyle = scopeStyle
			}
			parts := make([]string, 0, 3)
			for _, part := range []string{item.Project, item.Suite, item.Section} {
				if strings.TrimSpace(part) != "" {
					parts = append(parts, part)
				}
			}
			scope := strings.Join(parts, " / ")
			fmt.Fprintf(out, "%s  %-14s %s\n", caseIDStyle.Render(fmt.Sprintf("%-8s", item.TestCaseID)), statusStyle.Render(item.Status), item.Title)
			fmt.Fprintf(out, "          %s\n", scopeStyle.Render(scope))
		}
		fmt.Fprintf(out, "\n%d test case(s)\n", len(items))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(casesCmd)
	casesCmd.AddCommand(casesListCmd)

	casesListCmd.Flags().String("status", "", "Filter by status (ready/automated/manual_review/no_auto)")
	casesListCmd.Flags().String("project", "", "Filter by project name")
	casesListCmd.Flags().String("suite", "", "Filter by suite name")
	casesListCmd.Flags().String("section", "", "Filter by section name")
}
