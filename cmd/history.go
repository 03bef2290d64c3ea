package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/study"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent study queries",
	Long: "Show the 20 most recent study queries, newest first.\n\n" +
		"--search filters those 20 by query or response text; older matches are not searched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		items, err := d.history.List(cmd.Context(), search)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			if items == nil {
				items = []study.HistoryItem{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		if len(items) == 0 {
			fmt.Fprintln(out, "No history found.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-10s  %-7s  %s\n", "Timestamp", "Category", "Level", "Query")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, it := range items {
			fmt.Fprintf(out, "%-19s  %-10s  %-7s  %s\n",
				it.Timestamp.Local().Format("2006-01-02 15:04:05"),
				it.Category,
				it.Level,
				truncate(oneLine(it.Query), 40),
			)
		}
		return nil
	},
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	historyCmd.Flags().StringP("search", "s", "", "Only show items whose query or response contains this text")
	historyCmd.Flags().Bool("json", false, "Print the items as JSON")
}
