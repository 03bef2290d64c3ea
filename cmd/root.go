package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sensei",
	Short: "AI study companion for literature students",
	Long: "Mirror Sensei: a terminal and HTTP study companion that explains poems, drama,\n" +
		"literature and exam topics at three difficulty levels, in English or Bengali.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SENSEI_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a sensei.yaml config file")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "Keep prompts and history in memory only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
