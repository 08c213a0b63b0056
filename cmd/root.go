package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dataready",
	Short: "Mock data engineering interviews",
	Long:  "DataReady runs adaptive mock interviews for data engineering roles and reports on readiness.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, practiceFlags{})
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default ./dataready.yaml when present)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default ./.env when present)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store.path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
