package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Financial dashboard backend with AI assistance",
	Long: `Horizon is the backend for a personal finance dashboard: accounting
entries, invoices, budgets and reports, with per-user notifications,
presence and an AI assistant proxied to an OpenAI-compatible gateway.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".horizon.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
