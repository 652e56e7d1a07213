package cmd

import (
	"github.com/spf13/cobra"

	"github.com/finhorizon/horizon/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize horizon configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure horizon and generates a .horizon.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
