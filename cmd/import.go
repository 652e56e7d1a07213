package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finhorizon/horizon/internal/auth"
	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/config"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/importer"
	"github.com/finhorizon/horizon/internal/ledger"
	"github.com/finhorizon/horizon/internal/progress"
)

var (
	importUserEmail string
	importGlob      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bank statement CSV files into the ledger",
	Long: `Imports CSV bank statements matched by a glob pattern into a user's
ledger. Rows already present (same date, description and amount) are
skipped, so reruns are safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "horizon.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx := context.Background()
		user, err := auth.NewStore(database).GetUserByEmail(ctx, importUserEmail)
		if err != nil {
			return fmt.Errorf("looking up user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("no account for %q", importUserEmail)
		}

		im := importer.New(ledger.NewStore(database), budgets.NewStore(database, nil),
			progress.NewReporter("Importing statements"))
		result, err := im.Run(ctx, user.ID, importGlob)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d entries from %d file(s), skipped %d duplicate(s)\n",
			result.Imported, result.Files, result.Skipped)
		for _, fe := range result.Errors {
			fmt.Printf("  %s: %v\n", fe.Path, fe.Err)
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d file(s) failed", len(result.Errors))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importUserEmail, "user", "", "email of the account to import into")
	importCmd.Flags().StringVar(&importGlob, "glob", "statements/**/*.csv", "glob pattern for statement files")
	importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}
