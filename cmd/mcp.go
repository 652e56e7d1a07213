package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finhorizon/horizon/internal/auth"
	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/config"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/invoices"
	"github.com/finhorizon/horizon/internal/ledger"
	mcpserver "github.com/finhorizon/horizon/internal/mcp"
)

var mcpUserEmail string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing one
user's invoices, budgets and ledger as tools for AI agents.`,
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

		user, err := auth.NewStore(database).GetUserByEmail(context.Background(), mcpUserEmail)
		if err != nil {
			return fmt.Errorf("looking up user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("no account for %q", mcpUserEmail)
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "horizon MCP server started on stdio (user=%s)\n", user.Email)

		srv := mcpserver.NewServer(user.ID,
			ledger.NewStore(database),
			invoices.NewStore(database, nil),
			budgets.NewStore(database, nil),
		)
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpUserEmail, "user", "", "email of the account to expose")
	mcpCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(mcpCmd)
}
