package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finhorizon/horizon/internal/ai"
	"github.com/finhorizon/horizon/internal/config"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/notify"
	"github.com/finhorizon/horizon/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the horizon API server",
	Long:  `Starts the horizon REST API with all dashboard endpoints, the presence feed and the AI assistant proxy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = config.NewSecret()
			log.Printf("serve: no jwt_secret configured, using an ephemeral one; sessions will not survive restarts")
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "horizon.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		aiHandlers, err := buildAIHandlers(cfg, database)
		if err != nil {
			return err
		}

		srv := server.New(*cfg, database, aiHandlers)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Notify.Simulate {
			sim := notify.NewSimulator(srv.Notifier(),
				time.Duration(cfg.Notify.TickSeconds)*time.Second,
				cfg.Notify.Probability,
			)
			go sim.Run(ctx)
		}

		// Hourly overdue sweep; invoices past due transition and notify.
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				if err := srv.SweepOverdueInvoices(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "overdue sweep: %v\n", err)
				}
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "horizon v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)

		return srv.Start()
	},
}

// buildAIHandlers wires the assistant against the configured gateway. The
// handlers are created even without an API key so the AI routes answer with
// a clean error instead of disappearing.
func buildAIHandlers(cfg *config.Config, database *db.DB) (*ai.Handlers, error) {
	apiKey := config.GatewayAPIKey()
	gateway := ai.NewGateway(apiKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.EmbeddingModel)

	var memory *ai.Memory
	if cfg.AI.Memory && apiKey != "" {
		var err error
		memory, err = ai.NewMemory(gateway)
		if err != nil {
			return nil, fmt.Errorf("creating assistant memory: %w", err)
		}
	}

	return ai.NewHandlers(gateway, ai.NewStore(database), memory, apiKey, cfg.AI.MaxTokens, cfg.AI.Temperature), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
