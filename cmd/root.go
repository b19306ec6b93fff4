package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yourusername/freelancedesk/config"
	"github.com/yourusername/freelancedesk/logger"
	"github.com/yourusername/freelancedesk/store"
	"go.uber.org/zap"
)

var version = "1.0.0"

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "freelancedesk",
	Short: "Freelance desk API - clients, invoices, expenses and payments",
	Long: `freelancedesk tracks the clients, invoices, expenses and payments of a
freelancer, serves the dashboard figures derived from them and answers
questions about the data through a rule based or AI assistant.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		built, err := logger.Init(cfg.LogLevel, cfg.Env)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = built.With(zap.String("command", cmd.Name()))
		return nil
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// openStore builds the configured backend. cleanup releases the database handle, if any.
func openStore() (st *store.Store, cleanup func(), err error) {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Info("Using in-memory store", zap.String("backend", cfg.StoreBackend))
		return store.NewMemory(), func() {}, nil
	}

	if err := config.Migrate(db); err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	log.Info("Database connected", zap.String("backend", cfg.StoreBackend))
	return store.NewGorm(db), func() { sqlDB.Close() }, nil
}
