package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/coeus/internal/config"
	"github.com/mind-engage/coeus/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "coeusd",
	Short: "Learning progression and ordering service",
	Long:  "coeusd serves the learner work queue, grades exams and keeps course content ordered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "sqlite|postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database DSN (overrides DB_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := cmd.Flags().GetString("db-dsn"); v != "" {
		cfg.DBDSN = v
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.HTTPAddr = f.Value.String()
	}
	return cfg
}

func openStore(cfg config.Config) (*store.DB, error) {
	driver, err := store.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := store.Open(ctx, driver, cfg.DBDSN, store.WithLockTimeout(cfg.LockTimeout))
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	return db, nil
}
