package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/config"
	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/logger"
)

const serviceName = "crm-api"

var rootCmd = &cobra.Command{
	Use:           "crm-api",
	Short:         "CRM backend: companies, leads and comments over a JSON API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load() // .env is optional
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, builds the logger and opens the
// database shared by every subcommand.
func bootstrap() (config.Config, *zap.Logger, *sql.DB, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("logger: %w", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		_ = log.Sync()
		return cfg, nil, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, log, db, nil
}
