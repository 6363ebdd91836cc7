package main

import (
	"fmt"
	"os"
	"strings"

	"payhost-backend/config"
	"payhost-backend/internal/database"
	"payhost-backend/internal/payment"
	"payhost-backend/internal/services"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	dbDriver string
	dbDSN    string
	operator string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pluginctl",
		Short: "Inspect and switch payment plugins between sandbox and production",
		Long: `pluginctl works directly against the plugin settings database.
Debug changes are recorded in the audit history and, when Redis is reachable,
published to running servers.`,
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return database.CloseRedis()
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbDriver, "db-driver", "", "database driver (sqlite|mysql), defaults to DB_DRIVER")
	rootCmd.PersistentFlags().StringVar(&opts.dbDSN, "db-dsn", "", "database DSN, defaults to DB_DSN")
	rootCmd.PersistentFlags().StringVar(&opts.operator, "operator", os.Getenv("USER"), "name recorded in the audit history")

	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newDebugCommand(opts))
	rootCmd.AddCommand(newDebugAllCommand(opts))

	return rootCmd
}

// connect opens the database and, if possible, Redis, then loads the
// configured plugins so changes go through the same path as the server.
func (o *rootOptions) connect(withRedis bool) (*payment.Registry, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.dbDriver != "" {
		cfg.DBDriver = o.dbDriver
	}
	if o.dbDSN != "" {
		cfg.DBDSN = o.dbDSN
	}

	if _, err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if withRedis {
		// Changes still persist without Redis; running servers pick them up on restart.
		_ = database.ConnectRedis(cfg)
	}

	registry := payment.NewRegistry()
	if err := services.LoadPlugins(registry, cfg.PaymentPlugins, cfg.PaymentSandbox); err != nil {
		return nil, err
	}
	return registry, nil
}

func parseMode(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "sandbox", "1":
		return true, nil
	case "off", "false", "production", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid mode %q, want on or off", s)
	}
}
