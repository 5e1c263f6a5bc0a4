package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/nazorat-backend/internal/app"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

// cliState is the state shared by every subcommand once the root has booted.
type cliState struct {
	envFile string
	app     *app.App
	close   func()
}

func newRootCmd() (*cobra.Command, *cliState) {
	rt := &cliState{}
	root := &cobra.Command{
		Use:           "nazctl",
		Short:         "Maintenance tool for the nazorat request store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.boot(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newUpgradeCmd(rt),
		newBootstrapAdminCmd(rt),
		newExportCmd(rt),
	)
	return root, rt
}

// shutdown releases whatever boot opened; safe to call when boot never ran.
func (rt *cliState) shutdown() {
	if rt.close != nil {
		rt.close()
		rt.close = nil
	}
}

func (rt *cliState) boot(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.envFile != "" {
		_ = godotenv.Load(rt.envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "nazctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a, err := app.New(cfg, logg, client, app.Options{})
	if err != nil {
		_ = client.Close()
		return err
	}
	rt.app = a
	rt.close = func() {
		if err := client.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}
	return nil
}
