// Package main provides buffrctl, the operator CLI for the Buffr Host backend.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"buffr-host/bootstrap"
	bookingsvc "buffr-host/internal/application/booking"
	"buffr-host/internal/config"
	"buffr-host/internal/infrastructure/database"
	"buffr-host/internal/infrastructure/events"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "buffrctl",
		Short: "Operate the Buffr Host backend",
		Long: `buffrctl runs and maintains the Buffr Host API.

Configuration is read from the environment. A .env file is loaded first
when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			lvl, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd(), sweepCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the booking hold sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return bootstrap.Serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the Etuna demo tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if migrate {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
			}
			res, err := database.Seed(cmd.Context(), db)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run migrations before seeding")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale booking holds once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer database.Close(db)
			pub, closePub, err := events.New(cfg.NatsURL)
			if err != nil {
				return err
			}
			defer closePub()
			svc := &bookingsvc.Service{DB: db, Events: pub, Hold: cfg.BookingHold}
			n, err := svc.ExpireHolds(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d booking holds\n", n)
			return nil
		},
	}
}
