package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taxipark/config"
	"taxipark/pkg/logger"
	"taxipark/service"
	"taxipark/storage"
	"taxipark/storage/backend"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative tasks for the taxi fleet service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newCreateSuperuserCmd(),
		newResetDBCmd(),
	)
	return root
}

// openStore loads config and opens the configured backend, applying migrations.
func openStore(cmd *cobra.Command) (storage.IStorage, config.Config, logger.ILogger, error) {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, logger.LevelWarn)
	store, err := backend.Open(cmd.Context(), cfg, log)
	if err != nil {
		return nil, cfg, nil, err
	}
	return store, cfg, log, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s schema is up to date", cfg.DBDriver))
			return nil
		},
	}
}

func newCreateSuperuserCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account with full admin access",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			store, cfg, log, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := service.New(store, log, service.Options{SecretKey: cfg.SecretKey})
			d, err := svc.Auth().CreateSuperuser(cmd.Context(), username, email, password)
			if err != nil {
				if errors.Is(err, storage.ErrAlreadyExists) {
					return fmt.Errorf("user %q already exists", username)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Superuser %s created (id %d)", d.Username, d.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newResetDBCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Delete every manufacturer, car, driver and session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("! This removes all data. Re-run with --yes to confirm."))
				return nil
			}

			store, _, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Database reset"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
