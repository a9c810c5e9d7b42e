package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"time-tracker/internal/app"
	"time-tracker/internal/config"
	"time-tracker/internal/migrate"
	"time-tracker/internal/usecase"
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := app.New(cmd.Context(), o.log, cfg)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer a.Close()
			if cfg.Store.Backend == config.BackendMemory {
				if err := a.Seed(cmd.Context()); err != nil {
					return err
				}
			}
			return a.Serve(cmd.Context())
		},
	}
}

func newMigrateCmd(o *options) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mysqlConfig()
			if err != nil {
				return err
			}
			// app.New migrates the MySQL backend before opening it.
			a, err := app.New(cmd.Context(), o.log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if seed {
				if err := a.Seed(cmd.Context()); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "demo user: %s / %s\n", usecase.DemoEmail, usecase.DemoPassword)
			}
			o.log.Info("migrations complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Create the demo user after migrating")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List embedded migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mysqlConfig()
			if err != nil {
				return err
			}
			ms, err := migrate.Status(cmd.Context(), cfg.MySQL.DSN)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ms))
			for _, m := range ms {
				rows = append(rows, []string{fmt.Sprintf("%04d", m.Version), m.File, strconv.FormatBool(m.Applied)})
			}
			printTable(cmd.OutOrStdout(), []string{"Version", "File", "Applied"}, rows)
			return nil
		},
	})
	return cmd
}

func mysqlConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Backend != config.BackendMySQL {
		return cfg, errors.New("migrations apply to STORE_BACKEND=mysql only")
	}
	return cfg, nil
}
