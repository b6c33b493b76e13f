package cli

import (
	"github.com/spf13/cobra"

	"semapa/seeders"
)

func newSeedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Popula o banco com dados iniciais",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "core",
			Short: "Catálogo inicial de espécies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd, app, true, false)
			},
		},
		&cobra.Command{
			Use:   "admin",
			Short: "Super administrador a partir de SEED_ADMIN_*",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd, app, false, true)
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Executa core e admin, nesta ordem",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd, app, true, true)
			},
		},
	)
	return cmd
}

func runSeed(cmd *cobra.Command, app *App, core, admin bool) error {
	pool, err := app.Pool(cmd.Context())
	if err != nil {
		return err
	}
	if core {
		if err := seeders.SeedCore(cmd.Context(), pool, app.Logger); err != nil {
			return err
		}
	}
	if admin {
		if err := seeders.SeedAdmin(cmd.Context(), pool, app.Config, app.Logger); err != nil {
			return err
		}
	}
	return nil
}
