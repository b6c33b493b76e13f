package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"semapa/pkg/database/postgresql"
)

func newMigrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica ou reverte migrações do esquema",
	}

	cmd.AddCommand(
		newGooseCmd(app, "up", "Aplica todas as migrações pendentes"),
		newGooseCmd(app, "down", "Reverte a última migração"),
		newGooseCmd(app, "status", "Mostra o estado das migrações"),
		newGooseCmd(app, "version", "Mostra a versão atual do esquema"),
	)
	return cmd
}

func newGooseCmd(app *App, command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := app.Pool(cmd.Context())
			if err != nil {
				return err
			}
			if err := postgresql.Migrate(cmd.Context(), pool, command); err != nil {
				return err
			}
			app.Logger.Info("Migração concluída", zap.String("command", command))
			return nil
		},
	}
}
