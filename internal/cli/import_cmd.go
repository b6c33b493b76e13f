package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"semapa/internal/repositories"
	"semapa/internal/services"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa planilhas",
	}
	cmd.AddCommand(newImportEspeciesCmd(app))
	return cmd
}

func newImportEspeciesCmd(app *App) *cobra.Command {
	var autor string

	cmd := &cobra.Command{
		Use:   "especies <arquivo.xlsx>",
		Short: "Importa espécies de uma planilha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Pool(ctx)
			if err != nil {
				return err
			}

			if autor == "" {
				autor = app.Config.Seed.AdminEmail
			}
			actor, err := repositories.NewUserRepository(pool, app.Logger).FindByEmail(ctx, autor)
			if err != nil {
				return fmt.Errorf("usuário %q: %w", autor, err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			importer := services.NewEspecieImporter(repositories.NewEspecieRepository(pool, app.Logger), app.Logger)
			result, err := importer.Import(ctx, f, actor.ID, time.Now())
			if err != nil {
				return err
			}

			app.Logger.Info("Importação concluída",
				zap.String("arquivo", args[0]),
				zap.Int("criadas", result.Criadas),
				zap.Int("ignoradas", result.Ignoradas),
				zap.Int("erros", len(result.Erros)),
			)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "criadas: %d, ignoradas: %d\n", result.Criadas, result.Ignoradas)
			for _, e := range result.Erros {
				fmt.Fprintln(w, "  -", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&autor, "autor", "", "e-mail do usuário registrado como criador (padrão: SEED_ADMIN_EMAIL)")
	return cmd
}
