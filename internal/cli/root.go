// Package cli holds the semapa-admin maintenance commands.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"semapa/pkg/config"
	"semapa/pkg/database/postgresql"
)

// App carries what every command needs. The pool is opened on first use so
// that --help works without a database.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	pool *pgxpool.Pool
}

// Pool returns the shared connection pool, connecting on the first call.
func (a *App) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}
	pool, err := postgresql.ConnectDB(ctx, a.Config.Postgres.DSN, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("conexão com o banco: %w", err)
	}
	a.pool = pool
	return pool, nil
}

// Close releases the pool if it was opened.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// NewRootCmd creates the top-level "semapa-admin" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "semapa-admin",
		Short:         "Manutenção do banco do SEMAPA",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newSeedCmd(app),
		newImportCmd(app),
	)

	return root
}
