package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/pkg/config"
)

// SeedCore fills the reference data that has no dependencies.
func SeedCore(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("Carregando dados de referência")
	if err := seedEspecies(ctx, db, logger); err != nil {
		return fmt.Errorf("espécies: %w", err)
	}
	return nil
}

// SeedAdmin creates the bootstrap super administrator from the seed config.
func SeedAdmin(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Criando super administrador")
	if err := seedSuperAdmin(ctx, db, cfg.Seed, logger); err != nil {
		return fmt.Errorf("super administrador: %w", err)
	}
	return nil
}
