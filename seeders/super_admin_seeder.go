package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/pkg/config"
	"semapa/pkg/utils"
)

// seedSuperAdmin creates the first level 4 account. An existing e-mail is left as is.
func seedSuperAdmin(ctx context.Context, db *pgxpool.Pool, cfg config.SeedConfig, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return errors.New("SEED_ADMIN_EMAIL e SEED_ADMIN_PASSWORD são obrigatórios")
	}

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", cfg.AdminEmail).Scan(&exists); err != nil {
		return err
	}
	if exists {
		logger.Info("Super administrador já existe, nada a fazer", zap.String("email", cfg.AdminEmail))
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash da senha: %w", err)
	}

	var id uint64
	err = db.QueryRow(ctx,
		`INSERT INTO users (nome, email, password, nivel, ativo) VALUES ($1, $2, $3, $4, TRUE) RETURNING id`,
		cfg.AdminNome, cfg.AdminEmail, hashedPassword, int(authz.LevelSuperAdmin),
	).Scan(&id)
	if err != nil {
		return err
	}

	logger.Info("Super administrador criado", zap.Uint64("id", id), zap.String("email", cfg.AdminEmail))
	return nil
}
