package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// updateIfExistsEspecies switches between refreshing existing rows and leaving them untouched.
const updateIfExistsEspecies = false

func seedEspecies(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	query := `INSERT INTO especies (nome_popular, nome_cientifico, porte, altura_min, altura_max,
			deciduidade, cor_flor, epoca_floracao, fruto_comestivel, atrai_fauna)
		VALUES (@nome_popular, @nome_cientifico, @porte, @altura_min, @altura_max,
			@deciduidade, @cor_flor, @epoca_floracao, @fruto_comestivel, @atrai_fauna)
		ON CONFLICT (nome_popular) DO NOTHING`
	if updateIfExistsEspecies {
		query = `INSERT INTO especies (nome_popular, nome_cientifico, porte, altura_min, altura_max,
				deciduidade, cor_flor, epoca_floracao, fruto_comestivel, atrai_fauna)
			VALUES (@nome_popular, @nome_cientifico, @porte, @altura_min, @altura_max,
				@deciduidade, @cor_flor, @epoca_floracao, @fruto_comestivel, @atrai_fauna)
			ON CONFLICT (nome_popular) DO UPDATE SET
				nome_cientifico = EXCLUDED.nome_cientifico,
				porte = EXCLUDED.porte,
				altura_min = EXCLUDED.altura_min,
				altura_max = EXCLUDED.altura_max,
				data_atualizacao = NOW()`
	}

	batch := &pgx.Batch{}
	for _, e := range especiesData {
		batch.Queue(query, pgx.NamedArgs{
			"nome_popular":     e.NomePopular,
			"nome_cientifico":  e.NomeCientifico,
			"porte":            e.Porte,
			"altura_min":       e.AlturaMin,
			"altura_max":       e.AlturaMax,
			"deciduidade":      e.Deciduidade,
			"cor_flor":         e.CorFlor,
			"epoca_floracao":   e.EpocaFloracao,
			"fruto_comestivel": e.FrutoComestivel,
			"atrai_fauna":      e.AtraiFauna,
		})
	}

	results := db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for _, e := range especiesData {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("espécie %q: %w", e.NomePopular, err)
		}
		inserted += tag.RowsAffected()
	}

	logger.Info("Catálogo de espécies carregado",
		zap.Int("total", len(especiesData)),
		zap.Int64("gravadas", inserted),
	)
	return nil
}
