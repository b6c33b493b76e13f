package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type NumeracaoRepositoryInterface interface {
	// NextInTx returns the next sequence value for prefix within year.
	NextInTx(ctx context.Context, tx pgx.Tx, prefixo string, ano int) (int, error)
}

type NumeracaoRepository struct{}

func NewNumeracaoRepository() NumeracaoRepositoryInterface {
	return &NumeracaoRepository{}
}

func (r *NumeracaoRepository) NextInTx(ctx context.Context, tx pgx.Tx, prefixo string, ano int) (int, error) {
	query := `
		INSERT INTO numeracao (prefixo, ano, ultimo) VALUES ($1, $2, 1)
		ON CONFLICT (prefixo, ano) DO UPDATE SET ultimo = numeracao.ultimo + 1
		RETURNING ultimo`
	var next int
	if err := tx.QueryRow(ctx, query, prefixo, ano).Scan(&next); err != nil {
		return 0, fmt.Errorf("numeração %s/%d: %w", prefixo, ano, err)
	}
	return next, nil
}

// FormatNumero renders "PREFIX/YYYY/NNNN".
func FormatNumero(prefixo string, ano, seq int) string {
	return fmt.Sprintf("%s/%d/%04d", prefixo, ano, seq)
}
