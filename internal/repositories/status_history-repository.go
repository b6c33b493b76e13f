package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"semapa/internal/entities"
)

type StatusHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.StatusHistory) error
	FindByEntity(ctx context.Context, entidade string, entidadeID uint64) ([]entities.StatusHistory, error)
}

type StatusHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewStatusHistoryRepository(storage *pgxpool.Pool) StatusHistoryRepositoryInterface {
	return &StatusHistoryRepository{storage: storage}
}

func (r *StatusHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.StatusHistory) error {
	query := `
		INSERT INTO status_historico (entidade, entidade_id, acao, status_anterior, status_novo, comentario, usuario_id, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := tx.QueryRow(ctx, query, h.Entidade, h.EntidadeID, h.Acao, h.StatusAnterior, h.StatusNovo,
		h.Comentario, h.UsuarioID, h.CriadoEm).Scan(&h.ID)
	return mapDBError(err, "histórico", 0)
}

func (r *StatusHistoryRepository) FindByEntity(ctx context.Context, entidade string, entidadeID uint64) ([]entities.StatusHistory, error) {
	query := `
		SELECT id, entidade, entidade_id, acao, status_anterior, status_novo, comentario, usuario_id, criado_em
		FROM status_historico
		WHERE entidade = $1 AND entidade_id = $2
		ORDER BY criado_em ASC, id ASC`
	rows, err := r.storage.Query(ctx, query, entidade, entidadeID)
	if err != nil {
		return nil, mapDBError(err, "histórico", entidadeID)
	}
	defer rows.Close()

	history := make([]entities.StatusHistory, 0)
	for rows.Next() {
		var h entities.StatusHistory
		if err := rows.Scan(&h.ID, &h.Entidade, &h.EntidadeID, &h.Acao, &h.StatusAnterior, &h.StatusNovo,
			&h.Comentario, &h.UsuarioID, &h.CriadoEm); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
