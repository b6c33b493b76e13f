package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/types"
)

const (
	requerimentoTable  = "requerimentos"
	requerimentoFields = `id, numero, data_abertura, tipo, motivo, status, prioridade, requerente_id, arvore_id, observacao,
		motivo_decisao, decidido_por, data_decisao, data_conclusao, data_cancelamento,
		criado_por, data_criacao, atualizado_por, data_atualizacao`
)

var requerimentoListSpec = listSpec{
	Table:         requerimentoTable,
	SearchColumns: []string{"numero", "motivo", "observacao"},
	Filters: map[string]filterColumn{
		"status":        {Column: "status", Kind: filterText},
		"tipo":          {Column: "tipo", Kind: filterText},
		"prioridade":    {Column: "prioridade", Kind: filterText},
		"requerente_id": {Column: "requerente_id", Kind: filterID},
		"arvore_id":     {Column: "arvore_id", Kind: filterID},
		"criado_por":    {Column: "criado_por", Kind: filterID},
		"data_inicio":   {Column: "data_abertura", Kind: filterDateFrom},
		"data_fim":      {Column: "data_abertura", Kind: filterDateTo},
	},
	SortColumns: map[string]string{"id": "id", "numero": "numero", "data_abertura": "data_abertura", "prioridade": "prioridade", "status": "status"},
	DefaultSort: "data_abertura DESC, id DESC",
}

type RequerimentoRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Requerimento, error)
	// FindByIDForUpdate locks the row until tx ends.
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Requerimento, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Requerimento, uint64, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) (uint64, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) error
	// UpdateStatusInTx writes only the lifecycle columns.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type RequerimentoRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequerimentoRepository(storage *pgxpool.Pool, logger *zap.Logger) RequerimentoRepositoryInterface {
	return &RequerimentoRepository{storage: storage, logger: logger}
}

func scanRequerimento(row pgx.Row) (entities.Requerimento, error) {
	var r entities.Requerimento
	err := row.Scan(&r.ID, &r.Numero, &r.DataAbertura, &r.Tipo, &r.Motivo, &r.Status, &r.Prioridade, &r.RequerenteID,
		&r.ArvoreID, &r.Observacao, &r.MotivoDecisao, &r.DecididoPor, &r.DataDecisao, &r.DataConclusao, &r.DataCancelamento,
		&r.CriadoPor, &r.DataCriacao, &r.AtualizadoPor, &r.DataAtualizacao)
	return r, err
}

func (repo *RequerimentoRepository) FindByID(ctx context.Context, id uint64) (*entities.Requerimento, error) {
	r, err := scanRequerimento(repo.storage.QueryRow(ctx, "SELECT "+requerimentoFields+" FROM requerimentos WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "requerimento", id)
	}
	return &r, nil
}

func (repo *RequerimentoRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Requerimento, error) {
	r, err := scanRequerimento(tx.QueryRow(ctx, "SELECT "+requerimentoFields+" FROM requerimentos WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, mapDBError(err, "requerimento", id)
	}
	return &r, nil
}

func (repo *RequerimentoRepository) List(ctx context.Context, filter types.Filter) ([]entities.Requerimento, uint64, error) {
	return list(ctx, repo.storage, requerimentoListSpec, requerimentoFields, filter, func(rows pgx.Rows) (entities.Requerimento, error) {
		return scanRequerimento(rows)
	})
}

func (repo *RequerimentoRepository) CreateInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) (uint64, error) {
	query := `
		INSERT INTO requerimentos (numero, data_abertura, tipo, motivo, status, prioridade, requerente_id, arvore_id,
			observacao, criado_por, data_criacao)
		VALUES (@numero, @data_abertura, @tipo, @motivo, @status, @prioridade, @requerente_id, @arvore_id,
			@observacao, @criado_por, @data_criacao)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query, pgx.NamedArgs{
		"numero":        r.Numero,
		"data_abertura": r.DataAbertura,
		"tipo":          r.Tipo,
		"motivo":        r.Motivo,
		"status":        r.Status,
		"prioridade":    r.Prioridade,
		"requerente_id": r.RequerenteID,
		"arvore_id":     r.ArvoreID,
		"observacao":    r.Observacao,
		"criado_por":    r.CriadoPor,
		"data_criacao":  r.DataCriacao,
	}).Scan(&id)
	if err != nil {
		return 0, mapDBError(err, "requerimento", 0)
	}
	return id, nil
}

func (repo *RequerimentoRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) error {
	query := `
		UPDATE requerimentos SET tipo = $1, motivo = $2, prioridade = $3, requerente_id = $4, arvore_id = $5,
			observacao = $6, atualizado_por = $7, data_atualizacao = $8
		WHERE id = $9`
	tag, err := tx.Exec(ctx, query, r.Tipo, r.Motivo, r.Prioridade, r.RequerenteID, r.ArvoreID, r.Observacao,
		r.AtualizadoPor, r.DataAtualizacao, r.ID)
	if err != nil {
		return mapDBError(err, "requerimento", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "requerimento", r.ID)
	}
	return nil
}

func (repo *RequerimentoRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, r *entities.Requerimento) error {
	query := `
		UPDATE requerimentos SET status = $1, motivo_decisao = $2, decidido_por = $3, data_decisao = $4,
			data_conclusao = $5, data_cancelamento = $6, atualizado_por = $7, data_atualizacao = $8
		WHERE id = $9`
	tag, err := tx.Exec(ctx, query, r.Status, r.MotivoDecisao, r.DecididoPor, r.DataDecisao, r.DataConclusao,
		r.DataCancelamento, r.AtualizadoPor, r.DataAtualizacao, r.ID)
	if err != nil {
		return mapDBError(err, "requerimento", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "requerimento", r.ID)
	}
	return nil
}

func (repo *RequerimentoRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx, "DELETE FROM requerimentos WHERE id = $1", id)
	if err != nil {
		return mapDBError(err, "requerimento", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "requerimento", id)
	}
	return nil
}

func (repo *RequerimentoRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, repo.storage, requerimentoTable)
}

