package repositories

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

const (
	ordemServicoTable  = "ordens_servico"
	ordemServicoFields = `id, numero, status, prioridade, responsavel_id, data_emissao, data_programada, data_inicio,
		data_execucao, data_cancelamento, observacao, relatorio, motivo_pausa, motivo_cancelamento,
		custo_estimado, custo_real, criado_por, data_criacao, atualizado_por, data_atualizacao,
		COALESCE((SELECT array_agg(osr.requerimento_id ORDER BY osr.requerimento_id)
			FROM ordem_servico_requerimento osr WHERE osr.ordem_servico_id = ordens_servico.id), '{}') AS requerimento_ids`
)

var ordemServicoListSpec = listSpec{
	Table:         ordemServicoTable,
	SearchColumns: []string{"numero", "observacao"},
	Filters: map[string]filterColumn{
		"status":         {Column: "status", Kind: filterText},
		"prioridade":     {Column: "prioridade", Kind: filterText},
		"responsavel_id": {Column: "responsavel_id", Kind: filterID},
		"data_inicio":    {Column: "data_emissao", Kind: filterDateFrom},
		"data_fim":       {Column: "data_emissao", Kind: filterDateTo},
	},
	Custom: map[string]func(value interface{}) (sq.Sqlizer, error){
		"requerimento_id": func(value interface{}) (sq.Sqlizer, error) {
			id, err := strconv.ParseUint(filterValues(value)[0], 10, 64)
			if err != nil {
				return nil, apperrors.NewValidationError("requerimento_id", "valor inválido")
			}
			return sq.Expr("id IN (SELECT ordem_servico_id FROM ordem_servico_requerimento WHERE requerimento_id = ?)", id), nil
		},
		"atrasadas": func(value interface{}) (sq.Sqlizer, error) {
			if filterValues(value)[0] != "true" {
				return nil, nil
			}
			return sq.And{
				sq.Eq{"status": constants.ActiveOrdemServicoStatuses},
				sq.Expr("data_programada < CURRENT_DATE"),
			}, nil
		},
	},
	SortColumns: map[string]string{"id": "id", "numero": "numero", "data_emissao": "data_emissao", "data_programada": "data_programada", "prioridade": "prioridade", "status": "status"},
	DefaultSort: "data_emissao DESC, id DESC",
}

type OrdemServicoRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.OrdemServico, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.OrdemServico, error)
	List(ctx context.Context, filter types.Filter) ([]entities.OrdemServico, uint64, error)
	// CreateInTx inserts the order and its request links.
	CreateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) (uint64, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error
	// UpdateStatusInTx writes only the lifecycle and assignment columns.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error
	// CountActiveByRequerimento counts pendente/em_andamento orders linked to the request, ignoring excludeID.
	CountActiveByRequerimento(ctx context.Context, tx pgx.Tx, requerimentoID, excludeID uint64) (int64, error)
	CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type OrdemServicoRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrdemServicoRepository(storage *pgxpool.Pool, logger *zap.Logger) OrdemServicoRepositoryInterface {
	return &OrdemServicoRepository{storage: storage, logger: logger}
}

func scanOrdemServico(row pgx.Row) (entities.OrdemServico, error) {
	var o entities.OrdemServico
	var reqIDs []int64
	err := row.Scan(&o.ID, &o.Numero, &o.Status, &o.Prioridade, &o.ResponsavelID, &o.DataEmissao, &o.DataProgramada,
		&o.DataInicio, &o.DataExecucao, &o.DataCancelamento, &o.Observacao, &o.Relatorio, &o.MotivoPausa,
		&o.MotivoCancelamento, &o.CustoEstimado, &o.CustoReal, &o.CriadoPor, &o.DataCriacao, &o.AtualizadoPor,
		&o.DataAtualizacao, &reqIDs)
	if err != nil {
		return o, err
	}
	o.RequerimentoIDs = make([]uint64, 0, len(reqIDs))
	for _, id := range reqIDs {
		o.RequerimentoIDs = append(o.RequerimentoIDs, uint64(id))
	}
	return o, nil
}

func (r *OrdemServicoRepository) FindByID(ctx context.Context, id uint64) (*entities.OrdemServico, error) {
	o, err := scanOrdemServico(r.storage.QueryRow(ctx, "SELECT "+ordemServicoFields+" FROM ordens_servico WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "ordem de serviço", id)
	}
	return &o, nil
}

func (r *OrdemServicoRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.OrdemServico, error) {
	o, err := scanOrdemServico(tx.QueryRow(ctx, "SELECT "+ordemServicoFields+" FROM ordens_servico WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, mapDBError(err, "ordem de serviço", id)
	}
	return &o, nil
}

func (r *OrdemServicoRepository) List(ctx context.Context, filter types.Filter) ([]entities.OrdemServico, uint64, error) {
	return list(ctx, r.storage, ordemServicoListSpec, ordemServicoFields, filter, func(rows pgx.Rows) (entities.OrdemServico, error) {
		return scanOrdemServico(rows)
	})
}

func (r *OrdemServicoRepository) CreateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) (uint64, error) {
	query := `
		INSERT INTO ordens_servico (numero, status, prioridade, responsavel_id, data_emissao, data_programada,
			observacao, custo_estimado, criado_por, data_criacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query, o.Numero, o.Status, o.Prioridade, o.ResponsavelID, o.DataEmissao, o.DataProgramada,
		o.Observacao, o.CustoEstimado, o.CriadoPor, o.DataCriacao).Scan(&id)
	if err != nil {
		return 0, mapDBError(err, "ordem de serviço", 0)
	}

	batch := &pgx.Batch{}
	for _, reqID := range o.RequerimentoIDs {
		batch.Queue("INSERT INTO ordem_servico_requerimento (ordem_servico_id, requerimento_id) VALUES ($1, $2)", id, reqID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, mapDBError(err, "ordem de serviço", id)
	}
	return id, nil
}

func (r *OrdemServicoRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error {
	query := `
		UPDATE ordens_servico SET prioridade = $1, data_programada = $2, observacao = $3, custo_estimado = $4,
			atualizado_por = $5, data_atualizacao = $6
		WHERE id = $7`
	tag, err := tx.Exec(ctx, query, o.Prioridade, o.DataProgramada, o.Observacao, o.CustoEstimado,
		o.AtualizadoPor, o.DataAtualizacao, o.ID)
	if err != nil {
		return mapDBError(err, "ordem de serviço", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "ordem de serviço", o.ID)
	}
	return nil
}

func (r *OrdemServicoRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error {
	query := `
		UPDATE ordens_servico SET status = $1, responsavel_id = $2, data_inicio = $3, data_execucao = $4,
			data_cancelamento = $5, relatorio = $6, motivo_pausa = $7, motivo_cancelamento = $8, custo_real = $9,
			atualizado_por = $10, data_atualizacao = $11
		WHERE id = $12`
	tag, err := tx.Exec(ctx, query, o.Status, o.ResponsavelID, o.DataInicio, o.DataExecucao, o.DataCancelamento,
		o.Relatorio, o.MotivoPausa, o.MotivoCancelamento, o.CustoReal, o.AtualizadoPor, o.DataAtualizacao, o.ID)
	if err != nil {
		return mapDBError(err, "ordem de serviço", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "ordem de serviço", o.ID)
	}
	return nil
}

func (r *OrdemServicoRepository) CountActiveByRequerimento(ctx context.Context, tx pgx.Tx, requerimentoID, excludeID uint64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM ordens_servico os
		JOIN ordem_servico_requerimento osr ON osr.ordem_servico_id = os.id
		WHERE osr.requerimento_id = $1 AND os.status = ANY($2) AND os.id <> $3`
	var n int64
	if err := pick(r.storage, tx).QueryRow(ctx, query, requerimentoID, constants.ActiveOrdemServicoStatuses, excludeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("contar ordens ativas do requerimento %d: %w", requerimentoID, err)
	}
	return n, nil
}

func (r *OrdemServicoRepository) CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error) {
	return countWhere(ctx, r.storage, "ordem_servico_requerimento", sq.Eq{"requerimento_id": requerimentoID})
}

func (r *OrdemServicoRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.storage, ordemServicoTable)
}
