package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/types"
)

const (
	vistoriaTable  = "vistorias"
	vistoriaFields = `id, requerimento_id, ordem_servico_id, arvore_id, tecnico_id, data_vistoria, status, data_inicio,
		data_execucao, data_cancelamento, observacoes, especie_id, condicoes, conflitos, risco_queda, diagnostico,
		acao_recomendada, tipo_poda, galhos_cortar, medidas_seguranca, observacoes_tecnicas, motivo_cancelamento,
		motivo_reagendamento, criado_por, data_criacao, atualizado_por, data_atualizacao`
	vistoriaFotoFields = "id, vistoria_id, arquivo_nome, caminho, tamanho, criado_por, data_criacao"
)

var vistoriaListSpec = listSpec{
	Table:         vistoriaTable,
	SearchColumns: []string{"observacoes", "diagnostico"},
	Filters: map[string]filterColumn{
		"status":           {Column: "status", Kind: filterText},
		"tecnico_id":       {Column: "tecnico_id", Kind: filterID},
		"requerimento_id":  {Column: "requerimento_id", Kind: filterID},
		"ordem_servico_id": {Column: "ordem_servico_id", Kind: filterID},
		"arvore_id":        {Column: "arvore_id", Kind: filterID},
		"risco_queda":      {Column: "risco_queda", Kind: filterText},
		"data_inicio":      {Column: "data_vistoria", Kind: filterDateFrom},
		"data_fim":         {Column: "data_vistoria", Kind: filterDateTo},
	},
	SortColumns: map[string]string{"id": "id", "data_vistoria": "data_vistoria", "status": "status"},
	DefaultSort: "data_vistoria DESC, id DESC",
}

type VistoriaRepositoryInterface interface {
	// FindByID loads the inspection with its photos.
	FindByID(ctx context.Context, id uint64) (*entities.Vistoria, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Vistoria, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Vistoria, uint64, error)
	ListByOrdemServico(ctx context.Context, ordemServicoID uint64) ([]entities.Vistoria, error)
	// Agenda lists inspections scheduled in [from, to), optionally for one technician.
	Agenda(ctx context.Context, from, to time.Time, tecnicoID *uint64) ([]entities.Vistoria, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) (uint64, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error
	// UpdateStatusInTx writes lifecycle columns, schedule and findings.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	AddFotoInTx(ctx context.Context, tx pgx.Tx, foto *entities.VistoriaFoto) error
	ListFotos(ctx context.Context, vistoriaID uint64) ([]entities.VistoriaFoto, error)
	CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type VistoriaRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewVistoriaRepository(storage *pgxpool.Pool, logger *zap.Logger) VistoriaRepositoryInterface {
	return &VistoriaRepository{storage: storage, logger: logger}
}

func scanVistoria(row pgx.Row) (entities.Vistoria, error) {
	var v entities.Vistoria
	f := &v.VistoriaFindings
	err := row.Scan(&v.ID, &v.RequerimentoID, &v.OrdemServicoID, &v.ArvoreID, &v.TecnicoID, &v.DataVistoria, &v.Status,
		&v.DataInicio, &v.DataExecucao, &v.DataCancelamento, &f.Observacoes, &f.EspecieID, &f.Condicoes, &f.Conflitos,
		&f.RiscoQueda, &f.Diagnostico, &f.AcaoRecomendada, &f.TipoPoda, &f.GalhosCortar, &f.MedidasSeguranca,
		&f.ObservacoesTecnicas, &v.MotivoCancelamento, &v.MotivoReagendamento, &v.CriadoPor, &v.DataCriacao,
		&v.AtualizadoPor, &v.DataAtualizacao)
	v.Fotos = []entities.VistoriaFoto{}
	return v, err
}

func (r *VistoriaRepository) FindByID(ctx context.Context, id uint64) (*entities.Vistoria, error) {
	v, err := scanVistoria(r.storage.QueryRow(ctx, "SELECT "+vistoriaFields+" FROM vistorias WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "vistoria", id)
	}
	fotos, err := r.ListFotos(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Fotos = fotos
	return &v, nil
}

func (r *VistoriaRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Vistoria, error) {
	v, err := scanVistoria(tx.QueryRow(ctx, "SELECT "+vistoriaFields+" FROM vistorias WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, mapDBError(err, "vistoria", id)
	}
	return &v, nil
}

func (r *VistoriaRepository) List(ctx context.Context, filter types.Filter) ([]entities.Vistoria, uint64, error) {
	return list(ctx, r.storage, vistoriaListSpec, vistoriaFields, filter, func(rows pgx.Rows) (entities.Vistoria, error) {
		return scanVistoria(rows)
	})
}

func (r *VistoriaRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.Vistoria, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vistorias: consultar: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Vistoria, 0)
	for rows.Next() {
		v, err := scanVistoria(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *VistoriaRepository) ListByOrdemServico(ctx context.Context, ordemServicoID uint64) ([]entities.Vistoria, error) {
	return r.query(ctx, psql.Select(vistoriaFields).From(vistoriaTable).
		Where(sq.Eq{"ordem_servico_id": ordemServicoID}).
		OrderBy("data_vistoria ASC", "id ASC"))
}

func (r *VistoriaRepository) Agenda(ctx context.Context, from, to time.Time, tecnicoID *uint64) ([]entities.Vistoria, error) {
	builder := psql.Select(vistoriaFields).From(vistoriaTable).
		Where(sq.GtOrEq{"data_vistoria": from}).
		Where(sq.Lt{"data_vistoria": to}).
		OrderBy("data_vistoria ASC", "id ASC")
	if tecnicoID != nil {
		builder = builder.Where(sq.Eq{"tecnico_id": *tecnicoID})
	}
	return r.query(ctx, builder)
}

func (r *VistoriaRepository) CreateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) (uint64, error) {
	query := `
		INSERT INTO vistorias (requerimento_id, ordem_servico_id, arvore_id, tecnico_id, data_vistoria, status,
			observacoes, criado_por, data_criacao)
		VALUES (@requerimento_id, @ordem_servico_id, @arvore_id, @tecnico_id, @data_vistoria, @status,
			@observacoes, @criado_por, @data_criacao)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query, pgx.NamedArgs{
		"requerimento_id":  v.RequerimentoID,
		"ordem_servico_id": v.OrdemServicoID,
		"arvore_id":        v.ArvoreID,
		"tecnico_id":       v.TecnicoID,
		"data_vistoria":    v.DataVistoria,
		"status":           v.Status,
		"observacoes":      v.Observacoes,
		"criado_por":       v.CriadoPor,
		"data_criacao":     v.DataCriacao,
	}).Scan(&id)
	if err != nil {
		return 0, mapDBError(err, "vistoria", 0)
	}
	return id, nil
}

func (r *VistoriaRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error {
	query := `
		UPDATE vistorias SET tecnico_id = $1, arvore_id = $2, data_vistoria = $3, observacoes = $4,
			atualizado_por = $5, data_atualizacao = $6
		WHERE id = $7`
	tag, err := tx.Exec(ctx, query, v.TecnicoID, v.ArvoreID, v.DataVistoria, v.Observacoes,
		v.AtualizadoPor, v.DataAtualizacao, v.ID)
	if err != nil {
		return mapDBError(err, "vistoria", v.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "vistoria", v.ID)
	}
	return nil
}

func (r *VistoriaRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error {
	f := v.VistoriaFindings
	query := `
		UPDATE vistorias SET status = @status, data_vistoria = @data_vistoria, data_inicio = @data_inicio,
			data_execucao = @data_execucao, data_cancelamento = @data_cancelamento,
			motivo_cancelamento = @motivo_cancelamento, motivo_reagendamento = @motivo_reagendamento,
			observacoes = @observacoes, especie_id = @especie_id, condicoes = @condicoes, conflitos = @conflitos,
			risco_queda = @risco_queda, diagnostico = @diagnostico, acao_recomendada = @acao_recomendada,
			tipo_poda = @tipo_poda, galhos_cortar = @galhos_cortar, medidas_seguranca = @medidas_seguranca,
			observacoes_tecnicas = @observacoes_tecnicas, atualizado_por = @atualizado_por,
			data_atualizacao = @data_atualizacao
		WHERE id = @id`
	tag, err := tx.Exec(ctx, query, pgx.NamedArgs{
		"status":               v.Status,
		"data_vistoria":        v.DataVistoria,
		"data_inicio":          v.DataInicio,
		"data_execucao":        v.DataExecucao,
		"data_cancelamento":    v.DataCancelamento,
		"motivo_cancelamento":  v.MotivoCancelamento,
		"motivo_reagendamento": v.MotivoReagendamento,
		"observacoes":          f.Observacoes,
		"especie_id":           f.EspecieID,
		"condicoes":            f.Condicoes,
		"conflitos":            f.Conflitos,
		"risco_queda":          f.RiscoQueda,
		"diagnostico":          f.Diagnostico,
		"acao_recomendada":     f.AcaoRecomendada,
		"tipo_poda":            f.TipoPoda,
		"galhos_cortar":        f.GalhosCortar,
		"medidas_seguranca":    f.MedidasSeguranca,
		"observacoes_tecnicas": f.ObservacoesTecnicas,
		"atualizado_por":       v.AtualizadoPor,
		"data_atualizacao":     v.DataAtualizacao,
		"id":                   v.ID,
	})
	if err != nil {
		return mapDBError(err, "vistoria", v.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "vistoria", v.ID)
	}
	return nil
}

func (r *VistoriaRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx, "DELETE FROM vistorias WHERE id = $1", id)
	if err != nil {
		return mapDBError(err, "vistoria", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "vistoria", id)
	}
	return nil
}

func (r *VistoriaRepository) AddFotoInTx(ctx context.Context, tx pgx.Tx, foto *entities.VistoriaFoto) error {
	query := `
		INSERT INTO vistoria_fotos (vistoria_id, arquivo_nome, caminho, tamanho, criado_por, data_criacao)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := tx.QueryRow(ctx, query, foto.VistoriaID, foto.ArquivoNome, foto.Caminho, foto.Tamanho,
		foto.CriadoPor, foto.DataCriacao).Scan(&foto.ID)
	if err != nil {
		return mapDBError(err, "foto da vistoria", foto.VistoriaID)
	}
	return nil
}

func (r *VistoriaRepository) ListFotos(ctx context.Context, vistoriaID uint64) ([]entities.VistoriaFoto, error) {
	rows, err := r.storage.Query(ctx, "SELECT "+vistoriaFotoFields+" FROM vistoria_fotos WHERE vistoria_id = $1 ORDER BY id", vistoriaID)
	if err != nil {
		return nil, fmt.Errorf("vistoria %d: listar fotos: %w", vistoriaID, err)
	}
	defer rows.Close()

	fotos := make([]entities.VistoriaFoto, 0)
	for rows.Next() {
		var f entities.VistoriaFoto
		if err := rows.Scan(&f.ID, &f.VistoriaID, &f.ArquivoNome, &f.Caminho, &f.Tamanho, &f.CriadoPor, &f.DataCriacao); err != nil {
			return nil, err
		}
		fotos = append(fotos, f)
	}
	return fotos, rows.Err()
}

func (r *VistoriaRepository) CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error) {
	return countWhere(ctx, r.storage, vistoriaTable, sq.Eq{"requerimento_id": requerimentoID})
}

func (r *VistoriaRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.storage, vistoriaTable)
}
