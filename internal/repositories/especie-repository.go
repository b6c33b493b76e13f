package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/types"
)

const (
	especieTable  = "especies"
	especieFields = `id, nome_popular, nome_cientifico, porte, altura_min, altura_max, longevidade_min, longevidade_max,
		deciduidade, cor_flor, epoca_floracao, fruto_comestivel, epoca_frutificacao, necessidade_rega, atrai_fauna,
		observacoes, link_foto, criado_por, data_criacao, atualizado_por, data_atualizacao`
)

var especieListSpec = listSpec{
	Table:         especieTable,
	SearchColumns: []string{"nome_popular", "nome_cientifico"},
	Filters: map[string]filterColumn{
		"porte": {Column: "porte", Kind: filterText},
	},
	SortColumns: map[string]string{"id": "id", "nome_popular": "nome_popular", "nome_cientifico": "nome_cientifico", "data_criacao": "data_criacao"},
	DefaultSort: "nome_popular ASC",
}

type EspecieRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Especie, error)
	FindByNomePopular(ctx context.Context, nome string) (*entities.Especie, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Especie, uint64, error)
	Create(ctx context.Context, especie *entities.Especie) (uint64, error)
	Update(ctx context.Context, especie *entities.Especie) error
	Delete(ctx context.Context, id uint64) error
	CountArvores(ctx context.Context, id uint64) (int64, error)
	CountVistorias(ctx context.Context, id uint64) (int64, error)
	// ArvoresPorEspecie returns tree counts keyed by species id; species without trees are absent.
	ArvoresPorEspecie(ctx context.Context) (map[uint64]int64, error)
}

type EspecieRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEspecieRepository(storage *pgxpool.Pool, logger *zap.Logger) EspecieRepositoryInterface {
	return &EspecieRepository{storage: storage, logger: logger}
}

func scanEspecie(row pgx.Row) (entities.Especie, error) {
	var e entities.Especie
	err := row.Scan(
		&e.ID, &e.NomePopular, &e.NomeCientifico, &e.Porte, &e.AlturaMin, &e.AlturaMax, &e.LongevidadeMin, &e.LongevidadeMax,
		&e.Deciduidade, &e.CorFlor, &e.EpocaFloracao, &e.FrutoComestivel, &e.EpocaFrutificacao, &e.NecessidadeRega, &e.AtraiFauna,
		&e.Observacoes, &e.LinkFoto, &e.CriadoPor, &e.DataCriacao, &e.AtualizadoPor, &e.DataAtualizacao,
	)
	return e, err
}

func especieArgs(e *entities.Especie) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                 e.ID,
		"nome_popular":       e.NomePopular,
		"nome_cientifico":    e.NomeCientifico,
		"porte":              e.Porte,
		"altura_min":         e.AlturaMin,
		"altura_max":         e.AlturaMax,
		"longevidade_min":    e.LongevidadeMin,
		"longevidade_max":    e.LongevidadeMax,
		"deciduidade":        e.Deciduidade,
		"cor_flor":           e.CorFlor,
		"epoca_floracao":     e.EpocaFloracao,
		"fruto_comestivel":   e.FrutoComestivel,
		"epoca_frutificacao": e.EpocaFrutificacao,
		"necessidade_rega":   e.NecessidadeRega,
		"atrai_fauna":        e.AtraiFauna,
		"observacoes":        e.Observacoes,
		"link_foto":          e.LinkFoto,
		"criado_por":         e.CriadoPor,
		"data_criacao":       e.DataCriacao,
		"atualizado_por":     e.AtualizadoPor,
		"data_atualizacao":   e.DataAtualizacao,
	}
}

func (r *EspecieRepository) FindByID(ctx context.Context, id uint64) (*entities.Especie, error) {
	e, err := scanEspecie(r.storage.QueryRow(ctx, "SELECT "+especieFields+" FROM especies WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "espécie", id)
	}
	return &e, nil
}

func (r *EspecieRepository) FindByNomePopular(ctx context.Context, nome string) (*entities.Especie, error) {
	e, err := scanEspecie(r.storage.QueryRow(ctx, "SELECT "+especieFields+" FROM especies WHERE LOWER(nome_popular) = LOWER($1)", nome))
	if err != nil {
		return nil, mapDBError(err, "espécie", 0)
	}
	return &e, nil
}

func (r *EspecieRepository) List(ctx context.Context, filter types.Filter) ([]entities.Especie, uint64, error) {
	return list(ctx, r.storage, especieListSpec, especieFields, filter, func(rows pgx.Rows) (entities.Especie, error) {
		return scanEspecie(rows)
	})
}

func (r *EspecieRepository) Create(ctx context.Context, especie *entities.Especie) (uint64, error) {
	query := `
		INSERT INTO especies (nome_popular, nome_cientifico, porte, altura_min, altura_max, longevidade_min, longevidade_max,
			deciduidade, cor_flor, epoca_floracao, fruto_comestivel, epoca_frutificacao, necessidade_rega, atrai_fauna,
			observacoes, link_foto, criado_por, data_criacao)
		VALUES (@nome_popular, @nome_cientifico, @porte, @altura_min, @altura_max, @longevidade_min, @longevidade_max,
			@deciduidade, @cor_flor, @epoca_floracao, @fruto_comestivel, @epoca_frutificacao, @necessidade_rega, @atrai_fauna,
			@observacoes, @link_foto, @criado_por, @data_criacao)
		RETURNING id`
	var id uint64
	if err := r.storage.QueryRow(ctx, query, especieArgs(especie)).Scan(&id); err != nil {
		return 0, mapDBError(err, "espécie", 0)
	}
	return id, nil
}

func (r *EspecieRepository) Update(ctx context.Context, especie *entities.Especie) error {
	query := `
		UPDATE especies SET nome_popular = @nome_popular, nome_cientifico = @nome_cientifico, porte = @porte,
			altura_min = @altura_min, altura_max = @altura_max, longevidade_min = @longevidade_min, longevidade_max = @longevidade_max,
			deciduidade = @deciduidade, cor_flor = @cor_flor, epoca_floracao = @epoca_floracao, fruto_comestivel = @fruto_comestivel,
			epoca_frutificacao = @epoca_frutificacao, necessidade_rega = @necessidade_rega, atrai_fauna = @atrai_fauna,
			observacoes = @observacoes, link_foto = @link_foto, atualizado_por = @atualizado_por, data_atualizacao = @data_atualizacao
		WHERE id = @id`
	tag, err := r.storage.Exec(ctx, query, especieArgs(especie))
	if err != nil {
		return mapDBError(err, "espécie", especie.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "espécie", especie.ID)
	}
	return nil
}

func (r *EspecieRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM especies WHERE id = $1", id)
	if err != nil {
		return mapDBError(err, "espécie", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "espécie", id)
	}
	return nil
}

func (r *EspecieRepository) CountArvores(ctx context.Context, id uint64) (int64, error) {
	return countWhere(ctx, r.storage, arvoreTable, sq.Eq{"especie_id": id})
}

func (r *EspecieRepository) CountVistorias(ctx context.Context, id uint64) (int64, error) {
	return countWhere(ctx, r.storage, vistoriaTable, sq.Eq{"especie_id": id})
}

func (r *EspecieRepository) ArvoresPorEspecie(ctx context.Context) (map[uint64]int64, error) {
	rows, err := r.storage.Query(ctx, "SELECT especie_id, COUNT(*) FROM arvores WHERE especie_id IS NOT NULL GROUP BY especie_id")
	if err != nil {
		return nil, mapDBError(err, "espécie", 0)
	}
	defer rows.Close()

	result := make(map[uint64]int64)
	for rows.Next() {
		var id uint64
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		result[id] = n
	}
	return result, rows.Err()
}
