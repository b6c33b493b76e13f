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
	arvoreTable  = "arvores"
	arvoreFields = `id, endereco, bairro, latitude, longitude, data_plantio, altura, dap, foto, observacao, especie_id,
		criado_por, data_criacao, atualizado_por, data_atualizacao`
)

var arvoreListSpec = listSpec{
	Table:         arvoreTable,
	SearchColumns: []string{"endereco", "bairro"},
	Filters: map[string]filterColumn{
		"especie_id": {Column: "especie_id", Kind: filterID},
		"bairro":     {Column: "bairro", Kind: filterText},
	},
	Custom: map[string]func(value interface{}) (sq.Sqlizer, error){
		"geolocalizada": func(value interface{}) (sq.Sqlizer, error) {
			if filterValues(value)[0] != "true" {
				return nil, nil
			}
			return sq.And{sq.NotEq{"latitude": nil}, sq.NotEq{"longitude": nil}}, nil
		},
	},
	SortColumns: map[string]string{"id": "id", "endereco": "endereco", "bairro": "bairro", "data_plantio": "data_plantio", "data_criacao": "data_criacao"},
	DefaultSort: "id DESC",
}

type ArvoreRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Arvore, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Arvore, uint64, error)
	Create(ctx context.Context, arvore *entities.Arvore) (uint64, error)
	Update(ctx context.Context, arvore *entities.Arvore) error
	Delete(ctx context.Context, id uint64) error
	CountRequerimentos(ctx context.Context, id uint64) (int64, error)
	CountVistorias(ctx context.Context, id uint64) (int64, error)
}

type ArvoreRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewArvoreRepository(storage *pgxpool.Pool, logger *zap.Logger) ArvoreRepositoryInterface {
	return &ArvoreRepository{storage: storage, logger: logger}
}

func scanArvore(row pgx.Row) (entities.Arvore, error) {
	var a entities.Arvore
	err := row.Scan(&a.ID, &a.Endereco, &a.Bairro, &a.Latitude, &a.Longitude, &a.DataPlantio, &a.Altura, &a.DAP,
		&a.Foto, &a.Observacao, &a.EspecieID, &a.CriadoPor, &a.DataCriacao, &a.AtualizadoPor, &a.DataAtualizacao)
	return a, err
}

func (r *ArvoreRepository) FindByID(ctx context.Context, id uint64) (*entities.Arvore, error) {
	a, err := scanArvore(r.storage.QueryRow(ctx, "SELECT "+arvoreFields+" FROM arvores WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "árvore", id)
	}
	return &a, nil
}

func (r *ArvoreRepository) List(ctx context.Context, filter types.Filter) ([]entities.Arvore, uint64, error) {
	return list(ctx, r.storage, arvoreListSpec, arvoreFields, filter, func(rows pgx.Rows) (entities.Arvore, error) {
		return scanArvore(rows)
	})
}

func (r *ArvoreRepository) Create(ctx context.Context, a *entities.Arvore) (uint64, error) {
	query := `
		INSERT INTO arvores (endereco, bairro, latitude, longitude, data_plantio, altura, dap, foto, observacao, especie_id,
			criado_por, data_criacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query, a.Endereco, a.Bairro, a.Latitude, a.Longitude, a.DataPlantio, a.Altura, a.DAP,
		a.Foto, a.Observacao, a.EspecieID, a.CriadoPor, a.DataCriacao).Scan(&id)
	if err != nil {
		return 0, mapDBError(err, "árvore", 0)
	}
	return id, nil
}

func (r *ArvoreRepository) Update(ctx context.Context, a *entities.Arvore) error {
	query := `
		UPDATE arvores SET endereco = $1, bairro = $2, latitude = $3, longitude = $4, data_plantio = $5, altura = $6,
			dap = $7, foto = $8, observacao = $9, especie_id = $10, atualizado_por = $11, data_atualizacao = $12
		WHERE id = $13`
	tag, err := r.storage.Exec(ctx, query, a.Endereco, a.Bairro, a.Latitude, a.Longitude, a.DataPlantio, a.Altura, a.DAP,
		a.Foto, a.Observacao, a.EspecieID, a.AtualizadoPor, a.DataAtualizacao, a.ID)
	if err != nil {
		return mapDBError(err, "árvore", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "árvore", a.ID)
	}
	return nil
}

func (r *ArvoreRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM arvores WHERE id = $1", id)
	if err != nil {
		return mapDBError(err, "árvore", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "árvore", id)
	}
	return nil
}

func (r *ArvoreRepository) CountRequerimentos(ctx context.Context, id uint64) (int64, error) {
	return countWhere(ctx, r.storage, requerimentoTable, sq.Eq{"arvore_id": id})
}

func (r *ArvoreRepository) CountVistorias(ctx context.Context, id uint64) (int64, error) {
	return countWhere(ctx, r.storage, vistoriaTable, sq.Eq{"arvore_id": id})
}
