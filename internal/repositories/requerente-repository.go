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
	requerenteTable  = "requerentes"
	requerenteFields = "id, nome, telefone, email, cpf_cnpj, tipo, endereco, observacao, criado_por, data_criacao, atualizado_por, data_atualizacao"
)

var requerenteListSpec = listSpec{
	Table:         requerenteTable,
	SearchColumns: []string{"nome", "telefone", "cpf_cnpj"},
	Filters: map[string]filterColumn{
		"tipo": {Column: "tipo", Kind: filterText},
	},
	SortColumns: map[string]string{"id": "id", "nome": "nome", "data_criacao": "data_criacao"},
	DefaultSort: "nome ASC",
}

type RequerenteRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Requerente, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Requerente, uint64, error)
	Create(ctx context.Context, requerente *entities.Requerente) (uint64, error)
	Update(ctx context.Context, requerente *entities.Requerente) error
	Delete(ctx context.Context, id uint64) error
	CountRequerimentos(ctx context.Context, id uint64) (int64, error)
}

type RequerenteRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequerenteRepository(storage *pgxpool.Pool, logger *zap.Logger) RequerenteRepositoryInterface {
	return &RequerenteRepository{storage: storage, logger: logger}
}

func scanRequerente(row pgx.Row) (entities.Requerente, error) {
	var e entities.Requerente
	err := row.Scan(&e.ID, &e.Nome, &e.Telefone, &e.Email, &e.CpfCnpj, &e.Tipo, &e.Endereco, &e.Observacao,
		&e.CriadoPor, &e.DataCriacao, &e.AtualizadoPor, &e.DataAtualizacao)
	return e, err
}

func (r *RequerenteRepository) FindByID(ctx context.Context, id uint64) (*entities.Requerente, error) {
	e, err := scanRequerente(r.storage.QueryRow(ctx, "SELECT "+requerenteFields+" FROM requerentes WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "requerente", id)
	}
	return &e, nil
}

func (r *RequerenteRepository) List(ctx context.Context, filter types.Filter) ([]entities.Requerente, uint64, error) {
	return list(ctx, r.storage, requerenteListSpec, requerenteFields, filter, func(rows pgx.Rows) (entities.Requerente, error) {
		return scanRequerente(rows)
	})
}

func (r *RequerenteRepository) Create(ctx context.Context, e *entities.Requerente) (uint64, error) {
	query := `
		INSERT INTO requerentes (nome, telefone, email, cpf_cnpj, tipo, endereco, observacao, criado_por, data_criacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query, e.Nome, e.Telefone, e.Email, e.CpfCnpj, e.Tipo, e.Endereco, e.Observacao,
		e.CriadoPor, e.DataCriacao).Scan(&id)
	if err != nil {
		return 0, mapDBError(err, "requerente", 0)
	}
	return id, nil
}

func (r *RequerenteRepository) Update(ctx context.Context, e *entities.Requerente) error {
	query := `
		UPDATE requerentes SET nome = $1, telefone = $2, email = $3, cpf_cnpj = $4, tipo = $5, endereco = $6,
			observacao = $7, atualizado_por = $8, data_atualizacao = $9
		WHERE id = $10`
	tag, err := r.storage.Exec(ctx, query, e.Nome, e.Telefone, e.Email, e.CpfCnpj, e.Tipo, e.Endereco, e.Observacao,
		e.AtualizadoPor, e.DataAtualizacao, e.ID)
	if err != nil {
		return mapDBError(err, "requerente", e.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "requerente", e.ID)
	}
	return nil
}

func (r *RequerenteRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM requerentes WHERE id = $1", id)
	if err != nil {
		return mapDBError(err, "requerente", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "requerente", id)
	}
	return nil
}

func (r *RequerenteRepository) CountRequerimentos(ctx context.Context, id uint64) (int64, error) {
	return countWhere(ctx, r.storage, requerimentoTable, sq.Eq{"requerente_id": id})
}
