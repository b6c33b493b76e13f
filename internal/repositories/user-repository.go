package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/types"
)

const (
	userTable  = "users"
	userFields = "id, nome, email, telefone, password, nivel, ativo, ultimo_login, criado_por, data_criacao, atualizado_por, data_atualizacao"
)

var userListSpec = listSpec{
	Table:         userTable,
	SearchColumns: []string{"nome", "email"},
	Filters: map[string]filterColumn{
		"nivel": {Column: "nivel", Kind: filterID},
		"ativo": {Column: "ativo", Kind: filterBool},
	},
	SortColumns: map[string]string{"id": "id", "nome": "nome", "email": "email", "data_criacao": "data_criacao"},
	DefaultSort: "nome ASC",
}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	Create(ctx context.Context, user *entities.User) (uint64, error)
	Update(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Nome, &u.Email, &u.Telefone, &u.Password, &u.Nivel, &u.Ativo, &u.UltimoLogin,
		&u.CriadoPor, &u.DataCriacao, &u.AtualizadoPor, &u.DataAtualizacao,
	)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, err := scanUser(r.storage.QueryRow(ctx, "SELECT "+userFields+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, mapDBError(err, "usuário", id)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	u, err := scanUser(r.storage.QueryRow(ctx, "SELECT "+userFields+" FROM users WHERE LOWER(email) = LOWER($1)", strings.TrimSpace(email)))
	if err != nil {
		return nil, mapDBError(err, "usuário", 0)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	return list(ctx, r.storage, userListSpec, userFields, filter, func(rows pgx.Rows) (entities.User, error) {
		return scanUser(rows)
	})
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (uint64, error) {
	query := `
		INSERT INTO users (nome, email, telefone, password, nivel, ativo, criado_por, data_criacao)
		VALUES (@nome, @email, @telefone, @password, @nivel, @ativo, @criado_por, @data_criacao)
		RETURNING id`
	args := pgx.NamedArgs{
		"nome":         user.Nome,
		"email":        strings.ToLower(strings.TrimSpace(user.Email)),
		"telefone":     user.Telefone,
		"password":     user.Password,
		"nivel":        user.Nivel,
		"ativo":        user.Ativo,
		"criado_por":   user.CriadoPor,
		"data_criacao": user.DataCriacao,
	}
	var id uint64
	if err := r.storage.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return 0, mapDBError(err, "usuário", 0)
	}
	return id, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users SET nome = @nome, email = @email, telefone = @telefone, nivel = @nivel, ativo = @ativo,
			atualizado_por = @atualizado_por, data_atualizacao = @data_atualizacao
		WHERE id = @id`
	tag, err := r.storage.Exec(ctx, query, pgx.NamedArgs{
		"id":               user.ID,
		"nome":             user.Nome,
		"email":            strings.ToLower(strings.TrimSpace(user.Email)),
		"telefone":         user.Telefone,
		"nivel":            user.Nivel,
		"ativo":            user.Ativo,
		"atualizado_por":   user.AtualizadoPor,
		"data_atualizacao": user.DataAtualizacao,
	})
	if err != nil {
		return mapDBError(err, "usuário", user.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "usuário", user.ID)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	tag, err := r.storage.Exec(ctx, "UPDATE users SET password = $1, data_atualizacao = NOW() WHERE id = $2", passwordHash, id)
	if err != nil {
		return mapDBError(err, "usuário", id)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "usuário", id)
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.storage.Exec(ctx, "UPDATE users SET ultimo_login = $1 WHERE id = $2", at, id)
	return mapDBError(err, "usuário", id)
}
