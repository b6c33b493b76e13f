package repositories

import (
	"errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

var itemSpec = listSpec{
	Table:         "itens",
	SearchColumns: []string{"nome", "descricao"},
	Filters: map[string]filterColumn{
		"status":      {Column: "status", Kind: filterText},
		"dono_id":     {Column: "dono_id", Kind: filterID},
		"ativo":       {Column: "ativo", Kind: filterBool},
		"data_inicio": {Column: "criado_em", Kind: filterDateFrom},
		"data_fim":    {Column: "criado_em", Kind: filterDateTo},
	},
	Custom: map[string]func(value interface{}) (sq.Sqlizer, error){
		"atrasados": func(value interface{}) (sq.Sqlizer, error) {
			if filterValues(value)[0] != "true" {
				return nil, nil
			}
			return sq.Expr("prazo < CURRENT_DATE"), nil
		},
	},
	SortColumns: map[string]string{"id": "id", "nome": "nome_exibicao"},
	DefaultSort: "id DESC",
}

func whereSQL(t *testing.T, spec listSpec, filter types.Filter) (string, []interface{}) {
	t.Helper()
	conds, err := spec.conditions(filter)
	require.NoError(t, err)
	b := psql.Select("id").From(spec.Table)
	for _, c := range conds {
		b = b.Where(c)
	}
	query, args, err := b.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestListSpec_TextIDAndSearchFilters(t *testing.T) {
	query, args := whereSQL(t, itemSpec, types.Filter{
		Search: "poda",
		Filter: map[string]interface{}{
			"status":       "aberto",
			"dono_id":      []string{"3", "7"},
			"desconhecido": "x",
		},
	})

	assert.Equal(t, "SELECT id FROM itens WHERE (nome ILIKE $1 OR descricao ILIKE $2) AND dono_id IN ($3,$4) AND status = $5", query)
	assert.Equal(t, []interface{}{"%poda%", "%poda%", uint64(3), uint64(7), "aberto"}, args)
}

func TestListSpec_DateRangeIsInclusive(t *testing.T) {
	query, args := whereSQL(t, itemSpec, types.Filter{
		Filter: map[string]interface{}{"data_inicio": "2024-03-01", "data_fim": "2024-03-31"},
	})

	assert.Equal(t, "SELECT id FROM itens WHERE criado_em < $1 AND criado_em >= $2", query)
	require.Len(t, args, 2)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), args[1])
}

func TestListSpec_CustomFilter(t *testing.T) {
	query, args := whereSQL(t, itemSpec, types.Filter{Filter: map[string]interface{}{"atrasados": "true", "ativo": "true"}})
	assert.Equal(t, "SELECT id FROM itens WHERE ativo = $1 AND prazo < CURRENT_DATE", query)
	assert.Equal(t, []interface{}{true}, args)

	query, args = whereSQL(t, itemSpec, types.Filter{Filter: map[string]interface{}{"atrasados": "false"}})
	assert.Equal(t, "SELECT id FROM itens", query)
	assert.Empty(t, args)
}

func TestListSpec_InvalidFilterValues(t *testing.T) {
	cases := map[string]string{
		"dono_id":     "abc",
		"ativo":       "talvez",
		"data_inicio": "01/03/2024",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := itemSpec.conditions(types.Filter{Filter: map[string]interface{}{key: value}})
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, key, vErr.Field)
		})
	}
}

func TestListSpec_OrderByAllowListAndStableOrder(t *testing.T) {
	filter := types.Filter{Sort: map[string]string{"nome": "asc", "id": "desc", "senha": "asc"}}
	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"id DESC", "nome_exibicao ASC"}, itemSpec.orderBy(filter))
	}

	assert.Equal(t, []string{"id DESC"}, itemSpec.orderBy(types.Filter{}))
	assert.Equal(t, []string{"id DESC"}, itemSpec.orderBy(types.Filter{Sort: map[string]string{"senha": "asc"}}))
}

func TestMapDBError(t *testing.T) {
	assert.NoError(t, mapDBError(nil, "vistoria", 1))

	err := mapDBError(pgx.ErrNoRows, "vistoria", 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = mapDBError(&pgconn.PgError{Code: "23505", ConstraintName: "especies_nome_popular_key"}, "espécie", 0)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "especies_nome_popular_key")

	err = mapDBError(&pgconn.PgError{Code: "23503", ConstraintName: "arvores_especie_id_fkey"}, "espécie", 3)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = mapDBError(&pgconn.PgError{Code: "23514", ConstraintName: "arvores_latitude_check"}, "árvore", 0)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "árvore", vErr.Field)

	cause := errors.New("conexão encerrada")
	err = mapDBError(cause, "árvore", 0)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFormatNumero(t *testing.T) {
	assert.Equal(t, "REQ/2024/0007", FormatNumero("REQ", 2024, 7))
	assert.Equal(t, "OS/2025/0120", FormatNumero("OS", 2025, 120))
	assert.Equal(t, "REQ/2024/12345", FormatNumero("REQ", 2024, 12345))
}
