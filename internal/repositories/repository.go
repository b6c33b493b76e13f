package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type filterKind int

const (
	filterText filterKind = iota
	filterID
	filterBool
	filterDateFrom
	filterDateTo
)

type filterColumn struct {
	Column string
	Kind   filterKind
}

// listSpec declares which query parameters a list endpoint accepts.
type listSpec struct {
	Table         string
	SearchColumns []string
	Filters       map[string]filterColumn
	Custom        map[string]func(value interface{}) (sq.Sqlizer, error)
	SortColumns   map[string]string
	DefaultSort   string
}

func filterValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}

func (s listSpec) conditions(filter types.Filter) ([]sq.Sqlizer, error) {
	var conds []sq.Sqlizer

	if filter.Search != "" && len(s.SearchColumns) > 0 {
		pattern := "%" + filter.Search + "%"
		or := sq.Or{}
		for _, col := range s.SearchColumns {
			or = append(or, sq.Expr(col+" ILIKE ?", pattern))
		}
		conds = append(conds, or)
	}

	for _, key := range sortedKeys(filter.Filter) {
		value := filter.Filter[key]
		if custom, ok := s.Custom[key]; ok {
			cond, err := custom(value)
			if err != nil {
				return nil, err
			}
			if cond != nil {
				conds = append(conds, cond)
			}
			continue
		}
		col, ok := s.Filters[key]
		if !ok {
			continue
		}
		cond, err := buildFilter(key, col, filterValues(value))
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func buildFilter(key string, col filterColumn, values []string) (sq.Sqlizer, error) {
	switch col.Kind {
	case filterID:
		ids := make([]uint64, 0, len(values))
		for _, v := range values {
			id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, apperrors.NewValidationError(key, "valor inválido %q", v)
			}
			ids = append(ids, id)
		}
		return sq.Eq{col.Column: ids}, nil
	case filterBool:
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, apperrors.NewValidationError(key, "valor inválido %q", values[0])
		}
		return sq.Eq{col.Column: b}, nil
	case filterDateFrom, filterDateTo:
		t, err := time.Parse("2006-01-02", values[0])
		if err != nil {
			return nil, apperrors.NewValidationError(key, "data inválida %q, use AAAA-MM-DD", values[0])
		}
		if col.Kind == filterDateFrom {
			return sq.GtOrEq{col.Column: t}, nil
		}
		return sq.Lt{col.Column: t.AddDate(0, 0, 1)}, nil
	default:
		if len(values) == 1 {
			return sq.Eq{col.Column: values[0]}, nil
		}
		return sq.Eq{col.Column: values}, nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s listSpec) orderBy(filter types.Filter) []string {
	var order []string
	for _, key := range sortedKeys(filter.Sort) {
		direction := filter.Sort[key]
		if col, ok := s.SortColumns[key]; ok {
			order = append(order, col+" "+strings.ToUpper(direction))
		}
	}
	if len(order) == 0 && s.DefaultSort != "" {
		order = append(order, s.DefaultSort)
	}
	return order
}

// list runs the COUNT and the paginated SELECT for spec and hands each row to scan.
func list[T any](ctx context.Context, q querier, spec listSpec, columns string, filter types.Filter, scan func(pgx.Rows) (T, error)) ([]T, uint64, error) {
	conds, err := spec.conditions(filter)
	if err != nil {
		return nil, 0, err
	}

	countBuilder := psql.Select("COUNT(*)").From(spec.Table)
	selectBuilder := psql.Select(columns).From(spec.Table)
	for _, c := range conds {
		countBuilder = countBuilder.Where(c)
		selectBuilder = selectBuilder.Where(c)
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: montar contagem: %w", spec.Table, err)
	}
	var total uint64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: contar registros: %w", spec.Table, err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	selectBuilder = selectBuilder.OrderBy(spec.orderBy(filter)...)
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: montar consulta: %w", spec.Table, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: listar: %w", spec.Table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: ler linha: %w", spec.Table, err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func countWhere(ctx context.Context, q querier, table string, where sq.Sqlizer) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: contar: %w", table, err)
	}
	return n, nil
}

func countByStatus(ctx context.Context, q querier, table string) (map[string]int64, error) {
	rows, err := q.Query(ctx, fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", table))
	if err != nil {
		return nil, fmt.Errorf("%s: contar por status: %w", table, err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		result[status] = n
	}
	return result, rows.Err()
}

// mapDBError converts driver errors into the application taxonomy.
func mapDBError(err error, entity string, id uint64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(entity, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperrors.NewConflictError("%s: registro duplicado (%s)", entity, pgErr.ConstraintName)
		case "23503":
			return apperrors.NewConflictError("%s: operação viola referência (%s)", entity, pgErr.ConstraintName)
		case "23514":
			return apperrors.NewValidationError(entity, "valor fora do permitido (%s)", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}
