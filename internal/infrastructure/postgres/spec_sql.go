package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
)

// sqlBuilder acumula argumentos posicionales ($1, $2...) mientras se renderiza una Spec.
type sqlBuilder struct {
	args  []any
	valid func(column string) bool
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where renderiza los filtros como cláusula WHERE (vacía si no hay filtros).
func (b *sqlBuilder) where(filters []query.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		p, err := b.filter(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) filter(f query.Filter) (string, error) {
	if len(f.Any) > 0 {
		parts := make([]string, 0, len(f.Any))
		for _, sub := range f.Any {
			p, err := b.filter(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}
	if !b.valid(f.Field) {
		return "", fmt.Errorf("%w: columna de filtro desconocida %q", domain.ErrInvalidInput, f.Field)
	}
	switch f.Op {
	case query.OpIsNull, query.OpNotNull:
		return f.Field + " " + string(f.Op), nil
	case query.OpIn:
		if len(f.Values) == 0 {
			return "FALSE", nil
		}
		ph := make([]string, len(f.Values))
		for i, v := range f.Values {
			ph[i] = b.arg(v)
		}
		return f.Field + " IN (" + strings.Join(ph, ", ") + ")", nil
	case query.OpBetween:
		if len(f.Values) != 2 {
			return "", fmt.Errorf("%w: BETWEEN requiere dos valores", domain.ErrInvalidInput)
		}
		return f.Field + " BETWEEN " + b.arg(f.Values[0]) + " AND " + b.arg(f.Values[1]), nil
	case query.OpEq, query.OpNeq, query.OpGt, query.OpGte, query.OpLt, query.OpLte, query.OpLike, query.OpILike:
		if len(f.Values) != 1 {
			return "", fmt.Errorf("%w: %s requiere un valor", domain.ErrInvalidInput, f.Op)
		}
		return f.Field + " " + string(f.Op) + " " + b.arg(f.Values[0]), nil
	}
	return "", fmt.Errorf("%w: operador desconocido %q", domain.ErrInvalidInput, f.Op)
}

// tail renderiza ORDER BY / LIMIT / OFFSET.
func (b *sqlBuilder) tail(s query.Spec) (string, error) {
	var sb strings.Builder
	for i, o := range s.Sorts {
		if !b.valid(o.Field) {
			return "", fmt.Errorf("%w: columna de orden desconocida %q", domain.ErrInvalidInput, o.Field)
		}
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.Field)
		if o.Desc {
			sb.WriteString(" DESC")
		}
	}
	if s.Limit > 0 {
		sb.WriteString(" LIMIT " + b.arg(s.Limit))
	}
	if s.Offset > 0 {
		sb.WriteString(" OFFSET " + b.arg(s.Offset))
	}
	return sb.String(), nil
}
