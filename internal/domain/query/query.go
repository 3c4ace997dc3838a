// Package query define la especificación de consultas que reciben los repositorios genéricos.
//
// Una consulta es una lista de Option (closures) que se componen libremente:
//
//	repo.Page(ctx, 1, 20,
//		query.Eq("hospital_center_id", centerID),
//		query.ILike("search_name", "%"+term+"%"),
//		query.OrderBy("created_at", query.Desc),
//	)
//
// Los nombres de campo son columnas; el adaptador rechaza las que no pertenecen a la tabla.
package query

// Op operador de comparación.
type Op string

const (
	OpEq      Op = "="
	OpNeq     Op = "<>"
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpLike    Op = "LIKE"
	OpILike   Op = "ILIKE"
	OpIn      Op = "IN"
	OpIsNull  Op = "IS NULL"
	OpNotNull Op = "IS NOT NULL"
	OpBetween Op = "BETWEEN"
)

// Filter un predicado. Si Any no está vacío el filtro es una disyunción de sus elementos
// y Field/Op se ignoran.
type Filter struct {
	Field  string
	Op     Op
	Values []any
	Any    []Filter
}

// Direction dirección de orden.
type Direction bool

const (
	Asc  Direction = false
	Desc Direction = true
)

// Sort criterio de orden.
type Sort struct {
	Field string
	Desc  Direction
}

// Spec especificación completa. Limit 0 = sin límite.
type Spec struct {
	Filters []Filter
	Sorts   []Sort
	Limit   int
	Offset  int
}

// Option transforma una Spec.
type Option func(*Spec)

// Build aplica las opciones sobre una Spec vacía.
func Build(opts ...Option) Spec {
	var s Spec
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	return s
}

// With devuelve una copia de s con opciones adicionales.
func (s Spec) With(opts ...Option) Spec {
	out := Spec{
		Filters: append([]Filter(nil), s.Filters...),
		Sorts:   append([]Sort(nil), s.Sorts...),
		Limit:   s.Limit,
		Offset:  s.Offset,
	}
	for _, o := range opts {
		if o != nil {
			o(&out)
		}
	}
	return out
}

// Unbounded copia sin orden ni paginación (para Count/Sum/Exists).
func (s Spec) Unbounded() Spec {
	return Spec{Filters: append([]Filter(nil), s.Filters...)}
}

func where(f Filter) Option {
	return func(s *Spec) { s.Filters = append(s.Filters, f) }
}

func cmp(field string, op Op, v any) Filter {
	return Filter{Field: field, Op: op, Values: []any{v}}
}

func Eq(field string, v any) Option      { return where(cmp(field, OpEq, v)) }
func Neq(field string, v any) Option     { return where(cmp(field, OpNeq, v)) }
func Gt(field string, v any) Option      { return where(cmp(field, OpGt, v)) }
func Gte(field string, v any) Option     { return where(cmp(field, OpGte, v)) }
func Lt(field string, v any) Option      { return where(cmp(field, OpLt, v)) }
func Lte(field string, v any) Option     { return where(cmp(field, OpLte, v)) }
func Like(field, pattern string) Option  { return where(cmp(field, OpLike, pattern)) }
func ILike(field, pattern string) Option { return where(cmp(field, OpILike, pattern)) }
func IsNull(field string) Option         { return where(Filter{Field: field, Op: OpIsNull}) }
func NotNull(field string) Option        { return where(Filter{Field: field, Op: OpNotNull}) }

// In pertenencia a un conjunto. Un conjunto vacío no casa ninguna fila.
func In[T any](field string, values ...T) Option {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return where(Filter{Field: field, Op: OpIn, Values: vs})
}

// Between rango cerrado [from, to].
func Between(field string, from, to any) Option {
	return where(Filter{Field: field, Op: OpBetween, Values: []any{from, to}})
}

// Or agrupa opciones de filtro en una disyunción: Or(Eq(a,1), Eq(b,2)) -> (a = 1 OR b = 2).
func Or(opts ...Option) Option {
	inner := Build(opts...)
	if len(inner.Filters) == 0 {
		return nil
	}
	return where(Filter{Any: inner.Filters})
}

// When aplica opt solo si cond es verdadero; útil para filtros opcionales.
func When(cond bool, opt Option) Option {
	if !cond {
		return nil
	}
	return opt
}

// OrderBy añade un criterio de orden.
func OrderBy(field string, dir Direction) Option {
	return func(s *Spec) { s.Sorts = append(s.Sorts, Sort{Field: field, Desc: dir}) }
}

// Limit fija el máximo de filas.
func Limit(n int) Option {
	return func(s *Spec) { s.Limit = n }
}

// Paginate traduce página (desde 1) y tamaño a Limit/Offset.
func Paginate(page, size int) Option {
	page, size = NormalizePage(page, size)
	return func(s *Spec) {
		s.Limit = size
		s.Offset = (page - 1) * size
	}
}

// Límites de paginación.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage aplica valores por defecto y límites.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Page resultado paginado.
type Page[T any] struct {
	Items []*T
	Total int64
	Page  int
	Size  int
}

// TotalPages número de páginas para Total y Size.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext hay una página siguiente.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}
