// Package apptest dobles en memoria de los puertos de persistencia para los tests de casos de uso.
//
// Table[T] implementa repository.Repository[T] evaluando la especificación de consulta sobre
// las etiquetas `db` de T, con la misma semántica que el adaptador PostgreSQL (columnas
// desconocidas rechazadas, sobre de auditoría protegido en updates, borrado lógico por is_active).
package apptest

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// Table tabla en memoria.
type Table[T any] struct {
	mu     sync.Mutex
	rows   map[int64]*T
	nextID int64
	index  map[string][]int
	now    func() time.Time

	// FailWrites si no es nil lo devuelven todas las escrituras.
	FailWrites error
}

// NewTable tabla vacía para T.
func NewTable[T any]() *Table[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	idx := map[string][]int{}
	collect(t, nil, idx)
	return &Table[T]{rows: map[int64]*T{}, index: idx, now: time.Now}
}

func collect(t reflect.Type, prefix []int, idx map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)
		tag, tagged := f.Tag.Lookup("db")
		if f.Anonymous && !tagged && f.Type.Kind() == reflect.Struct {
			collect(f.Type, path, idx)
			continue
		}
		if !f.IsExported() || !tagged || tag == "-" || tag == "" {
			continue
		}
		idx[tag] = path
	}
}

var _ repository.Repository[entity.Patient] = (*Table[entity.Patient])(nil)

func (t *Table[T]) field(e *T, col string) reflect.Value {
	return reflect.ValueOf(e).Elem().FieldByIndex(t.index[col])
}

func (t *Table[T]) id(e *T) int64 {
	return t.field(e, "id").Int()
}

func clone[T any](e *T) *T {
	c := *e
	return &c
}

// Seed inserta filas de partida; asigna IDs sobre las mismas entidades.
func (t *Table[T]) Seed(es ...*T) {
	for _, e := range es {
		if err := t.Add(context.Background(), e); err != nil {
			panic(err)
		}
	}
}

// All copia de todas las filas ordenadas por id.
func (t *Table[T]) All() []*T {
	list, _ := t.List(context.Background())
	return list
}

// Len número de filas.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *Table[T]) snapshot() func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	saved := make(map[int64]*T, len(t.rows))
	for id, r := range t.rows {
		saved[id] = clone(r)
	}
	next := t.nextID
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.rows = saved
		t.nextID = next
	}
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (t *Table[T]) GetByID(_ context.Context, id int64) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return clone(r), nil
}

func (t *Table[T]) GetForUpdate(ctx context.Context, id int64) (*T, error) {
	return t.GetByID(ctx, id)
}

func (t *Table[T]) List(_ context.Context, opts ...query.Option) ([]*T, error) {
	spec := query.Build(opts...)
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.filter(spec.Filters)
	if err != nil {
		return nil, err
	}
	if err := t.order(out, spec.Sorts); err != nil {
		return nil, err
	}
	if spec.Offset > 0 {
		if spec.Offset >= len(out) {
			return []*T{}, nil
		}
		out = out[spec.Offset:]
	}
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out, nil
}

func (t *Table[T]) First(ctx context.Context, opts ...query.Option) (*T, error) {
	list, err := t.List(ctx, append(opts, query.Limit(1))...)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (t *Table[T]) Exists(ctx context.Context, opts ...query.Option) (bool, error) {
	n, err := t.Count(ctx, opts...)
	return n > 0, err
}

func (t *Table[T]) Count(_ context.Context, opts ...query.Option) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.filter(query.Build(opts...).Filters)
	return int64(len(out)), err
}

func (t *Table[T]) Sum(_ context.Context, column string, opts ...query.Option) (decimal.Decimal, error) {
	if _, ok := t.index[column]; !ok {
		return decimal.Zero, fmt.Errorf("%w: columna de suma desconocida %q", domain.ErrInvalidInput, column)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.filter(query.Build(opts...).Filters)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range out {
		switch v := deref(t.field(r, column)).(type) {
		case decimal.Decimal:
			total = total.Add(v)
		case int64:
			total = total.Add(decimal.NewFromInt(v))
		case int:
			total = total.Add(decimal.NewFromInt(int64(v)))
		}
	}
	return total, nil
}

func (t *Table[T]) Page(ctx context.Context, page, size int, opts ...query.Option) (*query.Page[T], error) {
	page, size = query.NormalizePage(page, size)
	total, err := t.Count(ctx, opts...)
	if err != nil {
		return nil, err
	}
	items, err := t.List(ctx, append(opts, query.Paginate(page, size))...)
	if err != nil {
		return nil, err
	}
	return &query.Page[T]{Items: items, Total: total, Page: page, Size: size}, nil
}

// ── Escrituras ───────────────────────────────────────────────────────────────

func (t *Table[T]) Add(_ context.Context, e *T) error {
	if t.FailWrites != nil {
		return t.FailWrites
	}
	if a, ok := any(e).(entity.Audited); ok && a.AuditFields().CreatedAt.IsZero() {
		a.AuditFields().CreatedAt = t.now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.field(e, "id").SetInt(t.nextID)
	t.rows[t.nextID] = clone(e)
	return nil
}

func (t *Table[T]) AddBatch(ctx context.Context, es []*T) error {
	for _, e := range es {
		if err := t.Add(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) Update(_ context.Context, e *T, opts ...repository.UpdateOption) error {
	if t.FailWrites != nil {
		return t.FailWrites
	}
	if a, ok := any(e).(entity.Audited); ok && a.AuditFields().ModifiedAt == nil {
		now := t.now()
		a.AuditFields().ModifiedAt = &now
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old, ok := t.rows[t.id(e)]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(e)
	for col := range repository.ResolveUpdateOptions(opts...) {
		if _, known := t.index[col]; known {
			t.field(next, col).Set(t.field(old, col))
		}
	}
	t.rows[t.id(e)] = next
	return nil
}

func (t *Table[T]) UpdateBatch(ctx context.Context, es []*T, opts ...repository.UpdateOption) error {
	for _, e := range es {
		if err := t.Update(ctx, e, opts...); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64, mode repository.DeleteMode, actor int64) error {
	t.mu.Lock()
	_, ok := t.rows[id]
	t.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	return t.DeleteBatch(ctx, []int64{id}, mode, actor)
}

func (t *Table[T]) DeleteBatch(_ context.Context, ids []int64, mode repository.DeleteMode, actor int64) error {
	if t.FailWrites != nil {
		return t.FailWrites
	}
	_, soft := t.index["is_active"]
	if mode == repository.SoftDelete && !soft {
		return fmt.Errorf("%w: la tabla no admite borrado lógico", domain.ErrInvalidInput)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		r, ok := t.rows[id]
		if !ok {
			continue
		}
		if mode == repository.HardDelete {
			delete(t.rows, id)
			continue
		}
		t.field(r, "is_active").SetBool(false)
		if a, ok := any(r).(entity.Audited); ok {
			a.AuditFields().Touch(actor, t.now())
		}
	}
	return nil
}

// Exec no interpreta SQL: devuelve 0 filas.
func (t *Table[T]) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}

// ── Evaluación de la especificación ──────────────────────────────────────────

func (t *Table[T]) filter(fs []query.Filter) ([]*T, error) {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		r := t.rows[id]
		ok, err := t.matchAll(r, fs)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (t *Table[T]) matchAll(r *T, fs []query.Filter) (bool, error) {
	for _, f := range fs {
		ok, err := t.match(r, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (t *Table[T]) match(r *T, f query.Filter) (bool, error) {
	if len(f.Any) > 0 {
		for _, sub := range f.Any {
			ok, err := t.match(r, sub)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	if _, ok := t.index[f.Field]; !ok {
		return false, fmt.Errorf("%w: columna desconocida %q", domain.ErrInvalidInput, f.Field)
	}
	v := deref(t.field(r, f.Field))
	switch f.Op {
	case query.OpIsNull:
		return v == nil, nil
	case query.OpNotNull:
		return v != nil, nil
	case query.OpIn:
		for _, want := range f.Values {
			if v != nil && compare(v, want) == 0 {
				return true, nil
			}
		}
		return false, nil
	case query.OpBetween:
		return v != nil && compare(v, f.Values[0]) >= 0 && compare(v, f.Values[1]) <= 0, nil
	case query.OpLike, query.OpILike:
		s, _ := v.(string)
		pattern, _ := f.Values[0].(string)
		if f.Op == query.OpILike {
			s, pattern = strings.ToLower(s), strings.ToLower(pattern)
		}
		return like(s, pattern), nil
	}
	if v == nil {
		return false, nil
	}
	c := compare(v, f.Values[0])
	switch f.Op {
	case query.OpEq:
		return c == 0, nil
	case query.OpNeq:
		return c != 0, nil
	case query.OpGt:
		return c > 0, nil
	case query.OpGte:
		return c >= 0, nil
	case query.OpLt:
		return c < 0, nil
	case query.OpLte:
		return c <= 0, nil
	}
	return false, fmt.Errorf("%w: operador %q", domain.ErrInvalidInput, f.Op)
}

func (t *Table[T]) order(rows []*T, sorts []query.Sort) error {
	for _, s := range sorts {
		if _, ok := t.index[s.Field]; !ok {
			return fmt.Errorf("%w: columna de orden desconocida %q", domain.ErrInvalidInput, s.Field)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range sorts {
			c := compare(deref(t.field(rows[i], s.Field)), deref(t.field(rows[j], s.Field)))
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

// like soporta % al inicio y/o al final, que es lo que usan los casos de uso.
func like(s, pattern string) bool {
	prefix := strings.HasPrefix(pattern, "%")
	suffix := strings.HasSuffix(pattern, "%") && len(pattern) > 1
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
	switch {
	case prefix && suffix:
		return strings.Contains(s, core)
	case prefix:
		return strings.HasSuffix(s, core)
	case suffix:
		return strings.HasPrefix(s, core)
	}
	return s == core
}

func deref(v reflect.Value) any {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// compare ordena valores de los tipos usados en las entidades; nil va primero.
func compare(a, b any) int {
	if rv := reflect.ValueOf(b); b != nil && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			b = nil
		} else {
			b = rv.Elem().Interface()
		}
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case int64:
		return cmpInt(x, toInt(b))
	case int:
		return cmpInt(int64(x), toInt(b))
	case string:
		return strings.Compare(x, fmt.Sprint(b))
	case bool:
		y, _ := b.(bool)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	case decimal.Decimal:
		switch y := b.(type) {
		case decimal.Decimal:
			return x.Cmp(y)
		default:
			return x.Cmp(decimal.NewFromInt(toInt(b)))
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
