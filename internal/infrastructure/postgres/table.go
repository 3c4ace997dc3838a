package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// Table implementación genérica de repository.Repository[T] sobre una tabla.
// Las columnas salen de las etiquetas `db` de T; "id" es la clave primaria (bigserial).
type Table[T any] struct {
	q    Querier
	name string
	meta *tableMeta
	now  func() time.Time
}

func reflectType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewTable construye el repositorio genérico de T sobre la tabla name.
func NewTable[T any](q Querier, name string) *Table[T] {
	return &Table[T]{q: q, name: name, meta: metaFor(reflectType[T]()), now: time.Now}
}

var _ repository.Repository[entity.Patient] = (*Table[entity.Patient])(nil)

func (t *Table[T]) selectList() string {
	return strings.Join(t.meta.columns, ", ")
}

func (t *Table[T]) builder() *sqlBuilder {
	return &sqlBuilder{valid: t.meta.has}
}

func (t *Table[T]) scanOne(row pgx.Row) (*T, error) {
	e := new(T)
	if err := row.Scan(t.meta.pointers(reflect.ValueOf(e).Elem(), t.meta.columns)...); err != nil {
		return nil, err
	}
	return e, nil
}

func (t *Table[T]) collect(rows pgx.Rows) ([]*T, error) {
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (*T, error) {
		return t.scanOne(r)
	})
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (t *Table[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	sql := "SELECT " + t.selectList() + " FROM " + t.name + " WHERE id = $1"
	e, err := t.scanOne(t.q.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get "+t.name, err)
	}
	return e, nil
}

func (t *Table[T]) GetForUpdate(ctx context.Context, id int64) (*T, error) {
	sql := "SELECT " + t.selectList() + " FROM " + t.name + " WHERE id = $1 FOR UPDATE"
	e, err := t.scanOne(t.q.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get for update "+t.name, err)
	}
	return e, nil
}

func (t *Table[T]) List(ctx context.Context, opts ...query.Option) ([]*T, error) {
	spec := query.Build(opts...)
	b := t.builder()
	where, err := b.where(spec.Filters)
	if err != nil {
		return nil, err
	}
	tail, err := b.tail(spec)
	if err != nil {
		return nil, err
	}
	rows, err := t.q.Query(ctx, "SELECT "+t.selectList()+" FROM "+t.name+where+tail, b.args...)
	if err != nil {
		return nil, wrap("list "+t.name, err)
	}
	list, err := t.collect(rows)
	if err != nil {
		return nil, wrap("scan "+t.name, err)
	}
	return list, nil
}

func (t *Table[T]) First(ctx context.Context, opts ...query.Option) (*T, error) {
	list, err := t.List(ctx, append(opts, query.Limit(1))...)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (t *Table[T]) Exists(ctx context.Context, opts ...query.Option) (bool, error) {
	b := t.builder()
	where, err := b.where(query.Build(opts...).Filters)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := t.q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+t.name+where+")", b.args...).Scan(&ok); err != nil {
		return false, wrap("exists "+t.name, err)
	}
	return ok, nil
}

func (t *Table[T]) Count(ctx context.Context, opts ...query.Option) (int64, error) {
	b := t.builder()
	where, err := b.where(query.Build(opts...).Filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := t.q.QueryRow(ctx, "SELECT COUNT(*) FROM "+t.name+where, b.args...).Scan(&n); err != nil {
		return 0, wrap("count "+t.name, err)
	}
	return n, nil
}

func (t *Table[T]) Sum(ctx context.Context, column string, opts ...query.Option) (decimal.Decimal, error) {
	if !t.meta.has(column) {
		return decimal.Zero, fmt.Errorf("%w: columna de suma desconocida %q", domain.ErrInvalidInput, column)
	}
	b := t.builder()
	where, err := b.where(query.Build(opts...).Filters)
	if err != nil {
		return decimal.Zero, err
	}
	var total decimal.Decimal
	sql := "SELECT COALESCE(SUM(" + column + "), 0) FROM " + t.name + where
	if err := t.q.QueryRow(ctx, sql, b.args...).Scan(&total); err != nil {
		return decimal.Zero, wrap("sum "+t.name, err)
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

func (t *Table[T]) insertSQL(cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO " + t.name + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(ph, ", ") + ") RETURNING id"
}

func (t *Table[T]) updateSQL(cols []string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = $" + strconv.Itoa(i+1)
	}
	return "UPDATE " + t.name + " SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(cols)+1)
}

// stampCreate completa created_at si la entidad lleva sobre de auditoría y no viene fijado.
func (t *Table[T]) stampCreate(e *T) {
	if a, ok := any(e).(entity.Audited); ok {
		if f := a.AuditFields(); f.CreatedAt.IsZero() {
			f.CreatedAt = t.now()
		}
	}
}

func (t *Table[T]) stampModify(e *T) {
	if a, ok := any(e).(entity.Audited); ok {
		if f := a.AuditFields(); f.ModifiedAt == nil {
			now := t.now()
			f.ModifiedAt = &now
		}
	}
}

func (t *Table[T]) idField(e *T) reflect.Value {
	return reflect.ValueOf(e).Elem().FieldByIndex(t.meta.index["id"])
}

func (t *Table[T]) Add(ctx context.Context, e *T) error {
	t.stampCreate(e)
	cols := t.meta.writable(nil)
	var id int64
	if err := t.q.QueryRow(ctx, t.insertSQL(cols), t.meta.values(reflect.ValueOf(e).Elem(), cols)...).Scan(&id); err != nil {
		return wrap("insert "+t.name, err)
	}
	t.idField(e).SetInt(id)
	return nil
}

func (t *Table[T]) AddBatch(ctx context.Context, es []*T) error {
	if len(es) == 0 {
		return nil
	}
	cols := t.meta.writable(nil)
	sql := t.insertSQL(cols)
	batch := &pgx.Batch{}
	for _, e := range es {
		t.stampCreate(e)
		batch.Queue(sql, t.meta.values(reflect.ValueOf(e).Elem(), cols)...)
	}
	br := t.q.SendBatch(ctx, batch)
	defer br.Close()
	for _, e := range es {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return wrap("insert batch "+t.name, err)
		}
		t.idField(e).SetInt(id)
	}
	return nil
}

func (t *Table[T]) Update(ctx context.Context, e *T, opts ...repository.UpdateOption) error {
	t.stampModify(e)
	cols := t.meta.writable(repository.ResolveUpdateOptions(opts...))
	args := append(t.meta.values(reflect.ValueOf(e).Elem(), cols), t.idField(e).Int())
	tag, err := t.q.Exec(ctx, t.updateSQL(cols), args...)
	if err != nil {
		return wrap("update "+t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *Table[T]) UpdateBatch(ctx context.Context, es []*T, opts ...repository.UpdateOption) error {
	if len(es) == 0 {
		return nil
	}
	cols := t.meta.writable(repository.ResolveUpdateOptions(opts...))
	sql := t.updateSQL(cols)
	batch := &pgx.Batch{}
	for _, e := range es {
		t.stampModify(e)
		args := append(t.meta.values(reflect.ValueOf(e).Elem(), cols), t.idField(e).Int())
		batch.Queue(sql, args...)
	}
	br := t.q.SendBatch(ctx, batch)
	defer br.Close()
	for range es {
		tag, err := br.Exec()
		if err != nil {
			return wrap("update batch "+t.name, err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (t *Table[T]) deleteSQL(mode repository.DeleteMode) (string, error) {
	if mode == repository.HardDelete {
		return "DELETE FROM " + t.name + " WHERE id = ANY($1)", nil
	}
	if !t.meta.has("is_active") {
		return "", fmt.Errorf("%w: %s no admite borrado lógico", domain.ErrInvalidInput, t.name)
	}
	sql := "UPDATE " + t.name + " SET is_active = FALSE"
	if t.meta.has("modified_by") {
		sql += ", modified_by = NULLIF($2, 0), modified_at = $3"
	}
	return sql + " WHERE id = ANY($1)", nil
}

func (t *Table[T]) deleteArgs(ids []int64, mode repository.DeleteMode, actor int64) []any {
	if mode == repository.SoftDelete && t.meta.has("modified_by") {
		return []any{ids, actor, t.now()}
	}
	return []any{ids}
}

func (t *Table[T]) Delete(ctx context.Context, id int64, mode repository.DeleteMode, actor int64) error {
	sql, err := t.deleteSQL(mode)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, sql, t.deleteArgs([]int64{id}, mode, actor)...)
	if err != nil {
		return wrap("delete "+t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *Table[T]) DeleteBatch(ctx context.Context, ids []int64, mode repository.DeleteMode, actor int64) error {
	if len(ids) == 0 {
		return nil
	}
	sql, err := t.deleteSQL(mode)
	if err != nil {
		return err
	}
	if _, err := t.q.Exec(ctx, sql, t.deleteArgs(ids, mode, actor)...); err != nil {
		return wrap("delete batch "+t.name, err)
	}
	return nil
}

func (t *Table[T]) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrap("exec "+t.name, err)
	}
	return tag.RowsAffected(), nil
}
