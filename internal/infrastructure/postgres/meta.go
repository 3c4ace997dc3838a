package postgres

import (
	"fmt"
	"reflect"
	"sync"
)

// tableMeta mapeo columna -> campo obtenido de las etiquetas `db` de la entidad.
// Los structs embebidos sin etiqueta (Audit) se aplanan.
type tableMeta struct {
	columns []string
	index   map[string][]int // columna -> índice de campo (reflect.FieldByIndex)
	hasID   bool
}

var metaCache sync.Map // reflect.Type -> *tableMeta

func metaFor(t reflect.Type) *tableMeta {
	if m, ok := metaCache.Load(t); ok {
		return m.(*tableMeta)
	}
	m := &tableMeta{index: map[string][]int{}}
	collectColumns(t, nil, m)
	_, m.hasID = m.index["id"]
	actual, _ := metaCache.LoadOrStore(t, m)
	return actual.(*tableMeta)
}

func collectColumns(t reflect.Type, prefix []int, m *tableMeta) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		tag, tagged := f.Tag.Lookup("db")
		if f.Anonymous && !tagged && f.Type.Kind() == reflect.Struct {
			collectColumns(f.Type, idx, m)
			continue
		}
		if !f.IsExported() || !tagged || tag == "-" || tag == "" {
			continue
		}
		if _, dup := m.index[tag]; dup {
			panic(fmt.Sprintf("postgres: columna %q duplicada en %s", tag, t.Name()))
		}
		m.columns = append(m.columns, tag)
		m.index[tag] = idx
	}
}

func (m *tableMeta) has(column string) bool {
	_, ok := m.index[column]
	return ok
}

// pointers devuelve punteros a los campos de v en el orden de cols (destino de Scan).
func (m *tableMeta) pointers(v reflect.Value, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = v.FieldByIndex(m.index[c]).Addr().Interface()
	}
	return out
}

// values devuelve los valores de los campos de v en el orden de cols (argumentos de INSERT/UPDATE).
func (m *tableMeta) values(v reflect.Value, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = v.FieldByIndex(m.index[c]).Interface()
	}
	return out
}

// writable columnas escribibles sin la clave primaria ni las excluidas.
func (m *tableMeta) writable(excluded map[string]bool) []string {
	out := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if c == "id" || excluded[c] {
			continue
		}
		out = append(out, c)
	}
	return out
}
