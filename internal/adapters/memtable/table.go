// Package memtable is an in-memory columnar implementation of hub.Engine.
// Cells are untyped and nil is null.
package memtable

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []any
}

// Col builds a Column.
func Col(name string, values ...any) Column {
	return Column{Name: name, Values: values}
}

// Table is an immutable column-ordered table.
type Table struct {
	names []string
	data  map[string][]any
	rows  int
}

// New builds a table. Every column must have the same length and a
// distinct, non-empty name.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(cols)),
		data:  make(map[string][]any, len(cols)),
	}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("memtable: column %d has no name", i)
		}
		if _, dup := t.data[c.Name]; dup {
			return nil, fmt.Errorf("memtable: duplicate column %q", c.Name)
		}
		if i > 0 && len(c.Values) != t.rows {
			return nil, fmt.Errorf("memtable: column %q has %d rows, want %d", c.Name, len(c.Values), t.rows)
		}
		t.rows = len(c.Values)
		t.names = append(t.names, c.Name)
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		t.data[c.Name] = values
	}
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]any, bool) {
	v, ok := t.data[name]
	if !ok {
		return nil, false
	}
	return append([]any(nil), v...), true
}

// Value returns a single cell.
func (t *Table) Value(column string, row int) (any, bool) {
	v, ok := t.data[column]
	if !ok || row < 0 || row >= t.rows {
		return nil, false
	}
	return v[row], true
}

// Equal reports whether both tables have the same columns, in the same
// order, holding the same cells.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.rows != other.rows || !reflect.DeepEqual(t.names, other.names) {
		return false
	}
	for _, name := range t.names {
		if !reflect.DeepEqual(t.data[name], other.data[name]) {
			return false
		}
	}
	return true
}

// String renders the table as tab-separated lines, for test failures.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.names, "\t"))
	for i := 0; i < t.rows; i++ {
		b.WriteByte('\n')
		for j, name := range t.names {
			if j > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%v", t.data[name][i])
		}
	}
	return b.String()
}

func (t *Table) row(i int) []any {
	out := make([]any, len(t.names))
	for j, name := range t.names {
		out[j] = t.data[name][i]
	}
	return out
}

type rowView struct {
	t *Table
	i int
}

func (r rowView) Value(column string) (any, bool) {
	return r.t.Value(column, r.i)
}

var _ hub.Table = (*Table)(nil)
var _ hub.Row = rowView{}
