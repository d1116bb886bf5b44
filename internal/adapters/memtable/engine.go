package memtable

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// Engine implements hub.Engine over *Table values.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Join joins right onto left. Keyed joins match on the composite key and
// null keys never match. Key columns appear once: right and full joins
// fill them from the right side when the left side has no match. Semi and
// anti joins return left columns only.
func (e *Engine) Join(left, right hub.Table, keys []string, how hub.JoinKind, suffix string) (hub.Table, error) {
	l, err := cast(left)
	if err != nil {
		return nil, err
	}
	r, err := cast(right)
	if err != nil {
		return nil, err
	}
	if how.IsKeyed() {
		for _, k := range keys {
			if _, ok := l.data[k]; !ok {
				return nil, fmt.Errorf("memtable: key %q missing from left table", k)
			}
			if _, ok := r.data[k]; !ok {
				return nil, fmt.Errorf("memtable: key %q missing from right table", k)
			}
		}
	}

	switch how {
	case hub.JoinSemi, hub.JoinAnti:
		return filterMatches(l, r, keys, how == hub.JoinSemi), nil
	case hub.JoinCross:
		return crossJoin(l, r, suffix)
	case hub.JoinInner, hub.JoinLeft, hub.JoinRight, hub.JoinFull:
		return keyedJoin(l, r, keys, how, suffix)
	}
	return nil, fmt.Errorf("memtable: unsupported join %q", how)
}

// Filter keeps the rows for which pred returns true.
func (e *Engine) Filter(t hub.Table, pred hub.Predicate) (hub.Table, error) {
	src, err := cast(t)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < src.rows; i++ {
		if pred == nil || pred(rowView{t: src, i: i}) {
			rows = append(rows, i)
		}
	}
	return src.take(rows), nil
}

// Unique keeps the first row of every distinct key tuple. Nulls compare
// equal to each other here.
func (e *Engine) Unique(t hub.Table, keys []string) (hub.Table, error) {
	src, err := cast(t)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := src.data[k]; !ok {
			return nil, fmt.Errorf("memtable: key %q missing", k)
		}
	}

	seen := make(map[string]bool, src.rows)
	var rows []int
	for i := 0; i < src.rows; i++ {
		k, _ := src.key(keys, i)
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, i)
	}
	return src.take(rows), nil
}

func cast(t hub.Table) (*Table, error) {
	mt, ok := t.(*Table)
	if !ok || mt == nil {
		return nil, fmt.Errorf("memtable: unsupported table type %T", t)
	}
	return mt, nil
}

// key encodes the composite key of row i. Each cell is written as
// type:length:value so that no cell content can shift a cell boundary.
// hasNull reports whether any key cell is null.
func (t *Table) key(keys []string, i int) (string, bool) {
	var b strings.Builder
	hasNull := false
	for _, k := range keys {
		v := t.data[k][i]
		if v == nil {
			hasNull = true
		}
		cell := fmt.Sprint(v)
		fmt.Fprintf(&b, "%T:%d:%s", v, len(cell), cell)
	}
	return b.String(), hasNull
}

// index maps every non-null key to the rows holding it, in row order.
func (t *Table) index(keys []string) map[string][]int {
	idx := make(map[string][]int, t.rows)
	for i := 0; i < t.rows; i++ {
		k, hasNull := t.key(keys, i)
		if hasNull {
			continue
		}
		idx[k] = append(idx[k], i)
	}
	return idx
}

func (t *Table) take(rows []int) *Table {
	cols := make([]Column, len(t.names))
	for j, name := range t.names {
		values := make([]any, len(rows))
		for n, i := range rows {
			values[n] = t.data[name][i]
		}
		cols[j] = Column{Name: name, Values: values}
	}
	out, _ := New(cols...)
	return out
}

func filterMatches(l, r *Table, keys []string, keep bool) *Table {
	idx := r.index(keys)
	var rows []int
	for i := 0; i < l.rows; i++ {
		k, hasNull := l.key(keys, i)
		matched := !hasNull && len(idx[k]) > 0
		if matched == keep {
			rows = append(rows, i)
		}
	}
	return l.take(rows)
}

// rightColumns returns the right-side columns to append and their output
// names after suffixing collisions with left columns.
func rightColumns(l, r *Table, skip map[string]bool, suffix string) (src, dst []string) {
	for _, name := range r.names {
		if skip[name] {
			continue
		}
		out := name
		if _, collides := l.data[name]; collides {
			out = name + suffix
		}
		src = append(src, name)
		dst = append(dst, out)
	}
	return src, dst
}

type builder struct {
	names  []string
	values [][]any
}

func newBuilder(names []string) *builder {
	return &builder{names: names, values: make([][]any, len(names))}
}

func (b *builder) add(row []any) {
	for j, v := range row {
		b.values[j] = append(b.values[j], v)
	}
}

func (b *builder) build() (*Table, error) {
	cols := make([]Column, len(b.names))
	for j, name := range b.names {
		cols[j] = Column{Name: name, Values: b.values[j]}
	}
	return New(cols...)
}

func keyedJoin(l, r *Table, keys []string, how hub.JoinKind, suffix string) (*Table, error) {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	rsrc, rdst := rightColumns(l, r, isKey, suffix)
	b := newBuilder(append(l.Columns(), rdst...))

	emit := func(li, ri int) {
		row := make([]any, 0, len(b.names))
		for _, name := range l.names {
			switch {
			case li >= 0:
				row = append(row, l.data[name][li])
			case isKey[name]:
				row = append(row, r.data[name][ri])
			default:
				row = append(row, nil)
			}
		}
		for _, name := range rsrc {
			if ri >= 0 {
				row = append(row, r.data[name][ri])
			} else {
				row = append(row, nil)
			}
		}
		b.add(row)
	}

	if how == hub.JoinRight {
		idx := l.index(keys)
		for ri := 0; ri < r.rows; ri++ {
			k, hasNull := r.key(keys, ri)
			matches := idx[k]
			if hasNull || len(matches) == 0 {
				emit(-1, ri)
				continue
			}
			for _, li := range matches {
				emit(li, ri)
			}
		}
		return b.build()
	}

	idx := r.index(keys)
	matchedRight := make(map[int]bool)
	for li := 0; li < l.rows; li++ {
		k, hasNull := l.key(keys, li)
		matches := idx[k]
		if hasNull || len(matches) == 0 {
			if how != hub.JoinInner {
				emit(li, -1)
			}
			continue
		}
		for _, ri := range matches {
			matchedRight[ri] = true
			emit(li, ri)
		}
	}
	if how == hub.JoinFull {
		for ri := 0; ri < r.rows; ri++ {
			if !matchedRight[ri] {
				emit(-1, ri)
			}
		}
	}
	return b.build()
}

func crossJoin(l, r *Table, suffix string) (*Table, error) {
	rsrc, rdst := rightColumns(l, r, nil, suffix)
	b := newBuilder(append(l.Columns(), rdst...))
	for li := 0; li < l.rows; li++ {
		for ri := 0; ri < r.rows; ri++ {
			row := l.row(li)
			for _, name := range rsrc {
				row = append(row, r.data[name][ri])
			}
			b.add(row)
		}
	}
	return b.build()
}

var _ hub.Engine = (*Engine)(nil)
