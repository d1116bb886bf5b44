package hub

// Table is an opaque, fully materialized table handle.
type Table interface {
	Columns() []string
	Len() int
}

// Row gives predicates read access to one row of a table.
type Row interface {
	// Value returns the cell in column; ok is false when the column does not exist.
	Value(column string) (value any, ok bool)
}

// Predicate selects rows.
type Predicate func(Row) bool

// And returns the conjunction of preds. Nil predicates are ignored and an
// empty conjunction accepts every row.
func And(preds ...Predicate) Predicate {
	active := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(r Row) bool {
		for _, p := range active {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Engine performs the relational work on tables it created.
type Engine interface {
	// Join joins right onto left. Right-side columns whose names collide
	// with left columns are renamed with suffix appended.
	Join(left, right Table, keys []string, how JoinKind, suffix string) (Table, error)
	// Filter keeps the rows matching pred.
	Filter(t Table, pred Predicate) (Table, error)
	// Unique keeps the first row for every distinct key tuple.
	Unique(t Table, keys []string) (Table, error)
}

func hasColumns(t Table, want []string) bool {
	cols := make(map[string]bool, len(t.Columns()))
	for _, c := range t.Columns() {
		cols[c] = true
	}
	for _, w := range want {
		if !cols[w] {
			return false
		}
	}
	return true
}
