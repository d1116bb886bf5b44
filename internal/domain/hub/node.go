package hub

// TableNode is a named table tagged with how it joins onto the root.
// A node without a table is empty: it stands for a declared table that
// is not available, such as a skipped optional step.
type TableNode struct {
	name  string
	table Table
	keys  []string
	join  JoinKind
}

// NewTableNode wraps a materialized table.
func NewTableNode(name string, table Table, keys []string, join JoinKind) TableNode {
	return TableNode{
		name:  name,
		table: table,
		keys:  append([]string(nil), keys...),
		join:  join.normalize(),
	}
}

// NewEmptyTableNode creates a placeholder carrying only metadata.
func NewEmptyTableNode(name string, keys []string, join JoinKind) TableNode {
	return NewTableNode(name, nil, keys, join)
}

// Name returns the table name.
func (n TableNode) Name() string { return n.name }

// Table returns the wrapped table, nil for an empty node.
func (n TableNode) Table() Table { return n.table }

// Keys returns a copy of the join keys.
func (n TableNode) Keys() []string { return append([]string(nil), n.keys...) }

// Join returns the join kind.
func (n TableNode) Join() JoinKind { return n.join }

// IsEmpty reports whether the node has no table.
func (n TableNode) IsEmpty() bool { return n.table == nil }

// foldable reports whether the node takes part in the fold.
func (n TableNode) foldable() bool {
	return !n.IsEmpty() && n.join.Joins()
}

func (k JoinKind) normalize() JoinKind {
	if k == "" {
		return JoinNone
	}
	return k
}
