// Package dataflow builds the leveled dependency graph of a pipeline for
// documentation. It reads step metadata only and never touches tables.
package dataflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// SinkName is the name of the node standing for the final joined table.
const SinkName = hub.RootName

// Shape is a Mermaid node shape written as its opening and closing
// brackets, e.g. "[()]" renders as name[(name)].
type Shape string

// Node shapes.
const (
	ShapeInput        Shape = "[()]"
	ShapeJoined       Shape = "([])"
	ShapeIntermediate Shape = "[]"
	ShapeSink         Shape = "(())"
)

// Open returns the opening bracket sequence.
func (s Shape) Open() string {
	return string(s[:len(s)/2])
}

// Close returns the closing bracket sequence.
func (s Shape) Close() string {
	return string(s[len(s)/2:])
}

// Node is one table in the graph. ID is unique within the graph and safe
// to use as a Mermaid identifier; it equals Name for plain identifier
// names. Parents and Children hold dependency edges only; alignment and
// sink edges live on the Graph.
type Node struct {
	ID       string
	Name     string
	Join     hub.JoinKind
	Keys     []string
	Level    int
	Shape    Shape
	Parents  []*Node
	Children []*Node
}

func (n *Node) addChild(child *Node) {
	child.Parents = append(child.Parents, n)
	n.Children = append(n.Children, child)
}

// Equal compares name, level, shape and the sorted names of parents and
// children.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Name == other.Name &&
		n.Level == other.Level &&
		n.Shape == other.Shape &&
		equalStrings(names(n.Parents), names(other.Parents)) &&
		equalStrings(names(n.Children), names(other.Children))
}

// JoinLabel describes how the node joins onto the root, e.g. "left(id)".
func (n *Node) JoinLabel() string {
	return fmt.Sprintf("%s(%s)", n.Join, strings.Join(n.Keys, ", "))
}

// Mermaid returns the node declaration, e.g. "table1[(table1)]". The label
// is quoted when the ID differs from the name.
func (n *Node) Mermaid() string {
	label := n.Name
	if n.ID != n.Name {
		label = `"` + strings.ReplaceAll(n.Name, `"`, "#quot;") + `"`
	}
	return n.ID + n.Shape.Open() + label + n.Shape.Close()
}

// mermaidKeywords cannot be used as node IDs.
var mermaidKeywords = map[string]bool{
	"end":       true,
	"graph":     true,
	"flowchart": true,
	"subgraph":  true,
	"direction": true,
	"style":     true,
	"class":     true,
	"classdef":  true,
	"click":     true,
	"linkstyle": true,
	"default":   true,
}

// mermaidID replaces every character outside [A-Za-z0-9_] with an
// underscore and moves keywords out of the way.
func mermaidID(name string) string {
	id := []byte(name)
	for i, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			id[i] = '_'
		}
	}
	out := string(id)
	if out == "" || mermaidKeywords[strings.ToLower(out)] {
		out = "t_" + out
	}
	return out
}

// String implements fmt.Stringer for test failure output.
func (n *Node) String() string {
	return fmt.Sprintf("%s@%d%s parents=%v children=%v",
		n.Name, n.Level, n.Shape, names(n.Parents), names(n.Children))
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
