package dataflow

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/datahub/internal/domain/hub"
)

// EdgeKind distinguishes the edges of a Graph.
type EdgeKind int

const (
	// EdgeDependency links a table to a step consuming it.
	EdgeDependency EdgeKind = iota
	// EdgeAlignment is an invisible link that keeps an orphan node in its column.
	EdgeAlignment
	// EdgeSink links a joined table to the root sink.
	EdgeSink
)

// String returns the edge kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeDependency:
		return "dependency"
	case EdgeAlignment:
		return "alignment"
	case EdgeSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Edge is a directed link between two nodes, named by node ID. Distance
// is the level difference between target and source.
type Edge struct {
	From     string
	To       string
	Kind     EdgeKind
	Distance int
	Label    string
}

// Level groups the nodes sharing a level, in build order.
type Level struct {
	Number int
	Nodes  []*Node
}

// Graph is the leveled dataflow of a pipeline. Build a fresh one for
// every report.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
	ids    map[string]bool
	edges  []Edge
	sink   *Node
}

// Build creates the graph for steps and the externally supplied inputs.
// Inputs sit at level -1 and steps at their rank. Empty input nodes are
// fine: only metadata is read.
func Build(steps []hub.StepSpec, inputs []hub.TableNode) *Graph {
	g := &Graph{
		byName: make(map[string]*Node),
		ids:    map[string]bool{SinkName: true},
	}

	for _, in := range inputs {
		g.add(&Node{
			ID:    g.newID(in.Name()),
			Name:  in.Name(),
			Join:  in.Join(),
			Keys:  in.Keys(),
			Level: -1,
			Shape: ShapeInput,
		})
	}

	ordered := append([]hub.StepSpec(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank < ordered[j].Rank
	})

	for _, step := range ordered {
		shape := ShapeIntermediate
		if step.Join.Joins() {
			shape = ShapeJoined
		}
		node := &Node{
			ID:    g.newID(step.Name),
			Name:  step.Name,
			Join:  step.Join,
			Keys:  append([]string(nil), step.Keys...),
			Level: step.Rank,
			Shape: shape,
		}
		for _, input := range step.Inputs {
			parent, ok := g.byName[input]
			if !ok {
				continue
			}
			parent.addChild(node)
			g.edges = append(g.edges, Edge{
				From:     parent.ID,
				To:       node.ID,
				Kind:     EdgeDependency,
				Distance: node.Level - parent.Level,
			})
		}
		g.add(node)
	}

	g.alignOrphans()
	g.addSink()
	return g
}

// newID derives a Mermaid-safe node ID from name that no other node uses.
// The sink always owns SinkName.
func (g *Graph) newID(name string) string {
	base := mermaidID(name)
	id := base
	for i := 2; g.ids[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	g.ids[id] = true
	return id
}

func (g *Graph) add(n *Node) {
	g.nodes = append(g.nodes, n)
	if _, exists := g.byName[n.Name]; !exists {
		g.byName[n.Name] = n
	}
}

// alignOrphans links every parentless node at level >= 0 to a node of the
// nearest lower populated level, picked by position.
func (g *Graph) alignOrphans() {
	levels := g.Levels()
	for i := 1; i < len(levels); i++ {
		cur, prev := levels[i], levels[i-1]
		if cur.Number < 0 {
			continue
		}
		for pos, n := range cur.Nodes {
			if len(n.Parents) > 0 {
				continue
			}
			source := prev.Nodes[min(pos, len(prev.Nodes)-1)]
			g.edges = append(g.edges, Edge{
				From:     source.ID,
				To:       n.ID,
				Kind:     EdgeAlignment,
				Distance: cur.Number - prev.Number,
			})
		}
	}
}

func (g *Graph) addSink() {
	level := 0
	if len(g.nodes) > 0 {
		level = g.nodes[0].Level
		for _, n := range g.nodes {
			level = max(level, n.Level)
		}
		level++
	}

	sink := &Node{ID: SinkName, Name: SinkName, Join: hub.JoinNone, Level: level, Shape: ShapeSink}
	for _, n := range g.nodes {
		if !n.Join.Joins() {
			continue
		}
		g.edges = append(g.edges, Edge{
			From:     n.ID,
			To:       sink.ID,
			Kind:     EdgeSink,
			Distance: sink.Level - n.Level,
			Label:    n.JoinLabel(),
		})
	}
	g.sink = sink
	g.nodes = append(g.nodes, sink)
	g.byName[SinkName] = sink
}

// Nodes returns every node in build order; the sink is last.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Node returns the first node built under name. SinkName always resolves
// to the sink.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Sink returns the root sink node.
func (g *Graph) Sink() *Node {
	return g.sink
}

// Edges returns every edge: dependencies in build order, then alignment
// edges, then sink edges.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Levels groups the nodes by ascending level.
func (g *Graph) Levels() []Level {
	byLevel := make(map[int][]*Node)
	for _, n := range g.nodes {
		byLevel[n.Level] = append(byLevel[n.Level], n)
	}

	numbers := make([]int, 0, len(byLevel))
	for number := range byLevel {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	levels := make([]Level, len(numbers))
	for i, number := range numbers {
		levels[i] = Level{Number: number, Nodes: byLevel[number]}
	}
	return levels
}

// Equal reports whether both graphs have pairwise equal nodes in the same
// order and the same edges.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for i := range g.nodes {
		if !g.nodes[i].Equal(other.nodes[i]) {
			return false
		}
	}
	for i := range g.edges {
		if g.edges[i] != other.edges[i] {
			return false
		}
	}
	return true
}
