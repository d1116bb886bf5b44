package dataflow

import (
	"fmt"
	"strings"
)

// Mermaid renders g as a left-to-right Mermaid flowchart. Nodes are
// declared level by level. Links get longer with the level distance they
// span so that each level keeps its own column.
func Mermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, level := range g.Levels() {
		for _, n := range level.Nodes {
			fmt.Fprintf(&b, "    %s\n", n.Mermaid())
		}
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %s\n", mermaidEdge(e))
	}
	return b.String()
}

func mermaidEdge(e Edge) string {
	extra := max(e.Distance, 1) - 1
	switch e.Kind {
	case EdgeAlignment:
		return fmt.Sprintf("%s ~~~%s %s", e.From, strings.Repeat("~", extra), e.To)
	case EdgeSink:
		return fmt.Sprintf("%s --%s>|%q| %s", e.From, strings.Repeat("-", extra), e.Label, e.To)
	default:
		return fmt.Sprintf("%s --%s> %s", e.From, strings.Repeat("-", extra), e.To)
	}
}
