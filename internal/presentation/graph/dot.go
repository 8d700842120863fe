package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// GenerateDOT produces a Graphviz digraph from a diagram. Final states are
// drawn as double circles; the start node is an invisible point.
func GenerateDOT(d domain.Diagram) string {
	var sb strings.Builder

	sb.WriteString("digraph automaton {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle, style=filled, fillcolor=lightgray];\n")
	sb.WriteString("\n")

	for _, node := range d.Nodes {
		switch {
		case node.Synthetic:
			sb.WriteString(fmt.Sprintf("  %s [shape=point, label=\"\"];\n", quoteDOT(node.ID)))
		case node.Final:
			sb.WriteString(fmt.Sprintf("  %s [shape=doublecircle, fillcolor=lightblue];\n", quoteDOT(node.ID)))
		default:
			sb.WriteString(fmt.Sprintf("  %s;\n", quoteDOT(node.ID)))
		}
	}
	sb.WriteString("\n")

	arrowhead := ""
	if d.Kind == domain.KindPDA {
		arrowhead = ", arrowhead=box"
	}
	for _, e := range d.Edges {
		if e.Start {
			sb.WriteString(fmt.Sprintf("  %s -> %s;\n", quoteDOT(e.From), quoteDOT(e.To)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s -> %s [label=%s%s];\n", quoteDOT(e.From), quoteDOT(e.To), quoteDOT(e.Label), arrowhead))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func quoteDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
