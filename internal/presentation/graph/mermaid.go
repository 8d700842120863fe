package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// GraphOverlay contains run data to highlight on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromTrace highlights the states a run went through and the state
// it ended in.
func OverlayFromTrace(t *domain.Trace) *GraphOverlay {
	if t == nil {
		return nil
	}
	return &GraphOverlay{VisitedNodes: t.Visited(), CurrentNode: t.FinalState}
}

// GenerateMermaid produces a Mermaid flowchart from a diagram.
// Shapes follow the usual automaton notation:
// - Start: small filled circle
// - Final: (((Double circle)))
// - Other: ((Circle))
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(d domain.Diagram, overlay *GraphOverlay) string {
	ids := newMermaidIDs(d)

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range d.Nodes {
		safeID := ids.get(node.ID)
		switch {
		case node.Synthetic:
			sb.WriteString(fmt.Sprintf("    %s(( ))\n", safeID))
		case node.Final:
			sb.WriteString(fmt.Sprintf("    %s(((\"%s\")))\n", safeID, escapeLabel(node.ID)))
		default:
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", safeID, escapeLabel(node.ID)))
		}
	}

	for _, e := range d.Edges {
		from, to := ids.get(e.From), ids.get(e.To)
		if e.Label == "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", from, escapeLabel(e.Label), to))
	}

	for _, node := range d.Nodes {
		if node.Synthetic {
			sb.WriteString("    style " + ids.get(node.ID) + " fill:#000,stroke:#000\n")
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) so labels stay readable on both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID, ok := ids.lookup(id)
			if ok && !visitedSet[safeID] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if safeID, ok := ids.lookup(overlay.CurrentNode); ok {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeID))
		}
	}

	return sb.String()
}

// mermaidIDs assigns every node a distinct Mermaid identifier. Plain
// alphanumeric names are used as is; any other name, and the synthetic
// start node, gets a generated identifier containing an underscore, so the
// two groups never meet.
type mermaidIDs struct {
	byName map[string]string
	next   int
}

func newMermaidIDs(d domain.Diagram) *mermaidIDs {
	m := &mermaidIDs{byName: make(map[string]string, len(d.Nodes))}
	for _, node := range d.Nodes {
		if node.Synthetic {
			m.byName[node.ID] = "start_"
		}
	}
	for _, node := range d.Nodes {
		m.get(node.ID)
	}
	return m
}

func (m *mermaidIDs) lookup(name string) (string, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// get returns the identifier of name, assigning one on first use.
func (m *mermaidIDs) get(name string) string {
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := name
	if !plainMermaidID(name) {
		id = fmt.Sprintf("n_%d", m.next)
		m.next++
	}
	m.byName[name] = id
	return id
}

func plainMermaidID(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	// Mermaid reserves "end" as a keyword.
	return !strings.EqualFold(name, "end")
}

// escapeLabel replaces characters that terminate a quoted Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
