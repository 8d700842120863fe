package graph

import (
	"github.com/aretw0/automata/pkg/domain"
)

// Build converts a validated automaton into a renderer-agnostic diagram.
//
// Nodes are the synthetic start node followed by one node per state, in
// declaration order. Edges are the start edge followed by one edge per
// (key, target) pair of the relation, in written order. The start node is
// domain.StartNodeID unless a state already uses that name, in which case
// underscores are appended until it is unique.
func Build(a *domain.Automaton) domain.Diagram {
	states := a.States()
	rules := a.Relation().Rules()
	start := startID(a)

	d := domain.Diagram{
		Kind:  a.Kind(),
		Nodes: make([]domain.DiagramNode, 0, len(states)+1),
		Edges: make([]domain.DiagramEdge, 0, len(rules)+1),
	}

	d.Nodes = append(d.Nodes, domain.DiagramNode{ID: start, Synthetic: true})
	for _, s := range states {
		d.Nodes = append(d.Nodes, domain.DiagramNode{ID: s, Final: a.IsFinal(s)})
	}

	d.Edges = append(d.Edges, domain.DiagramEdge{
		From:  start,
		To:    a.InitialState(),
		Start: true,
	})
	for _, r := range rules {
		d.Edges = append(d.Edges, domain.DiagramEdge{
			From:  r.Key.State,
			To:    r.Target.State,
			Label: EdgeLabel(a.Kind(), r),
		})
	}

	return d
}

func startID(a *domain.Automaton) string {
	id := domain.StartNodeID
	for a.HasState(id) {
		id += "_"
	}
	return id
}

// EdgeLabel renders the label of one rule: the symbol for a finite
// automaton, "symbol,stackTop → push" for a pushdown automaton.
func EdgeLabel(kind domain.Kind, r domain.Rule) string {
	if kind == domain.KindPDA {
		return r.Key.Input + "," + r.Key.StackTop + " → " + r.Target.Push
	}
	return r.Key.Input
}
