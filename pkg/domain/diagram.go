package domain

// StartNodeID is the synthetic pseudo-node the start edge leaves from.
const StartNodeID = "__start__"

// DiagramNode is one node of a rendered automaton.
type DiagramNode struct {
	ID        string `json:"id"`
	Final     bool   `json:"is_final"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// DiagramEdge is one arrow of a rendered automaton.
type DiagramEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	Start bool   `json:"start,omitempty"`
}

// Diagram is the renderer-agnostic description of an automaton. Nodes start
// with the synthetic start node; Edges start with the start edge.
type Diagram struct {
	Kind  Kind          `json:"kind"`
	Nodes []DiagramNode `json:"nodes"`
	Edges []DiagramEdge `json:"edges"`
}

// StartEdge returns the edge from the synthetic start node to the initial
// state.
func (d Diagram) StartEdge() (DiagramEdge, bool) {
	for _, e := range d.Edges {
		if e.Start {
			return e, true
		}
	}
	return DiagramEdge{}, false
}
