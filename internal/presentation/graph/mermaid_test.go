package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/internal/compiler"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/internal/validator"
	"github.com/aretw0/automata/pkg/domain"
)

func compile(t *testing.T, def domain.Definition) *domain.Automaton {
	t.Helper()
	kind, err := def.Family()
	require.NoError(t, err)
	rel, err := compiler.NewParser().Parse(kind, def.Transitions)
	require.NoError(t, err)
	a, err := validator.Build(&def, rel)
	require.NoError(t, err)
	return a
}

func pda(t *testing.T) *domain.Automaton {
	return compile(t, domain.Definition{
		Kind:          domain.KindPDA,
		States:        "q0,q1",
		Alphabet:      "a,b",
		StackAlphabet: "A,Z",
		Transitions:   "q0,a,Z->q0,AZ\nq0,b,A->q1,ε\nq1,b,A->q1,ε\nq1,ε,Z->q1,ε",
		InitialState:  "q0",
		FinalStates:   "q1",
	})
}

func fsa(t *testing.T) *domain.Automaton {
	return compile(t, domain.Definition{
		Kind:         domain.KindFSA,
		States:       "even,odd,dead-end",
		Alphabet:     "0,1",
		Transitions:  "even,0->even\neven,1->odd\nodd,0->odd\nodd,1->even\nodd,1->dead-end",
		InitialState: "even",
		FinalStates:  "even",
	})
}

func TestBuild_Shape(t *testing.T) {
	for name, a := range map[string]*domain.Automaton{"pda": pda(t), "fsa": fsa(t)} {
		t.Run(name, func(t *testing.T) {
			d := graph.Build(a)

			assert.Len(t, d.Nodes, len(a.States())+1)
			assert.Len(t, d.Edges, a.Relation().Len()+1)

			assert.Equal(t, domain.DiagramNode{ID: domain.StartNodeID, Synthetic: true}, d.Nodes[0])
			start, ok := d.StartEdge()
			require.True(t, ok)
			assert.Equal(t, d.Edges[0], start)
			assert.Equal(t, a.InitialState(), start.To)

			for _, n := range d.Nodes[1:] {
				assert.Equal(t, a.IsFinal(n.ID), n.Final, n.ID)
			}
		})
	}
}

func TestBuild_Labels(t *testing.T) {
	d := graph.Build(pda(t))
	assert.Equal(t, domain.DiagramEdge{From: "q0", To: "q0", Label: "a,Z → AZ"}, d.Edges[1])
	assert.Equal(t, "ε,Z → ε", d.Edges[4].Label)

	d = graph.Build(fsa(t))
	assert.Equal(t, domain.DiagramEdge{From: "even", To: "odd", Label: "1"}, d.Edges[2])
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		diagram  domain.Diagram
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:    "PDA shapes and labels",
			diagram: graph.Build(pda(t)),
			contains: []string{
				"graph LR\n",
				"start_(( ))",
				"q0((\"q0\"))",
				"q1(((\"q1\")))",
				"start_ --> q0",
				"style start_ fill:#000",
				"q0 -- \"a,Z → AZ\" --> q0",
			},
			excludes: []string{"classDef"},
		},
		{
			name:    "generated IDs",
			diagram: graph.Build(fsa(t)),
			contains: []string{
				"n_0((\"dead-end\"))",
				"odd -- \"1\" --> n_0",
			},
		},
		{
			name: "label escaping",
			diagram: domain.Diagram{
				Nodes: []domain.DiagramNode{{ID: "end"}},
				Edges: []domain.DiagramEdge{{From: "end", To: "end", Label: `"x"`}},
			},
			contains: []string{
				"n_0((\"end\"))",
				"n_0 -- \"#quot;x#quot;\" --> n_0",
			},
		},
		{
			name:    "overlay",
			diagram: graph.Build(pda(t)),
			overlay: &graph.GraphOverlay{VisitedNodes: []string{"q0", "q0", "q1"}, CurrentNode: "q1"},
			contains: []string{
				"classDef visited",
				"class q0 visited;",
				"class q1 current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.diagram, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_DistinctIDs(t *testing.T) {
	a := compile(t, domain.Definition{
		Kind:         domain.KindFSA,
		States:       "q-1,q_1,n_0,ä,ö",
		Alphabet:     "a",
		Transitions:  "q-1,a->q_1\nä,a->ö",
		InitialState: "q-1",
		FinalStates:  "q_1",
	})
	out := graph.GenerateMermaid(graph.Build(a), &graph.GraphOverlay{CurrentNode: "q_1"})

	assert.Contains(t, out, "n_0((\"q-1\"))")
	assert.Contains(t, out, "n_1(((\"q_1\")))")
	assert.Contains(t, out, "n_2((\"n_0\"))")
	assert.Contains(t, out, "n_3((\"ä\"))")
	assert.Contains(t, out, "n_4((\"ö\"))")
	assert.Contains(t, out, "n_0 -- \"a\" --> n_1")
	assert.Contains(t, out, "n_3 -- \"a\" --> n_4")
	assert.Contains(t, out, "start_ --> n_0")
	assert.Contains(t, out, "class n_1 current;")
}

func TestBuild_StartNameTaken(t *testing.T) {
	a := compile(t, domain.Definition{
		Kind:         domain.KindFSA,
		States:       "__start__,q1",
		Alphabet:     "a",
		Transitions:  "__start__,a->q1",
		InitialState: "__start__",
		FinalStates:  "q1",
	})
	d := graph.Build(a)

	require.Len(t, d.Nodes, 3)
	ids := map[string]int{}
	for _, n := range d.Nodes {
		ids[n.ID]++
	}
	assert.Equal(t, map[string]int{"__start___": 1, "__start__": 1, "q1": 1}, ids)
	assert.Equal(t, domain.DiagramNode{ID: "__start___", Synthetic: true}, d.Nodes[0])

	start, ok := d.StartEdge()
	require.True(t, ok)
	assert.Equal(t, domain.DiagramEdge{From: "__start___", To: "__start__", Start: true}, start)

	out := graph.GenerateMermaid(d, nil)
	assert.Contains(t, out, "start_ --> n_0")
	assert.Contains(t, out, "n_0 -- \"a\" --> q1")
}

func TestGenerateMermaid_VisitedOnce(t *testing.T) {
	out := graph.GenerateMermaid(graph.Build(pda(t)), &graph.GraphOverlay{VisitedNodes: []string{"q0", "q0", "q0"}})
	assert.Equal(t, 1, strings.Count(out, "class q0 visited;"))
}

func TestOverlayFromTrace(t *testing.T) {
	assert.Nil(t, graph.OverlayFromTrace(nil))

	trace := &domain.Trace{
		Initial:    "q0",
		FinalState: "q1",
		Steps: []domain.Step{
			{From: "q0", To: "q0"},
			{From: "q0", To: "q1"},
			{From: "q1", Halted: true},
		},
	}
	overlay := graph.OverlayFromTrace(trace)
	assert.Equal(t, []string{"q0", "q0", "q1"}, overlay.VisitedNodes)
	assert.Equal(t, "q1", overlay.CurrentNode)
}

func TestGenerateDOT(t *testing.T) {
	out := graph.GenerateDOT(graph.Build(pda(t)))

	assert.True(t, strings.HasPrefix(out, "digraph automaton {\n"))
	assert.Contains(t, out, `"__start__" [shape=point, label=""];`)
	assert.Contains(t, out, `"q1" [shape=doublecircle, fillcolor=lightblue];`)
	assert.Contains(t, out, `"__start__" -> "q0";`)
	assert.Contains(t, out, `"q0" -> "q0" [label="a,Z → AZ", arrowhead=box];`)
	assert.Equal(t, 5, strings.Count(out, " -> "))

	fsaOut := graph.GenerateDOT(graph.Build(fsa(t)))
	assert.Contains(t, fsaOut, `"odd" -> "dead-end" [label="1"];`)
	assert.NotContains(t, fsaOut, "arrowhead")
}
