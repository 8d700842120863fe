package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/dsl"
)

func TestBuilder_PDA(t *testing.T) {
	b := dsl.PDA()
	b.State("q0").Initial().
		Move("a", "Z", "q0", "AZ").
		Move("b", "A", "q1", "")
	b.State("q1").Final().
		Move("b", "A", "q1", "").
		Move("eps", "Z", "q1", "")

	def, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.Definition{
		Kind:          domain.KindPDA,
		States:        "q0,q1",
		Alphabet:      "a,b",
		StackAlphabet: "Z,A",
		Transitions:   "q0,a,Z->q0,AZ\nq0,b,A->q1,ε\nq1,b,A->q1,ε\nq1,ε,Z->q1,ε",
		InitialState:  "q0",
		FinalStates:   "q1",
	}, def)
}

func TestBuilder_FSA(t *testing.T) {
	b := dsl.FSA().Alphabet("0", "1", "0")
	b.State("even").Initial().Final().
		Go("0", "even").
		Go("1", "odd")
	b.State("odd").
		Go("0", "odd").
		Go("1", "even")

	def, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.KindFSA, def.Kind)
	assert.Equal(t, "even,odd", def.States)
	assert.Equal(t, "0,1", def.Alphabet)
	assert.Empty(t, def.StackAlphabet)
	assert.Equal(t, "even,0->even\neven,1->odd\nodd,0->odd\nodd,1->even", def.Transitions)
	assert.Equal(t, "even", def.FinalStates)
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *dsl.Builder
		msg   string
	}{
		{
			name: "no initial state",
			build: func() *dsl.Builder {
				b := dsl.FSA()
				b.State("q0").Go("a", "q0")
				return b
			},
			msg: "no initial state",
		},
		{
			name: "two initial states",
			build: func() *dsl.Builder {
				b := dsl.FSA()
				b.State("q0").Initial()
				b.State("q1").Initial()
				return b
			},
			msg: "more than one initial state: q0, q1",
		},
		{
			name: "pushdown rule on a finite automaton",
			build: func() *dsl.Builder {
				b := dsl.FSA()
				b.State("q0").Initial().Move("a", "Z", "q0", "")
				return b
			},
			msg: "use Go",
		},
		{
			name: "finite rule on a pushdown automaton",
			build: func() *dsl.Builder {
				b := dsl.PDA()
				b.State("q0").Initial().Go("a", "q0")
				return b
			},
			msg: "use Move",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBuilder_StateReturnsExisting(t *testing.T) {
	b := dsl.FSA()
	first := b.State("q0").Initial()
	assert.Same(t, first, b.State("q0"))
}
