package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/internal/compiler"
	"github.com/aretw0/automata/internal/runtime"
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

// anbn is the automaton used throughout: it pushes an A per a, pops one per b.
func anbn(t *testing.T) *domain.Automaton {
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

func TestEngine_Verdicts(t *testing.T) {
	a := anbn(t)
	engine := runtime.NewEngine()

	tests := []struct {
		input   string
		verdict domain.Verdict
		state   string
		stack   []string
		steps   int
		halted  bool
	}{
		{input: "abb", verdict: domain.VerdictAccepted, state: "q1", stack: []string{"Z"}, steps: 3, halted: true},
		{input: "ab", verdict: domain.VerdictRejected, state: "q1", stack: []string{}, steps: 3},
		{input: "aab", verdict: domain.VerdictRejected, state: "q0", stack: []string{"Z", "A"}, steps: 2, halted: true},
		{input: "", verdict: domain.VerdictRejected, state: "q0", stack: []string{"Z"}, steps: 1, halted: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			trace, err := engine.Run(context.Background(), a, tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.verdict, trace.Verdict)
			assert.Equal(t, tt.state, trace.FinalState)
			assert.Equal(t, tt.stack, trace.FinalStack)
			assert.Len(t, trace.Steps, tt.steps)
			assert.Equal(t, tt.halted, trace.Halted())
			assert.LessOrEqual(t, len(trace.Steps), len([]rune(tt.input))+1)
		})
	}
}

func TestEngine_TraceRecordsEveryStep(t *testing.T) {
	trace, err := runtime.NewEngine().Run(context.Background(), anbn(t), "abb")
	require.NoError(t, err)

	want := []string{
		"Transition: (q0, a, Z) → (q0, [Z, A])",
		"Transition: (q0, b, A) → (q1, [Z])",
		"Transition not found for (q1, b, Z)",
	}
	got := make([]string, len(trace.Steps))
	for i, s := range trace.Steps {
		got[i] = s.String()
		assert.Equal(t, i, s.Index)
	}
	assert.Equal(t, want, got)

	assert.Equal(t, "AZ", trace.Steps[0].Push)
	assert.Equal(t, 2, trace.Consumed)
	assert.Equal(t, []string{"q0", "q0", "q1"}, trace.Visited())
	assert.Equal(t, domain.ModeFirstChoice, trace.Mode)
}

func TestEngine_PushOrder(t *testing.T) {
	a := compile(t, domain.Definition{
		States:        "p",
		Alphabet:      "x",
		StackAlphabet: "A,B,C",
		Transitions:   "p,x,Z->p,ABCZ",
		InitialState:  "p",
		FinalStates:   "p",
	})

	trace, err := runtime.NewEngine().Run(context.Background(), a, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "C", "B", "A"}, trace.Steps[0].Stack, "first pushed symbol ends on top")
}

func TestEngine_EpsilonStackTop(t *testing.T) {
	// An ε stack top matches only an empty stack and pops nothing.
	a := compile(t, domain.Definition{
		States:        "q0,q1",
		Alphabet:      "a",
		StackAlphabet: "A",
		Transitions:   "q0,a,Z->q0,ε\nq0,ε,ε->q1,Z",
		InitialState:  "q0",
		FinalStates:   "q1",
	})

	trace, err := runtime.NewEngine().Run(context.Background(), a, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccepted, trace.Verdict)
	assert.Equal(t, "ε", trace.Steps[1].StackTop)
	assert.Equal(t, []string{"Z"}, trace.FinalStack)
}

func TestEngine_HaltReject(t *testing.T) {
	a := anbn(t)
	engine := runtime.NewEngine(runtime.WithHaltPolicy(runtime.HaltReject))

	trace, err := engine.Run(context.Background(), a, "abb")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictRejected, trace.Verdict, "halted with input left")

	// A missing rule on the trailing ε only means the input is exhausted.
	b := compile(t, domain.Definition{
		States:        "q0,q1",
		Alphabet:      "a",
		StackAlphabet: "A",
		Transitions:   "q0,a,Z->q1,Z",
		InitialState:  "q0",
		FinalStates:   "q1",
	})
	trace, err = engine.Run(context.Background(), b, "a")
	require.NoError(t, err)
	assert.True(t, trace.Halted())
	assert.Equal(t, domain.VerdictAccepted, trace.Verdict)
}

func TestEngine_StepLimit(t *testing.T) {
	a := compile(t, domain.Definition{
		States:        "q0",
		Alphabet:      "a",
		StackAlphabet: "A",
		Transitions:   "q0,a,Z->q0,AZ\nq0,a,A->q0,AA",
		InitialState:  "q0",
		FinalStates:   "q0",
	})

	_, err := runtime.NewEngine(runtime.WithStepLimit(2)).Run(context.Background(), a, "aaa")
	require.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	var limitErr *domain.StepLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 2, limitErr.Limit)

	trace, err := runtime.NewEngine(runtime.WithStepLimit(2)).
		Run(context.Background(), a, "aaa", runtime.WithRunStepLimit(5))
	require.NoError(t, err)
	assert.Equal(t, 3, trace.Consumed)
}

func TestEngine_ExploreFindsAcceptingPath(t *testing.T) {
	// Even-length palindromes: the first target always keeps pushing, so
	// only exploring the guess of the middle can accept.
	a := compile(t, domain.Definition{
		States:        "push,pop,done",
		Alphabet:      "a,b",
		StackAlphabet: "A,B",
		Transitions: `push,a,Z->push,AZ
push,a,A->push,AA
push,a,B->push,AB
push,b,Z->push,BZ
push,b,A->push,BA
push,b,B->push,BB
push,a,A->pop,ε
push,b,B->pop,ε
pop,a,A->pop,ε
pop,b,B->pop,ε
pop,ε,Z->done,Z`,
		InitialState: "push",
		FinalStates:  "done",
	})
	require.False(t, a.Deterministic())

	engine := runtime.NewEngine()

	first, err := engine.Run(context.Background(), a, "abba")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictRejected, first.Verdict)

	explored, err := engine.Run(context.Background(), a, "abba", runtime.WithRunMode(domain.ModeExplore))
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccepted, explored.Verdict)
	assert.Equal(t, domain.ModeExplore, explored.Mode)
	assert.Equal(t, "done", explored.FinalState)
	assert.Equal(t, []string{"push", "push", "push", "pop", "pop", "done"}, explored.Visited())

	rejected, err := engine.Run(context.Background(), a, "abab", runtime.WithRunMode(domain.ModeExplore))
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictRejected, rejected.Verdict)
	assert.Equal(t, domain.ModeExplore, rejected.Mode)

	_, err = engine.Run(context.Background(), a, "abbaabba",
		runtime.WithRunMode(domain.ModeExplore), runtime.WithRunStepLimit(3))
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
}

func TestEngine_ExploreAgreesOnDeterministicAutomata(t *testing.T) {
	a := anbn(t)
	engine := runtime.NewEngine(runtime.WithMode(domain.ModeExplore))

	for _, input := range []string{"abb", "ab", "aab", ""} {
		explored, err := engine.Run(context.Background(), a, input)
		require.NoError(t, err)
		first, err := engine.Run(context.Background(), a, input, runtime.WithRunMode(domain.ModeFirstChoice))
		require.NoError(t, err)
		assert.Equal(t, first.Verdict, explored.Verdict, input)
		assert.Equal(t, first.Steps, explored.Steps, input)
	}
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var (
		started []string
		steps   []int
		ended   []*domain.RunEvent
	)
	hooks := domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			assert.Equal(t, domain.EventRunStart, e.Type)
			started = append(started, e.Input)
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			steps = append(steps, e.Step.Index)
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			ended = append(ended, e)
		},
	}

	engine := runtime.NewEngine(runtime.WithLifecycleHooks(hooks))
	_, err := engine.Run(context.Background(), anbn(t), "abb")
	require.NoError(t, err)

	assert.Equal(t, []string{"abb"}, started)
	assert.Equal(t, []int{0, 1, 2}, steps)
	require.Len(t, ended, 1)
	assert.Equal(t, domain.VerdictAccepted, ended[0].Verdict)
	assert.Equal(t, 3, ended[0].Steps)
	assert.NoError(t, ended[0].Err)
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var endErr error
	engine := runtime.NewEngine(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) { endErr = e.Err },
	}))

	_, err := engine.Run(ctx, anbn(t), "abb")
	require.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, endErr, context.Canceled)
}

func TestEngine_FSAUnsupported(t *testing.T) {
	a := compile(t, domain.Definition{
		Kind:         domain.KindFSA,
		States:       "q0",
		Alphabet:     "a",
		Transitions:  "q0,a->q0",
		InitialState: "q0",
		FinalStates:  "q0",
	})

	_, err := runtime.NewEngine().Run(context.Background(), a, "a")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestEngine_RunsAreIndependent(t *testing.T) {
	a := anbn(t)
	engine := runtime.NewEngine()

	first, err := engine.Run(context.Background(), a, "abb")
	require.NoError(t, err)
	snapshot := first.Clone()

	_, err = engine.Run(context.Background(), a, "aab")
	require.NoError(t, err)
	assert.Equal(t, snapshot, first)
}
