package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/domain"
)

func acceptedTrace() *domain.Trace {
	return &domain.Trace{
		Input:   "abb",
		Mode:    domain.ModeFirstChoice,
		Initial: "q0",
		Steps: []domain.Step{
			{Index: 0, From: "q0", Symbol: "a", StackTop: "Z", To: "q0", Push: "AZ", Stack: []string{"Z", "A"}},
			{Index: 1, From: "q0", Symbol: "b", StackTop: "A", To: "q1", Push: "ε", Stack: []string{"Z"}},
			{Index: 2, From: "q1", Symbol: "b", StackTop: "Z", Stack: []string{"Z"}, Halted: true},
		},
		Verdict:    domain.VerdictAccepted,
		FinalState: "q1",
		FinalStack: []string{"Z"},
		Consumed:   2,
	}
}

func TestFormatLog(t *testing.T) {
	want := `Initial State: q0, Stack: [Z]
Transition: (q0, a, Z) → (q0, [Z, A])
Transition: (q0, b, A) → (q1, [Z])
Transition not found for (q1, b, Z).
Input Accepted!
`
	assert.Equal(t, want, tui.FormatLog(acceptedTrace()))

	rejected := acceptedTrace()
	rejected.Verdict = domain.VerdictRejected
	assert.True(t, strings.HasSuffix(tui.FormatLog(rejected), "Input Rejected\n"))
}

func TestReport(t *testing.T) {
	out := tui.Report(acceptedTrace())

	assert.Contains(t, out, "# Run `abb`")
	assert.Contains(t, out, "- **Verdict:** Accepted")
	assert.Contains(t, out, "- **Symbols consumed:** 2 of 3")
	assert.Contains(t, out, "| 0 | q0 | a | Z | q0 | AZ | `[Z, A]` |")
	assert.Contains(t, out, "| 2 | q1 | b | Z | *no transition* | | `[Z]` |")

	empty := &domain.Trace{Verdict: domain.VerdictRejected, FinalStack: []string{}}
	assert.Contains(t, tui.Report(empty), "# Run `ε`")
}

func TestRenderers(t *testing.T) {
	plain := tui.NewPlainRenderer()
	out, err := plain("# title")
	require.NoError(t, err)
	assert.Equal(t, "# title", out)

	render, err := tui.NewRenderer(80)
	require.NoError(t, err)
	out, err = render(tui.Report(acceptedTrace()))
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted")
}

func TestVerdictWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "Accepted", tui.Verdict(domain.VerdictAccepted))
	assert.Equal(t, "Rejected", tui.Verdict(domain.VerdictRejected))

	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "|_| |_| |_|")
}
