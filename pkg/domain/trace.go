package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Verdict is the outcome of a PDA run.
type Verdict string

const (
	VerdictAccepted Verdict = "Accepted"
	VerdictRejected Verdict = "Rejected"
)

// RunMode selects how the engine treats several targets for one key.
type RunMode string

const (
	// ModeFirstChoice always follows the first target in declaration order.
	ModeFirstChoice RunMode = "first-choice"
	// ModeExplore follows every target and accepts if any path accepts.
	ModeExplore RunMode = "explore"
)

// ParseRunMode resolves a mode name; empty means ModeFirstChoice.
func ParseRunMode(name string) (RunMode, error) {
	switch RunMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeFirstChoice:
		return ModeFirstChoice, nil
	case ModeExplore:
		return ModeExplore, nil
	}
	return "", fmt.Errorf("unknown run mode %q", name)
}

// Step is one record of a run. Stack snapshots list symbols bottom to top.
// A Halted step marks a configuration with no matching rule; its To and Push
// are empty and Stack is the stack at the halt.
type Step struct {
	Index    int      `json:"index"`
	From     string   `json:"from"`
	Symbol   string   `json:"symbol"`
	StackTop string   `json:"stack_top"`
	To       string   `json:"to,omitempty"`
	Push     string   `json:"push,omitempty"`
	Stack    []string `json:"stack"`
	Halted   bool     `json:"halted,omitempty"`
}

func (s Step) String() string {
	key := Key{State: s.From, Input: s.Symbol, StackTop: s.StackTop}
	if s.Halted {
		return fmt.Sprintf("Transition not found for %s", key)
	}
	return fmt.Sprintf("Transition: %s → (%s, %s)", key, s.To, FormatStack(s.Stack))
}

// Trace is the immutable log of one PDA run.
type Trace struct {
	Input      string   `json:"input"`
	Mode       RunMode  `json:"mode"`
	Initial    string   `json:"initial_state"`
	Steps      []Step   `json:"steps"`
	Verdict    Verdict  `json:"verdict"`
	FinalState string   `json:"final_state"`
	FinalStack []string `json:"final_stack"`
	// Consumed counts the real (non-epsilon) input symbols read.
	Consumed int `json:"consumed"`
}

// Accepted reports whether the run ended with VerdictAccepted.
func (t *Trace) Accepted() bool {
	return t.Verdict == VerdictAccepted
}

// Halted reports whether the run stopped on a missing transition.
func (t *Trace) Halted() bool {
	return len(t.Steps) > 0 && t.Steps[len(t.Steps)-1].Halted
}

// Visited lists the states the run went through, starting with the initial
// state, in order. Repeated visits are kept.
func (t *Trace) Visited() []string {
	visited := []string{t.Initial}
	for _, s := range t.Steps {
		if !s.Halted {
			visited = append(visited, s.To)
		}
	}
	return visited
}

// Clone returns a deep copy of the trace.
func (t *Trace) Clone() *Trace {
	if t == nil {
		return nil
	}
	c := *t
	c.FinalStack = slices.Clone(t.FinalStack)
	c.Steps = make([]Step, len(t.Steps))
	for i, s := range t.Steps {
		s.Stack = slices.Clone(s.Stack)
		c.Steps[i] = s
	}
	return &c
}

// FormatStack renders a stack bottom to top, e.g. "[Z, A]".
func FormatStack(stack []string) string {
	return "[" + strings.Join(stack, ", ") + "]"
}

// Run is a stored simulation: the input and its trace, never the definition.
type Run struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Trace     *Trace    `json:"trace"`
	CreatedAt time.Time `json:"created_at"`
}
