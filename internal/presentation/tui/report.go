package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// FormatLog renders a trace as a plain step log:
//
//	Initial State: q0, Stack: [Z]
//	Transition: (q0, a, Z) → (q0, [Z, A])
//	...
//	Input Accepted!
func FormatLog(t *domain.Trace) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Initial State: %s, Stack: %s\n", t.Initial, domain.FormatStack([]string{domain.BottomMarker}))
	for _, s := range t.Steps {
		sb.WriteString(s.String())
		if s.Halted {
			sb.WriteString(".")
		}
		sb.WriteString("\n")
	}
	if t.Accepted() {
		sb.WriteString("Input Accepted!\n")
	} else {
		sb.WriteString("Input Rejected\n")
	}
	return sb.String()
}

// Report renders a trace as a markdown document: a summary followed by one
// table row per step.
func Report(t *domain.Trace) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run `%s`\n\n", displayInput(t.Input))
	fmt.Fprintf(&sb, "- **Verdict:** %s\n", t.Verdict)
	fmt.Fprintf(&sb, "- **Mode:** %s\n", t.Mode)
	fmt.Fprintf(&sb, "- **Final state:** %s\n", t.FinalState)
	fmt.Fprintf(&sb, "- **Final stack:** `%s`\n", domain.FormatStack(t.FinalStack))
	fmt.Fprintf(&sb, "- **Symbols consumed:** %d of %d\n\n", t.Consumed, len([]rune(t.Input)))

	sb.WriteString("| # | From | Read | Top | To | Push | Stack |\n")
	sb.WriteString("|---|------|------|-----|----|------|-------|\n")
	for _, s := range t.Steps {
		if s.Halted {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | *no transition* | | `%s` |\n",
				s.Index, cell(s.From), cell(s.Symbol), cell(s.StackTop), domain.FormatStack(s.Stack))
			continue
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | `%s` |\n",
			s.Index, cell(s.From), cell(s.Symbol), cell(s.StackTop), cell(s.To), cell(s.Push), domain.FormatStack(s.Stack))
	}
	return sb.String()
}

func displayInput(s string) string {
	if s == "" {
		return domain.Epsilon
	}
	return s
}

// cell escapes the table separator.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
