package domain

import "fmt"

// Key identifies the left-hand side of a rule.
// StackTop is empty for finite-state automata.
type Key struct {
	State    string `json:"state"`
	Input    string `json:"input"`
	StackTop string `json:"stack_top,omitempty"`
}

func (k Key) String() string {
	if k.StackTop == "" {
		return fmt.Sprintf("(%s, %s)", k.State, k.Input)
	}
	return fmt.Sprintf("(%s, %s, %s)", k.State, k.Input, k.StackTop)
}

// Target is one right-hand side of a rule.
// Push is empty for finite-state automata and Epsilon for a PDA pop-only move.
type Target struct {
	State string `json:"state"`
	Push  string `json:"push,omitempty"`
}

// Rule is a single transition as written by the user.
type Rule struct {
	// Line is the 1-based line number in the transitions text.
	Line int `json:"line"`
	// Text is the original line, untouched.
	Text   string `json:"text"`
	Key    Key    `json:"key"`
	Target Target `json:"target"`
}

// Canonical renders the rule in the line grammar of its family.
func (r Rule) Canonical(kind Kind) string {
	if kind == KindFSA {
		return fmt.Sprintf("%s,%s->%s", r.Key.State, r.Key.Input, r.Target.State)
	}
	return fmt.Sprintf("%s,%s,%s->%s,%s", r.Key.State, r.Key.Input, r.Key.StackTop, r.Target.State, r.Target.Push)
}
