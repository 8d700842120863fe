package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Epsilon is the empty symbol/string sentinel.
// It is never a member of a declared alphabet.
const Epsilon = "ε"

// BottomMarker is the stack symbol present before any push.
// A PDA accepts only when its stack holds exactly this marker.
const BottomMarker = "Z"

// IsEpsilon reports whether s spells the empty symbol.
// The ASCII spellings "eps" and "epsilon" are accepted as aliases.
func IsEpsilon(s string) bool {
	switch s {
	case Epsilon, "eps", "epsilon":
		return true
	}
	return false
}

// NormalizeSymbol maps every epsilon spelling to Epsilon.
func NormalizeSymbol(s string) string {
	if IsEpsilon(s) {
		return Epsilon
	}
	return s
}

// PushSymbols splits a push string into stack symbols, top-most first.
// An epsilon push yields no symbols.
func PushSymbols(push string) []string {
	if push == "" || IsEpsilon(push) {
		return nil
	}
	symbols := make([]string, 0, len(push))
	for _, r := range push {
		s := string(r)
		if s == Epsilon {
			continue
		}
		symbols = append(symbols, s)
	}
	return symbols
}

// SingleSymbol reports whether s is ε or exactly one character, the only
// symbols a run can read from its input or its stack.
func SingleSymbol(s string) bool {
	return IsEpsilon(s) || utf8.RuneCountInString(s) == 1
}

// StripSpace removes every whitespace character from s. Transition lines and
// declared names are compared after stripping, so "q 0" and "q0" are the
// same state.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseList splits a comma-separated field into items with all whitespace
// removed. Empty items are dropped and duplicates collapse onto their first
// occurrence.
func ParseList(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = StripSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		items = append(items, p)
	}
	return items
}

// Kind identifies the automaton family.
type Kind string

const (
	// KindFSA is a finite-state automaton (DFA or NFA). It has no stack.
	KindFSA Kind = "fsa"
	// KindPDA is a pushdown automaton.
	KindPDA Kind = "pda"
)

// ParseKind resolves a family name. "dfa" and "nfa" are aliases of KindFSA;
// an empty name defaults to KindPDA.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pda":
		return KindPDA, nil
	case "fsa", "dfa", "nfa":
		return KindFSA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}
