package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// RequireFields checks that every required field of def is non-empty, in
// declaration order. The stack alphabet is only required for a PDA.
func RequireFields(def *domain.Definition) error {
	kind, err := def.Family()
	if err != nil {
		return err
	}

	required := []struct {
		name  string
		value string
	}{
		{domain.FieldStates, def.States},
		{domain.FieldAlphabet, def.Alphabet},
		{domain.FieldStackAlphabet, def.StackAlphabet},
		{domain.FieldTransitions, def.Transitions},
		{domain.FieldInitialState, def.InitialState},
		{domain.FieldFinalStates, def.FinalStates},
	}

	for _, f := range required {
		if f.name == domain.FieldStackAlphabet && kind != domain.KindPDA {
			continue
		}
		if f.name == domain.FieldTransitions {
			if strings.TrimSpace(f.value) == "" {
				return &domain.MissingFieldError{Field: f.name}
			}
			continue
		}
		if len(domain.ParseList(f.value)) == 0 {
			return &domain.MissingFieldError{Field: f.name}
		}
	}
	return nil
}

// Build checks rel against the declarations of def and returns the resulting
// immutable Automaton. It stops at the first violation, in this order:
// missing fields, initial state, final states, then for each rule as written
// its states, its input symbol and, for a PDA, its stack symbols.
func Build(def *domain.Definition, rel *domain.Relation) (*domain.Automaton, error) {
	if err := RequireFields(def); err != nil {
		return nil, err
	}
	kind, _ := def.Family()
	if rel.Kind() != kind {
		return nil, fmt.Errorf("%w: relation parsed as %s, definition declares %s", domain.ErrUnsupportedKind, rel.Kind(), kind)
	}

	initial := domain.StripSpace(def.InitialState)
	a := domain.NewAutomaton(domain.AutomatonConfig{
		Kind:          kind,
		States:        domain.ParseList(def.States),
		Alphabet:      withoutEpsilon(domain.ParseList(def.Alphabet)),
		StackAlphabet: withoutEpsilon(domain.ParseList(def.StackAlphabet)),
		InitialState:  initial,
		FinalStates:   domain.ParseList(def.FinalStates),
		Relation:      rel,
	})

	if !a.HasState(initial) {
		return nil, &domain.UnknownStateReferenceError{State: initial, Field: domain.FieldInitialState}
	}
	for _, s := range a.FinalStates() {
		if !a.HasState(s) {
			return nil, &domain.UnknownStateReferenceError{State: s, Field: domain.FieldFinalStates}
		}
	}

	for _, rule := range rel.Rules() {
		if err := checkRule(a, rule); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func checkRule(a *domain.Automaton, rule domain.Rule) error {
	for _, s := range []string{rule.Key.State, rule.Target.State} {
		if !a.HasState(s) {
			return &domain.UnknownStateReferenceError{State: s, Line: rule.Line, Text: rule.Text}
		}
	}

	if a.Kind() == domain.KindPDA && !domain.SingleSymbol(rule.Key.Input) {
		return &domain.UnknownSymbolReferenceError{
			Symbol: rule.Key.Input,
			Field:  domain.FieldAlphabet,
			Line:   rule.Line,
			Text:   rule.Text,
			Reason: "is longer than one character",
		}
	}
	if !a.HasInputSymbol(rule.Key.Input) {
		return &domain.UnknownSymbolReferenceError{
			Symbol: rule.Key.Input,
			Field:  domain.FieldAlphabet,
			Line:   rule.Line,
			Text:   rule.Text,
		}
	}

	if a.Kind() != domain.KindPDA {
		return nil
	}

	if !domain.SingleSymbol(rule.Key.StackTop) {
		return &domain.UnknownSymbolReferenceError{
			Symbol: rule.Key.StackTop,
			Field:  domain.FieldStackAlphabet,
			Line:   rule.Line,
			Text:   rule.Text,
			Reason: "is longer than one character",
		}
	}

	stackSymbols := append([]string{rule.Key.StackTop}, domain.PushSymbols(rule.Target.Push)...)
	for _, s := range stackSymbols {
		if !a.HasStackSymbol(s) {
			return &domain.UnknownSymbolReferenceError{
				Symbol: s,
				Field:  domain.FieldStackAlphabet,
				Line:   rule.Line,
				Text:   rule.Text,
			}
		}
	}
	return nil
}

func withoutEpsilon(symbols []string) []string {
	out := symbols[:0]
	for _, s := range symbols {
		if !domain.IsEpsilon(s) {
			out = append(out, s)
		}
	}
	return out
}
