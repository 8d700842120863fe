package dsl

import (
	"fmt"

	"github.com/aretw0/automata/pkg/domain"
)

// StateBuilder provides a fluent API for configuring a state and the rules
// leaving it.
type StateBuilder struct {
	id      string
	initial bool
	final   bool
	rules   []domain.Rule
	builder *Builder
}

// Initial marks the state as the start state.
func (s *StateBuilder) Initial() *StateBuilder {
	s.initial = true
	return s
}

// Final marks the state as accepting.
func (s *StateBuilder) Final() *StateBuilder {
	s.final = true
	return s
}

// Go adds a finite-automaton rule reading symbol into target.
func (s *StateBuilder) Go(symbol, target string) *StateBuilder {
	if s.builder.kind != domain.KindFSA {
		s.builder.errs = append(s.builder.errs, fmt.Errorf("state %s: Go needs a finite automaton, use Move", s.id))
		return s
	}
	s.builder.State(target)
	s.rules = append(s.rules, domain.Rule{
		Key:    domain.Key{State: s.id, Input: domain.NormalizeSymbol(symbol)},
		Target: domain.Target{State: target},
	})
	return s
}

// Move adds a pushdown rule: read symbol with top on the stack, go to target
// and push push (first character on top). An empty push means ε.
func (s *StateBuilder) Move(symbol, top, target, push string) *StateBuilder {
	if s.builder.kind != domain.KindPDA {
		s.builder.errs = append(s.builder.errs, fmt.Errorf("state %s: Move needs a pushdown automaton, use Go", s.id))
		return s
	}
	if push == "" {
		push = domain.Epsilon
	}
	s.builder.State(target)
	s.rules = append(s.rules, domain.Rule{
		Key: domain.Key{
			State:    s.id,
			Input:    domain.NormalizeSymbol(symbol),
			StackTop: domain.NormalizeSymbol(top),
		},
		Target: domain.Target{State: target, Push: domain.NormalizeSymbol(push)},
	})
	return s
}
