package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	kind          domain.Kind
	order         []string
	states        map[string]*StateBuilder
	alphabet      []string
	stackAlphabet []string
	errs          []error
}

// New creates a builder for the given automaton family.
func New(kind domain.Kind) *Builder {
	return &Builder{
		kind:   kind,
		states: make(map[string]*StateBuilder),
	}
}

// FSA creates a builder for a finite-state automaton.
func FSA() *Builder { return New(domain.KindFSA) }

// PDA creates a builder for a pushdown automaton.
func PDA() *Builder { return New(domain.KindPDA) }

// Alphabet declares the input alphabet explicitly.
func (b *Builder) Alphabet(symbols ...string) *Builder {
	b.alphabet = append(b.alphabet, symbols...)
	return b
}

// StackAlphabet declares the stack alphabet explicitly.
func (b *Builder) StackAlphabet(symbols ...string) *Builder {
	b.stackAlphabet = append(b.stackAlphabet, symbols...)
	return b
}

// State adds a state. If the state already exists, it returns the existing
// builder.
func (b *Builder) State(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build renders the definition. It fails when no state or more than one
// state is marked initial, or when a rule does not fit the family.
func (b *Builder) Build() (domain.Definition, error) {
	errs := append([]error(nil), b.errs...)

	var (
		initial []string
		finals  []string
		rules   []string
		inputs  []string
		stack   []string
	)
	for _, id := range b.order {
		sb := b.states[id]
		if sb.initial {
			initial = append(initial, id)
		}
		if sb.final {
			finals = append(finals, id)
		}
		for _, r := range sb.rules {
			rules = append(rules, r.Canonical(b.kind))
			if !domain.IsEpsilon(r.Key.Input) {
				inputs = append(inputs, r.Key.Input)
			}
			if b.kind == domain.KindPDA {
				if !domain.IsEpsilon(r.Key.StackTop) {
					stack = append(stack, r.Key.StackTop)
				}
				stack = append(stack, domain.PushSymbols(r.Target.Push)...)
			}
		}
	}

	switch len(initial) {
	case 0:
		errs = append(errs, errors.New("no initial state"))
	case 1:
	default:
		errs = append(errs, fmt.Errorf("more than one initial state: %s", strings.Join(initial, ", ")))
	}
	if err := errors.Join(errs...); err != nil {
		return domain.Definition{}, err
	}

	alphabet := b.alphabet
	if len(alphabet) == 0 {
		alphabet = inputs
	}
	def := domain.Definition{
		Kind:         b.kind,
		States:       join(b.order),
		Alphabet:     join(alphabet),
		Transitions:  strings.Join(rules, "\n"),
		InitialState: initial[0],
		FinalStates:  join(finals),
	}
	if b.kind == domain.KindPDA {
		stackAlphabet := b.stackAlphabet
		if len(stackAlphabet) == 0 {
			stackAlphabet = append(stack, domain.BottomMarker)
		}
		def.StackAlphabet = join(stackAlphabet)
	}
	return def, nil
}

// join renders a deduplicated comma separated list.
func join(items []string) string {
	return strings.Join(domain.ParseList(strings.Join(items, ",")), ",")
}
