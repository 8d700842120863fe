package domain

import "slices"

// AutomatonConfig carries the already-validated parts of an Automaton.
// Use the validator to build one from a Definition; NewAutomaton itself does
// not check referential integrity.
type AutomatonConfig struct {
	Kind          Kind
	States        []string
	Alphabet      []string
	StackAlphabet []string
	InitialState  string
	FinalStates   []string
	Relation      *Relation
}

// Automaton is an immutable finite-state or pushdown automaton.
type Automaton struct {
	kind          Kind
	states        []string
	alphabet      []string
	stackAlphabet []string
	initial       string
	finals        []string
	relation      *Relation

	stateSet map[string]bool
	inputSet map[string]bool
	stackSet map[string]bool
	finalSet map[string]bool
}

// NewAutomaton copies cfg into a new Automaton. For a PDA the bottom marker
// is added to the stack alphabet when missing.
func NewAutomaton(cfg AutomatonConfig) *Automaton {
	a := &Automaton{
		kind:     cfg.Kind,
		states:   slices.Clone(cfg.States),
		alphabet: slices.Clone(cfg.Alphabet),
		initial:  cfg.InitialState,
		finals:   slices.Clone(cfg.FinalStates),
		relation: cfg.Relation,
	}
	if a.relation == nil {
		a.relation = NewRelation(cfg.Kind, nil)
	}
	if cfg.Kind == KindPDA {
		a.stackAlphabet = slices.Clone(cfg.StackAlphabet)
		if !slices.Contains(a.stackAlphabet, BottomMarker) {
			a.stackAlphabet = append(a.stackAlphabet, BottomMarker)
		}
	}
	a.stateSet = toSet(a.states)
	a.inputSet = toSet(a.alphabet)
	a.stackSet = toSet(a.stackAlphabet)
	a.finalSet = toSet(a.finals)
	return a
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func (a *Automaton) Kind() Kind { return a.kind }
func (a *Automaton) States() []string { return slices.Clone(a.states) }
func (a *Automaton) Alphabet() []string { return slices.Clone(a.alphabet) }
func (a *Automaton) StackAlphabet() []string { return slices.Clone(a.stackAlphabet) }
func (a *Automaton) InitialState() string { return a.initial }
func (a *Automaton) FinalStates() []string { return slices.Clone(a.finals) }
func (a *Automaton) Relation() *Relation { return a.relation }
func (a *Automaton) HasState(s string) bool { return a.stateSet[s] }
func (a *Automaton) IsFinal(s string) bool { return a.finalSet[s] }

// HasInputSymbol reports whether s is in the input alphabet or is epsilon.
func (a *Automaton) HasInputSymbol(s string) bool {
	return IsEpsilon(s) || a.inputSet[s]
}

// HasStackSymbol reports whether s may appear on the stack of a PDA:
// the stack alphabet, epsilon and the bottom marker.
func (a *Automaton) HasStackSymbol(s string) bool {
	return IsEpsilon(s) || s == BottomMarker || a.stackSet[s]
}

// Accepting is the acceptance predicate of a PDA configuration: the state is
// final and the stack holds exactly the bottom marker. A stack emptied below
// the marker does not accept.
func (a *Automaton) Accepting(state string, stack []string) bool {
	return a.finalSet[state] && len(stack) == 1 && stack[0] == BottomMarker
}

// Deterministic reports whether no key has more than one target. A finite
// automaton that uses epsilon moves is not deterministic either.
func (a *Automaton) Deterministic() bool {
	for _, k := range a.relation.Keys() {
		if len(a.relation.Targets(k)) > 1 {
			return false
		}
		if a.kind == KindFSA && IsEpsilon(k.Input) {
			return false
		}
	}
	return true
}
