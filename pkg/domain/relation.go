package domain

import "slices"

// Relation is a transition relation keyed by (state, input, stack top).
// A key may map to several targets; they keep the order in which the rules
// were written. A Relation is never mutated after NewRelation returns.
type Relation struct {
	kind  Kind
	rules []Rule
	keys  []Key
	index map[Key][]Target
}

// NewRelation indexes rules in the given order.
func NewRelation(kind Kind, rules []Rule) *Relation {
	r := &Relation{
		kind:  kind,
		rules: slices.Clone(rules),
		index: make(map[Key][]Target, len(rules)),
	}
	for _, rule := range rules {
		if _, ok := r.index[rule.Key]; !ok {
			r.keys = append(r.keys, rule.Key)
		}
		r.index[rule.Key] = append(r.index[rule.Key], rule.Target)
	}
	return r
}

// Kind returns the automaton family the relation was parsed for.
func (r *Relation) Kind() Kind { return r.kind }

// Rules returns the rules in written order.
func (r *Relation) Rules() []Rule { return slices.Clone(r.rules) }

// Len returns the number of (key, target) pairs.
func (r *Relation) Len() int { return len(r.rules) }

// Keys returns the distinct keys in order of first appearance.
func (r *Relation) Keys() []Key { return slices.Clone(r.keys) }

// Targets returns every target registered for k, in declaration order.
func (r *Relation) Targets(k Key) []Target { return slices.Clone(r.index[k]) }

// Lookup returns the first target registered for k.
func (r *Relation) Lookup(k Key) (Target, bool) {
	targets := r.index[k]
	if len(targets) == 0 {
		return Target{}, false
	}
	return targets[0], true
}

// Equal reports whether both relations hold the same (key, target) pairs in
// the same order. Line numbers and original text are ignored.
func (r *Relation) Equal(other *Relation) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.kind != other.kind || len(r.rules) != len(other.rules) {
		return false
	}
	for i := range r.rules {
		if r.rules[i].Key != other.rules[i].Key || r.rules[i].Target != other.rules[i].Target {
			return false
		}
	}
	return true
}
