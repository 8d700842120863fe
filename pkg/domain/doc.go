/*
Package domain contains the core domain models of the automata toolkit.

It defines the automaton model shared by finite-state (FSA) and pushdown (PDA)
automata, the transition relation, the execution trace produced by a
simulation and the diagram description handed to renderers. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Definition: the raw text fields a user submits (states, alphabets, rules).
  - Relation: the parsed transition relation, ordered as written.
  - Automaton: an immutable, validated automaton built from a Definition.
  - Trace: the step log and verdict of one PDA run.
  - Diagram: a renderer-agnostic node/edge description of an automaton.
*/
package domain
