/*
Package automata defines finite-state and pushdown automata from plain text,
validates them, renders them as diagrams and simulates pushdown automata
against input strings.

# Concept

An automaton is described by the same raw text fields a user types into a
form: comma separated states and alphabets, one transition rule per line, an
initial state and the final states. Every call runs the same pure pipeline:

	raw text -> parse -> validate -> (simulate | diagram)

The resulting Automaton is immutable; each simulation allocates its own stack
and trace, so an Engine is safe for concurrent use.

# Rule grammar

	FSA: <state>,<symbol>-><state>
	PDA: <state>,<symbol>,<stackTop>-><state>,<pushString>

Whitespace is ignored and blank lines are skipped. ε (or "eps", "epsilon")
is the empty symbol. The first character of a push string ends on top of the
stack. The stack starts as [Z]; a run accepts when it ends in a final state
with exactly [Z] on the stack.

# Usage

	eng := automata.New()

	def := domain.Definition{
		States:        "q0,q1",
		Alphabet:      "a,b",
		StackAlphabet: "A,Z",
		Transitions:   "q0,a,Z->q0,AZ\nq0,b,A->q1,ε\nq1,b,A->q1,ε\nq1,ε,Z->q1,ε",
		InitialState:  "q0",
		FinalStates:   "q1",
	}

	trace, err := eng.Simulate(ctx, def, "abb")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(trace.Verdict) // Accepted

Errors carry the offending field or line and match the sentinels in
pkg/domain with errors.Is.

# Surfaces

The same pipeline is exposed by the automata CLI (cmd/automata), an HTTP API
(pkg/adapters/http) and an MCP server (pkg/adapters/mcp).
*/
package automata
