/*
Package dsl provides a fluent builder for automaton definitions.

It produces the same domain.Definition a user would type by hand, so the
result goes through the regular parse and validation pipeline:

	b := dsl.PDA()
	b.State("q0").Initial().
		Move("a", "Z", "q0", "AZ").
		Move("b", "A", "q1", "")
	b.State("q1").Final().
		Move("b", "A", "q1", "").
		Move(domain.Epsilon, "Z", "q1", "")

	def, err := b.Build()

When no alphabet is declared, it is inferred from the rules.
*/
package dsl
