package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/automata/pkg/definition"
	"github.com/aretw0/automata/pkg/domain"
)

// DefinitionFlags mirrors the definition form as command line flags.
// Field flags override the matching field of --file.
type DefinitionFlags struct {
	File          string
	Strict        bool
	Kind          string
	States        string
	Alphabet      string
	StackAlphabet string
	Transitions   string
	Rules         []string
	Initial       string
	Finals        string
}

// Bind registers the flags on cmd and its subcommands.
func (f *DefinitionFlags) Bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&f.File, "file", "f", "", "YAML or JSON definition file")
	flags.BoolVar(&f.Strict, "strict", false, "Reject unknown keys in --file")
	flags.StringVar(&f.Kind, "kind", "", "Automaton family: pda (default), fsa, dfa or nfa")
	flags.StringVar(&f.States, "states", "", "Comma separated states")
	flags.StringVar(&f.Alphabet, "alphabet", "", "Comma separated input symbols")
	flags.StringVar(&f.StackAlphabet, "stack-alphabet", "", "Comma separated stack symbols (PDA)")
	flags.StringVar(&f.Transitions, "transitions", "", "Transition rules, one per line")
	flags.StringArrayVarP(&f.Rules, "rule", "r", nil, "A single transition rule (repeatable)")
	flags.StringVar(&f.Initial, "initial", "", "Initial state")
	flags.StringVar(&f.Finals, "finals", "", "Comma separated final states")
}

// Load assembles the definition from --file and the field flags.
func (f *DefinitionFlags) Load() (*definition.Document, error) {
	doc := &definition.Document{}
	if f.File != "" {
		var opts []definition.Option
		if f.Strict {
			opts = append(opts, definition.WithStrict())
		}
		loaded, err := definition.Load(f.File, opts...)
		if err != nil {
			return nil, err
		}
		doc = loaded
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	def := &doc.Definition
	if f.Kind != "" {
		def.Kind = domain.Kind(f.Kind)
	}
	override(&def.States, f.States)
	override(&def.Alphabet, f.Alphabet)
	override(&def.StackAlphabet, f.StackAlphabet)
	override(&def.Transitions, f.Transitions)
	if len(f.Rules) > 0 {
		def.Transitions = strings.Join(f.Rules, "\n")
	}
	override(&def.InitialState, f.Initial)
	override(&def.FinalStates, f.Finals)

	return doc, nil
}
