package domain

// Field names used when reporting which input is at fault.
const (
	FieldStates        = "states"
	FieldAlphabet      = "alphabet"
	FieldStackAlphabet = "stack_alphabet"
	FieldTransitions   = "transitions"
	FieldInitialState  = "initial_state"
	FieldFinalStates   = "final_states"
)

// Definition holds the raw text fields describing an automaton, exactly as a
// user submits them. Lists are comma separated; Transitions holds one rule
// per line.
type Definition struct {
	Kind          Kind   `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	States        string `json:"states" yaml:"states" mapstructure:"states"`
	Alphabet      string `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`
	StackAlphabet string `json:"stack_alphabet,omitempty" yaml:"stack_alphabet,omitempty" mapstructure:"stack_alphabet"`
	Transitions   string `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	InitialState  string `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
	FinalStates   string `json:"final_states" yaml:"final_states" mapstructure:"final_states"`
}

// Family returns the resolved automaton kind, defaulting to KindPDA.
func (d *Definition) Family() (Kind, error) {
	return ParseKind(string(d.Kind))
}
