package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required input is empty.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownStateReference is returned when a state is used but not declared.
	ErrUnknownStateReference = errors.New("unknown state reference")
	// ErrUnknownSymbolReference is returned when a symbol is used but not declared.
	ErrUnknownSymbolReference = errors.New("unknown symbol reference")
	// ErrMalformedTransition is returned when a rule line does not follow the grammar.
	ErrMalformedTransition = errors.New("malformed transition")
	// ErrStepLimitExceeded is returned when a run exceeds its step ceiling.
	ErrStepLimitExceeded = errors.New("step limit exceeded")
	// ErrUnsupportedKind is returned for an unknown automaton family, or when
	// an operation does not apply to the family (simulating an FSA).
	ErrUnsupportedKind = errors.New("unsupported automaton kind")
	// ErrRunNotFound is returned when a run ID cannot be found in the store.
	ErrRunNotFound = errors.New("run not found")
)

// MissingFieldError names the empty required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// UnknownStateReferenceError names a state that is not declared. Field is set
// when the reference comes from a declared field (initial or final states),
// Line when it comes from a rule.
type UnknownStateReferenceError struct {
	State string
	Field string
	Line  int
	Text  string
}

func (e *UnknownStateReferenceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d %q: state %q is not declared", e.Line, e.Text, e.State)
	}
	return fmt.Sprintf("field %q: state %q is not declared", e.Field, e.State)
}

func (e *UnknownStateReferenceError) Is(target error) bool { return target == ErrUnknownStateReference }

// UnknownSymbolReferenceError names a symbol missing from the alphabet named
// by Field (FieldAlphabet or FieldStackAlphabet), or one a run can never
// read, in which case Reason says why.
type UnknownSymbolReferenceError struct {
	Symbol string
	Field  string
	Line   int
	Text   string
	Reason string
}

func (e *UnknownSymbolReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("line %d %q: symbol %q %s", e.Line, e.Text, e.Symbol, e.Reason)
	}
	return fmt.Sprintf("line %d %q: symbol %q is not in %s", e.Line, e.Text, e.Symbol, e.Field)
}

func (e *UnknownSymbolReferenceError) Is(target error) bool {
	return target == ErrUnknownSymbolReference
}

// MalformedTransitionError identifies a rule line that does not parse.
type MalformedTransitionError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedTransitionError) Error() string {
	return fmt.Sprintf("line %d %q: malformed transition: %s", e.Line, e.Text, e.Reason)
}

func (e *MalformedTransitionError) Is(target error) bool { return target == ErrMalformedTransition }

// StepLimitExceededError reports the ceiling a run hit.
type StepLimitExceededError struct {
	Limit int
}

func (e *StepLimitExceededError) Error() string {
	return fmt.Sprintf("step limit of %d exceeded", e.Limit)
}

func (e *StepLimitExceededError) Is(target error) bool { return target == ErrStepLimitExceeded }

// Error codes exposed by adapters.
const (
	CodeMissingField        = "missing_field"
	CodeUnknownState        = "unknown_state_reference"
	CodeUnknownSymbol       = "unknown_symbol_reference"
	CodeMalformedTransition = "malformed_transition"
	CodeStepLimitExceeded   = "step_limit_exceeded"
	CodeUnsupportedKind     = "unsupported_kind"
	CodeRunNotFound         = "run_not_found"
)

// Code maps a domain error to a stable machine-readable code.
// It returns "" for errors outside the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return CodeMissingField
	case errors.Is(err, ErrUnknownStateReference):
		return CodeUnknownState
	case errors.Is(err, ErrUnknownSymbolReference):
		return CodeUnknownSymbol
	case errors.Is(err, ErrMalformedTransition):
		return CodeMalformedTransition
	case errors.Is(err, ErrStepLimitExceeded):
		return CodeStepLimitExceeded
	case errors.Is(err, ErrUnsupportedKind):
		return CodeUnsupportedKind
	case errors.Is(err, ErrRunNotFound):
		return CodeRunNotFound
	}
	return ""
}

// Locate extracts the offending field and line from a domain error, when it
// carries them.
func Locate(err error) (field string, line int) {
	var (
		missing   *MissingFieldError
		state     *UnknownStateReferenceError
		symbol    *UnknownSymbolReferenceError
		malformed *MalformedTransitionError
	)
	switch {
	case errors.As(err, &missing):
		return missing.Field, 0
	case errors.As(err, &state):
		if state.Line > 0 {
			return FieldTransitions, state.Line
		}
		return state.Field, 0
	case errors.As(err, &symbol):
		return symbol.Field, symbol.Line
	case errors.As(err, &malformed):
		return FieldTransitions, malformed.Line
	}
	return "", 0
}
