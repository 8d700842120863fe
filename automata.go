package automata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/automata/internal/compiler"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/internal/runtime"
	"github.com/aretw0/automata/internal/validator"
	"github.com/aretw0/automata/pkg/domain"
)

// Engine is the high-level entry point of the library.
// It wraps the internal parser, validator and runtime behind one API.
type Engine struct {
	runtime     *runtime.Engine
	parser      *compiler.Parser
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// HaltPolicy decides the verdict of a run that stops on a missing transition.
type HaltPolicy = runtime.HaltPolicy

const (
	// HaltEvaluate applies the acceptance test where the run stopped.
	HaltEvaluate = runtime.HaltEvaluate
	// HaltReject rejects runs that stop before consuming their input.
	HaltReject = runtime.HaltReject
)

// DefaultStepLimit bounds a simulation when no limit is configured.
const DefaultStepLimit = runtime.DefaultStepLimit

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStepLimit sets the step ceiling of every simulation.
func WithStepLimit(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStepLimit(n))
	}
}

// WithMode sets the default run mode.
func WithMode(mode domain.RunMode) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMode(mode))
	}
}

// WithHaltPolicy sets how a missing transition affects the verdict.
func WithHaltPolicy(p HaltPolicy) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHaltPolicy(p))
	}
}

// New creates an engine. Without options it logs nothing, follows the first
// target of every key and stops a run after DefaultStepLimit steps.
func New(opts ...Option) *Engine {
	e := &Engine{
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	rtOpts := append([]runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	}, e.runtimeOpts...)
	e.runtime = runtime.NewEngine(rtOpts...)

	return e
}

// Compile checks the required fields, parses the transitions and validates
// them against the declarations. It stops at the first problem.
func (e *Engine) Compile(def domain.Definition) (*domain.Automaton, error) {
	if err := validator.RequireFields(&def); err != nil {
		return nil, err
	}
	kind, err := def.Family()
	if err != nil {
		return nil, err
	}
	rel, err := e.parser.Parse(kind, def.Transitions)
	if err != nil {
		return nil, err
	}
	a, err := validator.Build(&def, rel)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("automaton compiled", "kind", kind, "states", len(a.States()), "rules", rel.Len())
	return a, nil
}

// Summary describes a valid automaton.
type Summary struct {
	Kind          domain.Kind `json:"kind"`
	States        int         `json:"states"`
	Transitions   int         `json:"transitions"`
	Deterministic bool        `json:"deterministic"`
}

// Validate compiles def and summarizes it.
func (e *Engine) Validate(def domain.Definition) (Summary, error) {
	a, err := e.Compile(def)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(a), nil
}

// Summarize describes a.
func Summarize(a *domain.Automaton) Summary {
	return Summary{
		Kind:          a.Kind(),
		States:        len(a.States()),
		Transitions:   a.Relation().Len(),
		Deterministic: a.Deterministic(),
	}
}

// Diagram compiles def and returns its renderer-agnostic diagram.
func (e *Engine) Diagram(def domain.Definition) (domain.Diagram, error) {
	a, err := e.Compile(def)
	if err != nil {
		return domain.Diagram{}, err
	}
	return graph.Build(a), nil
}

// DiagramOf returns the diagram of an already compiled automaton.
func DiagramOf(a *domain.Automaton) domain.Diagram {
	return graph.Build(a)
}

// DiagramFormat names a textual diagram encoding.
type DiagramFormat string

const (
	FormatJSON    DiagramFormat = "json"
	FormatMermaid DiagramFormat = "mermaid"
	FormatDOT     DiagramFormat = "dot"
)

// ParseDiagramFormat resolves a format name; empty means FormatMermaid.
func ParseDiagramFormat(name string) (DiagramFormat, error) {
	switch DiagramFormat(name) {
	case "", FormatMermaid:
		return FormatMermaid, nil
	case FormatJSON, FormatDOT:
		return DiagramFormat(name), nil
	case "graphviz":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("unknown diagram format %q", name)
}

// RenderDiagram encodes d. A non-nil trace highlights the states it visited
// (Mermaid only).
func RenderDiagram(d domain.Diagram, format DiagramFormat, trace *domain.Trace) (string, error) {
	switch format {
	case FormatMermaid, "":
		return graph.GenerateMermaid(d, graph.OverlayFromTrace(trace)), nil
	case FormatDOT:
		return graph.GenerateDOT(d), nil
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown diagram format %q", format)
}

// RunOption overrides engine defaults for a single simulation.
type RunOption = runtime.RunOption

// Explore follows every target of every key and accepts if any path does.
func Explore() RunOption {
	return runtime.WithRunMode(domain.ModeExplore)
}

// FirstChoice always follows the first target of a key.
func FirstChoice() RunOption {
	return runtime.WithRunMode(domain.ModeFirstChoice)
}

// MaxSteps sets the step ceiling of one simulation.
func MaxSteps(n int) RunOption {
	return runtime.WithRunStepLimit(n)
}

// Simulate compiles def and runs it on input.
func (e *Engine) Simulate(ctx context.Context, def domain.Definition, input string, opts ...RunOption) (*domain.Trace, error) {
	a, err := e.Compile(def)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, a, input, opts...)
}

// Run simulates an already compiled pushdown automaton on input.
func (e *Engine) Run(ctx context.Context, a *domain.Automaton, input string, opts ...RunOption) (*domain.Trace, error) {
	return e.runtime.Run(ctx, a, input, opts...)
}
