package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/automata/pkg/domain"
)

// DefaultStepLimit bounds a run when no limit is configured.
const DefaultStepLimit = 10000

// HaltPolicy decides the verdict of a run that stops on a missing transition.
type HaltPolicy int

const (
	// HaltEvaluate applies the acceptance predicate to the configuration the
	// run halted in.
	HaltEvaluate HaltPolicy = iota
	// HaltReject rejects every run that halts before its input is exhausted.
	HaltReject
)

// Engine executes pushdown automata. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	stepLimit int
	mode      domain.RunMode
	halt      HaltPolicy
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger used for run diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStepLimit sets the default step ceiling. Values below 1 keep
// DefaultStepLimit.
func WithStepLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.stepLimit = n
		}
	}
}

// WithMode sets the default run mode.
func WithMode(mode domain.RunMode) EngineOption {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithHaltPolicy sets how a missing transition affects the verdict.
func WithHaltPolicy(p HaltPolicy) EngineOption {
	return func(e *Engine) {
		e.halt = p
	}
}

// NewEngine creates an engine. By default it follows the first target of
// every key, evaluates acceptance on halt and stops after DefaultStepLimit
// steps.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		stepLimit: DefaultStepLimit,
		mode:      domain.ModeFirstChoice,
		halt:      HaltEvaluate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOption overrides engine defaults for a single run.
type RunOption func(*runConfig)

type runConfig struct {
	mode      domain.RunMode
	stepLimit int
}

// WithRunMode selects the run mode for one run.
func WithRunMode(mode domain.RunMode) RunOption {
	return func(c *runConfig) {
		c.mode = mode
	}
}

// WithRunStepLimit sets the step ceiling for one run.
func WithRunStepLimit(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.stepLimit = n
		}
	}
}

// Run simulates a on input and returns its trace.
//
// The input is read one character at a time and extended with a single
// trailing ε, so a first-choice run records at most len(input)+1 steps.
// Running a finite automaton yields domain.ErrUnsupportedKind; exceeding the
// step ceiling yields a *domain.StepLimitExceededError.
func (e *Engine) Run(ctx context.Context, a *domain.Automaton, input string, opts ...RunOption) (*domain.Trace, error) {
	if a.Kind() != domain.KindPDA {
		return nil, fmt.Errorf("%w: cannot simulate %s", domain.ErrUnsupportedKind, a.Kind())
	}

	cfg := runConfig{mode: e.mode, stepLimit: e.stepLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	e.emitRun(ctx, e.hooks.OnRunStart, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunStart},
		Mode:      cfg.mode,
		Input:     input,
	})
	e.logger.Info("run started", "mode", cfg.mode, "input", input, "step_limit", cfg.stepLimit)

	var (
		trace *domain.Trace
		err   error
	)
	switch cfg.mode {
	case domain.ModeFirstChoice, "":
		trace, err = e.firstChoice(ctx, a, input, cfg.stepLimit)
	case domain.ModeExplore:
		trace, err = e.explore(ctx, a, input, cfg.stepLimit)
	default:
		err = fmt.Errorf("unknown run mode %q", cfg.mode)
	}

	end := &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd},
		Mode:      cfg.mode,
		Input:     input,
		Err:       err,
	}
	if err != nil {
		e.logger.Warn("run failed", "input", input, "err", err)
		e.emitRun(ctx, e.hooks.OnRunEnd, end)
		return nil, err
	}

	for _, s := range trace.Steps {
		e.emitStep(ctx, s)
	}
	end.Verdict = trace.Verdict
	end.Steps = len(trace.Steps)
	e.emitRun(ctx, e.hooks.OnRunEnd, end)
	e.logger.Info("run finished", "input", input, "verdict", trace.Verdict, "steps", len(trace.Steps))

	return trace, nil
}

// tape splits input into symbols and appends the trailing ε.
func tape(input string) []string {
	symbols := make([]string, 0, len(input)+1)
	for _, r := range input {
		symbols = append(symbols, domain.NormalizeSymbol(string(r)))
	}
	return append(symbols, domain.Epsilon)
}

// config is one configuration of a run together with the path that led to it.
type config struct {
	state    string
	pos      int
	stack    []string
	steps    []domain.Step
	consumed int
	halted   bool
}

func (c *config) key(symbols []string) domain.Key {
	top := domain.Epsilon
	if n := len(c.stack); n > 0 {
		top = c.stack[n-1]
	}
	return domain.Key{State: c.state, Input: symbols[c.pos], StackTop: top}
}

// apply returns the configuration reached by following t from c. c is left
// untouched.
func (c *config) apply(k domain.Key, t domain.Target) *config {
	stack := slices.Clone(c.stack)
	if !domain.IsEpsilon(k.StackTop) {
		stack = stack[:len(stack)-1]
	}
	push := domain.PushSymbols(t.Push)
	for i := len(push) - 1; i >= 0; i-- {
		stack = append(stack, push[i])
	}

	consumed := c.consumed
	if !domain.IsEpsilon(k.Input) {
		consumed++
	}

	step := domain.Step{
		Index:    len(c.steps),
		From:     c.state,
		Symbol:   k.Input,
		StackTop: k.StackTop,
		To:       t.State,
		Push:     t.Push,
		Stack:    slices.Clone(stack),
	}
	return &config{
		state:    t.State,
		pos:      c.pos + 1,
		stack:    stack,
		steps:    append(c.steps[:len(c.steps):len(c.steps)], step),
		consumed: consumed,
	}
}

// halt records the missing transition for k and marks c as terminal.
func (c *config) halt(k domain.Key) *config {
	step := domain.Step{
		Index:    len(c.steps),
		From:     c.state,
		Symbol:   k.Input,
		StackTop: k.StackTop,
		Stack:    slices.Clone(c.stack),
		Halted:   true,
	}
	return &config{
		state:    c.state,
		pos:      c.pos,
		stack:    c.stack,
		steps:    append(c.steps[:len(c.steps):len(c.steps)], step),
		consumed: c.consumed,
		halted:   true,
	}
}

func (e *Engine) accepts(a *domain.Automaton, c *config, symbols []string) bool {
	// The trailing ε is the only symbol left: the input is exhausted.
	if c.halted && e.halt == HaltReject && c.pos < len(symbols)-1 {
		return false
	}
	return a.Accepting(c.state, c.stack)
}

func (e *Engine) trace(a *domain.Automaton, input string, mode domain.RunMode, c *config, symbols []string) *domain.Trace {
	verdict := domain.VerdictRejected
	if e.accepts(a, c, symbols) {
		verdict = domain.VerdictAccepted
	}
	steps := c.steps
	if steps == nil {
		steps = []domain.Step{}
	}
	return &domain.Trace{
		Input:      input,
		Mode:       mode,
		Initial:    a.InitialState(),
		Steps:      steps,
		Verdict:    verdict,
		FinalState: c.state,
		FinalStack: slices.Clone(c.stack),
		Consumed:   c.consumed,
	}
}

func initial(a *domain.Automaton) *config {
	return &config{state: a.InitialState(), stack: []string{domain.BottomMarker}}
}

func (e *Engine) firstChoice(ctx context.Context, a *domain.Automaton, input string, limit int) (*domain.Trace, error) {
	symbols := tape(input)
	rel := a.Relation()
	c := initial(a)

	for c.pos < len(symbols) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted at step %d: %w", len(c.steps), err)
		}

		k := c.key(symbols)
		t, ok := rel.Lookup(k)
		if !ok {
			c = c.halt(k)
			e.logger.Debug("transition not found", "key", k.String())
			break
		}
		if len(c.steps) >= limit {
			return nil, &domain.StepLimitExceededError{Limit: limit}
		}
		c = c.apply(k, t)
		e.logger.Debug("transition", "key", k.String(), "to", t.State, "stack", domain.FormatStack(c.stack))
	}

	return e.trace(a, input, domain.ModeFirstChoice, c, symbols), nil
}

// explore follows every target of every key breadth first. The first
// accepting path wins; without one, the first-choice trace is returned.
// The step ceiling bounds the number of configurations expanded.
func (e *Engine) explore(ctx context.Context, a *domain.Automaton, input string, limit int) (*domain.Trace, error) {
	symbols := tape(input)
	rel := a.Relation()
	queue := []*config{initial(a)}
	expanded := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted after %d configurations: %w", expanded, err)
		}

		c := queue[0]
		queue = queue[1:]

		if c.halted || c.pos == len(symbols) {
			if e.accepts(a, c, symbols) {
				e.logger.Debug("accepting path found", "steps", len(c.steps), "expanded", expanded)
				return e.trace(a, input, domain.ModeExplore, c, symbols), nil
			}
			continue
		}

		expanded++
		if expanded > limit {
			return nil, &domain.StepLimitExceededError{Limit: limit}
		}

		k := c.key(symbols)
		targets := rel.Targets(k)
		if len(targets) == 0 {
			queue = append(queue, c.halt(k))
			continue
		}
		for _, t := range targets {
			queue = append(queue, c.apply(k, t))
		}
	}

	trace, err := e.firstChoice(ctx, a, input, limit)
	if err != nil {
		return nil, err
	}
	trace.Mode = domain.ModeExplore
	return trace, nil
}

func (e *Engine) emitRun(ctx context.Context, hook func(context.Context, *domain.RunEvent), ev *domain.RunEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}

func (e *Engine) emitStep(ctx context.Context, s domain.Step) {
	if e.hooks.OnStep == nil {
		return
	}
	e.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
		Step:      s,
	})
}
