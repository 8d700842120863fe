package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
	stop   sync.Once
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger.
// Without debug only warnings reach Stderr.
func NewLogger(debug bool, format logging.Format) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug, logging.WithFormat(format))
	}
	return logging.New(slog.LevelWarn, logging.WithFormat(format))
}

// DebugHooks logs every recorded step.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step", "index", e.Step.Index, "from", e.Step.From, "to", e.Step.To, "halted", e.Step.Halted)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.Debug("Run Ended (Error)", "input", e.Input, "err", e.Err)
				return
			}
			logger.Debug("Run Ended", "input", e.Input, "verdict", e.Verdict, "steps", e.Steps)
		},
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// IsInterrupted reports whether err comes from a cancelled context.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
