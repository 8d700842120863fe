package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart EventType = "run_start"
	EventStep     EventType = "step"
	EventRunEnd   EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RunEvent marks the start or the end of a run. Verdict, Steps and Err are
// only set on EventRunEnd.
type RunEvent struct {
	EventBase
	Mode    RunMode `json:"mode"`
	Input   string  `json:"input"`
	Verdict Verdict `json:"verdict,omitempty"`
	Steps   int     `json:"steps,omitempty"`
	Err     error   `json:"-"`
}

// StepEvent carries one step as it is recorded.
type StepEvent struct {
	EventBase
	Step Step `json:"step"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnStep     func(context.Context, *StepEvent)
	OnRunEnd   func(context.Context, *RunEvent)
}
