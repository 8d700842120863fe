package ports

import (
	"context"

	"github.com/aretw0/automata/pkg/domain"
)

// TraceStore persists simulation runs so they can be fetched after the
// request that produced them. Only the input and its trace are stored,
// never the automaton definition.
type TraceStore interface {
	// Save persists run under run.ID, replacing any previous run with that ID.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.Run, error)

	// Delete removes a run. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored runs, newest first.
	List(ctx context.Context) ([]string, error)
}
