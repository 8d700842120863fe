package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

func sampleRun(id string, createdAt time.Time) *domain.Run {
	return &domain.Run{
		ID:    id,
		Input: "abb",
		Trace: &domain.Trace{
			Input:   "abb",
			Mode:    domain.ModeFirstChoice,
			Initial: "q0",
			Steps: []domain.Step{
				{Index: 0, From: "q0", Symbol: "a", StackTop: "Z", To: "q0", Push: "AZ", Stack: []string{"Z", "A"}},
				{Index: 1, From: "q0", Symbol: "b", StackTop: "A", To: "q1", Push: "ε", Stack: []string{"Z"}},
				{Index: 2, From: "q1", Symbol: "b", StackTop: "Z", Stack: []string{"Z"}, Halted: true},
			},
			Verdict:    domain.VerdictAccepted,
			FinalState: "q1",
			FinalStack: []string{"Z"},
			Consumed:   2,
		},
		CreatedAt: createdAt,
	}
}

// TraceStoreContract is a reusable test suite that verifies an adapter
// complies with ports.TraceStore. The store must start empty.
func TraceStoreContract(t *testing.T, store ports.TraceStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("Save and Load", func(t *testing.T) {
		run := sampleRun("run-save", base)
		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Input, loaded.Input)
		assert.Equal(t, run.Trace, loaded.Trace)
		assert.True(t, run.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load is isolated from the caller", func(t *testing.T) {
		run := sampleRun("run-isolated", base)
		require.NoError(t, store.Save(ctx, run))
		run.Trace.Steps[0].Stack[0] = "mutated"

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, "Z", loaded.Trace.Steps[0].Stack[0])

		loaded.Trace.FinalStack[0] = "mutated"
		again, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Z"}, again.Trace.FinalStack)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		run := sampleRun("run-delete", base)
		require.NoError(t, store.Save(ctx, run))
		require.NoError(t, store.Delete(ctx, run.ID))

		_, err := store.Load(ctx, run.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
		assert.NoError(t, store.Delete(ctx, run.ID), "Delete is idempotent")
	})

	t.Run("List newest first", func(t *testing.T) {
		ids := make([]string, 3)
		for i := range ids {
			ids[i] = fmt.Sprintf("run-list-%d", i)
			require.NoError(t, store.Save(ctx, sampleRun(ids[i], base.Add(time.Duration(i+1)*time.Hour))))
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(listed), 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, listed[:3])
	})
}
