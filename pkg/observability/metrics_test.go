package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
)

func TestMetrics_Runs(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRunEnd(ctx, &domain.RunEvent{Verdict: domain.VerdictAccepted, Steps: 3})
	hooks.OnRunEnd(ctx, &domain.RunEvent{Verdict: domain.VerdictRejected, Steps: 2})
	hooks.OnRunEnd(ctx, &domain.RunEvent{Verdict: domain.VerdictAccepted, Steps: 4})
	hooks.OnRunEnd(ctx, &domain.RunEvent{Err: errors.New("boom")})

	expected := `
# HELP automata_runs_total Total number of finished simulations by verdict
# TYPE automata_runs_total counter
automata_runs_total{verdict="Accepted"} 2
automata_runs_total{verdict="Rejected"} 1
automata_runs_total{verdict="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "automata_runs_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "automata_run_steps")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Validation(t *testing.T) {
	m := observability.NewMetrics()

	m.ObserveValidation(nil)
	m.ObserveValidation(&domain.MissingFieldError{Field: domain.FieldStates})
	m.ObserveValidation(&domain.MalformedTransitionError{Line: 1})
	m.ObserveValidation(&domain.MalformedTransitionError{Line: 2})
	m.ObserveValidation(errors.New("disk on fire"))

	expected := `
# HELP automata_validation_failures_total Total number of rejected definitions by error code
# TYPE automata_validation_failures_total counter
automata_validation_failures_total{code="internal"} 1
automata_validation_failures_total{code="malformed_transition"} 2
automata_validation_failures_total{code="missing_field"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "automata_validation_failures_total"))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveRun(&domain.RunEvent{Verdict: domain.VerdictAccepted, Steps: 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `automata_runs_total{verdict="Accepted"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCombineHooks(t *testing.T) {
	var calls []string
	record := func(name string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnRunEnd: func(context.Context, *domain.RunEvent) { calls = append(calls, name) },
		}
	}

	combined := observability.CombineHooks(record("a"), domain.LifecycleHooks{}, record("b"))
	assert.Nil(t, combined.OnRunStart)
	assert.Nil(t, combined.OnStep)

	combined.OnRunEnd(context.Background(), &domain.RunEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
}
