/*
Package observability provides Prometheus metrics for the automata toolkit.

Metrics plug into the engine through domain.LifecycleHooks, so any caller
that can pass hooks (the library facade, the HTTP server, the CLI) records
the same series:

  - automata_runs_total{verdict}: finished simulations by verdict or "error".
  - automata_run_steps: histogram of steps per finished simulation.
  - automata_validation_failures_total{code}: rejected definitions by error code.
*/
package observability
