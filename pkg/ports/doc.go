/*
Package ports defines the driven ports (interfaces) of the automata toolkit.

These interfaces decouple the adapters (HTTP, MCP, CLI) from the storage
backends that keep simulation runs around after a request completes.

# Key Interfaces

  - TraceStore: persists and loads simulation runs (domain.Run).

The tests subpackage holds a reusable contract suite that every TraceStore
implementation runs in its own tests.
*/
package ports
