package middleware

import "github.com/aretw0/automata/pkg/ports"

// Middleware allows wrapping a TraceStore to add behavior.
type Middleware func(ports.TraceStore) ports.TraceStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.TraceStore, mws ...Middleware) ports.TraceStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
