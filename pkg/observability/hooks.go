// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine emits an event for every graph build, layout, trace and
// expand/collapse toggle. Nothing is recorded by default: consumers register
// hooks at startup to forward the events to the backend of their choice
// without the library depending on it.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	res, err := layout.Compute(ctx, g, opts)
//	observability.Engine().OnLayout(ctx, g.NodeCount(), res.Rounds, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the lineage engine.
type EngineHooks interface {
	// OnBuild is called after a graph was built from raw input. dropped is
	// the number of records that did not make it into the graph.
	OnBuild(ctx context.Context, nodes, edges, dropped int, duration time.Duration)

	// OnLayout is called after every hierarchical layout run.
	OnLayout(ctx context.Context, nodes, rounds int, duration time.Duration, err error)

	// OnTrace is called after an attribute trace.
	OnTrace(ctx context.Context, nodeID, attr string, nodes, edges int)

	// OnToggle is called when nodes changed expand state. changed is the
	// number of nodes whose state flipped.
	OnToggle(ctx context.Context, op string, changed int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBuild(context.Context, int, int, int, time.Duration)    {}
func (NoopEngineHooks) OnLayout(context.Context, int, int, time.Duration, error) {}
func (NoopEngineHooks) OnTrace(context.Context, string, string, int, int)        {}
func (NoopEngineHooks) OnToggle(context.Context, string, int)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine is created.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
}

// =============================================================================
// Log Hooks
// =============================================================================

// Logger is the subset of a structured logger used by [LogHooks].
type Logger interface {
	Debug(msg any, keyvals ...any)
}

// LogHooks writes every event to a structured logger at debug level.
type LogHooks struct {
	Logger Logger
}

func (h LogHooks) OnBuild(_ context.Context, nodes, edges, dropped int, d time.Duration) {
	h.Logger.Debug("graph built", "nodes", nodes, "edges", edges, "dropped", dropped, "duration", d)
}

func (h LogHooks) OnLayout(_ context.Context, nodes, rounds int, d time.Duration, err error) {
	h.Logger.Debug("layout computed", "nodes", nodes, "rounds", rounds, "duration", d, "err", err)
}

func (h LogHooks) OnTrace(_ context.Context, nodeID, attr string, nodes, edges int) {
	h.Logger.Debug("trace", "node", nodeID, "attr", attr, "nodes", nodes, "edges", edges)
}

func (h LogHooks) OnToggle(_ context.Context, op string, changed int) {
	h.Logger.Debug("toggle", "op", op, "changed", changed)
}
