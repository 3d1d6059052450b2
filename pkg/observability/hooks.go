// Package observability provides hooks for metrics and tracing.
//
// Library packages emit events through small hook interfaces and never import
// a metrics backend themselves. The defaults are no-ops; a binary that wants
// metrics registers real implementations once at startup:
//
//	func main() {
//	    reg := prometheus.NewRegistry()
//	    hooks := observability.NewPrometheusHooks(reg)
//	    observability.SetGrowthHooks(hooks)
//	    observability.SetCacheHooks(hooks)
//	    observability.SetHTTPHooks(hooks)
//	}
//
// Libraries then call the registered hooks:
//
//	observability.Growth().OnRunStart(ctx, "radial")
//	// ... grow ...
//	observability.Growth().OnRunComplete(ctx, run)
package observability

import (
	"context"
	"sync"
	"time"
)

// RunSummary describes a finished (or failed) growth run.
type RunSummary struct {
	Source   string
	Reason   string // empty when Err is set
	Nodes    int
	Ticks    int
	Duration time.Duration
	Cached   bool // served from the cache without simulating
	Err      error
}

// =============================================================================
// Growth Hooks
// =============================================================================

// GrowthHooks receives events from the growth pipeline.
type GrowthHooks interface {
	OnRunStart(ctx context.Context, source string)
	// OnTick is called after every tick with the run's progress fraction,
	// and once more with 1 when the run terminates.
	OnTick(ctx context.Context, source string, progress float64)
	OnRunComplete(ctx context.Context, run RunSummary)
	OnRender(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives one event per request served by the API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGrowthHooks is a no-op implementation of GrowthHooks.
type NoopGrowthHooks struct{}

func (NoopGrowthHooks) OnRunStart(context.Context, string)                     {}
func (NoopGrowthHooks) OnTick(context.Context, string, float64)                {}
func (NoopGrowthHooks) OnRunComplete(context.Context, RunSummary)              {}
func (NoopGrowthHooks) OnRender(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	growthHooks GrowthHooks = NoopGrowthHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetGrowthHooks registers custom growth hooks. Nil is ignored.
func SetGrowthHooks(h GrowthHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		growthHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Growth returns the registered growth hooks.
func Growth() GrowthHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return growthHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	growthHooks = NoopGrowthHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
