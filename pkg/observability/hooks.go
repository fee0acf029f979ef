// Package observability exposes scan, cache and HTTP events to whoever
// registers hooks for them.
//
// Libraries report events through [Scan], [Cache] and [HTTP]; the defaults
// do nothing. The CLI registers a counter for its summary line:
//
//	stats := &scanStats{}
//	observability.SetScanHooks(stats)
//	observability.SetCacheHooks(stats)
//	defer observability.Reset()
//
// Embed [NoopScanHooks] or [NoopCacheHooks] to implement only the events
// you need. Hooks are process-global; register them before a scan starts.
package observability

import (
	"context"
	"sync"
	"time"
)

// Branch names reported by OnRecordComplete.
const (
	BranchDetected = "detected" // camera came from the binary
	BranchDerived  = "derived"  // camera came from the package name
)

// =============================================================================
// Scan Hooks
// =============================================================================

// ScanHooks receives events from archive traversal and record processing.
type ScanHooks interface {
	// Traversal events
	OnArchiveEnter(ctx context.Context, archive string, depth int)
	OnArchiveExit(ctx context.Context, archive string, depth int, err error)
	OnExtraction(ctx context.Context, archive, entry string, size, depth int)

	// Record events
	OnRecordComplete(ctx context.Context, archive, branch string, duration time.Duration, err error)
	OnMismatch(ctx context.Context, archive, field, expected, actual string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the catalog HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a handler failure (store error, encoding error).
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScanHooks is a no-op implementation of ScanHooks.
type NoopScanHooks struct{}

func (NoopScanHooks) OnArchiveEnter(context.Context, string, int)                {}
func (NoopScanHooks) OnArchiveExit(context.Context, string, int, error)          {}
func (NoopScanHooks) OnExtraction(context.Context, string, string, int, int)     {}
func (NoopScanHooks) OnMismatch(context.Context, string, string, string, string) {}
func (NoopScanHooks) OnRecordComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scanHooks  ScanHooks  = NoopScanHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetScanHooks registers custom scan hooks.
// This should be called once at application startup before any scan.
func SetScanHooks(h ScanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scanHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Scan returns the registered scan hooks.
func Scan() ScanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scanHooks
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

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scanHooks = NoopScanHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
