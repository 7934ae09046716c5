// Package observability provides hooks for metrics and tracing of workspace
// loading.
//
// Consumers register hooks at startup to receive events about manifests read
// from disk, without the library depending on a specific backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWorkspaceHooks(&myWorkspaceHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Workspace().OnManifestStart(ctx, dir)
//	// ... read and parse ...
//	observability.Workspace().OnManifestComplete(ctx, dir, name, deps, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// WorkspaceHooks receives events from the workspace loader.
type WorkspaceHooks interface {
	// Load events, once per call to workspace.Load.
	OnLoadStart(ctx context.Context, root string)
	OnLoadComplete(ctx context.Context, root string, packages int, duration time.Duration, err error)

	// Manifest events, once per directory read. name is empty when err is set.
	OnManifestStart(ctx context.Context, dir string)
	OnManifestComplete(ctx context.Context, dir, name string, deps int, duration time.Duration, err error)
}

// NoopWorkspaceHooks is a no-op implementation of WorkspaceHooks.
type NoopWorkspaceHooks struct{}

func (NoopWorkspaceHooks) OnLoadStart(context.Context, string)                               {}
func (NoopWorkspaceHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopWorkspaceHooks) OnManifestStart(context.Context, string)                           {}
func (NoopWorkspaceHooks) OnManifestComplete(context.Context, string, string, int, time.Duration, error) {
}

var (
	workspaceHooks WorkspaceHooks = NoopWorkspaceHooks{}
	hooksMu        sync.RWMutex
)

// SetWorkspaceHooks registers custom workspace hooks.
// This should be called once at application startup before any load.
func SetWorkspaceHooks(h WorkspaceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		workspaceHooks = h
	}
}

// Workspace returns the registered workspace hooks.
func Workspace() WorkspaceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return workspaceHooks
}

// Reset restores the no-op hooks.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	workspaceHooks = NoopWorkspaceHooks{}
}
