// Package metrics provides Prometheus metrics collection for notefs
// components.
//
// All metrics are optional: if InitRegistry is never called, the
// constructors return nil and components fall back to their built-in no-op
// behavior. This lets the library run with zero instrumentation overhead
// when metrics are not wanted.
//
// Usage:
//
//	// Initialize global registry (typically in main)
//	metrics.InitRegistry()
//
//	pool := executor.New(workers, metrics.NewExecutorMetrics())
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all notefs metrics.
	// Write-once via registryOnce, read-many afterwards.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// Must be called before creating any metrics instances. Safe to call
// multiple times; subsequent calls are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when
// InitRegistry was never called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	return registry != nil
}
