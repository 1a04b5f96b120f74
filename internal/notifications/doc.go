// Package notifications pushes job lifecycle events to an ntfy-compatible
// webhook. When no webhook is configured the service degrades to a noop so
// callers never branch on configuration.
package notifications
