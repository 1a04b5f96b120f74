// Package jobs tracks pipeline runs: the per-run state machine with staged
// sub-spans, monotonic progress, warning and error accumulation, observer
// subscriptions, and a SQLite-backed history store for later inspection.
package jobs
