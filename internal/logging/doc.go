// Package logging centralizes slog construction and the structured field
// vocabulary used across the pipeline. All components log through handlers
// built here (compact console output or JSON), and derive per-job loggers via
// WithContext so job_id/stage/scene_id fields stay consistent.
package logging
