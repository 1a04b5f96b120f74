// Package config loads, validates, and defaults the TOML configuration that
// drives the pipeline: directory layout, fixed encode parameters, provider
// endpoint and timeouts, resolver concurrency, and notification settings.
package config
