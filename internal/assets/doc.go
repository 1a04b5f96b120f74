// Package assets resolves one visual asset per scene through a cascade of
// fallible strategies: stock provider search and download, synthetic
// placeholder rendering, and a generic fallback image. The cascade is total;
// a scene fails resolution only when every tier fails.
package assets
