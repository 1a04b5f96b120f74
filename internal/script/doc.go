// Package script defines the narration script document model and the
// analyzer that normalizes raw scene descriptors into timed scenes with
// derived search keywords and media-type hints.
package script
