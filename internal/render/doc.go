// Package render turns an assembled timeline into a deliverable artifact.
//
// The primary path builds an ffmpeg filter graph that normalizes every scene
// stream to the output frame and concatenates them into a single encode. Two
// degradation tiers sit behind it: a self-contained HTML slideshow when
// encoding fails, and a structured JSON dump of the timeline when slideshow
// generation fails too. The ladder always returns an artifact path and kind;
// it only errors when all three tiers fail.
package render
