// Package textutil provides text processing utilities for keyword extraction,
// caption shaping, and filename sanitization.
//
// The primary use cases are:
//   - Deriving search keywords from scene direction text
//   - Truncating and word-wrapping placeholder captions
//   - Sanitizing filenames and path segments for safe filesystem use
//
// The tokenization process folds diacritics, lowercases text, splits on
// non-alphanumeric characters, and filters tokens shorter than 3 characters.
package textutil
