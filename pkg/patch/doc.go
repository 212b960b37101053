// Package patch implements the text-level patch engine: anchor location,
// marker-based idempotency checks, and the pure content transform that splices
// an import line and a hook block into a single file's content.
//
// The engine never parses the target language. Anchors are RE2 patterns
// evaluated against the whole file text, so a pattern may span several lines.
package patch
