// Package cipher extracts and executes the two string-transform functions
// embedded in the host player script: the signature decipher function and the
// n-parameter transform.
//
// Extraction is purely textual. Each function is located by a fixed anchor
// substring known to precede its call site, then sliced out with a
// bracket-balancing scanner that understands string, template, and regex
// literals (see scanner.go). A full JS grammar is never parsed.
//
// Execution runs an extracted function body in an embedded goja runtime,
// one isolated VM per call, bounded by an interrupt timeout. Both extraction
// misses and execution failures are non-fatal to callers: the formats
// resolver falls back to pass-through behavior.
package cipher
