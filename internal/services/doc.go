// Package services defines shared utilities consumed by the cache scanner,
// index builder, and query layer.
//
// Key responsibilities:
//   - Context helpers that stamp index build IDs and speaker indices for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep every failure
//     kind enumerable through errors.Is, and Recoverable which separates
//     fatal asset/config problems from caller or environment mismatches.
//
// Use these helpers when wiring new cache logic so operational behaviour
// (error classification, observability) stays uniform across the module.
package services
