// Package diagnostic provides structured errors and warnings for the
// map-function generator.
//
// Key capabilities:
//   - Fatal configuration errors (e.g. the requested type parameter is
//     not declared on the subject type)
//   - Unsupported-shape degradation warnings for fields that contain the
//     target parameter but are passed through unchanged
//   - Per-subject and per-field context for CLI rendering
package diagnostic
