// Package gen synthesizes and emits the generated map functions.
//
// Generation approach uses text/template + go/format for readable,
// allocation-light Go code.
//
// Codegen patterns:
//   - Direct application of the element function
//   - Pass-through for fields without a parameter occurrence
//   - Container helper calls (slice, map value, pointer, registry entries)
//   - Fixed-length array loops inside immediately-invoked closures
//   - Tuple (anonymous struct) reconstruction
//   - Variant dispatch for sealed unions
//   - Fallible variants of all of the above with first-failure
//     short-circuit in declaration order
package gen
