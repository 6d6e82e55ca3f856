// Package functor is the runtime support package consumed by generated
// map functions.
//
// It provides:
//   - container helpers (MapSlice, MapValues, MapPtr, MapOption and their
//     Try* counterparts) that preserve structure and nil-ness,
//   - the Option container recognized by the shape registry,
//   - the zero-sized Phantom marker.
//
// All Try* helpers apply the element function left to right and return
// the first error encountered, leaving no partial result visible to the
// caller.
package functor
