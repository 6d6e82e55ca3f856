package functor

// Phantom is a zero-sized marker that carries a type parameter at the
// type level only. Mapping a Phantom re-parameterizes the type without
// touching any value.
type Phantom[T any] struct{}
