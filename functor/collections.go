package functor

// MapSlice applies fn to every element of xs, preserving order.
// A nil slice maps to a nil slice.
func MapSlice[A, B any](xs []A, fn func(A) B) []B {
	if xs == nil {
		return nil
	}

	out := make([]B, len(xs))
	for i := range xs {
		out[i] = fn(xs[i])
	}

	return out
}

// TryMapSlice applies fn to every element of xs in index order and
// stops at the first failure. A nil slice maps to a nil slice.
func TryMapSlice[A, B any](xs []A, fn func(A) (B, error)) ([]B, error) {
	if xs == nil {
		return nil, nil
	}

	out := make([]B, len(xs))

	for i := range xs {
		v, err := fn(xs[i])
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// MapValues applies fn to every value of m, keeping keys untouched.
// A nil map maps to a nil map.
func MapValues[K comparable, A, B any](m map[K]A, fn func(A) B) map[K]B {
	if m == nil {
		return nil
	}

	out := make(map[K]B, len(m))
	for k, v := range m {
		out[k] = fn(v)
	}

	return out
}

// TryMapValues applies fn to every value of m, keeping keys untouched,
// and stops at the first failure. A nil map maps to a nil map.
func TryMapValues[K comparable, A, B any](m map[K]A, fn func(A) (B, error)) (map[K]B, error) {
	if m == nil {
		return nil, nil
	}

	out := make(map[K]B, len(m))

	for k, v := range m {
		nv, err := fn(v)
		if err != nil {
			return nil, err
		}

		out[k] = nv
	}

	return out, nil
}

// MapPtr applies fn to the pointee, producing a freshly allocated
// result. A nil pointer maps to a nil pointer.
func MapPtr[A, B any](p *A, fn func(A) B) *B {
	if p == nil {
		return nil
	}

	v := fn(*p)

	return &v
}

// TryMapPtr applies fn to the pointee. A nil pointer maps to a nil
// pointer without invoking fn.
func TryMapPtr[A, B any](p *A, fn func(A) (B, error)) (*B, error) {
	if p == nil {
		return nil, nil
	}

	v, err := fn(*p)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
