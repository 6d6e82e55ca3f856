package functor

// Option is an optional value container. The zero value is None.
type Option[T any] struct {
	value   T
	present bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether the option holds a value.
func (o Option[T]) IsSome() bool {
	return o.present
}

// Get returns the held value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the held value, or def when the option is empty.
func (o Option[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}

	return def
}

// MapOption applies fn to the held value, if any. None maps to None.
func MapOption[A, B any](o Option[A], fn func(A) B) Option[B] {
	if !o.present {
		return Option[B]{}
	}

	return Some(fn(o.value))
}

// TryMapOption applies fn to the held value, if any. None maps to None
// without invoking fn.
func TryMapOption[A, B any](o Option[A], fn func(A) (B, error)) (Option[B], error) {
	if !o.present {
		return Option[B]{}, nil
	}

	v, err := fn(o.value)
	if err != nil {
		return Option[B]{}, err
	}

	return Some(v), nil
}
