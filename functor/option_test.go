package functor

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOption_ZeroValueIsNone(t *testing.T) {
	var o Option[int]

	assert.False(t, o.IsSome())
	assert.Equal(t, 7, o.OrElse(7))
}

func TestMapOption_Some(t *testing.T) {
	got := MapOption(Some(42), strconv.Itoa)

	v, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestMapOption_None(t *testing.T) {
	got := MapOption(None[int](), func(int) string {
		t.Fatal("fn must not run for None")
		return ""
	})

	assert.False(t, got.IsSome())
}

func TestTryMapOption_PropagatesError(t *testing.T) {
	boom := errors.New("boom")

	got, err := TryMapOption(Some(1), func(int) (int, error) {
		return 0, boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, got.IsSome())
}

func TestTryMapOption_None(t *testing.T) {
	got, err := TryMapOption(None[int](), func(int) (int, error) {
		t.Fatal("fn must not run for None")
		return 0, nil
	})

	require.NoError(t, err)
	assert.False(t, got.IsSome())
}
