package typestate_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate"
)

func positive(v int) (int, error) {
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}

func ready[T any](v T) func(context.Context) <-chan T {
	return func(context.Context) <-chan T {
		ch := make(chan T, 1)
		ch <- v
		return ch
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unset", typestate.KindUnset.String())
	assert.Equal(t, "late-bound default", typestate.KindLateBoundDefault.String())
	assert.Equal(t, "async validated", typestate.KindAsyncValidated.String())
	assert.Equal(t, "Kind(42)", typestate.Kind(42).String())
}

func TestRepIsSet(t *testing.T) {
	tests := []struct {
		name string
		rep  typestate.Rep[int]
		kind typestate.Kind
		set  bool
	}{
		{"zero", typestate.Rep[int]{}, typestate.KindUnset, false},
		{"default", typestate.Default(1), typestate.KindDefault, false},
		{"default func", typestate.DefaultFunc(func() int { return 1 }), typestate.KindDefault, false},
		{"late bound", typestate.LateBoundDefault[int](), typestate.KindLateBoundDefault, false},
		{"value", typestate.Value(1), typestate.KindValue, true},
		{"lazy", typestate.Lazy(func() int { return 1 }), typestate.KindLazy, true},
		{"lazy validated", typestate.LazyValidated(func() int { return 1 }, positive), typestate.KindLazyValidated, true},
		{"async", typestate.Async(ready(1)), typestate.KindAsync, true},
		{"async validated", typestate.AsyncValidated(ready(1), positive), typestate.KindAsyncValidated, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.rep.Kind())
			assert.Equal(t, tt.set, tt.rep.IsSet())
		})
	}
}

func TestRepGet(t *testing.T) {
	t.Run("value and defaults", func(t *testing.T) {
		assert.Equal(t, 3, typestate.Value(3).Get())
		assert.Equal(t, 5, typestate.Default(5).Get())
		assert.Equal(t, 7, typestate.DefaultFunc(func() int { return 7 }).Get())
	})

	t.Run("lazy producer is called on every Get", func(t *testing.T) {
		calls := 0
		r := typestate.Lazy(func() int { calls++; return calls })
		assert.Equal(t, 1, r.Get())
		assert.Equal(t, 2, r.Get())
	})

	t.Run("panics for fallible kinds", func(t *testing.T) {
		assert.Panics(t, func() { typestate.LazyValidated(func() int { return 1 }, positive).Get() })
		assert.Panics(t, func() { typestate.Async(ready(1)).Get() })
		assert.Panics(t, func() { typestate.Rep[int]{}.Get() })
	})
}

func TestRepResolve(t *testing.T) {
	t.Run("lazy validated passes", func(t *testing.T) {
		v, err := typestate.LazyValidated(func() int { return 4 }, positive).Resolve("Point", "X")
		require.NoError(t, err)
		assert.Equal(t, 4, v)
	})

	t.Run("lazy validated fails", func(t *testing.T) {
		v, err := typestate.LazyValidated(func() int { return -1 }, positive).Resolve("Point", "X")
		require.Error(t, err)
		assert.Zero(t, v)
		assert.True(t, errors.Is(err, typestate.ErrValidation))
		assert.True(t, typestate.IsValidationError(err))
		assert.Equal(t, "typestate: validation failed for Point.X: must be positive", err.Error())
	})

	t.Run("async requires await", func(t *testing.T) {
		_, err := typestate.Async(ready(1)).Resolve("Point", "X")
		require.Error(t, err)
		assert.True(t, errors.Is(err, typestate.ErrAsyncRequired))
	})

	t.Run("unset and late bound are unresolved", func(t *testing.T) {
		_, err := typestate.Rep[int]{}.Resolve("Point", "X")
		assert.True(t, errors.Is(err, typestate.ErrUnresolved))
		_, err = typestate.LateBoundDefault[int]().Resolve("Point", "X")
		assert.True(t, errors.Is(err, typestate.ErrUnresolved))
		assert.Contains(t, err.Error(), "Point.X")
	})
}

func TestRepAwait(t *testing.T) {
	ctx := context.Background()

	t.Run("async value", func(t *testing.T) {
		v, err := typestate.Async(ready("hello")).Await(ctx, "Greeting", "Text")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("async validated fails after receive", func(t *testing.T) {
		_, err := typestate.AsyncValidated(ready(-2), positive).Await(ctx, "Point", "X")
		require.Error(t, err)
		assert.True(t, errors.Is(err, typestate.ErrValidation))
	})

	t.Run("sync kinds resolve", func(t *testing.T) {
		v, err := typestate.Value(9).Await(ctx, "Point", "X")
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})

	t.Run("closed channel", func(t *testing.T) {
		closed := func(context.Context) <-chan int {
			ch := make(chan int)
			close(ch)
			return ch
		}
		_, err := typestate.Async(closed).Await(ctx, "Point", "X")
		assert.True(t, errors.Is(err, typestate.ErrProducerClosed))
	})

	t.Run("nil channel", func(t *testing.T) {
		none := func(context.Context) <-chan int { return nil }
		_, err := typestate.Async(none).Await(context.Background(), "Point", "X")
		require.Error(t, err)
		assert.True(t, errors.Is(err, typestate.ErrProducerClosed))
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		never := func(context.Context) <-chan int { return make(chan int) }
		_, err := typestate.Async(never).Await(ctx, "Point", "X")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("context already done skips the producer", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		producer := func(context.Context) <-chan int { called = true; return nil }
		_, err := typestate.Async(producer).Await(ctx, "Point", "X")
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, called)
	})
}

func TestMustUnset(t *testing.T) {
	assert.NotPanics(t, func() { typestate.MustUnset(typestate.Rep[int]{}, "Point", "X") })
	assert.NotPanics(t, func() { typestate.MustUnset(typestate.Default(1), "Point", "X") })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, typestate.ErrAlreadySet))
		assert.Equal(t, "typestate: Point.X already set (value)", err.Error())
	}()
	typestate.MustUnset(typestate.Value(1), "Point", "X")
}

func TestCast(t *testing.T) {
	v, ok := typestate.Cast[int](5)
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = typestate.Cast[int64](5)
	assert.False(t, ok)

	// Implementing an interface is not type equality.
	_, ok = typestate.Cast[any](5)
	assert.False(t, ok)

	var e error
	got, ok := typestate.Cast[error](e)
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestRetype(t *testing.T) {
	t.Run("identity keeps data", func(t *testing.T) {
		r := typestate.Retype[int](typestate.Value(3))
		assert.Equal(t, typestate.KindValue, r.Kind())
		assert.Equal(t, 3, r.Get())
	})

	t.Run("data-free kinds are re-tagged", func(t *testing.T) {
		assert.Equal(t, typestate.KindUnset, typestate.Retype[string](typestate.Rep[int]{}).Kind())
		assert.Equal(t, typestate.KindLateBoundDefault,
			typestate.Retype[string](typestate.LateBoundDefault[int]()).Kind())
	})

	t.Run("default at another type becomes late bound", func(t *testing.T) {
		r := typestate.Retype[[]string](typestate.Default([]int{1}))
		assert.Equal(t, typestate.KindLateBoundDefault, r.Kind())
	})

	t.Run("values cannot change type", func(t *testing.T) {
		assert.Panics(t, func() { typestate.Retype[string](typestate.Value(1)) })
		assert.Panics(t, func() {
			typestate.Retype[string](typestate.Lazy(func() int { return 1 }))
		})
	})
}

func TestAsyncOrdering(t *testing.T) {
	ctx := context.Background()
	var order []string
	producer := func(name string) func(context.Context) <-chan string {
		return func(context.Context) <-chan string {
			order = append(order, "start "+name)
			ch := make(chan string, 1)
			go func() {
				time.Sleep(time.Millisecond)
				ch <- name
			}()
			return ch
		}
	}
	reps := []typestate.Rep[string]{
		typestate.Async(producer("x")),
		typestate.Async(producer("y")),
	}
	for i, r := range reps {
		v, err := r.Await(ctx, "Pair", strconv.Itoa(i))
		require.NoError(t, err)
		order = append(order, "done "+v)
	}
	assert.Equal(t, []string{"start x", "done x", "start y", "done y"}, order)
}
