package typestate

import (
	"context"
	"fmt"
	"reflect"
)

// Unset is the slot instantiation of a field that has not been supplied.
type Unset struct{}

// SyncBuild is the marker slot of a builder on which no asynchronous
// setter was called. Only builders in this state can be built synchronously.
type SyncBuild struct{}

// AsyncBuild is the marker slot of a builder that holds at least one
// asynchronous producer.
type AsyncBuild struct{}

// Kind tags the variant held by a Rep.
type Kind uint8

// Representation kinds.
const (
	KindUnset Kind = iota
	KindDefault
	KindLateBoundDefault
	KindValue
	KindLazy
	KindLazyValidated
	KindAsync
	KindAsyncValidated
)

var kindNames = [...]string{
	KindUnset:            "unset",
	KindDefault:          "default",
	KindLateBoundDefault: "late-bound default",
	KindValue:            "value",
	KindLazy:             "lazy",
	KindLazyValidated:    "lazy validated",
	KindAsync:            "async",
	KindAsyncValidated:   "async validated",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Rep describes how the value of one field is eventually obtained.
// The zero Rep is unset.
type Rep[T any] struct {
	kind     Kind
	value    T
	lazy     func() T
	async    func(context.Context) <-chan T
	validate func(T) (T, error)
}

// Default returns a representation holding an immediate default value.
func Default[T any](v T) Rep[T] {
	return Rep[T]{kind: KindDefault, value: v}
}

// DefaultFunc returns a default representation whose value is produced
// by calling f at construction time.
func DefaultFunc[T any](f func() T) Rep[T] {
	return Rep[T]{kind: KindDefault, lazy: f}
}

// LateBoundDefault returns a data-free representation for a default that is
// evaluated once the record's final instantiation is known.
func LateBoundDefault[T any]() Rep[T] {
	return Rep[T]{kind: KindLateBoundDefault}
}

// Value returns a representation holding v.
func Value[T any](v T) Rep[T] {
	return Rep[T]{kind: KindValue, value: v}
}

// Lazy returns a representation that calls f at construction time.
func Lazy[T any](f func() T) Rep[T] {
	return Rep[T]{kind: KindLazy, lazy: f}
}

// LazyValidated is like Lazy but passes the produced value through validate.
func LazyValidated[T any](f func() T, validate func(T) (T, error)) Rep[T] {
	return Rep[T]{kind: KindLazyValidated, lazy: f, validate: validate}
}

// Async returns a representation whose value is received from the channel
// returned by f. It can only be resolved by Await.
func Async[T any](f func(context.Context) <-chan T) Rep[T] {
	return Rep[T]{kind: KindAsync, async: f}
}

// AsyncValidated is like Async but passes the received value through validate.
func AsyncValidated[T any](f func(context.Context) <-chan T, validate func(T) (T, error)) Rep[T] {
	return Rep[T]{kind: KindAsyncValidated, async: f, validate: validate}
}

// Kind returns the variant tag.
func (r Rep[T]) Kind() Kind {
	return r.kind
}

// IsSet reports whether the representation was supplied by a setter.
func (r Rep[T]) IsSet() bool {
	switch r.kind {
	case KindValue, KindLazy, KindLazyValidated, KindAsync, KindAsyncValidated:
		return true
	default:
		return false
	}
}

// Get returns the value of a representation that cannot fail: a value, a
// default or a lazy producer. It panics for any other kind.
func (r Rep[T]) Get() T {
	switch r.kind {
	case KindValue:
		return r.value
	case KindDefault:
		if r.lazy != nil {
			return r.lazy()
		}
		return r.value
	case KindLazy:
		return r.lazy()
	default:
		panic(fmt.Sprintf("typestate: Get called on %s representation", r.kind))
	}
}

// Resolve returns the value of the representation in a synchronous build.
// Validation failures are reported as *ValidationError.
func (r Rep[T]) Resolve(record, field string) (T, error) {
	var zero T
	switch r.kind {
	case KindValue, KindDefault, KindLazy:
		return r.Get(), nil
	case KindLazyValidated:
		return r.check(record, field, r.lazy())
	case KindAsync, KindAsyncValidated:
		return zero, &ResolveError{Record: record, Field: field, Err: ErrAsyncRequired}
	default:
		return zero, &ResolveError{Record: record, Field: field, Err: ErrUnresolved}
	}
}

// Await returns the value of the representation in an asynchronous build.
// Asynchronous producers are invoked and waited for; ctx ending first
// aborts with its error. Other kinds resolve as in Resolve.
func (r Rep[T]) Await(ctx context.Context, record, field string) (T, error) {
	var zero T
	switch r.kind {
	case KindAsync, KindAsyncValidated:
		v, err := r.receive(ctx)
		if err != nil {
			return zero, &ResolveError{Record: record, Field: field, Err: err}
		}
		if r.kind == KindAsyncValidated {
			return r.check(record, field, v)
		}
		return v, nil
	default:
		return r.Resolve(record, field)
	}
}

func (r Rep[T]) receive(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	ch := r.async(ctx)
	if ch == nil {
		return zero, ErrProducerClosed
	}
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, ErrProducerClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r Rep[T]) check(record, field string, v T) (T, error) {
	v, err := r.validate(v)
	if err != nil {
		var zero T
		return zero, NewValidationError(record, field, err)
	}
	return v, nil
}

// MustUnset panics with *AlreadySetError if r was already supplied by a
// setter. Defaults do not count as supplied.
func MustUnset[T any](r Rep[T], record, field string) {
	if r.IsSet() {
		panic(&AlreadySetError{Record: record, Field: field, Kind: r.kind})
	}
}

// Cast converts v to U only when T and U are the same type. It is the
// runtime form of a type-equality witness: the value is never reinterpreted.
func Cast[U, T any](v T) (U, bool) {
	if reflect.TypeFor[T]() != reflect.TypeFor[U]() {
		var zero U
		return zero, false
	}
	u, _ := any(v).(U)
	return u, true
}

// Retype re-tags a representation of T as a representation of U. When T and
// U are the same type r is returned as is. Otherwise only data-free
// representations can be carried over: unset and late-bound defaults keep
// their kind, and an immediate default becomes late-bound so the default
// expression is evaluated again at U. Retype panics for any other kind.
func Retype[U, T any](r Rep[T]) Rep[U] {
	if u, ok := Cast[Rep[U]](r); ok {
		return u
	}
	switch r.kind {
	case KindUnset:
		return Rep[U]{}
	case KindLateBoundDefault, KindDefault:
		return LateBoundDefault[U]()
	default:
		panic(fmt.Sprintf("typestate: cannot retype %s representation from %s to %s",
			r.kind, reflect.TypeFor[T](), reflect.TypeFor[U]()))
	}
}
