// Package typestate is the runtime support package of code generated by the
// typestate builder generator.
//
// A generated builder carries one phantom type parameter ("slot") per
// settable field. A slot is instantiated with [Unset] until the field is
// supplied, and with the field's type afterwards:
//
//	b := geo.NewPoint()          // PointBuilder[float64, typestate.Unset, typestate.Unset, ...]
//	b2 := b.X(1).Y(2)            // PointBuilder[float64, float64, float64, ...]
//	p, err := geo.BuildPoint(b2) // compiles only once every required slot is set
//
// The value of every field is held by a [Rep], a closed union over the ways a
// value can be obtained: an immediate value, a default, a lazy producer or an
// asynchronous producer, each optionally composed with a validator. Build
// functions consume every Rep exactly once.
//
// # Errors
//
// Validators return errors that surface as [*ValidationError], matched by
// [ErrValidation]. Calling a non-inferring setter twice on one chain panics
// with [*AlreadySetError]; generators can also emit strict setter functions
// that reject the second call at compile time.
package typestate
