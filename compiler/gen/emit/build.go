package emit

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
)

// genBuild emits the synchronous build function. It only accepts builders
// whose required slots are filled and which carry the sync marker.
//
//	func BuildPoint[T any, S3 any](b PointBuilder[T, T, T, S3, typestate.SyncBuild]) (Point[T], error)
//
// Fields are consumed in canonical order; a validator failure stops the
// build and no later producer is called.
func (b *builder) genBuild(f *jen.File) {
	r, l := b.r, b.r.Locals
	s := r.TerminalState(false)
	rec := b.c.recordType(r, s)
	fallible := r.Fallible()

	lines := []string{fmt.Sprintf("%s builds the %s from a builder on which every required field is set.", r.BuildName(), r.Name)}
	if fallible {
		lines = append(lines, "Values of lazy producers are validated in field order; the first failure is returned as a *typestate.ValidationError.")
	}
	if r.HasAsync() {
		lines = append(lines, fmt.Sprintf("Builders with an asynchronous field are built with %s.", r.BuildAsyncName()))
	}
	comment(f, lines...)

	results := jen.Add(rec)
	if fallible {
		results = jen.Params(rec, jen.Error())
	}
	f.Func().Add(withTypes(jen.Id(r.BuildName()), b.typeParams(nil, s.FreeVars()))).Params(
		jen.Id(l.Builder).Add(b.c.state(s)),
	).Add(results).BlockFunc(func(g *jen.Group) {
		g.Var().Id(l.Record).Add(b.c.recordType(r, s))
		if fallible {
			g.Var().Id(l.Err).Error()
		}
		for _, fld := range r.Fields {
			b.consume(g, fld, func(g *jen.Group) {
				if !fallible || !fld.DeferredValidation() {
					g.Id(l.Record).Dot(fld.Name).Op("=").Id(l.Builder).Dot(fld.Rep).Dot("Get").Call()
					return
				}
				b.check(g, fld, s, jen.Id(l.Builder).Dot(fld.Rep).Dot("Resolve").Call(jen.Lit(r.Name), jen.Lit(fld.Name)))
			})
		}
		if fallible {
			g.Return(jen.Id(l.Record), jen.Nil())
			return
		}
		g.Return(jen.Id(l.Record))
	})
}

// genBuildAsync emits the asynchronous build function. Producers are
// awaited one at a time in canonical order; ctx ending aborts the build.
func (b *builder) genBuildAsync(f *jen.File) {
	r, l := b.r, b.r.Locals
	s := r.TerminalState(true)
	rec := b.c.recordType(r, s)

	comment(f,
		fmt.Sprintf("%s builds the %s, awaiting asynchronous producers in field order.", r.BuildAsyncName(), r.Name),
		"It returns a *typestate.ResolveError when ctx ends first or a producer closes",
		"its channel without a value, and a *typestate.ValidationError when a",
		"produced value is rejected.",
	)
	f.Func().Add(withTypes(jen.Id(r.BuildAsyncName()), b.typeParams(nil, s.FreeVars()))).Params(
		jen.Id(l.Ctx).Qual("context", "Context"),
		jen.Id(l.Builder).Add(b.c.state(s)),
	).Params(rec, jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id(l.Record).Add(b.c.recordType(r, s))
		g.Var().Id(l.Err).Error()
		for _, fld := range r.Fields {
			b.consume(g, fld, func(g *jen.Group) {
				b.check(g, fld, s, jen.Id(l.Builder).Dot(fld.Rep).Dot("Await").Call(jen.Id(l.Ctx), jen.Lit(r.Name), jen.Lit(fld.Name)))
			})
		}
		g.Return(jen.Id(l.Record), jen.Nil())
	})
}

// consume emits the assignment of one record field. Hidden fields take
// their default; late-bound fields take it unless a setter was called.
func (b *builder) consume(g *jen.Group, fld *gen.Field, resolve func(*jen.Group)) {
	l := b.r.Locals
	def := func(g *jen.Group) {
		value := jen.Add(b.c.expr(fld.DefaultExpr))
		if fld.DefaultLazy() {
			value = value.Call()
		}
		g.Id(l.Record).Dot(fld.Name).Op("=").Add(value)
	}
	switch {
	case fld.Hidden:
		def(g)
	case fld.LateBound:
		g.If(jen.Id(l.Builder).Dot(fld.Rep).Dot("IsSet").Call()).BlockFunc(resolve).Else().BlockFunc(def)
	default:
		resolve(g)
	}
}

// check emits a fallible assignment returning on error.
func (b *builder) check(g *jen.Group, fld *gen.Field, s gen.State, call jen.Code) {
	l := b.r.Locals
	g.If(
		jen.List(jen.Id(l.Record).Dot(fld.Name), jen.Id(l.Err)).Op("=").Add(call),
		jen.Id(l.Err).Op("!=").Nil(),
	).Block(
		jen.Return(b.c.recordType(b.r, s).Values(), jen.Id(l.Err)),
	)
}
