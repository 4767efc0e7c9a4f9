package emit

import (
	"fmt"
	"go/ast"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
	"github.com/syssam/typestate/schema"
)

// genSetters emits every setter of a field: the builder methods, and the
// inference, conversion and strict functions that methods cannot express.
func (b *builder) genSetters(f *jen.File, fld *gen.Field) {
	for _, m := range fld.SetterModes() {
		b.genMethod(f, fld, m)
		if fld.IsInfer() {
			b.genInfer(f, fld, m)
		}
		if b.strict && fld.HasStrict() {
			b.genStrict(f, fld, m)
		}
	}
	if fld.Into {
		b.genInto(f, fld)
	}
}

// param declares the argument of a setter for mode m, with the field type
// taken in state s.
func (b *builder) param(fld *gen.Field, m schema.Mode, s gen.State) *jen.Statement {
	typ := b.c.typ(s.FieldType(fld))
	l := b.r.Locals
	switch m {
	case schema.ModeLazy:
		return jen.Id(l.Producer).Func().Params().Add(typ)
	case schema.ModeAsync:
		return jen.Id(l.Producer).Func().Params(jen.Qual("context", "Context")).Op("<-").Chan().Add(typ)
	default:
		return jen.Id(l.Value).Add(typ)
	}
}

// arg returns the name of the setter argument for mode m.
func (b *builder) arg(m schema.Mode) string {
	if m == schema.ModeValue {
		return b.r.Locals.Value
	}
	return b.r.Locals.Producer
}

// rep returns the representation stored by a setter for mode m.
func (b *builder) rep(fld *gen.Field, m schema.Mode) *jen.Statement {
	l := b.r.Locals
	switch {
	case m == schema.ModeLazy && fld.Validator != nil:
		return b.rt("LazyValidated").Call(jen.Id(l.Producer), b.c.expr(fld.Validator))
	case m == schema.ModeLazy:
		return b.rt("Lazy").Call(jen.Id(l.Producer))
	case m == schema.ModeAsync && fld.Validator != nil:
		return b.rt("AsyncValidated").Call(jen.Id(l.Producer), b.c.expr(fld.Validator))
	case m == schema.ModeAsync:
		return b.rt("Async").Call(jen.Id(l.Producer))
	default:
		return b.rt("Value").Call(jen.Id(l.Value))
	}
}

// results returns the result list of a setter returning state out.
func (b *builder) results(fld *gen.Field, m schema.Mode, out gen.State) *jen.Statement {
	if m == schema.ModeValue && fld.Fallible() {
		return jen.Params(b.c.state(out), jen.Error())
	}
	return b.c.state(out)
}

// validate emits the validation of a value argument. On failure the zero
// builder of state out is returned with a *typestate.ValidationError.
func (b *builder) validate(g *jen.Group, fld *gen.Field, out gen.State) {
	l := b.r.Locals
	g.List(jen.Id(l.Value), jen.Id(l.Err)).Op(":=").Add(b.c.expr(fld.Validator)).Call(jen.Id(l.Value))
	g.If(jen.Id(l.Err).Op("!=").Nil()).Block(
		jen.Return(b.c.state(out).Values(), b.rt("NewValidationError").Call(jen.Lit(b.r.Name), jen.Lit(fld.Name), jen.Id(l.Err))),
	)
}

// genMethod emits the builder method of a field for mode m.
//
//	func (b PointBuilder[T, S1, S2, M]) Y(value T) PointBuilder[T, S1, T, M] {
//		typestate.MustUnset(b.y, "Point", "Y")
//		next := PointBuilder[T, S1, T, M](b)
//		next.y = typestate.Value(value)
//		return next
//	}
func (b *builder) genMethod(f *jen.File, fld *gen.Field, m schema.Mode) {
	r, l := b.r, b.r.Locals
	in, out := r.SetterStates(fld, m, false)
	name := fld.SetterName(m)
	fallible := m == schema.ModeValue && fld.Fallible()
	comment(f, setterDoc(name, fld, m)...)
	if !fld.IsInfer() {
		comment(f, "", fmt.Sprintf("It panics with a *typestate.AlreadySetError if %s was already set.", fld.Name))
	}
	f.Func().Params(jen.Id(l.Builder).Add(b.c.state(in))).Id(name).Params(b.param(fld, m, in)).Add(b.results(fld, m, out)).BlockFunc(func(g *jen.Group) {
		if !fld.IsInfer() {
			g.Add(b.rt("MustUnset")).Call(jen.Id(l.Builder).Dot(fld.Rep), jen.Lit(r.Name), jen.Lit(fld.Name))
		}
		if fallible {
			b.validate(g, fld, out)
		}
		g.Id(l.Next).Op(":=").Add(b.c.state(out)).Call(jen.Id(l.Builder))
		g.Id(l.Next).Dot(fld.Rep).Op("=").Add(b.rep(fld, m))
		if fallible {
			g.Return(jen.Id(l.Next), jen.Nil())
			return
		}
		g.Return(jen.Id(l.Next))
	})
}

// genStrict emits the strict setter function of a field for mode m. It
// only accepts builders whose slot of the field is unset, so setting a
// field twice is rejected by the compiler.
func (b *builder) genStrict(f *jen.File, fld *gen.Field, m schema.Mode) {
	r, l := b.r, b.r.Locals
	in, out := r.SetterStates(fld, m, true)
	name := fld.StrictName(m)
	comment(f, fmt.Sprintf("%s is like the %s method but only compiles for builders on which %s is not set yet.", name, fld.SetterName(m), fld.Name))
	f.Func().Add(withTypes(jen.Id(name), b.typeParams(nil, freeVars(in, out)))).Params(
		jen.Id(l.Builder).Add(b.c.state(in)),
		b.param(fld, m, in),
	).Add(b.results(fld, m, out)).Block(
		jen.Return(jen.Id(l.Builder).Dot(fld.SetterName(m)).Call(jen.Id(b.arg(m)))),
	)
}

// genInto emits the conversion setter of a field. It accepts any value
// whose type has the field type as underlying type.
func (b *builder) genInto(f *jen.File, fld *gen.Field) {
	r, l := b.r, b.r.Locals
	in, out := r.SetterStates(fld, schema.ModeValue, false)
	name := fld.IntoName()
	constraint := jen.Op("~").Add(b.c.typ(fld.Type))
	comment(f, fmt.Sprintf("%s is like the %s method but accepts any value of a type with underlying type %s.", name, fld.SetterName(schema.ModeValue), fld.TypeString()))
	target := b.c.typ(fld.Type)
	if needsParens(fld.Type) {
		target = jen.Parens(target)
	}
	f.Func().Add(withTypes(jen.Id(name), b.typeParams([]jen.Code{jen.Id(r.IntoVar).Add(constraint)}, freeVars(in, out)))).Params(
		jen.Id(l.Builder).Add(b.c.state(in)),
		jen.Id(l.Value).Id(r.IntoVar),
	).Add(b.results(fld, schema.ModeValue, out)).Block(
		jen.Return(jen.Id(l.Builder).Dot(fld.SetterName(schema.ModeValue)).Call(jen.Add(target).Call(jen.Id(l.Value)))),
	)
}

// genInfer emits the inference setter of a field for mode m.
//
//	func InferPointX[T2 any, T any, S1, S3, M any](b PointBuilder[T, S1, typestate.Unset, S3, M], value T2) PointBuilder[T2, T2, typestate.Unset, S3, M] {
//		return PointBuilder[T2, T2, typestate.Unset, S3, M]{
//			x: typestate.Value(value),
//			y: typestate.Retype[T2](b.y),
//			...
//		}
//	}
func (b *builder) genInfer(f *jen.File, fld *gen.Field, m schema.Mode) {
	r, l := b.r, b.r.Locals
	in, out := r.InferStates(fld, m)
	name := fld.InferName(m)
	fallible := m == schema.ModeValue && fld.Fallible()

	var (
		fresh []jen.Code
		env   = make(map[string]ast.Expr, len(fld.Fresh))
		names []string
	)
	for k, v := range fld.Fresh {
		env[k] = ast.NewIdent(v)
	}
	for _, p := range fld.Infer {
		v := fld.Fresh[p.Name]
		names = append(names, p.Name)
		var constraint ast.Expr
		if p.Constraint != nil {
			constraint = gen.Subst(p.Constraint, env)
		}
		fresh = append(fresh, jen.Id(v).Add(b.c.typ(constraint)))
	}
	var deps []*gen.Field
	for _, d := range r.Dependents(fld) {
		if !d.Hidden {
			deps = append(deps, d)
		}
	}
	lines := setterDoc(name, fld, m)
	lines = append(lines, "", fmt.Sprintf("Unlike the %s method, it instantiates %s with the type of its argument.", fld.SetterName(m), joinNames(names)))
	if len(deps) > 0 {
		lines = append(lines, fmt.Sprintf("It only compiles for builders on which %s %s not set yet.", fieldList(deps), isAre(deps)))
	}
	comment(f, lines...)

	f.Func().Add(withTypes(jen.Id(name), b.typeParams(fresh, freeVars(in, out)))).Params(
		jen.Id(l.Builder).Add(b.c.state(in)),
		b.param(fld, m, out),
	).Add(b.results(fld, m, out)).BlockFunc(func(g *jen.Group) {
		if fallible {
			b.validate(g, fld, out)
		}
		lit := b.c.state(out).Values(jen.DictFunc(func(d jen.Dict) {
			for _, o := range r.Fields {
				switch {
				case o.Hidden:
				case o == fld:
					d[jen.Id(o.Rep)] = b.rep(fld, m)
				case o.DependsOn(fld.Infer...):
					d[jen.Id(o.Rep)] = b.rt("Retype").Types(b.c.typ(out.FieldType(o))).Call(jen.Id(l.Builder).Dot(o.Rep))
				default:
					d[jen.Id(o.Rep)] = jen.Id(l.Builder).Dot(o.Rep)
				}
			}
		}))
		if fallible {
			g.Return(lit, jen.Nil())
			return
		}
		g.Return(lit)
	})
}

// needsParens reports whether a conversion to the type needs parentheses.
func needsParens(t ast.Expr) bool {
	switch t := t.(type) {
	case *ast.StarExpr, *ast.FuncType, *ast.ChanType:
		return true
	case *ast.ParenExpr:
		return needsParens(t.X)
	}
	return false
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	s := ""
	for i, n := range names {
		switch {
		case i == len(names)-1:
			s += " and " + n
		case i > 0:
			s += ", " + n
		default:
			s = n
		}
	}
	return s
}

func isAre(fs []*gen.Field) string {
	if len(fs) == 1 {
		return "is"
	}
	return "are"
}
