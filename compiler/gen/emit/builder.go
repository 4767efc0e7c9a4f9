package emit

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
)

// builder emits the builder file of one record.
type builder struct {
	c      *conv
	r      *gen.Record
	strict bool
}

// rt returns a qualified identifier of the runtime package.
func (b *builder) rt(name string) *jen.Statement {
	return jen.Qual(b.c.imports["typestate"], name)
}

// typeParams declares the fresh variables, then the record parameters,
// then vars constrained by any.
func (b *builder) typeParams(fresh []jen.Code, vars []string) []jen.Code {
	params := append([]jen.Code{}, fresh...)
	for _, p := range b.r.Params {
		params = append(params, jen.Id(p.Name).Add(b.c.typ(p.Constraint)))
	}
	if len(vars) > 0 {
		ids := make([]jen.Code, len(vars))
		for i, v := range vars {
			ids[i] = jen.Id(v)
		}
		params = append(params, jen.List(ids...).Any())
	}
	return params
}

// freeVars returns the free variables of the states, each once, in order.
func freeVars(states ...gen.State) []string {
	var (
		vars []string
		seen = make(map[string]bool)
	)
	for _, s := range states {
		for _, v := range s.FreeVars() {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}

func (b *builder) genType(f *jen.File) {
	r := b.r
	comment(f, builderDoc(r)...)
	name := withTypes(jen.Id(r.BuilderName()), b.typeParams(nil, r.GenericState().FreeVars()))
	f.Type().Add(name).StructFunc(func(g *jen.Group) {
		for _, fld := range r.Fields {
			if fld.Hidden {
				continue
			}
			g.Id(fld.Rep).Add(b.rt("Rep")).Types(b.c.typ(fld.Type))
		}
	})
}

// initial returns the builder literal of a new builder.
func (b *builder) initial() *jen.Statement {
	r := b.r
	return b.c.state(r.InitialState()).Values(jen.DictFunc(func(d jen.Dict) {
		for _, fld := range r.Fields {
			if fld.Hidden || fld.Required {
				continue
			}
			typ := b.c.typ(fld.Type)
			switch {
			case fld.LateBound:
				d[jen.Id(fld.Rep)] = b.rt("LateBoundDefault").Types(typ).Call()
			case fld.DefaultLazy():
				d[jen.Id(fld.Rep)] = b.rt("DefaultFunc").Types(typ).Call(b.c.expr(fld.DefaultExpr))
			default:
				d[jen.Id(fld.Rep)] = b.rt("Default").Types(typ).Call(b.c.expr(fld.DefaultExpr))
			}
		}
	}))
}

func (b *builder) genConstructors(f *jen.File) {
	r := b.r
	if !r.HasDefaultedParams() {
		comment(f, fmt.Sprintf("%s returns a %s with no field set.", r.NewName(), r.BuilderName()))
		f.Func().Add(withTypes(jen.Id(r.NewName()), b.typeParams(nil, nil))).Params().Add(b.c.state(r.InitialState())).Block(
			jen.Return(b.initial()),
		)
		return
	}
	comment(f,
		fmt.Sprintf("%s returns a %s with no field set.", r.NewBuilderName(), r.BuilderName()),
		"",
		fmt.Sprintf("Use %s to instantiate %s with %s.", r.NewName(), paramList(r.DefaultedParams()), defaultList(r.DefaultedParams())),
	)
	f.Func().Add(withTypes(jen.Id(r.NewBuilderName()), b.typeParams(nil, nil))).Params().Add(b.c.state(r.InitialState())).Block(
		jen.Return(b.initial()),
	)

	// The no-argument form keeps the parameters without a default.
	var (
		decls []jen.Code
		args  = make([]ast.Expr, len(r.Params))
	)
	for i, p := range r.Params {
		if p.HasDefault() {
			args[i] = p.Default
			continue
		}
		args[i] = ast.NewIdent(p.Name)
		decls = append(decls, jen.Id(p.Name).Add(b.c.typ(p.Constraint)))
	}
	comment(f, fmt.Sprintf("%s is %s with %s instantiated with %s.", r.NewName(), r.NewBuilderName(), paramList(r.DefaultedParams()), defaultList(r.DefaultedParams())))
	f.Func().Add(withTypes(jen.Id(r.NewName()), decls)).Params().Add(b.c.state(r.ConstructorState())).Block(
		jen.Return(jen.Id(r.NewBuilderName()).Types(b.c.typeList(args)...).Call()),
	)
}

func paramList(ps []*gen.Param) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func defaultList(ps []*gen.Param) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = exprString(p.Default)
	}
	return strings.Join(names, ", ")
}
