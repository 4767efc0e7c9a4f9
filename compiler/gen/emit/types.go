package emit

import (
	"go/ast"
	"go/printer"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
)

// conv converts schema type and value expressions to Jennifer code.
// Selectors on a known package name become qualified identifiers, so
// Jennifer manages the import block of the file.
type conv struct {
	imports map[string]string
}

func newConv(h gen.GeneratorHelper, r *gen.Record) *conv {
	c := &conv{imports: map[string]string{
		"typestate": h.RuntimePkg(),
		"context":   "context",
	}}
	for alias, path := range r.Imports {
		c.imports[alias] = path
	}
	return c
}

// typ converts a type expression.
func (c *conv) typ(e ast.Expr) jen.Code {
	switch e := e.(type) {
	case nil:
		return jen.Any()
	case *ast.Ident:
		return jen.Id(e.Name)
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if path, ok := c.imports[x.Name]; ok {
				return jen.Qual(path, e.Sel.Name)
			}
			return jen.Id(x.Name).Dot(e.Sel.Name)
		}
	case *ast.ParenExpr:
		return jen.Parens(c.typ(e.X))
	case *ast.StarExpr:
		return jen.Op("*").Add(c.typ(e.X))
	case *ast.ArrayType:
		switch l := e.Len.(type) {
		case nil:
			return jen.Index().Add(c.typ(e.Elt))
		case *ast.Ellipsis:
			return jen.Index(jen.Op("...")).Add(c.typ(e.Elt))
		default:
			return jen.Index(c.expr(l)).Add(c.typ(e.Elt))
		}
	case *ast.MapType:
		return jen.Map(c.typ(e.Key)).Add(c.typ(e.Value))
	case *ast.ChanType:
		switch e.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(c.typ(e.Value))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(c.typ(e.Value))
		default:
			return jen.Chan().Add(c.typ(e.Value))
		}
	case *ast.FuncType:
		return jen.Func().Add(c.signature(e))
	case *ast.Ellipsis:
		return jen.Op("...").Add(c.typ(e.Elt))
	case *ast.IndexExpr:
		return jen.Add(c.typ(e.X)).Types(c.typ(e.Index))
	case *ast.IndexListExpr:
		args := make([]jen.Code, len(e.Indices))
		for i, x := range e.Indices {
			args[i] = c.typ(x)
		}
		return jen.Add(c.typ(e.X)).Types(args...)
	case *ast.UnaryExpr:
		if e.Op == token.TILDE {
			return jen.Op("~").Add(c.typ(e.X))
		}
	case *ast.BinaryExpr:
		if e.Op == token.OR {
			return jen.Add(c.typ(e.X)).Op("|").Add(c.typ(e.Y))
		}
	case *ast.StructType:
		return jen.StructFunc(func(g *jen.Group) {
			for _, f := range e.Fields.List {
				g.Add(c.field(f))
			}
		})
	case *ast.InterfaceType:
		return jen.InterfaceFunc(func(g *jen.Group) {
			for _, f := range e.Methods.List {
				if ft, ok := f.Type.(*ast.FuncType); ok && len(f.Names) > 0 {
					g.Id(f.Names[0].Name).Add(c.signature(ft))
					continue
				}
				g.Add(c.typ(f.Type))
			}
		})
	}
	return c.expr(e)
}

// signature converts the parameters and results of a function type.
func (c *conv) signature(ft *ast.FuncType) jen.Code {
	params := c.fields(ft.Params)
	s := jen.Params(params...)
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return s
	}
	if len(ft.Results.List) == 1 && len(ft.Results.List[0].Names) == 0 {
		return s.Add(c.typ(ft.Results.List[0].Type))
	}
	return s.Params(c.fields(ft.Results)...)
}

func (c *conv) fields(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	var list []jen.Code
	for _, f := range fl.List {
		list = append(list, c.field(f))
	}
	return list
}

func (c *conv) field(f *ast.Field) jen.Code {
	s := jen.Null()
	if len(f.Names) > 0 {
		ids := make([]jen.Code, len(f.Names))
		for i, n := range f.Names {
			ids[i] = jen.Id(n.Name)
		}
		s = jen.List(ids...)
	}
	s = s.Add(c.typ(f.Type))
	if f.Tag != nil {
		s = s.Op(f.Tag.Value)
	}
	return s
}

// expr converts a value expression. The source text is copied token by
// token; selectors on a known package name are replaced by qualified
// identifiers.
func (c *conv) expr(e ast.Expr) jen.Code {
	src := exprString(e)
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), nil, 0)

	type tok struct {
		off int
		tok token.Token
		lit string
	}
	var toks []tok
	for {
		pos, t, lit := s.Scan()
		if t == token.EOF {
			break
		}
		if t == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, tok{off: file.Offset(pos), tok: t, lit: lit})
	}

	var (
		out  []jen.Code
		last int
	)
	flush := func(end int) {
		if raw := strings.TrimSpace(src[last:end]); raw != "" {
			out = append(out, jen.Op(raw))
		}
	}
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].tok != token.IDENT || toks[i+1].tok != token.PERIOD || toks[i+2].tok != token.IDENT {
			continue
		}
		if i > 0 && toks[i-1].tok == token.PERIOD {
			continue
		}
		path, ok := c.imports[toks[i].lit]
		if !ok {
			continue
		}
		flush(toks[i].off)
		out = append(out, jen.Qual(path, toks[i+2].lit))
		last = toks[i+2].off + len(toks[i+2].lit)
		i += 2
	}
	flush(len(src))
	if len(out) == 1 {
		return out[0]
	}
	return jen.Add(out...)
}

// exprString prints an expression in canonical form.
func exprString(e ast.Expr) string {
	var sb strings.Builder
	_ = printer.Fprint(&sb, token.NewFileSet(), e)
	return sb.String()
}

// typeList converts a list of type expressions.
func (c *conv) typeList(exprs []ast.Expr) []jen.Code {
	codes := make([]jen.Code, len(exprs))
	for i, e := range exprs {
		codes[i] = c.typ(e)
	}
	return codes
}

// state returns the builder type of a state.
func (c *conv) state(s gen.State) *jen.Statement {
	return withTypes(jen.Id(s.Record().BuilderName()), c.typeList(s.TypeArgs()))
}

// recordType returns the record type instantiated with the given arguments.
func (c *conv) recordType(r *gen.Record, s gen.State) *jen.Statement {
	args := make([]ast.Expr, len(r.Params))
	for i, p := range r.Params {
		args[i] = s.Param(p)
	}
	return withTypes(jen.Id(r.Name), c.typeList(args))
}

// withTypes appends a type argument or parameter list when not empty.
func withTypes(s *jen.Statement, types []jen.Code) *jen.Statement {
	if len(types) == 0 {
		return s
	}
	return s.Types(types...)
}
