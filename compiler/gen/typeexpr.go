package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"sort"
)

// predeclared non-interface types usable as the core of a ~T constraint.
var predeclared = names(
	"bool", "string", "byte", "rune", "uintptr",
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64",
	"float32", "float64", "complex64", "complex128",
)

// parseExpr parses a Go expression. Type expressions are expressions too.
func parseExpr(src string) (ast.Expr, error) {
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	return expr, nil
}

// exprString prints an expression in canonical form.
func exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, token.NewFileSet(), expr)
	return buf.String()
}

// typeRefs returns the names in params that occur in the type expression,
// sorted. Identifiers used as selectors, struct field names and function
// parameter names are not references.
func typeRefs(expr ast.Expr, params map[string]struct{}) []string {
	seen := make(map[string]struct{})
	walkTypeIdents(expr, func(id *ast.Ident) {
		if _, ok := params[id.Name]; ok {
			seen[id.Name] = struct{}{}
		}
	})
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

// walkTypeIdents calls fn for every identifier that denotes a type or a
// package-level name inside expr.
func walkTypeIdents(expr ast.Expr, fn func(*ast.Ident)) {
	ast.Inspect(expr, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := n.X.(*ast.Ident); ok {
				fn(id)
			} else {
				walkTypeIdents(n.X, fn)
			}
			return false
		case *ast.Field:
			if n.Type != nil {
				walkTypeIdents(n.Type, fn)
			}
			return false
		case *ast.KeyValueExpr:
			walkTypeIdents(n.Value, fn)
			if _, ok := n.Key.(*ast.Ident); !ok {
				walkTypeIdents(n.Key, fn)
			}
			return false
		case *ast.Ident:
			fn(n)
		}
		return true
	})
}

// collectIdents adds every identifier of expr to set, including the ones
// declared inside function literals.
func collectIdents(expr ast.Expr, set map[string]struct{}) {
	ast.Inspect(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			set[id.Name] = struct{}{}
		}
		return true
	})
}

// canInto reports whether ~T is a valid constraint term for the type
// expression: T must be a predeclared non-interface type or an unnamed
// type literal.
func canInto(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return canInto(e.X)
	case *ast.Ident:
		_, ok := predeclared[e.Name]
		return ok
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.StarExpr:
		return true
	default:
		return false
	}
}
