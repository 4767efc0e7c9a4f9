package load

import (
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	pathpkg "path"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/typestate/schema"
)

// Directives recognized in the doc comment of a record type.
const (
	directivePrefix  = "//typestate:"
	directiveBuilder = "builder"
	directiveDefault = "default"
)

// loadPackages loads the records declared in the Go packages matching
// pattern. Only syntax is loaded; the packages do not need to type-check,
// so they may reference builders that are not generated yet.
func (c *Config) loadPackages(pattern string) ([]*schema.Record, error) {
	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		BuildFlags: c.BuildFlags,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pattern, err)
	}
	only := strings.TrimPrefix(pattern, "file=")
	if only == pattern {
		only = ""
	}
	var recs []*schema.Record
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("load %s: %w", pkg.PkgPath, pkg.Errors[0])
		}
		for _, file := range pkg.Syntax {
			if only != "" && pkg.Fset.Position(file.Package).Filename != only {
				continue
			}
			loaded, err := fileRecords(pkg.Fset, file)
			if err != nil {
				return nil, err
			}
			recs = append(recs, loaded...)
		}
	}
	return recs, nil
}

// fileRecords returns the records declared in a parsed Go file.
func fileRecords(fset *token.FileSet, file *ast.File) ([]*schema.Record, error) {
	var (
		recs    []*schema.Record
		imports = fileImports(file)
	)
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			pos := fset.Position(ts.Pos()).String()
			dirs, err := parseDirectives(doc)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", pos, err)
			}
			if !dirs.builder {
				continue
			}
			rec, err := structRecord(fset, ts, doc, dirs, imports)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", pos, err)
			}
			rec.Pos = pos
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

type directives struct {
	builder  bool
	defaults map[string]string
}

// parseDirectives reads the //typestate: directives of a doc comment.
func parseDirectives(doc *ast.CommentGroup) (*directives, error) {
	d := &directives{defaults: make(map[string]string)}
	if doc == nil {
		return d, nil
	}
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		name, args, _ := strings.Cut(text, " ")
		switch name {
		case directiveBuilder:
			d.builder = true
		case directiveDefault:
			d.builder = true
			for _, arg := range strings.Fields(args) {
				param, typ, ok := strings.Cut(arg, "=")
				if !ok || param == "" || typ == "" {
					return nil, fmt.Errorf("invalid %s%s argument %q, want Param=Type", directivePrefix, name, arg)
				}
				d.defaults[param] = typ
			}
		default:
			return nil, fmt.Errorf("unknown directive %s%s", directivePrefix, name)
		}
	}
	return d, nil
}

func structRecord(fset *token.FileSet, ts *ast.TypeSpec, doc *ast.CommentGroup, dirs *directives, imports map[string]string) (*schema.Record, error) {
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s is not a struct type", ts.Name.Name)
	}
	b := schema.Build(ts.Name.Name).Doc(strings.TrimSpace(doc.Text()))
	for alias, path := range imports {
		b.Import(alias, path)
	}
	declared := make(map[string]bool)
	if ts.TypeParams != nil {
		for _, p := range ts.TypeParams.List {
			constraint := source(fset, p.Type)
			for _, n := range p.Names {
				declared[n.Name] = true
				b.Param(n.Name, constraint, dirs.defaults[n.Name])
			}
		}
	}
	for param := range dirs.defaults {
		if !declared[param] {
			return nil, fmt.Errorf("record %q: default for unknown type parameter %q", ts.Name.Name, param)
		}
	}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, fmt.Errorf("record %q: embedded field %s is not supported", ts.Name.Name, source(fset, f.Type))
		}
		tag, err := fieldTag(f)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", ts.Name.Name, err)
		}
		doc := f.Doc
		if doc == nil {
			doc = f.Comment
		}
		typ := source(fset, f.Type)
		for _, n := range f.Names {
			fd, err := tagField(n.Name, typ, strings.TrimSpace(doc.Text()), tag)
			if err != nil {
				return nil, fmt.Errorf("record %q: %w", ts.Name.Name, err)
			}
			b.Fields(fd)
		}
	}
	return b.Record(), nil
}

// fieldTag returns the builder tag of a struct field.
func fieldTag(f *ast.Field) (string, error) {
	if f.Tag == nil {
		return "", nil
	}
	raw, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return "", fmt.Errorf("invalid tag %s: %w", f.Tag.Value, err)
	}
	tag, _ := reflect.StructTag(raw).Lookup(TagName)
	return tag, nil
}

// fileImports maps the package names of a file's imports to their paths.
// Blank and dot imports are skipped.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := assumedName(path)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// assumedName returns the package name assumed for an import path without
// an explicit name: the last element, skipping a major version suffix and
// a go- prefix, cut at the first '.' or '-'. For example, gopkg.in/yaml.v3
// is yaml and github.com/vmihailenco/msgpack/v5 is msgpack.
func assumedName(path string) string {
	base := pathpkg.Base(path)
	if len(base) > 1 && base[0] == 'v' {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := pathpkg.Dir(path); dir != "." {
				base = pathpkg.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i > 0 {
		base = base[:i]
	}
	return base
}

func source(fset *token.FileSet, node ast.Node) string {
	var sb strings.Builder
	_ = printer.Fprint(&sb, fset, node)
	return sb.String()
}
