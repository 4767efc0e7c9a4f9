package emit

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/typestate/compiler/gen"
	"github.com/syssam/typestate/schema"
)

// commenter is implemented by *jen.File and *jen.Group.
type commenter interface {
	Comment(string) *jen.Statement
}

// comment writes one line comment per line. Blank lines become paragraph
// separators.
func comment(c commenter, lines ...string) {
	for _, l := range lines {
		for _, sub := range strings.Split(l, "\n") {
			c.Comment(strings.TrimRight(sub, " "))
		}
	}
}

var titleCaser = cases.Title(language.English)

// fieldList joins field names for documentation.
func fieldList(fs []*gen.Field) string {
	var names []string
	for _, f := range fs {
		if !f.Hidden {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// fieldSummary lists fields with their type, default and setter modes, e.g.
//
//	  - Label (string, defaults to "origin"): Value, Lazy
func fieldSummary(heading string, fs []*gen.Field) []string {
	var lines []string
	for _, f := range fs {
		if f.Hidden {
			continue
		}
		what := f.TypeString()
		if !f.Required {
			what += ", " + defaultDoc(f)
		}
		modes := make([]string, 0, 3)
		for _, m := range f.SetterModes() {
			modes = append(modes, titleCaser.String(m.String()))
		}
		lines = append(lines, fmt.Sprintf("  - %s (%s): %s", f.Name, what, strings.Join(modes, ", ")))
	}
	if len(lines) == 0 {
		return []string{heading + ": none."}
	}
	return append([]string{heading + ":", ""}, lines...)
}

func builderDoc(r *gen.Record) []string {
	lines := []string{
		fmt.Sprintf("%s builds %s values. Each field has a type parameter that is", r.BuilderName(), r.Name),
		"typestate.Unset until the field is set, and the field type afterwards.",
	}
	if r.Marker != "" {
		lines = append(lines, "The last parameter becomes typestate.AsyncBuild once an asynchronous setter is used.")
	}
	lines = append(lines, "")
	lines = append(lines, fieldSummary("Required fields", r.RequiredFields())...)
	lines = append(lines, "")
	lines = append(lines, fieldSummary("Optional fields", r.OptionalFields())...)
	return lines
}

// defaultDoc describes the default of a field, if any.
func defaultDoc(f *gen.Field) string {
	switch {
	case f.Required:
		return "required"
	case f.DefaultLazy():
		return fmt.Sprintf("defaults to the result of %s", f.Default.Expr)
	default:
		return fmt.Sprintf("defaults to %s", f.Default.Expr)
	}
}

func setterDoc(name string, f *gen.Field, m schema.Mode) []string {
	var how string
	switch m {
	case schema.ModeLazy:
		how = "from a producer called when the record is built"
	case schema.ModeAsync:
		how = "from a producer whose channel is awaited by " + f.Record().BuildAsyncName()
	default:
		how = "to value"
	}
	lines := []string{fmt.Sprintf("%s sets %s %s.", name, f.Name, how)}
	state := "is required"
	if !f.Required {
		state = defaultDoc(f)
	}
	detail := fmt.Sprintf("The field has type %s and %s.", f.TypeString(), state)
	if f.Validator != nil {
		if m == schema.ModeValue {
			detail += " The value is validated before it is stored. On error the returned\nbuilder is a zero value and must not be used."
		} else {
			detail += " The produced value is validated when the record is built."
		}
	}
	lines = append(lines, "", detail)
	if f.Doc != "" {
		lines = append(lines, "", f.Doc)
	}
	return lines
}
