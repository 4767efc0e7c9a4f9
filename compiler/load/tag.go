package load

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

// TagName is the struct tag key holding field attributes.
const TagName = "builder"

// attr is one attribute of a builder tag, e.g. default=0.
type attr struct {
	key, value string
	valued     bool
}

var folder = cases.Fold()

// parseTag splits a builder tag into attributes. Attributes are separated
// by ';'. Separators inside quotes or brackets do not split, so
// default="a;b" is a single attribute.
func parseTag(tag string) ([]attr, error) {
	var (
		attrs []attr
		depth int
		quote rune
		start int
	)
	add := func(item string) error {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil
		}
		key, value, valued := strings.Cut(item, "=")
		key = folder.String(strings.TrimSpace(key))
		if key == "" {
			return fmt.Errorf("missing attribute name in %q", item)
		}
		attrs = append(attrs, attr{key: key, value: strings.TrimSpace(value), valued: valued})
		return nil
	}
	for i, r := range tag {
		switch {
		case quote != 0:
			if r == quote && (quote == '`' || i == 0 || tag[i-1] != '\\') {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == ';' && depth == 0:
			if err := add(tag[start:i]); err != nil {
				return nil, err
			}
			start = i + 1
		}
	}
	if quote != 0 || depth != 0 {
		return nil, fmt.Errorf("unbalanced tag %q", tag)
	}
	if err := add(tag[start:]); err != nil {
		return nil, err
	}
	return attrs, nil
}

// applyTag applies the attributes of a builder tag to a field declaration.
func applyTag(b *field.Builder, tag string) error {
	attrs, err := parseTag(tag)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		if err := a.apply(b); err != nil {
			return err
		}
	}
	return nil
}

func (a attr) apply(b *field.Builder) error {
	switch a.key {
	case "default", "default_lazy", "default_async", "validator", "setter", "infer", "doc":
		if a.value == "" {
			return fmt.Errorf("attribute %q requires a value", a.key)
		}
	case "hidden", "public", "into", "late_bound_default", "late_bound":
		if a.valued && a.value != "true" {
			return fmt.Errorf("attribute %q takes no value", a.key)
		}
	default:
		return fmt.Errorf("unknown attribute %q", a.key)
	}
	switch a.key {
	case "default":
		b.Default(a.value)
	case "default_lazy":
		b.DefaultLazy(a.value)
	case "default_async":
		b.DefaultAsync(a.value)
	case "validator":
		b.Validator(a.value)
	case "doc":
		b.Doc(a.value)
	case "setter":
		modes, err := parseModes(split(a.value))
		if err != nil {
			return err
		}
		b.Setter(modes...)
	case "infer":
		b.Infer(split(a.value)...)
	case "hidden":
		b.Hidden()
	case "public":
		b.Public()
	case "into":
		b.Into()
	case "late_bound_default", "late_bound":
		b.LateBound()
	}
	return nil
}

// split splits a list separated by '|' or ','.
func split(s string) []string {
	var out []string
	for _, item := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// tagField returns the declaration of a field from its builder tag.
func tagField(name, typ, doc, tag string) (schema.Descriptor, error) {
	b := field.New(name, typ).Doc(doc)
	if err := applyTag(b, tag); err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	return b, nil
}
