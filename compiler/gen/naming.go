package gen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// pascal capitalizes the first letter of a string.
func pascal(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// lowerFirst lowers the first letter of a string.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// visible returns name with its first letter cased for the visibility.
func visible(exported bool, name string) string {
	if exported {
		return pascal(name)
	}
	return lowerFirst(name)
}

// snake returns the file-name form of an identifier, e.g. HTTPServer => http_server.
func snake(name string) string {
	return inflect.Underscore(name)
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}

// namer hands out identifiers that do not collide with each other or with
// a set of taken names.
type namer struct {
	taken map[string]struct{}
}

func newNamer(taken map[string]struct{}) *namer {
	n := &namer{taken: make(map[string]struct{}, len(taken))}
	for k := range taken {
		n.taken[k] = struct{}{}
	}
	return n
}

// fresh returns base, or base with the smallest numeric suffix starting at 2,
// that is not taken, and marks it taken.
func (n *namer) fresh(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, ok := n.taken[name]; !ok && !token.IsKeyword(name) {
			break
		}
		name = base + strconv.Itoa(i)
	}
	n.taken[name] = struct{}{}
	return name
}

// numbered returns the first name of the form base+i, i >= start, that is
// not taken, and marks it taken.
func (n *namer) numbered(base string, start int) string {
	for i := start; ; i++ {
		name := base + strconv.Itoa(i)
		if _, ok := n.taken[name]; !ok {
			n.taken[name] = struct{}{}
			return name
		}
	}
}

// take marks a name as taken.
func (n *namer) take(name string) {
	n.taken[name] = struct{}{}
}

// builderField returns the struct field name of a field's representation.
// It ensures it doesn't conflict with Go keywords and the builder methods,
// and that it is not exported.
func builderField(name string, methods map[string]struct{}, n *namer) string {
	name = lowerFirst(name)
	if _, ok := methods[name]; ok || token.Lookup(name).IsKeyword() {
		name = "_" + name
	}
	for {
		if _, ok := methods[name]; !ok {
			break
		}
		name = "_" + name
	}
	return n.fresh(name)
}

// splitList splits a comma or pipe separated list and trims its items.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
