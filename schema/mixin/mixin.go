// Package mixin provides reusable groups of record fields.
//
// A mixin contributes fields, and the imports their types and defaults
// need, to every record it is applied to. Mixin fields come before the
// record's own fields.
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []schema.Descriptor {
//	    return []schema.Descriptor{
//	        field.New("CreatedBy", "string").Default(`""`),
//	    }
//	}
//
//	rec := mixin.Apply(schema.Build("Order"), Audit{}, mixin.ID{}).
//	    Fields(field.New("Customer", "string")).
//	    Record()
//
// Schema files refer to the built-in mixins by name:
//
//	records:
//	  - name: Order
//	    mixins: [id, time]
package mixin

import (
	"fmt"
	"sort"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

// Mixin is a reusable set of record fields.
type Mixin interface {
	// Fields returns the declarations of the mixin fields.
	Fields() []schema.Descriptor
	// Imports maps the package names used by the fields to import paths.
	Imports() map[string]string
}

// Schema is the empty mixin. Embed it and override the methods you need.
type Schema struct{}

// Fields returns no fields.
func (Schema) Fields() []schema.Descriptor { return nil }

// Imports returns no imports.
func (Schema) Imports() map[string]string { return nil }

var _ Mixin = (*Schema)(nil)

// Apply adds the imports and fields of each mixin to b, in order.
func Apply(b *schema.RecordBuilder, ms ...Mixin) *schema.RecordBuilder {
	for _, m := range ms {
		for name, path := range m.Imports() {
			b.Import(name, path)
		}
		b.Fields(m.Fields()...)
	}
	return b
}

// ID adds a hidden ID field holding a random UUID.
type ID struct {
	Schema
}

// Fields returns the ID field.
func (ID) Fields() []schema.Descriptor {
	return []schema.Descriptor{
		field.New("ID", "uuid.UUID").
			DefaultLazy("uuid.New").
			Hidden().
			Doc("ID identifies the record."),
	}
}

// Imports returns the uuid package.
func (ID) Imports() map[string]string {
	return map[string]string{"uuid": "github.com/google/uuid"}
}

// Time adds CreatedAt and UpdatedAt, both defaulting to the build time.
type Time struct {
	Schema
}

// Fields returns the timestamp fields.
func (Time) Fields() []schema.Descriptor {
	return []schema.Descriptor{
		field.New("CreatedAt", "time.Time").
			DefaultLazy("time.Now").
			Doc("CreatedAt is when the record was created."),
		field.New("UpdatedAt", "time.Time").
			DefaultLazy("time.Now").
			Doc("UpdatedAt is when the record was last updated."),
	}
}

// Imports returns the time package.
func (Time) Imports() map[string]string {
	return map[string]string{"time": "time"}
}

// Labels adds a Labels map of free-form key/value pairs.
type Labels struct {
	Schema
}

// Fields returns the Labels field.
func (Labels) Fields() []schema.Descriptor {
	return []schema.Descriptor{
		field.New("Labels", "map[string]string").
			Default("nil").
			Doc("Labels are free-form key/value pairs."),
	}
}

var builtin = map[string]Mixin{
	"id":     ID{},
	"time":   Time{},
	"labels": Labels{},
}

// Lookup returns the built-in mixin registered under name.
func Lookup(name string) (Mixin, error) {
	m, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown mixin %q (known: %v)", name, Names())
	}
	return m, nil
}

// Names returns the names of the built-in mixins, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
