package load

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
	"github.com/syssam/typestate/schema/mixin"
)

// Document is the serialized form of a schema file.
type Document struct {
	// Imports applies to every record of the document.
	Imports map[string]string `yaml:"imports,omitempty" json:"imports,omitempty"`
	Records []*Record         `yaml:"records" json:"records"`
}

// Record is a serialized schema.Record.
type Record struct {
	Name    string            `yaml:"name" json:"name"`
	Doc     string            `yaml:"doc,omitempty" json:"doc,omitempty"`
	Params  []*Param          `yaml:"params,omitempty" json:"params,omitempty"`
	Imports map[string]string `yaml:"imports,omitempty" json:"imports,omitempty"`
	// Mixins names built-in mixins whose fields precede Fields.
	Mixins  []string          `yaml:"mixins,omitempty" json:"mixins,omitempty"`
	Fields  []*Field          `yaml:"fields" json:"fields"`
}

// Param is a serialized schema.TypeParam.
type Param struct {
	Name       string `yaml:"name" json:"name"`
	Constraint string `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	Default    string `yaml:"default,omitempty" json:"default,omitempty"`
}

// Field is a serialized schema.Field.
type Field struct {
	Name             string   `yaml:"name" json:"name"`
	Type             string   `yaml:"type" json:"type"`
	Doc              string   `yaml:"doc,omitempty" json:"doc,omitempty"`
	Default          Expr     `yaml:"default,omitempty" json:"default,omitempty"`
	DefaultLazy      Expr     `yaml:"default_lazy,omitempty" json:"default_lazy,omitempty"`
	DefaultAsync     Expr     `yaml:"default_async,omitempty" json:"default_async,omitempty"`
	LateBoundDefault bool     `yaml:"late_bound_default,omitempty" json:"late_bound_default,omitempty"`
	Hidden           bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Public           bool     `yaml:"public,omitempty" json:"public,omitempty"`
	Into             bool     `yaml:"into,omitempty" json:"into,omitempty"`
	Validator        Expr     `yaml:"validator,omitempty" json:"validator,omitempty"`
	Setter           []string `yaml:"setter,omitempty" json:"setter,omitempty"`
	Infer            []string `yaml:"infer,omitempty" json:"infer,omitempty"`
}

// Expr is Go source text. In JSON it may also be written as a number or
// a boolean, e.g. "default": 0.
type Expr string

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expr) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Expr(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*e = ""
		return nil
	}
	*e = Expr(data)
	return nil
}

// records converts the document to schema records. pos holds the position of
// each record, indexed like d.Records; it may be shorter.
func (d *Document) records(file string, pos []string) ([]*schema.Record, error) {
	recs := make([]*schema.Record, 0, len(d.Records))
	for i, r := range d.Records {
		at := file
		if i < len(pos) {
			at = pos[i]
		}
		rec, err := r.record(d.Imports)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", at, err)
		}
		rec.Pos = at
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *Record) record(imports map[string]string) (*schema.Record, error) {
	if r == nil || r.Name == "" {
		return nil, fmt.Errorf("record without a name")
	}
	b := schema.Build(r.Name).Doc(strings.TrimSpace(r.Doc))
	for alias, path := range imports {
		b.Import(alias, path)
	}
	for alias, path := range r.Imports {
		b.Import(alias, path)
	}
	for _, p := range r.Params {
		if p == nil || p.Name == "" {
			return nil, fmt.Errorf("record %q: type parameter without a name", r.Name)
		}
		b.Param(p.Name, p.Constraint, p.Default)
	}
	for _, name := range r.Mixins {
		m, err := mixin.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Name, err)
		}
		mixin.Apply(b, m)
	}
	for _, f := range r.Fields {
		fb, err := f.builder()
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Name, err)
		}
		b.Fields(fb)
	}
	return b.Record(), nil
}

// builder returns the field declaration. Conflicting attributes are left
// to the generator, which reports them with the record context.
func (f *Field) builder() (*field.Builder, error) {
	switch {
	case f == nil || f.Name == "":
		return nil, fmt.Errorf("field without a name")
	case f.Type == "":
		return nil, fmt.Errorf("field %q: missing type", f.Name)
	}
	b := field.New(f.Name, f.Type).Doc(strings.TrimSpace(f.Doc))
	if f.Default != "" {
		b.Default(string(f.Default))
	}
	if f.DefaultLazy != "" {
		b.DefaultLazy(string(f.DefaultLazy))
	}
	if f.DefaultAsync != "" {
		b.DefaultAsync(string(f.DefaultAsync))
	}
	if f.Validator != "" {
		b.Validator(string(f.Validator))
	}
	if len(f.Setter) > 0 {
		modes, err := parseModes(f.Setter)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		b.Setter(modes...)
	}
	if len(f.Infer) > 0 {
		b.Infer(f.Infer...)
	}
	if f.LateBoundDefault {
		b.LateBound()
	}
	if f.Hidden {
		b.Hidden()
	}
	if f.Public {
		b.Public()
	}
	if f.Into {
		b.Into()
	}
	return b, nil
}

func parseModes(names []string) ([]schema.Mode, error) {
	modes := make([]schema.Mode, 0, len(names))
	for _, n := range names {
		m, err := schema.ParseMode(n)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// NewDocument converts records to their serialized form.
func NewDocument(recs ...*schema.Record) *Document {
	d := &Document{}
	for _, rec := range recs {
		r := &Record{Name: rec.Name, Doc: rec.Doc, Imports: rec.Imports}
		for _, p := range rec.Params {
			r.Params = append(r.Params, &Param{Name: p.Name, Constraint: p.Constraint, Default: p.Default})
		}
		for _, sf := range rec.Fields {
			f := &Field{
				Name:             sf.Name,
				Type:             sf.Type,
				Doc:              sf.Doc,
				Validator:        Expr(sf.Validator),
				LateBoundDefault: sf.LateBound,
				Hidden:           sf.Hidden,
				Public:           sf.Public,
				Into:             sf.Into,
				Infer:            sf.Infer,
			}
			if def := sf.Default; def != nil {
				switch def.Kind {
				case schema.DefaultValue:
					f.Default = Expr(def.Expr)
				case schema.DefaultLazy:
					f.DefaultLazy = Expr(def.Expr)
				case schema.DefaultAsync:
					f.DefaultAsync = Expr(def.Expr)
				}
			}
			if sf.Modes != schema.ModeNone {
				for _, m := range schema.Modes {
					if sf.Modes.Has(m) {
						f.Setter = append(f.Setter, m.String())
					}
				}
			}
			r.Fields = append(r.Fields, f)
		}
		d.Records = append(d.Records, r)
	}
	return d
}

// MarshalRecords encodes records as an indented JSON schema document
// that loads back to the same records.
func MarshalRecords(recs ...*schema.Record) ([]byte, error) {
	return json.MarshalIndent(NewDocument(recs...), "", "  ")
}

func loadJSON(path string) ([]*schema.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var d Document
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d.records(path, nil)
}
