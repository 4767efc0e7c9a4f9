package schema

// Descriptor is implemented by field builders.
type Descriptor interface {
	Descriptor() *Field
}

// RecordBuilder declares a Record in Go code.
type RecordBuilder struct {
	r *Record
}

// Build starts the declaration of a record named name.
func Build(name string) *RecordBuilder {
	return &RecordBuilder{r: &Record{Name: name}}
}

// Doc sets the record documentation.
func (b *RecordBuilder) Doc(doc string) *RecordBuilder {
	b.r.Doc = doc
	return b
}

// Param appends a type parameter. An empty constraint means any, an empty
// def means the parameter has no default type.
func (b *RecordBuilder) Param(name, constraint, def string) *RecordBuilder {
	b.r.Params = append(b.r.Params, &TypeParam{Name: name, Constraint: constraint, Default: def})
	return b
}

// Import registers the import path of a package name used in field types
// or default expressions.
func (b *RecordBuilder) Import(name, path string) *RecordBuilder {
	if b.r.Imports == nil {
		b.r.Imports = make(map[string]string)
	}
	b.r.Imports[name] = path
	return b
}

// Fields appends fields in declaration order.
func (b *RecordBuilder) Fields(fields ...Descriptor) *RecordBuilder {
	for _, f := range fields {
		b.r.Fields = append(b.r.Fields, f.Descriptor())
	}
	return b
}

// Record returns the declared record.
func (b *RecordBuilder) Record() *Record {
	return b.r
}
