package gen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"

	"github.com/syssam/typestate/schema"
)

// The following types and their exported methods are used by the emitters
// to generate the builders.
type (
	// Record is the analyzed form of one schema record. It is a pure function
	// of the schema record; the schema is never modified.
	Record struct {
		*Config
		schema *schema.Record
		// Name holds the record type name.
		Name string
		// Doc is the record documentation.
		Doc string
		// Params holds the record type parameters in declaration order.
		Params []*Param
		// Fields holds all fields in canonical order: required fields sorted
		// by name, then optional fields sorted by name. Hidden fields are included.
		Fields []*Field
		// Slots holds one type-state slot per non-hidden field, in field order.
		Slots []*Slot
		// Marker is the name of the async marker type parameter.
		// Empty means the builder has no marker slot.
		Marker string
		// Imports maps package names used by expressions to import paths.
		Imports map[string]string
		// Locals are the identifiers of local variables in emitted bodies.
		Locals Locals
		// IntoVar is the type variable of conversion setters.
		IntoVar string
	}

	// Param is a record type parameter.
	Param struct {
		Name string
		// Constraint is nil for any.
		Constraint ast.Expr
		// Default is the type the no-argument constructor instantiates the
		// parameter with. Nil means no default.
		Default ast.Expr
		// InferredBy is the field whose setter infers the parameter, if any.
		InferredBy *Field
	}

	// Field holds the analyzed information of a record field.
	Field struct {
		rec *Record
		def *schema.Field
		// Name is the record struct field name.
		Name string
		// Doc is the field documentation.
		Doc string
		// Type is the parsed field type.
		Type ast.Expr
		// Required reports that the field has no default.
		Required bool
		// Default is the default-production rule of an optional field.
		Default *schema.Default
		// DefaultExpr is the parsed default expression.
		DefaultExpr ast.Expr
		// Validator is the parsed validator expression, if any.
		Validator ast.Expr
		// Modes are the effective setter modes. Zero for hidden fields.
		Modes schema.Mode
		// Into, Hidden and Public mirror the schema attributes.
		Into, Hidden, Public bool
		// LateBound reports that the default is evaluated by the build
		// functions rather than by the constructor.
		LateBound bool
		// Deps lists the record type parameters the field type mentions.
		Deps []string
		// Infer lists the parameters this field's setter infers.
		Infer []*Param
		// Fresh maps each inferred parameter to the type variable that
		// replaces it in the inference setter.
		Fresh map[string]string
		// Slot is the type-state slot of the field. Nil for hidden fields.
		Slot *Slot
		// Rep is the builder struct field holding the representation.
		Rep string
	}

	// Slot is one coordinate of the type-state tuple.
	Slot struct {
		// Index of the slot in Record.Slots.
		Index int
		// Name is the type parameter name of the slot in generic contexts.
		Name string
		// Field owning the slot.
		Field *Field
	}

	// Locals are the names of emitted local identifiers, chosen to not
	// collide with anything referenced by the schema expressions.
	Locals struct {
		Builder, Record, Err, Ctx, Value, Producer, Next string
	}
)

// reserved identifiers of the generated package scope.
var reserved = names("typestate", "context", "any", "comparable")

// NewRecord analyzes a schema record. The returned error joins every
// schema error found on the record.
func NewRecord(c *Config, rec *schema.Record) (*Record, error) {
	if rec == nil {
		return nil, NewSchemaError("", "", "nil record", nil)
	}
	if !token.IsIdentifier(rec.Name) {
		return nil, NewSchemaError(rec.Name, "", "record name must be a valid Go identifier", nil).At(rec.Pos)
	}
	required, optional, err := Classify(rec)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &Config{}
	}
	r := &Record{
		Config:  c,
		schema:  rec,
		Name:    rec.Name,
		Doc:     rec.Doc,
		Imports: rec.Imports,
	}
	var errs []error
	r.Params, errs = resolveParams(rec)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, def := range required {
		r.Fields = append(r.Fields, newField(r, def, true))
	}
	for _, def := range optional {
		r.Fields = append(r.Fields, newField(r, def, false))
	}
	if errs := r.resolveInference(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	r.assignNames()
	if err := r.checkNames(); err != nil {
		return nil, err
	}
	return r, nil
}

func newField(r *Record, def *schema.Field, required bool) *Field {
	f := &Field{
		rec:      r,
		def:      def,
		Name:     def.Name,
		Doc:      def.Doc,
		Required: required,
		Default:  def.Default,
		Into:     def.Into,
		Hidden:   def.Hidden,
		Public:   def.Public,
	}
	// Expressions were parsed successfully by Classify.
	f.Type, _ = parseExpr(def.Type)
	if def.Default != nil {
		f.DefaultExpr, _ = parseExpr(def.Default.Expr)
	}
	if def.Validator != "" {
		f.Validator, _ = parseExpr(def.Validator)
	}
	if !def.Hidden {
		f.Modes = def.EffectiveModes()
	}
	params := make(map[string]struct{}, len(r.schema.Params))
	for _, p := range r.schema.Params {
		params[p.Name] = struct{}{}
	}
	f.Deps = typeRefs(f.Type, params)
	return f
}

// assignNames picks the type-state slot names, the marker and the local
// identifiers of emitted code.
func (r *Record) assignNames() {
	taken := make(map[string]struct{}, len(reserved))
	for k := range reserved {
		taken[k] = struct{}{}
	}
	for _, p := range r.Params {
		taken[p.Name] = struct{}{}
		if p.Constraint != nil {
			collectIdents(p.Constraint, taken)
		}
		if p.Default != nil {
			collectIdents(p.Default, taken)
		}
	}
	for _, f := range r.Fields {
		collectIdents(f.Type, taken)
		if f.DefaultExpr != nil {
			collectIdents(f.DefaultExpr, taken)
		}
		if f.Validator != nil {
			collectIdents(f.Validator, taken)
		}
	}
	for alias := range r.Imports {
		taken[alias] = struct{}{}
	}
	n := newNamer(taken)
	r.Locals = Locals{
		Builder:  n.fresh("b"),
		Record:   n.fresh("r"),
		Err:      n.fresh("err"),
		Ctx:      n.fresh("ctx"),
		Value:    n.fresh("value"),
		Producer: n.fresh("producer"),
		Next:     n.fresh("next"),
	}
	for _, f := range r.Fields {
		if f.Hidden {
			continue
		}
		f.Slot = &Slot{Index: len(r.Slots), Name: n.numbered("S", len(r.Slots)+1), Field: f}
		r.Slots = append(r.Slots, f.Slot)
	}
	if r.HasAsync() && r.HasSyncBuild() {
		r.Marker = n.fresh("M")
	}
	r.IntoVar = n.fresh("V")
	for _, f := range r.Fields {
		if len(f.Infer) == 0 {
			continue
		}
		f.Fresh = make(map[string]string, len(f.Infer))
		for _, p := range f.Infer {
			f.Fresh[p.Name] = n.numbered(p.Name, 2)
		}
	}
	methods := make(map[string]struct{})
	for _, f := range r.Fields {
		for _, m := range f.SetterModes() {
			methods[f.SetterName(m)] = struct{}{}
		}
	}
	fields := newNamer(nil)
	for _, f := range r.Fields {
		if !f.Hidden {
			f.Rep = builderField(f.Name, methods, fields)
		}
	}
}

// checkNames reports collisions between emitted identifiers.
func (r *Record) checkNames() error {
	var errs []error
	methods := make(map[string]string)
	for _, f := range r.Fields {
		for _, m := range f.SetterModes() {
			name := f.SetterName(m)
			if other, ok := methods[name]; ok {
				errs = append(errs, NewSchemaError(r.Name, f.Name, fmt.Sprintf("setter %s collides with a setter of field %s", name, other), nil).At(r.Pos()))
				continue
			}
			methods[name] = f.Name
		}
	}
	funcs := map[string]string{r.Name: "record"}
	add := func(name, what string) {
		if other, ok := funcs[name]; ok {
			errs = append(errs, NewSchemaError(r.Name, "", fmt.Sprintf("generated %s %s collides with %s", what, name, other), nil).At(r.Pos()))
			return
		}
		funcs[name] = what
	}
	add(r.BuilderName(), "builder type")
	add(r.NewName(), "constructor")
	if r.HasDefaultedParams() {
		add(r.NewBuilderName(), "constructor")
	}
	if r.HasSyncBuild() {
		add(r.BuildName(), "build function")
	}
	if r.HasAsync() {
		add(r.BuildAsyncName(), "build function")
	}
	strict, _ := r.FeatureEnabled(FeatureStrictSetters.Name)
	for _, f := range r.Fields {
		for _, m := range f.SetterModes() {
			if f.IsInfer() {
				add(f.InferName(m), "inference setter")
			}
			if strict && f.HasStrict() {
				add(f.StrictName(m), "strict setter")
			}
		}
		if f.Into {
			add(f.IntoName(), "conversion setter")
		}
	}
	return errors.Join(errs...)
}

// Schema returns the schema record the record was analyzed from.
func (r *Record) Schema() *schema.Record { return r.schema }

// Exported reports whether the record type is exported.
func (r *Record) Exported() bool { return token.IsExported(r.Name) }

// Pos returns the source position of the schema record, if known.
func (r *Record) Pos() string { return r.schema.Pos }

// BuilderName returns the builder type name, e.g. PointBuilder.
func (r *Record) BuilderName() string { return r.Name + "Builder" }

// NewName returns the no-argument constructor name, e.g. NewPoint.
func (r *Record) NewName() string { return visible(r.Exported(), "New"+pascal(r.Name)) }

// NewBuilderName returns the generic constructor name, e.g. NewPointBuilder.
func (r *Record) NewBuilderName() string {
	return visible(r.Exported(), "New"+pascal(r.Name)+"Builder")
}

// BuildName returns the synchronous build function name, e.g. BuildPoint.
func (r *Record) BuildName() string { return visible(r.Exported(), "Build"+pascal(r.Name)) }

// BuildAsyncName returns the asynchronous build function name, e.g. BuildPointAsync.
func (r *Record) BuildAsyncName() string {
	return visible(r.Exported(), "Build"+pascal(r.Name)+"Async")
}

// FileName returns the builder file name, e.g. point_builder.go.
func (r *Record) FileName() string { return snake(r.Name) + "_builder.go" }

// RecordFileName returns the record struct file name, e.g. point.go.
func (r *Record) RecordFileName() string { return snake(r.Name) + ".go" }

// HasDefaultedParams reports whether any type parameter has a default.
func (r *Record) HasDefaultedParams() bool {
	for _, p := range r.Params {
		if p.Default != nil {
			return true
		}
	}
	return false
}

// Generic reports whether the record has type parameters.
func (r *Record) Generic() bool { return len(r.Params) > 0 }

// HasAsync reports whether any field can be set asynchronously.
func (r *Record) HasAsync() bool {
	for _, f := range r.Fields {
		if f.Modes.Has(schema.ModeAsync) {
			return true
		}
	}
	return false
}

// HasSyncBuild reports whether a synchronous build function exists. It does
// not when some required field can only be set asynchronously.
func (r *Record) HasSyncBuild() bool {
	for _, f := range r.Fields {
		if f.Required && !f.Modes.Sync() {
			return false
		}
	}
	return true
}

// Fallible reports whether the synchronous build returns an error. It does
// when some validator runs at build time.
func (r *Record) Fallible() bool {
	for _, f := range r.Fields {
		if f.DeferredValidation() {
			return true
		}
	}
	return false
}

// FieldByName returns the field with the given name.
func (r *Record) FieldByName(name string) (*Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// RequiredFields returns the required fields in canonical order.
func (r *Record) RequiredFields() (fs []*Field) {
	for _, f := range r.Fields {
		if f.Required {
			fs = append(fs, f)
		}
	}
	return fs
}

// OptionalFields returns the optional fields in canonical order.
func (r *Record) OptionalFields() (fs []*Field) {
	for _, f := range r.Fields {
		if !f.Required {
			fs = append(fs, f)
		}
	}
	return fs
}

// Record returns the record the field belongs to.
func (f *Field) Record() *Record { return f.rec }

// Schema returns the schema field the field was analyzed from.
func (f *Field) Schema() *schema.Field { return f.def }

// TypeString returns the field type in canonical form.
func (f *Field) TypeString() string { return exprString(f.Type) }

// SetterExported reports whether the setters of the field are exported.
func (f *Field) SetterExported() bool { return f.Public || token.IsExported(f.Name) }

// SetterModes returns the individual setter modes of the field in emission order.
func (f *Field) SetterModes() []schema.Mode {
	var modes []schema.Mode
	for _, m := range schema.Modes {
		if f.Modes.Has(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// modeSuffix returns the name suffix of a setter mode.
func modeSuffix(m schema.Mode) string {
	switch m {
	case schema.ModeLazy:
		return "Lazy"
	case schema.ModeAsync:
		return "Async"
	default:
		return ""
	}
}

// SetterName returns the builder method name of the setter for mode m,
// e.g. X, XLazy, xAsync.
func (f *Field) SetterName(m schema.Mode) string {
	return visible(f.SetterExported(), f.Name) + modeSuffix(m)
}

// funcName returns a package-level function name for the field.
func (f *Field) funcName(prefix, suffix string) string {
	return visible(f.rec.Exported() && f.SetterExported(), prefix+pascal(f.rec.Name)+pascal(f.Name)+suffix)
}

// InferName returns the inference setter name, e.g. InferPointX.
func (f *Field) InferName(m schema.Mode) string { return f.funcName("Infer", modeSuffix(m)) }

// IntoName returns the conversion setter name, e.g. PointLabelInto.
func (f *Field) IntoName() string { return f.funcName("", "Into") }

// StrictName returns the strict setter name, e.g. SetPointY.
func (f *Field) StrictName(m schema.Mode) string { return f.funcName("Set", modeSuffix(m)) }

// IsInfer reports whether the field's setters infer type parameters.
func (f *Field) IsInfer() bool { return len(f.Infer) > 0 }

// Fallible reports whether the value setter returns an error.
func (f *Field) Fallible() bool { return f.Validator != nil }

// DeferredValidation reports whether the field's validator can run at
// build time, after a lazy or async producer.
func (f *Field) DeferredValidation() bool {
	return f.Validator != nil && (f.Modes.Has(schema.ModeLazy) || f.Modes.Has(schema.ModeAsync))
}

// Immediate reports whether the field is optional with a default that is
// evaluated by the constructor.
func (f *Field) Immediate() bool { return !f.Required && !f.LateBound }

// HasStrict reports whether strict setters are emitted for the field.
// They are for fields starting unset whose setters do not infer.
func (f *Field) HasStrict() bool { return !f.Hidden && !f.Immediate() && !f.IsInfer() }

// DependsOn reports whether the field type mentions one of the parameters.
func (f *Field) DependsOn(params ...*Param) bool {
	for _, p := range params {
		for _, d := range f.Deps {
			if d == p.Name {
				return true
			}
		}
	}
	return false
}

// DefaultLazy reports whether the default expression is a producer.
func (f *Field) DefaultLazy() bool {
	return f.Default != nil && f.Default.Kind == schema.DefaultLazy
}

// Exported reports whether the record struct field is exported.
func (f *Field) Exported() bool { return token.IsExported(f.Name) }

// HasDefault reports whether the parameter has a default type.
func (p *Param) HasDefault() bool { return p.Default != nil }
