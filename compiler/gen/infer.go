package gen

import (
	"fmt"
	"go/token"

	"github.com/syssam/typestate/schema"
)

// resolveParams parses and validates the record type parameters.
func resolveParams(rec *schema.Record) ([]*Param, []error) {
	var (
		errs   []error
		params = make([]*Param, 0, len(rec.Params))
		seen   = make(map[string]bool, len(rec.Params))
	)
	report := func(format string, args ...any) {
		errs = append(errs, NewSchemaError(rec.Name, "", fmt.Sprintf(format, args...), nil).At(rec.Pos))
	}
	for _, tp := range rec.Params {
		switch {
		case !token.IsIdentifier(tp.Name) || tp.Name == "_":
			report("type parameter %q must be a valid Go identifier", tp.Name)
			continue
		case seen[tp.Name]:
			report("duplicate type parameter %s", tp.Name)
			continue
		}
		seen[tp.Name] = true
		p := &Param{Name: tp.Name}
		if tp.Constraint != "" && tp.Constraint != "any" {
			c, err := parseExpr(tp.Constraint)
			if err != nil {
				errs = append(errs, NewSchemaError(rec.Name, "", "invalid constraint of type parameter "+tp.Name, err).At(rec.Pos))
			}
			p.Constraint = c
		}
		if tp.Default != "" {
			d, err := parseExpr(tp.Default)
			if err != nil {
				errs = append(errs, NewSchemaError(rec.Name, "", "invalid default of type parameter "+tp.Name, err).At(rec.Pos))
			}
			p.Default = d
		}
		params = append(params, p)
	}
	return params, errs
}

// resolveInference links inference fields to the parameters they infer and
// decides which defaults are late-bound.
//
// A parameter is inferred by at most one field, and the field type must
// mention it. An optional field is late-bound when it is declared so, when
// it is hidden, or when its type mentions a parameter that has a default
// or is inferred: its default can only be evaluated at the parameter's
// final instantiation, which is known in the build functions.
func (r *Record) resolveInference() []error {
	var errs []error
	for _, f := range r.Fields {
		report := func(format string, args ...any) {
			errs = append(errs, NewSchemaError(r.Name, f.Name, fmt.Sprintf(format, args...), nil).At(r.Pos()))
		}
		for _, name := range f.def.Infer {
			p := r.param(name)
			switch {
			case p == nil:
				report("infer target %q is not a type parameter of %s", name, r.Name)
			case !f.DependsOn(p):
				report("infer target %s does not occur in type %s", name, f.TypeString())
			case p.InferredBy == f:
				report("duplicate infer target %s", name)
			case p.InferredBy != nil:
				report("type parameter %s is already inferred by field %s", name, p.InferredBy.Name)
			default:
				p.InferredBy = f
				f.Infer = append(f.Infer, p)
			}
		}
		if len(f.def.Infer) > 0 && f.Into {
			report("into cannot be combined with infer")
		}
	}
	if len(errs) > 0 {
		sortErrors(errs)
		return errs
	}
	floating := make([]*Param, 0, len(r.Params))
	for _, p := range r.Params {
		if p.HasDefault() || p.InferredBy != nil {
			floating = append(floating, p)
		}
	}
	for _, f := range r.Fields {
		if f.Required {
			continue
		}
		f.LateBound = f.def.LateBound || f.Hidden || f.DependsOn(floating...)
	}
	return nil
}

// param returns the record parameter with the given name.
func (r *Record) param(name string) *Param {
	for _, p := range r.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Dependents returns the fields, other than f, whose types mention a
// parameter inferred by f. Their slots must be unset when f's inference
// setter is called, and their representations are re-typed by it.
func (r *Record) Dependents(f *Field) []*Field {
	var deps []*Field
	for _, o := range r.Fields {
		if o != f && o.DependsOn(f.Infer...) {
			deps = append(deps, o)
		}
	}
	return deps
}

// DefaultedParams returns the parameters that have a default type.
func (r *Record) DefaultedParams() []*Param {
	var ps []*Param
	for _, p := range r.Params {
		if p.HasDefault() {
			ps = append(ps, p)
		}
	}
	return ps
}

// InferStates returns the parameter and result states of f's inference
// setter for mode m. Every dependent slot is pinned unset in both, the
// inferred parameters are renamed to their fresh type variables in the
// result, and the field's own slot is accepted in any state.
func (r *Record) InferStates(f *Field, m schema.Mode) (in, out State) {
	in = r.GenericState()
	for _, d := range r.Dependents(f) {
		if d.Slot != nil {
			in = in.With(d.Slot.Index, Unset)
		}
	}
	out = in.WithEnv(identEnv(f.Fresh)).With(f.Slot.Index, Filled)
	if m == schema.ModeAsync && out.HasMarker() {
		out = out.WithMarker(Async)
	}
	return in, out
}

// FreshParams returns the fresh type variables of f's inference setter, in
// the order of f.Infer.
func (f *Field) FreshParams() []string {
	vars := make([]string, len(f.Infer))
	for i, p := range f.Infer {
		vars[i] = f.Fresh[p.Name]
	}
	return vars
}
