package gen

import (
	"errors"
	"fmt"
	"go/token"
	"sort"

	"github.com/syssam/typestate/schema"
)

// allModes is the union of every valid setter mode.
const allModes = schema.ModeValue | schema.ModeLazy | schema.ModeAsync

// Classify validates the fields of a record and partitions them into
// required (no default) and optional (with default) fields. Each partition
// is sorted by field name in byte order. All schema errors found on the
// record are returned joined.
func Classify(rec *schema.Record) (required, optional []*schema.Field, err error) {
	var errs []error
	report := func(f *schema.Field, format string, args ...any) {
		errs = append(errs, NewSchemaError(rec.Name, f.Name, fmt.Sprintf(format, args...), nil).At(rec.Pos))
	}
	seen := make(map[string]bool, len(rec.Fields))
	for _, f := range rec.Fields {
		switch {
		case f.Name == "":
			report(f, "field name cannot be empty")
			continue
		case !token.IsIdentifier(f.Name):
			report(f, "field name must be a valid Go identifier")
			continue
		case seen[f.Name]:
			report(f, "duplicate field")
			continue
		}
		seen[f.Name] = true
		errs = append(errs, classifyField(rec, f)...)
		if f.Optional() {
			optional = append(optional, f)
		} else {
			required = append(required, f)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	byName := func(fs []*schema.Field) {
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	}
	byName(required)
	byName(optional)
	return required, optional, nil
}

// classifyField checks the attribute combination of a single field.
func classifyField(rec *schema.Record, f *schema.Field) []error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, NewSchemaError(rec.Name, f.Name, fmt.Sprintf(format, args...), nil).At(rec.Pos))
	}
	for _, attr := range f.Repeated {
		report("duplicate %s attribute", attr)
	}
	typ, err := parseExpr(f.Type)
	if err != nil {
		errs = append(errs, NewSchemaError(rec.Name, f.Name, "invalid type", err).At(rec.Pos))
	}
	if f.Modes&^allModes != 0 {
		report("unknown setter mode %d", uint8(f.Modes&^allModes))
	}
	if d := f.Default; d != nil {
		switch d.Kind {
		case schema.DefaultValue, schema.DefaultLazy:
			if _, err := parseExpr(d.Expr); err != nil {
				errs = append(errs, NewSchemaError(rec.Name, f.Name, "invalid "+d.Kind.String()+" expression", err).At(rec.Pos))
			}
		case schema.DefaultAsync:
			errs = append(errs, unsupported(rec.Name, f.Name, "asynchronous default production").At(rec.Pos))
		default:
			report("unknown default kind %d", d.Kind)
		}
	}
	if f.Validator != "" {
		if _, err := parseExpr(f.Validator); err != nil {
			errs = append(errs, NewSchemaError(rec.Name, f.Name, "invalid validator expression", err).At(rec.Pos))
		}
	}
	if f.Hidden {
		if f.Default == nil {
			report("hidden field requires a default")
		}
		for attr, set := range map[string]bool{
			"setter": f.Modes != schema.ModeNone,
			"into":   f.Into,
			"infer":  len(f.Infer) > 0,
			"public": f.Public,
		} {
			if set {
				report("hidden field cannot declare %s", attr)
			}
		}
	}
	if f.Into && typ != nil && !canInto(typ) {
		report("into requires a predeclared or unnamed type, got %s", f.Type)
	}
	if f.Into && !f.EffectiveModes().Has(schema.ModeValue) {
		report("into requires the value setter mode")
	}
	sortErrors(errs)
	return errs
}

// sortErrors orders errors by message so reports are deterministic.
func sortErrors(errs []error) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
}
