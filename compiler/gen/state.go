package gen

import (
	"go/ast"
	"go/parser"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/syssam/typestate/schema"
)

// SlotKind is the state of one type-state slot.
type SlotKind uint8

// Slot states. SlotSync and SlotAsync only occur in the marker slot.
const (
	// SlotFree is a type variable: any state is accepted.
	SlotFree SlotKind = iota
	// SlotUnset is instantiated with typestate.Unset.
	SlotUnset
	// SlotFilled is instantiated with the field's type.
	SlotFilled
	// SlotSync is instantiated with typestate.SyncBuild.
	SlotSync
	// SlotAsync is instantiated with typestate.AsyncBuild.
	SlotAsync
)

// SlotValue is the instantiation of one slot.
type SlotValue struct {
	Kind SlotKind
	// Var is the type variable name of a free slot.
	Var string
}

// Slot values.
var (
	Unset  = SlotValue{Kind: SlotUnset}
	Filled = SlotValue{Kind: SlotFilled}
	Sync   = SlotValue{Kind: SlotSync}
	Async  = SlotValue{Kind: SlotAsync}
)

// Free returns a free slot bound to the type variable v.
func Free(v string) SlotValue { return SlotValue{Kind: SlotFree, Var: v} }

// State is one instantiation of a builder type: the record's type arguments,
// one value per slot and the marker.
type State struct {
	rec *Record
	// Env substitutes record type parameters in the type arguments and in
	// filled slot types. Parameters missing from Env stand for themselves.
	Env map[string]ast.Expr
	// Slots holds one value per Record.Slots entry.
	Slots []SlotValue
	// Marker is the marker slot value. Ignored when the record has no marker.
	Marker SlotValue
}

// Record returns the record of the state.
func (s State) Record() *Record { return s.rec }

// HasMarker reports whether the state carries a marker slot.
func (s State) HasMarker() bool { return s.rec.Marker != "" }

// GenericState returns the state in which every slot is free. It is the
// receiver type of the builder methods.
func (r *Record) GenericState() State {
	s := State{rec: r, Slots: make([]SlotValue, len(r.Slots)), Marker: Free(r.Marker)}
	for i, sl := range r.Slots {
		s.Slots[i] = Free(sl.Name)
	}
	return s
}

// InitialState returns the state of a new builder: required and late-bound
// slots are unset, immediate-default slots are filled, and the marker is sync.
func (r *Record) InitialState() State {
	s := State{rec: r, Slots: make([]SlotValue, len(r.Slots)), Marker: Sync}
	for i, sl := range r.Slots {
		if sl.Field.Immediate() {
			s.Slots[i] = Filled
		} else {
			s.Slots[i] = Unset
		}
	}
	return s
}

// TerminalState returns the parameter state of a build function: required
// slots are filled and optional slots are free. The synchronous build
// requires the sync marker; the asynchronous one accepts any.
func (r *Record) TerminalState(async bool) State {
	s := r.GenericState()
	for i, sl := range r.Slots {
		if sl.Field.Required {
			s.Slots[i] = Filled
		}
	}
	if !async {
		s.Marker = Sync
	}
	return s
}

// With returns a copy of the state with slot i replaced.
func (s State) With(i int, v SlotValue) State {
	slots := make([]SlotValue, len(s.Slots))
	copy(slots, s.Slots)
	slots[i] = v
	s.Slots = slots
	return s
}

// WithMarker returns a copy of the state with the marker replaced.
func (s State) WithMarker(v SlotValue) State {
	s.Marker = v
	return s
}

// WithEnv returns a copy of the state with the given parameter substitution.
func (s State) WithEnv(env map[string]ast.Expr) State {
	s.Env = env
	return s
}

// Complete reports whether the terminal predicate holds: every required
// slot is filled.
func (s State) Complete() bool {
	for i, sl := range s.rec.Slots {
		if sl.Field.Required && s.Slots[i].Kind != SlotFilled {
			return false
		}
	}
	return true
}

// TypeArgs returns the type arguments of the state: record parameters,
// then one per slot, then the marker.
func (s State) TypeArgs() []ast.Expr {
	args := make([]ast.Expr, 0, len(s.rec.Params)+len(s.Slots)+1)
	for _, p := range s.rec.Params {
		args = append(args, s.Param(p))
	}
	for i, v := range s.Slots {
		args = append(args, s.slotExpr(v, s.rec.Slots[i].Field))
	}
	if s.HasMarker() {
		args = append(args, s.slotExpr(s.Marker, nil))
	}
	return args
}

// Param returns the type argument of a record parameter in the state.
func (s State) Param(p *Param) ast.Expr {
	if e, ok := s.Env[p.Name]; ok {
		return e
	}
	return ast.NewIdent(p.Name)
}

// FieldType returns the type of a field under the state's substitution.
func (s State) FieldType(f *Field) ast.Expr {
	return Subst(f.Type, s.Env)
}

// FreeVars returns the type variables of free slots and of a free marker.
func (s State) FreeVars() []string {
	var vars []string
	for _, v := range s.Slots {
		if v.Kind == SlotFree {
			vars = append(vars, v.Var)
		}
	}
	if s.HasMarker() && s.Marker.Kind == SlotFree {
		vars = append(vars, s.Marker.Var)
	}
	return vars
}

// runtimeIdent builds a typestate.<name> selector used in state type args.
func runtimeIdent(name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent("typestate"), Sel: ast.NewIdent(name)}
}

func (s State) slotExpr(v SlotValue, f *Field) ast.Expr {
	switch v.Kind {
	case SlotFree:
		return ast.NewIdent(v.Var)
	case SlotFilled:
		return s.FieldType(f)
	case SlotSync:
		return runtimeIdent("SyncBuild")
	case SlotAsync:
		return runtimeIdent("AsyncBuild")
	default:
		return runtimeIdent("Unset")
	}
}

// String returns the builder type of the state, e.g.
// PointBuilder[T, typestate.Unset, string, typestate.SyncBuild].
func (s State) String() string {
	args := s.TypeArgs()
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprString(a)
	}
	if len(parts) == 0 {
		return s.rec.BuilderName()
	}
	return s.rec.BuilderName() + "[" + strings.Join(parts, ", ") + "]"
}

// Subst returns a copy of the type expression with record type parameter
// identifiers replaced per env. The input is never modified.
func Subst(expr ast.Expr, env map[string]ast.Expr) ast.Expr {
	cp, err := parser.ParseExpr(exprString(expr))
	if err != nil {
		return expr
	}
	if len(env) == 0 {
		return cp
	}
	return astutil.Apply(cp, func(c *astutil.Cursor) bool {
		id, ok := c.Node().(*ast.Ident)
		if !ok {
			return true
		}
		switch parent := c.Parent().(type) {
		case *ast.SelectorExpr:
			if parent.Sel == id {
				return false
			}
		case *ast.Field:
			if c.Name() == "Names" {
				return false
			}
		}
		if e, ok := env[id.Name]; ok {
			c.Replace(e)
		}
		return false
	}, nil).(ast.Expr)
}

// identEnv turns a rename map into a substitution.
func identEnv(renames map[string]string) map[string]ast.Expr {
	env := make(map[string]ast.Expr, len(renames))
	for k, v := range renames {
		env[k] = ast.NewIdent(v)
	}
	return env
}

// SetterStates returns the receiver and result states of a field setter
// for mode m. With strict set, the receiver pins the field's slot to unset.
func (r *Record) SetterStates(f *Field, m schema.Mode, strict bool) (in, out State) {
	in = r.GenericState()
	if strict {
		in = in.With(f.Slot.Index, Unset)
	}
	out = r.GenericState().With(f.Slot.Index, Filled)
	if m == schema.ModeAsync && out.HasMarker() {
		out = out.WithMarker(Async)
	}
	return in, out
}

// ConstructorState returns the state returned by the no-argument
// constructor: the initial state with every defaulted parameter
// instantiated with its default.
func (r *Record) ConstructorState() State {
	env := make(map[string]ast.Expr)
	for _, p := range r.DefaultedParams() {
		env[p.Name] = p.Default
	}
	return r.InitialState().WithEnv(env)
}
