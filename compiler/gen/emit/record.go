package emit

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
)

// genRecord emits the record struct with its fields in declaration order.
func genRecord(f *jen.File, c *conv, r *gen.Record) {
	if r.Doc != "" {
		comment(f, r.Doc)
	} else {
		comment(f, fmt.Sprintf("%s is built by %s.", r.Name, r.BuilderName()))
	}
	params := make([]jen.Code, len(r.Params))
	for i, p := range r.Params {
		params[i] = jen.Id(p.Name).Add(c.typ(p.Constraint))
	}
	f.Type().Add(withTypes(jen.Id(r.Name), params)).StructFunc(func(g *jen.Group) {
		for i, def := range r.Schema().Fields {
			fld, ok := r.FieldByName(def.Name)
			if !ok {
				continue
			}
			if fld.Doc != "" {
				if i > 0 {
					g.Line()
				}
				comment(g, fld.Doc)
			}
			g.Id(fld.Name).Add(c.typ(fld.Type))
		}
	})
}
