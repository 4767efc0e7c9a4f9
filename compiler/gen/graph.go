package gen

import (
	"errors"
	"fmt"

	"github.com/syssam/typestate/schema"
)

// Graph holds the analyzed records of one generation run.
type Graph struct {
	*Config
	// Records holds the records in schema order.
	Records []*Record
}

// NewGraph analyzes the schema records. Schema errors of all records are
// collected and returned joined; no graph is returned in that case, so no
// file is written for an invalid schema.
func NewGraph(c *Config, recs ...*schema.Record) (*Graph, error) {
	if c == nil {
		c = &Config{}
	}
	g := &Graph{Config: c}
	var (
		errs  []error
		names = make(map[string]bool, len(recs))
		files = make(map[string]string, len(recs))
	)
	for _, rec := range recs {
		if rec != nil && names[rec.Name] {
			errs = append(errs, NewSchemaError(rec.Name, "", "duplicate record", nil).At(rec.Pos))
			continue
		}
		r, err := NewRecord(c, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names[r.Name] = true
		if other, ok := files[r.FileName()]; ok {
			errs = append(errs, NewSchemaError(r.Name, "", fmt.Sprintf("file %s collides with record %s", r.FileName(), other), nil).At(r.Pos()))
			continue
		}
		files[r.FileName()] = r.Name
		g.Records = append(g.Records, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// Record returns the record with the given name.
func (g *Graph) Record(name string) (*Record, bool) {
	for _, r := range g.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
