// Package integration exercises a generated builder end to end.
package integration

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

//go:generate go run github.com/syssam/typestate/cmd/typestate -name integration -features setter/strict .

// Point is a labeled point in the plane.
//
//typestate:default T=float64
type Point[T any] struct {
	X T `builder:"infer=T"`
	Y T
	// Label names the point.
	Label string `builder:"default=\"origin\"; validator=checkLabel; setter=value|lazy; into"`
	// Tags are free-form annotations.
	Tags []T      `builder:"default=nil; late_bound_default"`
	id   uuid.UUID `builder:"default_lazy=uuid.New; hidden"`
	// Ready reports whether the point was confirmed.
	Ready bool `builder:"default=false; setter=value|async"`
}

// ID returns the identifier assigned when the point was built.
func (p Point[T]) ID() uuid.UUID { return p.id }

// errEmptyLabel is returned by checkLabel for blank labels.
var errEmptyLabel = errors.New("label is empty")

// checkLabel trims the label and rejects blank ones.
func checkLabel(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyLabel
	}
	return s, nil
}
