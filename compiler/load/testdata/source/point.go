package source

import "github.com/google/uuid"

// Point is a labeled point in the plane.
//
//typestate:default T=float64
type Point[T any] struct {
	X T `builder:"infer=T"`
	Y T
	// Label names the point.
	Label string    `builder:"default=\"a;b\"; validator=checkLabel; setter=value|lazy; into"`
	Tags  []T       `builder:"default=nil; late_bound_default"`
	id    uuid.UUID `builder:"default_lazy=uuid.New; hidden"`
	Ready bool      `builder:"DEFAULT=false; setter=value,async" json:"ready"`
}

// Line is not a record.
type Line struct {
	Len int
}

//typestate:builder
type Pair struct {
	A, B string
}

func checkLabel(s string) (string, error) { return s, nil }
