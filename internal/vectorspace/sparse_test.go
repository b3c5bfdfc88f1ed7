package vectorspace

import (
	"math"
	"reflect"
	"testing"
)

func TestFromMap(t *testing.T) {
	v := FromMap(map[int]float64{3: 1.5, 0: 2.0, 7: 0})
	if !reflect.DeepEqual(v.Indices, []int{0, 3}) {
		t.Errorf("indices = %v, want [0 3]", v.Indices)
	}
	if !reflect.DeepEqual(v.Values, []float64{2.0, 1.5}) {
		t.Errorf("values = %v", v.Values)
	}
}

func TestVector_Dot(t *testing.T) {
	a := FromMap(map[int]float64{0: 1, 2: 2, 5: 3})
	b := FromMap(map[int]float64{2: 4, 5: 1, 9: 7})
	if got := a.Dot(b); got != 11 {
		t.Errorf("dot = %v, want 11", got)
	}
	if got := b.Dot(a); got != 11 {
		t.Errorf("dot not symmetric: %v", got)
	}
}

func TestVector_DotDisjoint(t *testing.T) {
	a := FromMap(map[int]float64{0: 1})
	b := FromMap(map[int]float64{1: 1})
	if got := a.Dot(b); got != 0 {
		t.Errorf("dot = %v, want 0", got)
	}
}

func TestVector_At(t *testing.T) {
	v := FromMap(map[int]float64{1: 0.5, 4: 2})
	if v.At(4) != 2 {
		t.Errorf("At(4) = %v", v.At(4))
	}
	if v.At(3) != 0 {
		t.Errorf("At(3) = %v, want 0", v.At(3))
	}
}

func TestVector_Normalize(t *testing.T) {
	v := FromMap(map[int]float64{0: 3, 1: 4})
	v.Normalize()
	if math.Abs(v.Norm()-1.0) > 1e-12 {
		t.Errorf("norm after normalize = %v", v.Norm())
	}

	zero := Vector{}
	zero.Normalize() // must not panic
	if zero.Norm() != 0 {
		t.Errorf("zero vector norm = %v", zero.Norm())
	}
}

func TestMatrix_Similarities(t *testing.T) {
	m := Matrix{
		Rows: []Vector{
			FromMap(map[int]float64{0: 1}),
			FromMap(map[int]float64{1: 1}),
		},
		Cols: 2,
	}
	got := m.Similarities(FromMap(map[int]float64{0: 1}))
	if !reflect.DeepEqual(got, []float64{1, 0}) {
		t.Errorf("similarities = %v", got)
	}
}
