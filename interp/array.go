package interp

import (
	"math"
)

//
// BASIC arrays are dense and zero based; DIM A(N) gives N+1 elements
// along that axis.  Storage is a single slice in row-major order, with
// per-axis sizes kept alongside
//

type DimArray[T any] struct {
	sizes []int
	data  []T
}

func newDimArray[T any](sizes []int, maxElements int) (*DimArray[T], error) {

	total := 1

	for _, n := range sizes {
		if n <= 0 {
			return nil, newError(IllegalQuantity)
		}

		if total > maxElements/n {
			return nil, &Error{Kind: OutOfMemory, Detail: ArrayTooLarge}
		}

		total *= n
	}

	if total > maxElements {
		return nil, &Error{Kind: OutOfMemory, Detail: ArrayTooLarge}
	}

	a := &DimArray[T]{sizes: append([]int(nil), sizes...)}
	a.data = make([]T, total)

	return a, nil
}

func (a *DimArray[T]) Dimensions() []int {
	return a.sizes
}

func (a *DimArray[T]) offset(index []int) (int, error) {

	if len(index) != len(a.sizes) {
		return 0, newError(BadSubscript)
	}

	off := 0

	for i, n := range index {
		if n < 0 || n >= a.sizes[i] {
			return 0, newError(BadSubscript)
		}
		off = off*a.sizes[i] + n
	}

	return off, nil
}

func (a *DimArray[T]) Get(index []int) (T, error) {

	var zero T

	off, err := a.offset(index)
	if err != nil {
		return zero, err
	}

	return a.data[off], nil
}

func (a *DimArray[T]) Set(index []int, v T) error {

	off, err := a.offset(index)
	if err != nil {
		return err
	}

	a.data[off] = v

	return nil
}

// ValueArray is either a string or a numeric DimArray, chosen by the
// array's name.
type ValueArray struct {
	strs *DimArray[string]
	nums *DimArray[float64]
}

func newValueArray(name string, sizes []int, maxElements int) (*ValueArray, error) {

	var err error

	va := &ValueArray{}

	if isStringName(name) {
		va.strs, err = newDimArray[string](sizes, maxElements)
	} else {
		va.nums, err = newDimArray[float64](sizes, maxElements)
	}

	if err != nil {
		return nil, err
	}

	return va, nil
}

func (va *ValueArray) Dimensions() []int {

	if va.strs != nil {
		return va.strs.Dimensions()
	}

	return va.nums.Dimensions()
}

func (va *ValueArray) Get(index []int) (Value, error) {

	if va.strs != nil {
		s, err := va.strs.Get(index)
		return StringValue(s), err
	}

	f, err := va.nums.Get(index)

	return NumberValue(f), err
}

func (va *ValueArray) Set(index []int, v Value) error {

	if va.strs != nil {
		s, err := v.Str()
		if err != nil {
			return err
		}
		return va.strs.Set(index, s)
	}

	f, err := v.Number()
	if err != nil {
		return err
	}

	return va.nums.Set(index, f)
}

//
// Turn an evaluated subscript into an index.  It must be a number;
// it is floored, and must not be negative
//

func subscriptIndex(v Value) (int, error) {

	f, err := v.Number()
	if err != nil {
		return 0, err
	}

	f = math.Floor(f)

	if f < 0 || math.IsNaN(f) {
		return 0, newError(IllegalQuantity)
	}

	if f > math.MaxInt32 {
		return 0, newError(BadSubscript)
	}

	return int(f), nil
}
