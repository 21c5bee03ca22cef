// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ndarray

import (
	"fmt"
	"math"
)

// Array is a dense N-dimensional float64 array backed by a single flat
// buffer in row-major order. The shape is fixed at construction.
type Array struct {
	shape   []int
	strides []int
	values  []float64
}

// New returns a zeroed array with the given shape. All dimension sizes
// must be positive.
func New(shape ...int) *Array {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("ndarray: invalid dimension size %d", s))
		}
		n *= s
	}
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return &Array{
		shape:   append([]int{}, shape...),
		strides: strides,
		values:  make([]float64, n),
	}
}

// Shape returns a copy of the array's dimension sizes.
func (a *Array) Shape() []int {
	return append([]int{}, a.shape...)
}

// Dims returns the number of dimensions.
func (a *Array) Dims() int {
	return len(a.shape)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.values)
}

// Values returns the flat backing buffer in row-major order. Callers
// must treat it as read-only.
func (a *Array) Values() []float64 {
	return a.values
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: got %d indices for %d dimensions", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range for dimension %d of size %d", x, i, a.shape[i]))
		}
		off += x * a.strides[i]
	}
	return off
}

// At returns the element at the given index.
func (a *Array) At(idx ...int) float64 {
	return a.values[a.offset(idx)]
}

// Set stores v at the given index.
func (a *Array) Set(v float64, idx ...int) {
	a.values[a.offset(idx)] = v
}

// AddAt adds w to the element at the given index.
func (a *Array) AddAt(w float64, idx ...int) {
	a.values[a.offset(idx)] += w
}

// SameShape reports whether both arrays have identical shapes.
func (a *Array) SameShape(o *Array) bool {
	if len(a.shape) != len(o.shape) {
		return false
	}
	for i, s := range a.shape {
		if s != o.shape[i] {
			return false
		}
	}
	return true
}

// AddInPlace accumulates o into a element-wise.
func (a *Array) AddInPlace(o *Array) error {
	if !a.SameShape(o) {
		return fmt.Errorf("ndarray: shape mismatch: %v != %v", a.shape, o.shape)
	}
	for i, v := range o.values {
		a.values[i] += v
	}
	return nil
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	c := New(a.shape...)
	copy(c.values, a.values)
	return c
}

// SetValues bulk-overwrites the backing buffer from vals in row-major
// order. The length of vals is the caller's contract; extra elements
// are ignored and missing elements leave the tail untouched.
func (a *Array) SetValues(vals []float64) {
	copy(a.values, vals)
}

// SqrtOf sets every element to the square root of the corresponding
// element of src.
func (a *Array) SqrtOf(src *Array) error {
	if !a.SameShape(src) {
		return fmt.Errorf("ndarray: shape mismatch: %v != %v", a.shape, src.shape)
	}
	for i, v := range src.values {
		a.values[i] = math.Sqrt(v)
	}
	return nil
}

// QuadratureOf sets every element to sqrt(x^2 + y^2) of the
// corresponding elements of x and y, the combination rule for
// independent uncertainties.
func (a *Array) QuadratureOf(x, y *Array) error {
	if !a.SameShape(x) || !a.SameShape(y) {
		return fmt.Errorf("ndarray: shape mismatch: %v, %v, %v", a.shape, x.shape, y.shape)
	}
	for i := range a.values {
		a.values[i] = math.Hypot(x.values[i], y.values[i])
	}
	return nil
}

// Equal reports whether both arrays have the same shape and identical
// element values.
func (a *Array) Equal(o *Array) bool {
	if !a.SameShape(o) {
		return false
	}
	for i, v := range a.values {
		if v != o.values[i] {
			return false
		}
	}
	return true
}
