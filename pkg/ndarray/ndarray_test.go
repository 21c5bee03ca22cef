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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New(3, 4)

	assert.Equal(t, []int{3, 4}, a.Shape())
	assert.Equal(t, 2, a.Dims())
	assert.Equal(t, 12, a.Len())
	assert.Equal(t, make([]float64, 12), a.Values())
}

func TestNew_InvalidShape(t *testing.T) {
	assert.Panics(t, func() { New(3, 0) })
	assert.Panics(t, func() { New(-1) })
}

func TestAtSetAdd(t *testing.T) {
	a := New(2, 3)

	a.Set(5, 1, 2)
	assert.Equal(t, 5.0, a.At(1, 2))

	a.AddAt(2.5, 1, 2)
	assert.Equal(t, 7.5, a.At(1, 2))
	assert.Equal(t, 0.0, a.At(0, 0))

	// row-major layout: element (1,2) is at offset 1*3+2
	assert.Equal(t, 7.5, a.Values()[5])
}

func TestIndexing_Panics(t *testing.T) {
	a := New(2, 3)

	assert.Panics(t, func() { a.At(2, 0) })
	assert.Panics(t, func() { a.At(0, -1) })
	assert.Panics(t, func() { a.At(0) })
}

func TestAddInPlace(t *testing.T) {
	a := New(2, 2)
	b := New(2, 2)
	a.Set(1, 0, 0)
	b.Set(2, 0, 0)
	b.Set(3, 1, 1)

	require.NoError(t, a.AddInPlace(b))
	assert.Equal(t, 3.0, a.At(0, 0))
	assert.Equal(t, 3.0, a.At(1, 1))

	c := New(3)
	assert.Error(t, a.AddInPlace(c))
}

func TestClone(t *testing.T) {
	a := New(2)
	a.Set(4, 0)

	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Set(9, 1)
	assert.Equal(t, 0.0, a.At(1))
	assert.False(t, a.Equal(b))
}

func TestSetValues(t *testing.T) {
	a := New(2, 2)

	a.SetValues([]float64{1, 2, 3})
	assert.Equal(t, []float64{1, 2, 3, 0}, a.Values())

	// extra elements are ignored
	a.SetValues([]float64{9, 8, 7, 6, 5})
	assert.Equal(t, []float64{9, 8, 7, 6}, a.Values())
}

func TestSqrtOf(t *testing.T) {
	src := New(3)
	src.SetValues([]float64{4, 9, 0})

	dst := New(3)
	require.NoError(t, dst.SqrtOf(src))
	assert.Equal(t, []float64{2, 3, 0}, dst.Values())

	assert.Error(t, dst.SqrtOf(New(2)))
}

func TestQuadratureOf(t *testing.T) {
	x := New(2)
	x.SetValues([]float64{3, 0})
	y := New(2)
	y.SetValues([]float64{4, 5})

	dst := New(2)
	require.NoError(t, dst.QuadratureOf(x, y))
	assert.Equal(t, []float64{5, 5}, dst.Values())

	assert.Error(t, dst.QuadratureOf(x, New(3)))
}

func TestEqual(t *testing.T) {
	a := New(2)
	b := New(2)
	assert.True(t, a.Equal(b))

	b.Set(1, 0)
	assert.False(t, a.Equal(b))

	assert.False(t, a.Equal(New(2, 1)))
}
