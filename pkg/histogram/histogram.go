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

package histogram

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/cardinalhq/histogrammer/pkg/ndarray"
)

const (
	// OutRangeUnder is the row of the out-of-range array counting
	// observations below the first edge of a dimension.
	OutRangeUnder = 0
	// OutRangeOver is the row counting observations above the last edge.
	OutRangeOver = 1
)

// Histogram accumulates weighted observation counts into an
// N-dimensional grid of bin cells. Bin edges are fixed at construction;
// Fill only ever adds into the accumulators, so accumulation is
// commutative and associative over batches.
//
// Cells are half-open [low, high) except the last cell of each
// dimension, which is closed on both ends. Observations below the first
// edge or above the last edge of any dimension land in no cell and are
// tallied per dimension in the out-of-range array.
type Histogram struct {
	title  string
	edges  [][]float64
	labels []string
	scale  string

	data     *ndarray.Array
	errs     *ndarray.Array
	outRange *ndarray.Array // shape (2, dims): under and over counts

	fingerprint uint64
}

// Option configures a Histogram at construction.
type Option func(*settings)

type settings struct {
	labels []string
	scale  string
	values [][]float64
}

// WithLabels sets the per-axis labels. The count must match the number
// of dimensions.
func WithLabels(labels ...string) Option {
	return func(s *settings) {
		s.labels = labels
	}
}

// WithScale sets the descriptive display-scale tag, such as "linear" or
// "log". It carries no computational meaning.
func WithScale(scale string) Option {
	return func(s *settings) {
		s.scale = scale
	}
}

// WithValues fills the histogram with an initial dimension-major sample
// batch, each observation at unit weight.
func WithValues(samples [][]float64) Option {
	return func(s *settings) {
		s.values = samples
	}
}

// New creates a histogram over the given bin edges, one strictly
// increasing edge slice per dimension. The edge slices are copied.
func New(title string, edges [][]float64, opts ...Option) (*Histogram, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrInvalidBinning)
	}
	shape := make([]int, len(edges))
	owned := make([][]float64, len(edges))
	for i, dim := range edges {
		if len(dim) < 2 {
			return nil, fmt.Errorf("%w: dimension %d has %d edges, need at least 2", ErrInvalidBinning, i, len(dim))
		}
		for k := 1; k < len(dim); k++ {
			if dim[k] <= dim[k-1] {
				return nil, fmt.Errorf("%w: dimension %d edges are not strictly increasing at index %d", ErrInvalidBinning, i, k)
			}
		}
		owned[i] = append([]float64{}, dim...)
		shape[i] = len(dim) - 1
	}

	s := &settings{scale: "linear"}
	for _, opt := range opts {
		opt(s)
	}

	if s.labels == nil {
		s.labels = make([]string, len(edges))
	}
	if len(s.labels) != len(edges) {
		return nil, fmt.Errorf("%w: got %d labels for %d dimensions", ErrDimensionMismatch, len(s.labels), len(edges))
	}

	h := &Histogram{
		title:       title,
		edges:       owned,
		labels:      append([]string{}, s.labels...),
		scale:       s.scale,
		data:        ndarray.New(shape...),
		errs:        ndarray.New(shape...),
		outRange:    ndarray.New(2, len(edges)),
		fingerprint: fingerprintEdges(owned),
	}

	if s.values != nil {
		if err := h.Fill(s.values, nil); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Title returns the histogram's identifier.
func (h *Histogram) Title() string {
	return h.title
}

// Dims returns the number of dimensions.
func (h *Histogram) Dims() int {
	return len(h.edges)
}

// Edges returns a copy of the bin edges.
func (h *Histogram) Edges() [][]float64 {
	out := make([][]float64, len(h.edges))
	for i, dim := range h.edges {
		out[i] = append([]float64{}, dim...)
	}
	return out
}

// Labels returns a copy of the axis labels.
func (h *Histogram) Labels() []string {
	return append([]string{}, h.labels...)
}

// Scale returns the display-scale tag.
func (h *Histogram) Scale() string {
	return h.scale
}

// Data returns the accumulated bin contents. Callers must treat the
// array as read-only.
func (h *Histogram) Data() *ndarray.Array {
	return h.data
}

// Errors returns the per-cell uncertainties. Callers must treat the
// array as read-only.
func (h *Histogram) Errors() *ndarray.Array {
	return h.errs
}

// OutRange returns the out-of-range tallies, shaped (2, dims): row
// OutRangeUnder counts observations below the first edge of each
// dimension, row OutRangeOver above the last edge. Callers must treat
// the array as read-only.
func (h *Histogram) OutRange() *ndarray.Array {
	return h.outRange
}

// Fingerprint returns a stable hash of the bin edges. Histograms with
// different fingerprints are never mergeable.
func (h *Histogram) Fingerprint() uint64 {
	return h.fingerprint
}

// Fill bins a dimension-major batch of observations into the histogram.
// samples[i][j] is the coordinate of observation j in dimension i; all
// rows must have equal length. A nil weights slice means unit weight
// per observation; otherwise its length must equal the observation
// count. Out-of-range observations are tallied unweighted, per
// dimension independently. The uncertainties are recomputed as
// sqrt(data) afterwards, replacing any custom errors previously set via
// UpdateErrors.
//
// Validation failures return ErrDimensionMismatch before any state is
// touched.
func (h *Histogram) Fill(samples [][]float64, weights []float64) error {
	if len(samples) != len(h.edges) {
		return fmt.Errorf("%w: got %d sample rows for %d dimensions", ErrDimensionMismatch, len(samples), len(h.edges))
	}
	count := len(samples[0])
	for i, row := range samples {
		if len(row) != count {
			return fmt.Errorf("%w: sample row %d has %d observations, row 0 has %d", ErrDimensionMismatch, i, len(row), count)
		}
	}
	if weights != nil && len(weights) != count {
		return fmt.Errorf("%w: got %d weights for %d observations", ErrDimensionMismatch, len(weights), count)
	}

	idx := make([]int, len(h.edges))
	for j := 0; j < count; j++ {
		inRange := true
		for i, dim := range h.edges {
			v := samples[i][j]
			switch {
			case v < dim[0]:
				h.outRange.AddAt(1, OutRangeUnder, i)
				inRange = false
			case v > dim[len(dim)-1]:
				h.outRange.AddAt(1, OutRangeOver, i)
				inRange = false
			default:
				idx[i] = binIndex(dim, v)
			}
		}
		if !inRange {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[j]
		}
		h.data.AddAt(w, idx...)
	}

	h.UpdateErrors(nil)
	return nil
}

// UpdateErrors overwrites the per-cell uncertainties. A nil argument
// recomputes them as the element-wise square root of the accumulated
// data. A non-nil slice is copied into the error buffer in row-major
// order; its length is the caller's responsibility. Custom errors do
// not survive the next Fill, which recomputes sqrt(data).
func (h *Histogram) UpdateErrors(values []float64) {
	if values == nil {
		_ = h.errs.SqrtOf(h.data) // shapes always match
		return
	}
	h.errs.SetValues(values)
}

// binIndex locates v within the strictly increasing edges. v must be
// within [edges[0], edges[last]]; the last cell is closed on the right.
func binIndex(edges []float64, v float64) int {
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		if i == len(edges)-1 {
			return i - 1
		}
		return i
	}
	return i - 1
}

func fingerprintEdges(edges [][]float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, dim := range edges {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(dim)))
		_, _ = d.Write(buf[:])
		for _, e := range dim {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}
