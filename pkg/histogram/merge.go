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
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// MergeOption configures a merge.
type MergeOption func(*mergeSettings)

type mergeSettings struct {
	logger *zap.Logger
}

// WithWarningLogger sets the logger that receives non-fatal merge
// diagnostics, such as differing titles or labels. The default is a
// no-op logger.
func WithWarningLogger(logger *zap.Logger) MergeOption {
	return func(s *mergeSettings) {
		s.logger = logger
	}
}

// Merge combines two histograms of identical binning into a new
// histogram without mutating either operand. A nil operand acts as the
// additive identity: the other operand is returned unchanged, which
// lets a sequence of histograms be folded starting from nil.
//
// Data and out-of-range tallies are added element-wise. Uncertainties
// are combined in quadrature, sqrt(l^2 + r^2), not recomputed from the
// merged data. The result keeps the left operand's title, labels and
// scale; differing titles or labels are logged as warnings and do not
// abort the merge. Differing bin edges return ErrIncompatibleBinning.
func Merge(left, right *Histogram, opts ...MergeOption) (*Histogram, error) {
	if left == nil {
		return right, nil
	}
	if right == nil {
		return left, nil
	}

	s := &mergeSettings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if !sameBinning(left, right) {
		return nil, fmt.Errorf("%w: %q and %q", ErrIncompatibleBinning, left.title, right.title)
	}
	if left.title != right.title {
		s.logger.Warn("merging histograms with different titles",
			zap.String("left", left.title),
			zap.String("right", right.title))
	}
	if !slices.Equal(left.labels, right.labels) {
		s.logger.Warn("merging histograms with different labels",
			zap.Strings("left", left.labels),
			zap.Strings("right", right.labels))
	}

	merged, err := New(left.title, left.edges, WithLabels(left.labels...), WithScale(left.scale))
	if err != nil {
		return nil, err
	}
	merged.data = left.data.Clone()
	_ = merged.data.AddInPlace(right.data)
	merged.outRange = left.outRange.Clone()
	_ = merged.outRange.AddInPlace(right.outRange)
	_ = merged.errs.QuadratureOf(left.errs, right.errs)
	return merged, nil
}

// MergeAll folds a sequence of histograms with Merge, starting from the
// nil identity. All non-nil elements must share identical binning.
func MergeAll(histograms []*Histogram, opts ...MergeOption) (*Histogram, error) {
	var acc *Histogram
	for _, h := range histograms {
		var err error
		acc, err = Merge(acc, h, opts...)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func sameBinning(a, b *Histogram) bool {
	if a.fingerprint != b.fingerprint || len(a.edges) != len(b.edges) {
		return false
	}
	for i, dim := range a.edges {
		if !slices.Equal(dim, b.edges[i]) {
			return false
		}
	}
	return true
}
