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

import "errors"

var (
	// ErrDimensionMismatch indicates that a sample batch or weight slice
	// does not match the histogram's dimensionality or observation count.
	ErrDimensionMismatch = errors.New("dimensions of data and weights are not compatible")

	// ErrIncompatibleBinning indicates that two histograms with different
	// bin edges were merged.
	ErrIncompatibleBinning = errors.New("histogram binning is not compatible")

	// ErrInvalidBinning indicates malformed bin edges at construction.
	ErrInvalidBinning = errors.New("histogram binning is invalid")

	// ErrNotFound indicates a lookup for an unregistered histogram name.
	ErrNotFound = errors.New("histogram not found")
)
