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
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type managerTelemetry struct {
	exportCtx context.Context

	fills        metric.Int64Counter
	observations metric.Int64Counter
	outOfRange   metric.Int64Counter
	skipped      metric.Int64Counter
}

func newManagerTelemetry(meter metric.Meter) (*managerTelemetry, error) {
	mt := &managerTelemetry{
		exportCtx: context.Background(),
	}

	counter, err := meter.Int64Counter(
		"histogrammer.fills",
		metric.WithDescription("The total number of fill operations applied through the manager"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	mt.fills = counter

	counter, err = meter.Int64Counter(
		"histogrammer.observations",
		metric.WithDescription("The total number of observations submitted through the manager"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	mt.observations = counter

	counter, err = meter.Int64Counter(
		"histogrammer.observations.out_of_range",
		metric.WithDescription("The total number of per-dimension out-of-range tallies recorded during manager fills"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	mt.outOfRange = counter

	counter, err = meter.Int64Counter(
		"histogrammer.fills.skipped",
		metric.WithDescription("The total number of bulk-fill entries skipped because no histogram was registered under the name"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	mt.skipped = counter

	return mt, nil
}

func (mt *managerTelemetry) recordFill(name string, observations, outOfRange int64) {
	attrs := metric.WithAttributes(attribute.String("histogram", name))
	mt.fills.Add(mt.exportCtx, 1, attrs)
	mt.observations.Add(mt.exportCtx, observations, attrs)
	if outOfRange > 0 {
		mt.outOfRange.Add(mt.exportCtx, outOfRange, attrs)
	}
}

func (mt *managerTelemetry) recordSkip(name string) {
	mt.skipped.Add(mt.exportCtx, 1, metric.WithAttributes(attribute.String("histogram", name)))
}
