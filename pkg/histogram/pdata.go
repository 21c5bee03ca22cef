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
	"math"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"
)

const scopeName = "github.com/cardinalhq/histogrammer"

// ToMetrics renders the accumulated state of the given histograms as
// pdata metrics, a read-only view for downstream consumers. The
// histograms are not modified.
//
// One-dimensional histograms become cumulative pmetric histograms: the
// explicit bounds are the bin edges and the bucket counts are the
// out-of-range underflow, the cells, and the overflow, in that order.
// Multi-dimensional histograms become gauges with one data point per
// non-empty cell, carrying the cell's bounds as attributes, plus a
// companion <title>.out_of_range gauge.
func ToMetrics(now time.Time, histograms ...*Histogram) pmetric.Metrics {
	md := pmetric.NewMetrics()
	sm := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty()
	sm.Scope().SetName(scopeName)
	ts := pcommon.NewTimestampFromTime(now)
	for _, h := range histograms {
		if h.Dims() == 1 {
			h.appendHistogramMetric(sm, ts)
		} else {
			h.appendGaugeMetrics(sm, ts)
		}
	}
	return md
}

// ToMetrics renders all registered histograms in registration order.
func (m *Manager) ToMetrics(now time.Time) pmetric.Metrics {
	m.Lock()
	defer m.Unlock()
	histograms := make([]*Histogram, 0, len(m.order))
	for _, name := range m.order {
		histograms = append(histograms, m.histos[name])
	}
	return ToMetrics(now, histograms...)
}

func (h *Histogram) appendHistogramMetric(sm pmetric.ScopeMetrics, ts pcommon.Timestamp) {
	metric := sm.Metrics().AppendEmpty()
	metric.SetName(h.title)
	hist := metric.SetEmptyHistogram()
	hist.SetAggregationTemporality(pmetric.AggregationTemporalityCumulative)

	dp := hist.DataPoints().AppendEmpty()
	dp.SetTimestamp(ts)
	dp.ExplicitBounds().FromRaw(h.edges[0])

	cells := h.data.Values()
	counts := make([]uint64, 0, len(cells)+2)
	counts = append(counts, roundCount(h.outRange.At(OutRangeUnder, 0)))
	total := counts[0]
	for _, c := range cells {
		counts = append(counts, roundCount(c))
		total += roundCount(c)
	}
	counts = append(counts, roundCount(h.outRange.At(OutRangeOver, 0)))
	total += counts[len(counts)-1]
	dp.BucketCounts().FromRaw(counts)
	dp.SetCount(total)

	h.putCommonAttributes(dp.Attributes())
}

func (h *Histogram) appendGaugeMetrics(sm pmetric.ScopeMetrics, ts pcommon.Timestamp) {
	metric := sm.Metrics().AppendEmpty()
	metric.SetName(h.title)
	gauge := metric.SetEmptyGauge()

	shape := h.data.Shape()
	idx := make([]int, len(shape))
	for flat := 0; flat < h.data.Len(); flat++ {
		unravel(flat, shape, idx)
		v := h.data.At(idx...)
		if v == 0 {
			continue
		}
		dp := gauge.DataPoints().AppendEmpty()
		dp.SetTimestamp(ts)
		dp.SetDoubleValue(v)
		for i, k := range idx {
			axis := h.axisName(i)
			dp.Attributes().PutDouble(axis+".low", h.edges[i][k])
			dp.Attributes().PutDouble(axis+".high", h.edges[i][k+1])
		}
		h.putCommonAttributes(dp.Attributes())
	}

	outMetric := sm.Metrics().AppendEmpty()
	outMetric.SetName(h.title + ".out_of_range")
	outGauge := outMetric.SetEmptyGauge()
	directions := []struct {
		row  int
		name string
	}{
		{OutRangeUnder, "under"},
		{OutRangeOver, "over"},
	}
	for i := range h.edges {
		for _, d := range directions {
			v := h.outRange.At(d.row, i)
			if v == 0 {
				continue
			}
			dp := outGauge.DataPoints().AppendEmpty()
			dp.SetTimestamp(ts)
			dp.SetDoubleValue(v)
			dp.Attributes().PutStr("axis", h.axisName(i))
			dp.Attributes().PutStr("direction", d.name)
		}
	}
}

func (h *Histogram) putCommonAttributes(attrs pcommon.Map) {
	attrs.PutStr("scale", h.scale)
	for i, label := range h.labels {
		if label != "" {
			attrs.PutStr(fmt.Sprintf("axis%d.label", i), label)
		}
	}
}

func (h *Histogram) axisName(i int) string {
	if h.labels[i] != "" {
		return h.labels[i]
	}
	return fmt.Sprintf("axis%d", i)
}

func roundCount(v float64) uint64 {
	if v <= 0 {
		return 0
	}
	return uint64(math.Round(v))
}

func unravel(flat int, shape, idx []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		idx[i] = flat % shape[i]
		flat /= shape[i]
	}
}
