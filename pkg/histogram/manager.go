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
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Manager is a keyed registry of histograms supporting bulk
// registration and bulk fill-by-name. It owns the histograms it holds
// and preserves registration order for deterministic iteration.
type Manager struct {
	sync.Mutex
	histos map[string]*Histogram
	order  []string

	logger *zap.Logger
	meter  metric.Meter
	tel    *managerTelemetry
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithHistograms registers an initial set of histograms, each under its
// own title.
func WithHistograms(histograms ...*Histogram) ManagerOption {
	return func(m *Manager) {
		for _, h := range histograms {
			m.register(h.Title(), h)
		}
	}
}

// WithManagerLogger sets the logger for non-fatal diagnostics, such as
// bulk fills referencing unregistered names. The default is a no-op
// logger.
func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMeter sets the meter used for the manager's self-telemetry
// counters. The default is a no-op meter.
func WithMeter(meter metric.Meter) ManagerOption {
	return func(m *Manager) {
		m.meter = meter
	}
}

// NewManager creates a histogram registry.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		histos: make(map[string]*Histogram),
		logger: zap.NewNop(),
		meter:  noop.NewMeterProvider().Meter("histogrammer"),
	}
	for _, opt := range opts {
		opt(m)
	}

	tel, err := newManagerTelemetry(m.meter)
	if err != nil {
		m.logger.Error("failed to create manager telemetry", zap.Error(err))
		tel, _ = newManagerTelemetry(noop.NewMeterProvider().Meter("histogrammer"))
	}
	m.tel = tel
	return m
}

// Register adds a histogram under its own title, silently replacing any
// existing entry with that title.
func (m *Manager) Register(h *Histogram) {
	m.Lock()
	defer m.Unlock()
	m.register(h.Title(), h)
}

// Put adds a histogram under an explicit name, which may differ from
// the histogram's own title. An existing entry is silently replaced.
func (m *Manager) Put(name string, h *Histogram) {
	m.Lock()
	defer m.Unlock()
	m.register(name, h)
}

func (m *Manager) register(name string, h *Histogram) {
	if _, ok := m.histos[name]; !ok {
		m.order = append(m.order, name)
	}
	m.histos[name] = h
}

// Get returns the histogram registered under name, or ErrNotFound.
func (m *Manager) Get(name string) (*Histogram, error) {
	m.Lock()
	defer m.Unlock()
	h, ok := m.histos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return h, nil
}

// Titles returns the registered names in registration order.
func (m *Manager) Titles() []string {
	m.Lock()
	defer m.Unlock()
	return append([]string{}, m.order...)
}

// Len returns the number of registered histograms.
func (m *Manager) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.histos)
}

// FillBatches applies one unit-weight fill per entry, keyed by
// histogram name. Entries naming an unregistered histogram are logged
// as warnings and skipped; the remaining entries still proceed. Fill
// errors from individual entries are collected and returned together.
// Entries are processed in sorted name order.
func (m *Manager) FillBatches(batches map[string][][]float64) error {
	m.Lock()
	defer m.Unlock()

	names := maps.Keys(batches)
	sort.Strings(names)

	var errs *multierror.Error
	for _, name := range names {
		h, ok := m.histos[name]
		if !ok {
			m.logger.Warn("no histogram registered under name, skipping batch",
				zap.String("histogram", name))
			m.tel.recordSkip(name)
			continue
		}

		before := sum(h.OutRange().Values())
		if err := h.Fill(batches[name], nil); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("filling %q: %w", name, err))
			continue
		}
		observations := 0
		if rows := batches[name]; len(rows) > 0 {
			observations = len(rows[0])
		}
		m.tel.recordFill(name, int64(observations), int64(sum(h.OutRange().Values())-before))
	}
	return errs.ErrorOrNil()
}

func sum(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}
