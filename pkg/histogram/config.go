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

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config declares a set of histograms to be built into a Manager.
type Config struct {
	Histograms []HistogramConfig `yaml:"histograms"`
}

// HistogramConfig declares one histogram: a name, one axis per
// dimension, and an optional display scale.
type HistogramConfig struct {
	Name  string       `yaml:"name"`
	Axes  []AxisConfig `yaml:"axes"`
	Scale string       `yaml:"scale"`
}

// AxisConfig declares the binning of one dimension, either as explicit
// edges or as a uniform min/max/bins generator.
type AxisConfig struct {
	Label string    `yaml:"label"`
	Edges []float64 `yaml:"edges"`
	Min   *float64  `yaml:"min"`
	Max   *float64  `yaml:"max"`
	Bins  int       `yaml:"bins"`
}

// ParseConfig unmarshals and validates a YAML histogram-set
// declaration.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the declaration for missing names, duplicate names
// and malformed axes, reporting all problems at once.
func (c *Config) Validate() error {
	var errors error
	seen := map[string]bool{}
	for i, hc := range c.Histograms {
		if hc.Name == "" {
			errors = multierr.Append(errors, fmt.Errorf("histogram %d: name must not be empty", i))
		}
		if seen[hc.Name] {
			errors = multierr.Append(errors, fmt.Errorf("histogram %d: duplicate name %q", i, hc.Name))
		}
		seen[hc.Name] = true
		if len(hc.Axes) == 0 {
			errors = multierr.Append(errors, fmt.Errorf("histogram %q: at least one axis is required", hc.Name))
		}
		for j, ac := range hc.Axes {
			if err := ac.validate(); err != nil {
				errors = multierr.Append(errors, fmt.Errorf("histogram %q axis %d: %w", hc.Name, j, err))
			}
		}
	}
	return errors
}

func (ac AxisConfig) validate() error {
	if len(ac.Edges) > 0 {
		if ac.Min != nil || ac.Max != nil || ac.Bins != 0 {
			return fmt.Errorf("edges and min/max/bins are mutually exclusive")
		}
		if len(ac.Edges) < 2 {
			return fmt.Errorf("need at least 2 edges, got %d", len(ac.Edges))
		}
		for k := 1; k < len(ac.Edges); k++ {
			if ac.Edges[k] <= ac.Edges[k-1] {
				return fmt.Errorf("edges are not strictly increasing at index %d", k)
			}
		}
		return nil
	}
	if ac.Min == nil || ac.Max == nil {
		return fmt.Errorf("either edges or min and max are required")
	}
	if *ac.Min >= *ac.Max {
		return fmt.Errorf("min %v must be below max %v", *ac.Min, *ac.Max)
	}
	if ac.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", ac.Bins)
	}
	return nil
}

// edges materializes the axis binning. The declaration must have been
// validated.
func (ac AxisConfig) edges() []float64 {
	if len(ac.Edges) > 0 {
		return append([]float64{}, ac.Edges...)
	}
	out := make([]float64, ac.Bins+1)
	width := (*ac.Max - *ac.Min) / float64(ac.Bins)
	for i := 0; i <= ac.Bins; i++ {
		out[i] = *ac.Min + float64(i)*width
	}
	out[ac.Bins] = *ac.Max
	return out
}

// Build constructs a Manager holding one empty histogram per
// declaration.
func (c *Config) Build(opts ...ManagerOption) (*Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m := NewManager(opts...)
	for _, hc := range c.Histograms {
		edges := make([][]float64, len(hc.Axes))
		labels := make([]string, len(hc.Axes))
		for i, ac := range hc.Axes {
			edges[i] = ac.edges()
			labels[i] = ac.Label
		}
		hopts := []Option{WithLabels(labels...)}
		if hc.Scale != "" {
			hopts = append(hopts, WithScale(hc.Scale))
		}
		h, err := New(hc.Name, edges, hopts...)
		if err != nil {
			return nil, fmt.Errorf("building histogram %q: %w", hc.Name, err)
		}
		m.Register(h)
	}
	return m, nil
}
