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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewManager(t *testing.T) {
	m := NewManager()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Titles())
}

func TestNewManager_WithHistograms(t *testing.T) {
	h1 := mustNew(t, "h1", [][]float64{{0, 1}})
	h2 := mustNew(t, "h2", [][]float64{{0, 1}})

	m := NewManager(WithHistograms(h1, h2))

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"h1", "h2"}, m.Titles())

	got, err := m.Get("h1")
	require.NoError(t, err)
	assert.Same(t, h1, got)
}

func TestManager_RegisterOverwrites(t *testing.T) {
	first := mustNew(t, "dup", [][]float64{{0, 1}})
	second := mustNew(t, "dup", [][]float64{{0, 1, 2}})

	m := NewManager()
	m.Register(first)
	m.Register(second)

	assert.Equal(t, 1, m.Len())
	got, err := m.Get("dup")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestManager_PutAlias(t *testing.T) {
	h := mustNew(t, "actual", [][]float64{{0, 1}})

	m := NewManager()
	m.Put("alias", h)

	got, err := m.Get("alias")
	require.NoError(t, err)
	assert.Same(t, h, got)

	_, err = m.Get("actual")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_GetNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestManager_FillBatches(t *testing.T) {
	managed := mustNew(t, "h1", [][]float64{{0, 1, 2}})
	direct := mustNew(t, "h1", [][]float64{{0, 1, 2}})

	m := NewManager(WithHistograms(managed))
	batch := [][]float64{{-1, 0.5, 1.5, 9}}

	require.NoError(t, m.FillBatches(map[string][][]float64{"h1": batch}))
	require.NoError(t, direct.Fill(batch, nil))

	assert.Equal(t, direct.Data().Values(), managed.Data().Values())
	assert.Equal(t, direct.OutRange().Values(), managed.OutRange().Values())
	assert.Equal(t, direct.Errors().Values(), managed.Errors().Values())
}

func TestManager_FillBatches_UnknownNameSkipped(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	h := mustNew(t, "known", [][]float64{{0, 1}})
	m := NewManager(WithHistograms(h), WithManagerLogger(logger))

	err := m.FillBatches(map[string][][]float64{
		"known":   {{0.5}},
		"missing": {{0.5}},
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{1}, h.Data().Values())

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "no histogram registered under name, skipping batch", entry.Message)
	assert.Equal(t, "missing", entry.ContextMap()["histogram"])
}

func TestManager_FillBatches_CollectsFillErrors(t *testing.T) {
	good := mustNew(t, "good", [][]float64{{0, 1}})
	bad := mustNew(t, "bad", [][]float64{{0, 1}, {0, 1}})

	m := NewManager(WithHistograms(good, bad))

	err := m.FillBatches(map[string][][]float64{
		"good": {{0.5}},
		"bad":  {{0.5}}, // one row for a two-dimensional histogram
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), `"bad"`)

	// the valid entry still went through
	assert.Equal(t, []float64{1}, good.Data().Values())
}
