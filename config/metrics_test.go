package config

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
	}{
		{name: "with custom namespace", namespace: "custom"},
		{name: "with empty namespace uses default", namespace: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMetrics(tt.namespace)

			assert.NotNil(t, m)
			assert.NotNil(t, m.coreLoads)
			assert.NotNil(t, m.pluginLoads)
			assert.NotNil(t, m.reloads)
			assert.NotNil(t, m.pluginsLoaded)
			assert.NotNil(t, m.Registry())
		})
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.recordCoreLoad(nil)
	m.recordPluginLoad(errors.New("boom"))
	m.recordReload(nil)
	m.setPluginsLoaded(3)
}

func TestOutcomeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, outcomeSuccess, outcomeFor(nil))
	assert.Equal(t, outcomeNotFound, outcomeFor(&NotFoundError{Path: "x"}))
	assert.Equal(t, outcomeParseError, outcomeFor(&ParseError{Path: "x", Err: errors.New("bad")}))
	assert.Equal(t, outcomeValidationError, outcomeFor(ValidationErrors{{Message: "bad"}}))
	assert.Equal(t, outcomeError, outcomeFor(errors.New("io failure")))
}

func TestMetrics_RecordsManagerOutcomes(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")
	dir := t.TempDir()
	m := New(
		WithConfigDir(dir),
		WithMetrics(metrics),
		WithEnviron(func() []string { return nil }),
	)

	// Missing file, then a good load.
	require.Error(t, m.Load())
	writeFile(t, dir, DefaultCoreFile, "api_port: 9000\n")
	require.NoError(t, m.Load())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.coreLoads.WithLabelValues(outcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.coreLoads.WithLabelValues(outcomeSuccess)))

	_, err := m.LoadPluginConfig("p", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.pluginLoads.WithLabelValues(outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.pluginsLoaded))

	require.NoError(t, m.Reload())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reloads.WithLabelValues(outcomeSuccess)))
}
