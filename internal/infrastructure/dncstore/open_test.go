package dncstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
)

func TestOpen_SelectsBackendFromConfig(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.DNC.Backend = "file"
		cfg.DNC.FilePath = filepath.Join(t.TempDir(), "do_not_call.jsonl")

		store, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, store)

		added, err := store.Add(context.Background(), mustEntry(t, "+15551234567"))
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		cfg := &config.Config{}
		cfg.DNC.Backend = "redis"
		cfg.Redis.URL = mr.Addr()

		store, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &RedisStore{}, store)

		// Opt-outs written through one handle must be visible through
		// another opened from the same configuration.
		added, err := store.Add(context.Background(), mustEntry(t, "+15551234567"))
		require.NoError(t, err)
		assert.True(t, added)

		other, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		listed, err := other.Contains(context.Background(), "+15551234567")
		require.NoError(t, err)
		assert.True(t, listed)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.DNC.Backend = "dynamodb"

		_, err := Open(cfg, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dynamodb")
	})
}

func TestOpen_ReportsSizeToGauge(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(noop.NewMeterProvider()) })

	registry, err := metrics.NewRegistry("dncstore-test")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.DNC.Backend = "file"
	cfg.DNC.FilePath = filepath.Join(t.TempDir(), "do_not_call.jsonl")

	store, err := Open(cfg, registry, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dncGaugeValue(t, reader))

	_, err = store.Add(context.Background(), mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	_, err = store.Add(context.Background(), mustEntry(t, "+15557654321"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), dncGaugeValue(t, reader))

	// A duplicate add leaves the reported size unchanged.
	_, err = store.Add(context.Background(), mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), dncGaugeValue(t, reader))

	// Reopening reports the loaded size before any write.
	_, err = Open(cfg, registry, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dncGaugeValue(t, reader))
}

func dncGaugeValue(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "compliance.dnc.size" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok, "compliance.dnc.size must be an int64 gauge")
			require.NotEmpty(t, gauge.DataPoints)
			return gauge.DataPoints[0].Value
		}
	}
	t.Fatal("compliance.dnc.size was not collected")
	return 0
}
