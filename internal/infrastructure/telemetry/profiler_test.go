package telemetry_test

import (
	"sync"
	"testing"

	"github.com/fabmate/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://localhost:4040",
		ApplicationName: "fabmate-backend",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, profiler)

	assert.False(t, profiler.IsEnabled())
	assert.Equal(t, "fabmate-backend", profiler.GetConfig().ApplicationName)

	// Stop is a no-op and safe to repeat.
	assert.NoError(t, profiler.Stop())
	assert.NoError(t, profiler.Stop())
}

func TestNewProfiler_ValidatesConfig(t *testing.T) {
	tests := map[string]struct {
		cfg     telemetry.ProfilerConfig
		wantErr string
	}{
		"missing server address": {
			cfg:     telemetry.ProfilerConfig{Enabled: true, ApplicationName: "fabmate-backend"},
			wantErr: "server address is required",
		},
		"missing application name": {
			cfg:     telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			profiler, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, profiler)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProfiler_EnabledIntegration(t *testing.T) {
	// Needs a Pyroscope server on localhost:4040.
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             true,
		ServerAddress:       "http://localhost:4040",
		ApplicationName:     "fabmate-backend",
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, profiler)

	assert.True(t, profiler.IsEnabled())
	assert.NoError(t, profiler.Stop())
}

func TestProfiler_StopConcurrent(t *testing.T) {
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = profiler.Stop()
		}()
	}
	wg.Wait()
}

func TestProfiler_GetConfigRoundTrip(t *testing.T) {
	cfg := telemetry.ProfilerConfig{
		Enabled:              false,
		ServerAddress:        "http://localhost:4040",
		ApplicationName:      "fabmate-backend",
		BasicAuthUser:        "pyro",
		BasicAuthPassword:    "pyro-secret",
		DisableGCRuns:        true,
		ProfileMutexCount:    true,
		ProfileMutexDuration: true,
		MutexProfileFraction: 10,
		ProfileBlockCount:    true,
		ProfileBlockDuration: true,
		BlockProfileRate:     10,
	}

	profiler, err := telemetry.NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	got := profiler.GetConfig()
	assert.Equal(t, cfg, got)
	assert.Equal(t, got, profiler.GetConfig())
}
