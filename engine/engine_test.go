package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartWaitsForHealth(t *testing.T) {
	var probes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Unhealthy for the first two probes.
		if probes.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewController(func(o *Options) {
		o.Command = "sleep"
		o.Args = []string{"30"}
		o.HealthURL = server.URL
		o.StartupTimeout = 5 * time.Second
		o.PollInterval = 20 * time.Millisecond
	})

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Running())
	assert.GreaterOrEqual(t, probes.Load(), int32(3))

	require.NoError(t, c.Stop())
	assert.False(t, c.Running())
}

func TestController_StartupTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewController(func(o *Options) {
		o.Command = "sleep"
		o.Args = []string{"30"}
		o.HealthURL = server.URL
		o.StartupTimeout = 100 * time.Millisecond
		o.PollInterval = 20 * time.Millisecond
	})

	err := c.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, c.Running())
}

func TestController_ProcessExitBeforeHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewController(func(o *Options) {
		o.Command = "true"
		o.HealthURL = server.URL
		o.StartupTimeout = 5 * time.Second
		o.PollInterval = 20 * time.Millisecond
	})

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited")
}

func TestController_MissingConfig(t *testing.T) {
	c := NewController()
	assert.Error(t, c.Start(context.Background()))

	c = NewController(func(o *Options) { o.Command = "sleep" })
	assert.Error(t, c.Start(context.Background()))
}

func TestController_StopIsIdempotent(t *testing.T) {
	c := NewController()
	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Stop())
	assert.False(t, c.Running())
}
