package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/health"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// monitorHost rewrites the wildcard listen address into a dialable host.
func monitorHost(t *testing.T, m *Monitor) string {
	t.Helper()
	_, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)
	return net.JoinHostPort("127.0.0.1", port)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.Interval = 50 * time.Millisecond
	return cfg
}

func TestNewMonitor_Validation(t *testing.T) {
	t.Run("nil registry", func(t *testing.T) {
		_, err := NewMonitor(nil, DefaultConfig())
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Port = 70000
		_, err := NewMonitor(runtime.NewRegistry(), cfg)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})
}

func TestMonitor_StartStopLifecycle(t *testing.T) {
	monitor, err := NewMonitor(runtime.NewRegistry(), testConfig())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, monitor.Start(ctx))
	require.NotEmpty(t, monitor.Addr())

	// Second start is a no-op against the live server.
	require.NoError(t, monitor.Start(ctx))

	require.NoError(t, monitor.Stop(time.Second))
	assert.Empty(t, monitor.Addr())

	// Stopping an idle monitor is a no-op.
	require.NoError(t, monitor.Stop(time.Second))
}

func TestMonitor_RuntimesEndpoint(t *testing.T) {
	reg := runtime.NewRegistry()

	n := 0
	ticker := runtime.NewTimedGenerator1[int]("ticker", 10*time.Millisecond, func() (int, error) {
		n++
		return n, nil
	})
	idle := runtime.NewGenerator1[int]("standby", func() (int, error) { return 0, nil })
	reg.Register(ticker)
	reg.Register(idle)

	require.NoError(t, ticker.Start(context.Background()))
	defer func() { _ = ticker.Stop(time.Second) }()

	monitor, err := NewMonitor(reg, testConfig())
	require.NoError(t, err)
	require.NoError(t, monitor.Start(context.Background()))
	defer func() { _ = monitor.Stop(time.Second) }()

	resp, err := http.Get("http://" + monitorHost(t, monitor) + "/runtimes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap StateSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "states", snap.Type)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, "running", snap.States["ticker"])
	assert.Equal(t, "idle", snap.States["standby"])
}

func TestMonitor_HealthEndpoint(t *testing.T) {
	t.Run("healthy graph", func(t *testing.T) {
		reg := runtime.NewRegistry()
		gen := runtime.NewTimedGenerator1[int]("steady", 10*time.Millisecond, func() (int, error) {
			return 1, nil
		})
		reg.Register(gen)
		require.NoError(t, gen.Start(context.Background()))
		defer func() { _ = gen.Stop(time.Second) }()

		monitor, err := NewMonitor(reg, testConfig())
		require.NoError(t, err)
		require.NoError(t, monitor.Start(context.Background()))
		defer func() { _ = monitor.Stop(time.Second) }()

		resp, err := http.Get("http://" + monitorHost(t, monitor) + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var status health.Status
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.Equal(t, "graph", status.Component)
		assert.True(t, status.IsHealthy())
		require.Len(t, status.SubStatuses, 1)
		assert.Equal(t, "steady", status.SubStatuses[0].Component)
	})

	t.Run("faulted runtime reports unhealthy", func(t *testing.T) {
		reg := runtime.NewRegistry()
		faulty := runtime.NewGenerator1[int]("faulty", func() (int, error) {
			return 0, stderrors.New("bad reading")
		})
		reg.Register(faulty)

		require.NoError(t, faulty.Start(context.Background()))
		select {
		case <-faulty.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("faulty runtime did not terminate")
		}
		require.Error(t, faulty.Err())

		monitor, err := NewMonitor(reg, testConfig())
		require.NoError(t, err)
		require.NoError(t, monitor.Start(context.Background()))
		defer func() { _ = monitor.Stop(time.Second) }()

		resp, err := http.Get("http://" + monitorHost(t, monitor) + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var status health.Status
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.True(t, status.IsUnhealthy())
		require.Len(t, status.SubStatuses, 1)
		assert.Equal(t, "unhealthy", status.SubStatuses[0].Status)
	})
}

func TestMonitor_WebSocketStream(t *testing.T) {
	reg := runtime.NewRegistry()
	n := 0
	ticker := runtime.NewTimedGenerator1[int]("ticker", 10*time.Millisecond, func() (int, error) {
		n++
		return n, nil
	})
	reg.Register(ticker)
	require.NoError(t, ticker.Start(context.Background()))
	defer func() { _ = ticker.Stop(time.Second) }()

	monitor, err := NewMonitor(reg, testConfig())
	require.NoError(t, err)
	require.NoError(t, monitor.Start(context.Background()))
	defer func() { _ = monitor.Stop(time.Second) }()

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+monitorHost(t, monitor)+"/ws", nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	readSnapshot := func() StateSnapshot {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var snap StateSnapshot
		require.NoError(t, json.Unmarshal(data, &snap))
		return snap
	}

	// First frame arrives on connect, ahead of the broadcast interval.
	first := readSnapshot()
	assert.Equal(t, "states", first.Type)
	assert.Equal(t, "running", first.States["ticker"])

	// Subsequent frames follow the interval.
	second := readSnapshot()
	assert.Equal(t, "states", second.Type)
	assert.Equal(t, 1, second.Count)

	waitFor(t, time.Second, func() bool { return monitor.ClientCount() == 1 },
		"client should be tracked")

	require.NoError(t, conn.Close())
	waitFor(t, 2*time.Second, func() bool { return monitor.ClientCount() == 0 },
		"closed client should be dropped")
}

func TestMonitor_StopClosesClients(t *testing.T) {
	monitor, err := NewMonitor(runtime.NewRegistry(), testConfig())
	require.NoError(t, err)
	require.NoError(t, monitor.Start(context.Background()))

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+monitorHost(t, monitor)+"/ws", nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Consume the connect frame so the close below is the next read event.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, monitor.Stop(time.Second))
	assert.Equal(t, 0, monitor.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "stop should sever the connection")
}
