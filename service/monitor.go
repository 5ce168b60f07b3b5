package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/health"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/security"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/tlsutil"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 10 * time.Second
	// pongWait is how long a client may stay silent before it is dropped.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait so healthy clients always
	// have a pong in flight before the deadline.
	pingPeriod = 30 * time.Second
)

// Config holds Monitor server configuration.
type Config struct {
	// Port is the HTTP listen port. 0 binds an ephemeral port, which the
	// Addr method reports once started.
	Port int
	// WSPath is the WebSocket endpoint path.
	WSPath string
	// Interval is the cadence of state snapshot broadcasts.
	Interval time.Duration
	// Security configures optional TLS for the HTTP server.
	Security security.Config
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Port:     8090,
		WSPath:   "/ws",
		Interval: time.Second,
	}
}

// StateSnapshot is one point-in-time view of every registered runtime,
// served by GET /runtimes and streamed over the WebSocket endpoint.
type StateSnapshot struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Count     int               `json:"count"`
	States    map[string]string `json:"states"`
}

// Monitor serves runtime state and health over HTTP and streams periodic
// state snapshots to connected WebSocket clients.
type Monitor struct {
	cfg      Config
	registry *runtime.Registry
	statuses *health.Monitor
	logger   *slog.Logger
	metrics  *monitorMetrics
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]*client
	clientsMu sync.RWMutex

	mu       sync.Mutex
	running  bool
	server   *http.Server
	listener net.Listener
	shutdown chan struct{}
	wg       *sync.WaitGroup
}

// client tracks one WebSocket connection. The write mutex serializes data
// frames; pings go through WriteControl, which is concurrency-safe on its
// own.
type client struct {
	conn        *websocket.Conn
	connectedAt time.Time
	closed      atomic.Bool
	closeOnce   sync.Once
	writeMu     sync.Mutex
}

// Option configures a Monitor.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
}

// WithLogger sets the structured logger for monitor events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation through the shared
// registry. A nil registry leaves metrics off.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// NewMonitor constructs a monitor over the given runtime registry. Zero
// config fields fall back to DefaultConfig values.
func NewMonitor(registry *runtime.Registry, cfg Config, opts ...Option) (*Monitor, error) {
	if registry == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Monitor", "NewMonitor", "validate registry")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Monitor", "NewMonitor",
			fmt.Sprintf("validate port %d", cfg.Port))
	}
	if cfg.WSPath == "" {
		cfg.WSPath = "/ws"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return &Monitor{
		cfg:      cfg,
		registry: registry,
		statuses: health.NewMonitor(),
		logger:   o.logger.With("component", "monitor"),
		metrics:  newMonitorMetrics(o.registry),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Operations endpoint, not a public surface; origin
			// filtering belongs to the deployment's proxy.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*client),
	}, nil
}

// Start binds the listen port and begins serving. Starting a running
// monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "Monitor", "Start", "context already cancelled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/runtimes", m.handleRuntimes)
	mux.HandleFunc("/health", m.handleHealth)
	mux.HandleFunc(m.cfg.WSPath, m.handleWebSocket)
	mux.HandleFunc("/", m.handleIndex)

	server := &http.Server{Handler: mux}
	if m.cfg.Security.TLS.Server.Enabled {
		tlsConfig, err := tlsutil.LoadServerTLSConfig(m.cfg.Security.TLS.Server)
		if err != nil {
			return errors.WrapFatal(err, "Monitor", "Start", "load TLS config")
		}
		server.TLSConfig = tlsConfig
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.cfg.Port))
	if err != nil {
		return errors.WrapTransient(err, "Monitor", "Start",
			fmt.Sprintf("listen on port %d", m.cfg.Port))
	}

	m.server = server
	m.listener = listener
	m.shutdown = make(chan struct{})
	m.wg = &sync.WaitGroup{}
	m.running = true

	m.wg.Add(3)
	go m.serve(server, listener, m.wg)
	go m.broadcastLoop(m.wg, m.shutdown)
	go m.maintainClients(m.wg, m.shutdown)

	m.logger.Info("monitor started",
		"addr", listener.Addr().String(),
		"ws_path", m.cfg.WSPath,
		"interval", m.cfg.Interval)
	return nil
}

// Stop shuts the server down, closes every client connection, and waits up
// to timeout for the monitor goroutines. Stopping an idle monitor is a
// no-op.
func (m *Monitor) Stop(timeout time.Duration) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.shutdown)
	server := m.server
	wg := m.wg
	m.server = nil
	m.listener = nil
	m.mu.Unlock()

	// Shutdown stops the listener and waits for in-flight handlers; it does
	// not touch hijacked WebSocket connections, so those are closed next.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		m.logger.Warn("monitor server shutdown", "error", err)
	}
	m.closeAllClients()

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrStopTimeout, "Monitor", "Stop", "wait for monitor goroutines")
	}

	m.logger.Info("monitor stopped")
	return nil
}

// Addr returns the bound listen address, or "" while the monitor is idle.
// With Port 0 this is the only way to learn the ephemeral port.
func (m *Monitor) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// ClientCount returns the number of connected WebSocket clients.
func (m *Monitor) ClientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

func (m *Monitor) serve(server *http.Server, listener net.Listener, wg *sync.WaitGroup) {
	defer wg.Done()

	var err error
	if server.TLSConfig != nil {
		err = server.ServeTLS(listener, "", "")
	} else {
		err = server.Serve(listener)
	}
	if err != nil && err != http.ErrServerClosed {
		m.logger.Error("monitor server failed", "error", err)
	}
}

func (m *Monitor) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<html>
<head><title>Flow Runtime Monitor</title></head>
<body>
<h1>Flow Runtime Monitor</h1>
<p><a href="/runtimes">Runtime states</a></p>
<p><a href="/health">Health</a></p>
<p>WebSocket state stream at %s</p>
</body>
</html>`, m.cfg.WSPath)
}

func (m *Monitor) handleRuntimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.stateSnapshot()); err != nil {
		m.logger.Warn("failed to encode runtime snapshot", "error", err)
	}
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.registry.PublishHealth(m.statuses)
	aggregate := m.statuses.AggregateHealth("graph")

	w.Header().Set("Content-Type", "application/json")
	if aggregate.IsUnhealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(aggregate); err != nil {
		m.logger.Warn("failed to encode health status", "error", err)
	}
}

func (m *Monitor) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	running := m.running
	wg := m.wg
	m.mu.Unlock()
	if !running {
		http.Error(w, "monitor stopping", http.StatusServiceUnavailable)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, connectedAt: time.Now()}
	m.clientsMu.Lock()
	m.clients[conn] = c
	count := len(m.clients)
	m.clientsMu.Unlock()

	if m.metrics != nil {
		m.metrics.connectionsTotal.Inc()
		m.metrics.clientsConnected.Set(float64(count))
	}
	m.logger.Debug("websocket client connected",
		"remote", conn.RemoteAddr().String(), "clients", count)

	// First frame immediately so clients do not wait a full interval.
	if data, err := json.Marshal(m.stateSnapshot()); err == nil {
		_ = m.send(c, data)
	}

	wg.Add(1)
	go m.readClient(c, wg)
}

// readClient drains the connection. The stream is broadcast-only, so reads
// exist to surface closure and to run the pong handler.
func (m *Monitor) readClient(c *client, wg *sync.WaitGroup) {
	defer wg.Done()
	defer m.removeClient(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Monitor) broadcastLoop(wg *sync.WaitGroup, shutdown <-chan struct{}) {
	defer wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			m.broadcastStates()
		}
	}
}

func (m *Monitor) broadcastStates() {
	data, err := json.Marshal(m.stateSnapshot())
	if err != nil {
		m.logger.Warn("failed to encode state snapshot", "error", err)
		return
	}

	for _, c := range m.clientSnapshot() {
		if err := m.send(c, data); err != nil {
			m.removeClient(c)
		}
	}
	if m.metrics != nil {
		m.metrics.snapshotsSent.Inc()
	}
}

func (m *Monitor) maintainClients(wg *sync.WaitGroup, shutdown <-chan struct{}) {
	defer wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			m.pingClients()
		}
	}
}

func (m *Monitor) pingClients() {
	for _, c := range m.clientSnapshot() {
		deadline := time.Now().Add(writeWait)
		if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			m.removeClient(c)
		}
	}
}

func (m *Monitor) stateSnapshot() StateSnapshot {
	states := m.registry.States()
	rendered := make(map[string]string, len(states))
	for name, state := range states {
		rendered[name] = state.String()
	}
	return StateSnapshot{
		Type:      "states",
		Timestamp: time.Now().UTC(),
		Count:     len(rendered),
		States:    rendered,
	}
}

func (m *Monitor) clientSnapshot() []*client {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	list := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		if !c.closed.Load() {
			list = append(list, c)
		}
	}
	return list
}

func (m *Monitor) send(c *client, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (m *Monitor) removeClient(c *client) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		m.clientsMu.Lock()
		delete(m.clients, c.conn)
		count := len(m.clients)
		m.clientsMu.Unlock()

		if m.metrics != nil {
			m.metrics.clientsConnected.Set(float64(count))
		}
		m.logger.Debug("websocket client disconnected",
			"remote", c.conn.RemoteAddr().String(), "clients", count)
		_ = c.conn.Close()
	})
}

func (m *Monitor) closeAllClients() {
	for _, c := range m.clientSnapshot() {
		m.removeClient(c)
	}
}
