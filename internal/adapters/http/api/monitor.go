package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/topskim/pkg/logger"
	"github.com/okian/topskim/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Monitor runs the monitoring API next to a job.
type Monitor struct {
	srv    *http.Server
	ln     net.Listener
	stop   chan struct{}
	logger logger.Logger
}

// NewMonitor prepares a monitor listening on addr.
func NewMonitor(addr string, stats StatsProvider) *Monitor {
	mux := http.NewServeMux()
	NewServer(stats).Register(context.Background(), mux)

	return &Monitor{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		stop:   make(chan struct{}),
		logger: logger.Get().Named("monitor"),
	}
}

// Start binds the listener and serves in the background.
func (m *Monitor) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	m.ln = ln

	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error(ctx, "monitor server failed", logger.Error(err))
		}
	}()
	go m.updateSystemMetrics(ctx)

	m.logger.Info(ctx, "monitor started", logger.String("addr", m.Addr()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (m *Monitor) Addr() string {
	if m.ln != nil {
		return m.ln.Addr().String()
	}
	return m.srv.Addr
}

// Shutdown stops the server gracefully.
func (m *Monitor) Shutdown(ctx context.Context) error {
	close(m.stop)
	if err := m.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	return nil
}

func (m *Monitor) updateSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			metrics.UpdateSystemMemoryUsage(ms.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
