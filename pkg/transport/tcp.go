package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

// ErrClosed is returned once the transport has been closed
var ErrClosed = errors.New("transport: closed")

// TCPConfig holds the TCP transport configuration
type TCPConfig struct {
	Address      string
	DialTimeout  time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// TCP connects to a serial-over-TCP bridge in front of the radio module.
// Reads transparently reconnect with exponential backoff; the frame decoder
// upstream copes with the bytes lost across a reconnect.
type TCP struct {
	config TCPConfig
	log    *logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTCP creates a TCP transport. Connect must be called before use.
func NewTCP(cfg TCPConfig, log *logger.Logger) *TCP {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = cfg.ReconnectMin
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TCP{
		config: cfg,
		log:    log.WithComponent("transport.tcp"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the bridge, retrying with backoff until it succeeds or the
// context is cancelled.
func (t *TCP) Connect(ctx context.Context) error {
	delay := t.config.ReconnectMin
	for {
		conn, err := net.DialTimeout("tcp", t.config.Address, t.config.DialTimeout)
		if err == nil {
			t.setConn(conn)
			t.log.Info("Connected to gateway module",
				logger.String("address", t.config.Address))
			return nil
		}

		t.log.Warn("Connection failed, retrying",
			logger.String("address", t.config.Address),
			logger.Duration("retry_in", delay),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.ctx.Done():
			return ErrClosed
		case <-time.After(delay):
		}
		delay *= 2
		if delay > t.config.ReconnectMax {
			delay = t.config.ReconnectMax
		}
	}
}

// Read reads from the current connection. A broken connection is replaced
// transparently; Read only fails once the transport is closed.
func (t *TCP) Read(p []byte) (int, error) {
	for {
		conn, err := t.current()
		if err != nil {
			return 0, err
		}
		n, err := conn.Read(p)
		if err == nil {
			return n, nil
		}
		if t.isClosed() {
			return 0, ErrClosed
		}

		t.log.Warn("Connection lost, reconnecting", logger.Error(err))
		t.dropConn(conn)
		if err := t.Connect(t.ctx); err != nil {
			return 0, err
		}
	}
}

// Write writes to the current connection
func (t *TCP) Write(p []byte) (int, error) {
	conn, err := t.current()
	if err != nil {
		return 0, err
	}
	n, err := conn.Write(p)
	if err != nil {
		if t.isClosed() {
			return n, ErrClosed
		}
		t.dropConn(conn)
		return n, fmt.Errorf("transport write: %w", err)
	}
	return n, nil
}

// Close shuts the transport down for good
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	return nil
}

// Connected reports whether a connection is currently established
func (t *TCP) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && !t.closed
}

func (t *TCP) current() (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.conn == nil {
		return nil, fmt.Errorf("transport: not connected")
	}
	return t.conn, nil
}

func (t *TCP) setConn(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		conn.Close()
		return
	}
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
}

// dropConn closes and clears the connection, but only if it is still the
// current one. A concurrent reconnect must not be undone.
func (t *TCP) dropConn(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn.Close()
	if t.conn == conn {
		t.conn = nil
	}
}

func (t *TCP) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
