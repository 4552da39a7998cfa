package testhelpers

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dbehnke/enocean-nexus/pkg/esp3"
)

// MockModule plays the role of the radio gateway module on the far end of
// a pipe transport. It speaks raw ESP3 frames.
type MockModule struct {
	conn net.Conn
	dec  *esp3.Decoder

	mu   sync.Mutex
	sent [][]byte
}

// NewMockModule wraps the far end of a transport pipe
func NewMockModule(conn net.Conn) *MockModule {
	return &MockModule{
		conn: conn,
		dec:  esp3.NewDecoder(),
	}
}

// SendTelegram encodes and sends one telegram to the gateway
func (m *MockModule) SendTelegram(t *esp3.Telegram) error {
	frame, err := esp3.Encode(t)
	if err != nil {
		return err
	}
	return m.SendRaw(frame)
}

// SendRaw sends raw bytes, corrupted frames included
func (m *MockModule) SendRaw(frame []byte) error {
	m.mu.Lock()
	m.sent = append(m.sent, append([]byte(nil), frame...))
	m.mu.Unlock()

	_, err := m.conn.Write(frame)
	return err
}

// NextTelegram reads until a complete telegram arrives from the gateway
func (m *MockModule) NextTelegram(timeout time.Duration) (*esp3.Telegram, error) {
	if err := m.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, 256)
	for {
		if t, err := m.dec.Next(); err == nil {
			return t, nil
		}
		n, err := m.conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("mock module read: %w", err)
		}
		m.dec.Push(buf[:n])
	}
}

// SentFrameCount returns the number of frames sent so far
func (m *MockModule) SentFrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// Close closes the module side of the pipe
func (m *MockModule) Close() error {
	return m.conn.Close()
}
