package transport

import (
	"io"
	"net"
)

// Transport is a byte link to the radio gateway module. The framing layer
// reads a raw byte stream from it; lost bytes during reconnects surface as
// desyncs there and are recovered by the frame decoder.
type Transport interface {
	io.ReadWriteCloser
}

// Pipe is an in-memory transport for tests. The returned net.Conn is the
// far end, playing the role of the radio module.
type Pipe struct {
	net.Conn
}

// NewPipe creates a connected in-memory transport pair
func NewPipe() (*Pipe, net.Conn) {
	near, far := net.Pipe()
	return &Pipe{Conn: near}, far
}
