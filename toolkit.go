// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"io"
	"net"
)

// Stream is one direction of a raw connection as handed out by the toolkit.
// Only streams that report CanPoll and implement the matching half interface
// can be composed into a Conn.
type Stream interface {
	CanPoll() bool
}

// ReadHalf is the readable direction of a raw connection.
//
// Read is non-blocking: it returns iox.ErrWouldBlock after registering for
// a readable event, and io.EOF once the peer has finished writing.
// Close releases the readiness registration only; the socket stays open.
type ReadHalf interface {
	Stream
	io.Reader
	io.Closer
}

// WriteHalf is the writable direction of a raw connection.
//
// Write, Flush and CloseWrite are non-blocking and may return
// iox.ErrWouldBlock. A partial Write reports its byte count together with
// iox.ErrWouldBlock. Close releases the readiness registration only.
type WriteHalf interface {
	Stream
	io.Writer
	Flush() error
	CloseWrite() error
	io.Closer
}

// RawConn is a connected socket before it is split into halves.
// Both streams and the address queries are views over the same socket;
// Close releases the socket itself.
type RawConn interface {
	InputStream() Stream
	OutputStream() Stream
	LocalAddr() (net.Addr, error)
	RemoteAddr() (net.Addr, error)
	Close() error
}

// Pending is an in-flight toolkit operation.
//
// Poll never blocks. While the operation is in flight it returns
// iox.ErrWouldBlock with a readiness registration held by the toolkit.
// Poll reports a result exactly once. Cancel releases any registration;
// it is idempotent and safe after completion.
type Pending[T any] interface {
	Poll() (T, error)
	Cancel()
}

// Accepted is the result of one accept: the connection and the source
// object that was supplied when the accepting address was bound.
type Accepted struct {
	Conn   RawConn
	Source any
}

// Connector starts outgoing connections.
type Connector interface {
	ConnectAsync(target net.Addr) Pending[RawConn]
}

// Acceptor is a bindable accept queue.
type Acceptor interface {
	Bind(addr net.Addr, typ SocketType, proto Protocol, source any) (net.Addr, error)
	AddPort(port uint16) error
	AcceptAsync() Pending[Accepted]
	Close() error
}

// SocketType selects the socket semantics for Bind.
type SocketType uint8

const (
	SocketStream SocketType = iota
	SocketDatagram
	SocketSeqPacket
)

func (t SocketType) String() string {
	switch t {
	case SocketStream:
		return "stream"
	case SocketDatagram:
		return "datagram"
	case SocketSeqPacket:
		return "seqpacket"
	default:
		return "SocketType(unknown)"
	}
}

// Protocol selects the transport protocol for Bind.
// ProtocolDefault lets the toolkit pick the protocol implied by the socket type.
type Protocol uint8

const (
	ProtocolDefault Protocol = iota
	ProtocolTCP
	ProtocolUDP
	ProtocolSCTP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolDefault:
		return "default"
	case ProtocolTCP:
		return "tcp"
	case ProtocolUDP:
		return "udp"
	case ProtocolSCTP:
		return "sctp"
	default:
		return "Protocol(unknown)"
	}
}
