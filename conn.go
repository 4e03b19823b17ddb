// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"net"
)

// Conn is a bidirectional non-blocking connection composed of one read
// half and one write half of the same socket.
//
// The raw handle is retained for address queries and is released last, so
// it outlives both halves. Conn adds no buffering: short reads and short
// writes are reported by byte count and callers loop until satisfied.
//
// The two halves are driven independently. A single half is not reentrant:
// at most one read and one write may be in flight at a time.
type Conn struct {
	raw    RawConn
	r      ReadHalf
	w      WriteHalf
	serial Serial
	source any
	closed bool
}

// newConn splits raw into its halves. It is the only place a Conn is built:
// connect, one-shot accept and the incoming sequence all go through it.
// On failure raw is closed and a *StreamConversionError is returned.
func newConn(raw RawConn) (*Conn, error) {
	w, err := asWriteHalf(raw.OutputStream())
	if err != nil {
		raw.Close()
		return nil, err
	}
	r, err := asReadHalf(raw.InputStream())
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &Conn{raw: raw, r: r, w: w, serial: nextSerial()}, nil
}

func asReadHalf(s Stream) (ReadHalf, error) {
	if s == nil {
		return nil, &StreamConversionError{Direction: "input", Reason: "no stream"}
	}
	r, ok := s.(ReadHalf)
	if !ok {
		return nil, &StreamConversionError{Direction: "input", Reason: "not a readable half"}
	}
	if !r.CanPoll() {
		return nil, &StreamConversionError{Direction: "input", Reason: "not pollable"}
	}
	return r, nil
}

func asWriteHalf(s Stream) (WriteHalf, error) {
	if s == nil {
		return nil, &StreamConversionError{Direction: "output", Reason: "no stream"}
	}
	w, ok := s.(WriteHalf)
	if !ok {
		return nil, &StreamConversionError{Direction: "output", Reason: "not a writable half"}
	}
	if !w.CanPoll() {
		return nil, &StreamConversionError{Direction: "output", Reason: "not pollable"}
	}
	return w, nil
}

// Serial returns the identifier assigned to this connection.
func (c *Conn) Serial() Serial {
	return c.serial
}

// Source returns the source object given to Listener.Bind for the address
// this connection was accepted on. It is nil for outgoing connections.
func (c *Conn) Source() any {
	return c.source
}

// Read reads from the read half. It returns iox.ErrWouldBlock when no data
// is available yet and io.EOF once the peer has closed its write side.
func (c *Conn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.r.Read(p)
}

// Write writes to the write half. A short write returns the count accepted
// so far together with iox.ErrWouldBlock.
func (c *Conn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.w.Write(p)
}

// Flush flushes the write half.
func (c *Conn) Flush() error {
	if c.closed {
		return net.ErrClosed
	}
	return c.w.Flush()
}

// CloseWrite shuts down the write half. The read half keeps draining until
// the peer closes its side.
func (c *Conn) CloseWrite() error {
	if c.closed {
		return net.ErrClosed
	}
	return c.w.CloseWrite()
}

// LocalAddr queries the local address of the socket.
func (c *Conn) LocalAddr() (net.Addr, error) {
	a, err := c.raw.LocalAddr()
	if err != nil {
		return nil, &AddressError{Side: "local", Err: err}
	}
	return a, nil
}

// RemoteAddr queries the peer address of the socket.
func (c *Conn) RemoteAddr() (net.Addr, error) {
	a, err := c.raw.RemoteAddr()
	if err != nil {
		return nil, &AddressError{Side: "remote", Err: err}
	}
	return a, nil
}

// Close releases both halves and then the socket. It is idempotent.
// Every handle is closed even when an earlier one fails; the first error
// is returned.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	errR := c.r.Close()
	errW := c.w.Close()
	errRaw := c.raw.Close()
	for _, err := range []error{errR, errW, errRaw} {
		if err != nil {
			return err
		}
	}
	return nil
}
