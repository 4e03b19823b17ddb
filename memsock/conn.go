// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memsock

import (
	"net"
	"strconv"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"code.hybscloud.com/sockio"
)

// Addr is a memsock endpoint.
type Addr struct {
	Port uint16
}

func (Addr) Network() string { return "mem" }

func (a Addr) String() string { return "mem:" + strconv.Itoa(int(a.Port)) }

func portOf(a net.Addr) (uint16, bool) {
	switch v := a.(type) {
	case nil:
		return 0, true
	case Addr:
		return v.Port, true
	case *Addr:
		return v.Port, true
	default:
		return 0, false
	}
}

// pipe is one direction of a connection.
type pipe struct {
	q          lfq.SPSC[byte]
	writeDone  bool
	readerGone bool
}

func newPipe(size int) *pipe {
	p := &pipe{}
	p.q.Init(size)
	return p
}

// Conn is a raw in-memory connection. It implements sockio.RawConn.
type Conn struct {
	in      *readStream
	out     *writeStream
	local   Addr
	remote  Addr
	unbound bool
	closed  bool
}

func (n *Network) pair(client, server Addr) (*Conn, *Conn) {
	ab := newPipe(n.cfg.bufferSize)
	ba := newPipe(n.cfg.bufferSize)
	pollable := !n.cfg.blocking
	c := &Conn{
		in:     &readStream{p: ba, reg: registration{n: n}, pollable: pollable},
		out:    &writeStream{p: ab, reg: registration{n: n}, pollable: pollable},
		local:  client,
		remote: server,
	}
	s := &Conn{
		in:     &readStream{p: ab, reg: registration{n: n}, pollable: pollable},
		out:    &writeStream{p: ba, reg: registration{n: n}, pollable: pollable},
		local:  server,
		remote: client,
	}
	return c, s
}

// InputStream returns the readable half.
func (c *Conn) InputStream() sockio.Stream { return c.in }

// OutputStream returns the writable half.
func (c *Conn) OutputStream() sockio.Stream { return c.out }

// LocalAddr returns the local address, or ErrNotBound after Unbind.
func (c *Conn) LocalAddr() (net.Addr, error) {
	if c.unbound {
		return nil, ErrNotBound
	}
	return c.local, nil
}

// RemoteAddr returns the peer address, or ErrNotBound after Unbind.
func (c *Conn) RemoteAddr() (net.Addr, error) {
	if c.unbound {
		return nil, ErrNotBound
	}
	return c.remote, nil
}

// Unbind makes subsequent address queries fail.
func (c *Conn) Unbind() { c.unbound = true }

// Close ends both directions: the peer reads EOF after draining and its
// writes fail with ErrReset.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.in.reg.disarm()
	c.out.reg.disarm()
	c.out.p.writeDone = true
	c.in.p.readerGone = true
	return nil
}

type readStream struct {
	p        *pipe
	reg      registration
	pollable bool
}

func (s *readStream) CanPoll() bool { return s.pollable }

func (s *readStream) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if s.p.readerGone {
		return 0, ErrClosed
	}
	n := 0
	for n < len(b) {
		v, err := s.p.q.Dequeue()
		if err != nil {
			break
		}
		b[n] = v
		n++
	}
	if n > 0 {
		s.reg.disarm()
		return n, nil
	}
	if s.p.writeDone {
		s.reg.disarm()
		return 0, iox.EOF
	}
	s.reg.arm()
	return 0, iox.ErrWouldBlock
}

func (s *readStream) Close() error {
	s.reg.disarm()
	return nil
}

type writeStream struct {
	p        *pipe
	reg      registration
	pollable bool
}

func (s *writeStream) CanPoll() bool { return s.pollable }

func (s *writeStream) Write(b []byte) (int, error) {
	if s.p.writeDone {
		return 0, ErrClosed
	}
	if s.p.readerGone {
		return 0, ErrReset
	}
	n := 0
	for n < len(b) {
		v := b[n]
		if err := s.p.q.Enqueue(&v); err != nil {
			break
		}
		n++
	}
	if n == len(b) {
		s.reg.disarm()
		return n, nil
	}
	s.reg.arm()
	return n, iox.ErrWouldBlock
}

func (s *writeStream) Flush() error {
	if s.p.readerGone {
		return ErrReset
	}
	return nil
}

func (s *writeStream) CloseWrite() error {
	s.p.writeDone = true
	s.reg.disarm()
	return nil
}

func (s *writeStream) Close() error {
	s.reg.disarm()
	return nil
}
