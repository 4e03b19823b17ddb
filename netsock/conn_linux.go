// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package netsock

import (
	"net"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/sockio"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Conn is a connected non-blocking TCP socket. It implements
// sockio.RawConn; its streams share the socket and never close it.
type Conn struct {
	loop   *Loop
	fd     int
	in     *inputStream
	out    *outputStream
	closed bool
}

func newConn(loop *Loop, fd int) *Conn {
	c := &Conn{loop: loop, fd: fd}
	c.in = &inputStream{c: c, reg: registration{loop: loop, fd: fd}}
	c.out = &outputStream{c: c, reg: registration{loop: loop, fd: fd, write: true}}
	return c
}

// FD returns the socket descriptor.
func (c *Conn) FD() int { return c.fd }

// InputStream returns the readable half.
func (c *Conn) InputStream() sockio.Stream { return c.in }

// OutputStream returns the writable half.
func (c *Conn) OutputStream() sockio.Stream { return c.out }

// LocalAddr queries getsockname.
func (c *Conn) LocalAddr() (net.Addr, error) {
	if c.closed {
		return nil, net.ErrClosed
	}
	sa, err := unix.Getsockname(c.fd)
	if err != nil {
		return nil, errors.Wrap(err, "netsock: getsockname")
	}
	if a := tcpAddrOf(sa); a != nil {
		return a, nil
	}
	return nil, errors.Wrap(ErrUnsupported, "netsock: local address family")
}

// RemoteAddr queries getpeername. It fails with ENOTCONN on a socket
// that has no peer.
func (c *Conn) RemoteAddr() (net.Addr, error) {
	if c.closed {
		return nil, net.ErrClosed
	}
	sa, err := unix.Getpeername(c.fd)
	if err != nil {
		return nil, errors.Wrap(err, "netsock: getpeername")
	}
	if a := tcpAddrOf(sa); a != nil {
		return a, nil
	}
	return nil, errors.Wrap(ErrUnsupported, "netsock: remote address family")
}

// Close drops both registrations and closes the socket.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.in.reg.disarm()
	c.out.reg.disarm()
	return errors.Wrap(unix.Close(c.fd), "netsock: close")
}

type inputStream struct {
	c   *Conn
	reg registration
}

func (s *inputStream) CanPoll() bool { return true }

func (s *inputStream) Read(p []byte) (int, error) {
	if s.c.closed {
		return 0, net.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(s.c.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			if err := s.reg.arm(); err != nil {
				return 0, err
			}
			return 0, iox.ErrWouldBlock
		case err != nil:
			s.reg.disarm()
			return 0, errors.Wrap(err, "netsock: read")
		case n == 0:
			s.reg.disarm()
			return 0, iox.EOF
		}
		s.reg.disarm()
		return n, nil
	}
}

func (s *inputStream) Close() error {
	s.reg.disarm()
	return nil
}

type outputStream struct {
	c   *Conn
	reg registration
}

func (s *outputStream) CanPoll() bool { return true }

// Write writes until p is exhausted or the socket buffer is full.
func (s *outputStream) Write(p []byte) (int, error) {
	if s.c.closed {
		return 0, net.ErrClosed
	}
	written := 0
	for written < len(p) {
		n, err := unix.Write(s.c.fd, p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil:
		case err == unix.EINTR:
		case err == unix.EAGAIN:
			if err := s.reg.arm(); err != nil {
				return written, err
			}
			return written, iox.ErrWouldBlock
		default:
			s.reg.disarm()
			return written, errors.Wrap(err, "netsock: write")
		}
	}
	s.reg.disarm()
	return written, nil
}

// Flush is a no-op: written bytes are already in the kernel.
func (s *outputStream) Flush() error {
	if s.c.closed {
		return net.ErrClosed
	}
	return nil
}

// CloseWrite shuts down the sending side of the socket.
func (s *outputStream) CloseWrite() error {
	if s.c.closed {
		return net.ErrClosed
	}
	s.reg.disarm()
	return errors.Wrap(unix.Shutdown(s.c.fd, unix.SHUT_WR), "netsock: shutdown")
}

func (s *outputStream) Close() error {
	s.reg.disarm()
	return nil
}
