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

type boundSocket struct {
	fd     int
	addr   net.Addr
	source any
}

// Listener is a set of listening TCP sockets sharing one accept path.
// It implements sockio.Acceptor.
type Listener struct {
	loop    *Loop
	sockets []boundSocket
	closed  bool
}

// Bind listens on addr, which must be a *net.TCPAddr. Only stream
// sockets with the default or TCP protocol are supported.
func (l *Listener) Bind(addr net.Addr, typ sockio.SocketType, proto sockio.Protocol, source any) (net.Addr, error) {
	if l.closed {
		return nil, net.ErrClosed
	}
	if typ != sockio.SocketStream {
		return nil, errors.Wrapf(ErrUnsupported, "socket type %v", typ)
	}
	if proto != sockio.ProtocolDefault && proto != sockio.ProtocolTCP {
		return nil, errors.Wrapf(ErrUnsupported, "protocol %v", proto)
	}
	sa, family, err := sockaddrOf(addr)
	if err != nil {
		return nil, err
	}
	fd, err := openStream(family)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "netsock: setsockopt")
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "netsock: bind %v", addr)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "netsock: listen")
	}
	bound := addr
	if got, err := unix.Getsockname(fd); err == nil {
		if a := tcpAddrOf(got); a != nil {
			bound = a
		}
	}
	l.sockets = append(l.sockets, boundSocket{fd: fd, addr: bound, source: source})
	return bound, nil
}

// AddPort listens on port on all IPv4 addresses.
func (l *Listener) AddPort(port uint16) error {
	_, err := l.Bind(&net.TCPAddr{IP: net.IPv4zero, Port: int(port)}, sockio.SocketStream, sockio.ProtocolDefault, nil)
	return err
}

// AcceptAsync starts an accept across every bound socket.
func (l *Listener) AcceptAsync() sockio.Pending[sockio.Accepted] {
	return &acceptOp{l: l}
}

// Close closes every listening socket. Accepts still pending on it fail
// with net.ErrClosed on their next Poll.
func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	var first error
	for _, s := range l.sockets {
		l.loop.forget(s.fd)
		if err := unix.Close(s.fd); err != nil && first == nil {
			first = errors.Wrap(err, "netsock: close")
		}
	}
	return first
}

type acceptOp struct {
	l    *Listener
	regs []registration
	done bool
}

func (op *acceptOp) Poll() (sockio.Accepted, error) {
	if op.done {
		return sockio.Accepted{}, sockio.ErrCompleted
	}
	if op.l.closed {
		op.finish()
		return sockio.Accepted{}, net.ErrClosed
	}
	if len(op.l.sockets) == 0 {
		op.finish()
		return sockio.Accepted{}, errors.New("netsock: listener is not bound")
	}
	for _, s := range op.l.sockets {
		nfd, _, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch err {
		case nil:
			op.finish()
			return sockio.Accepted{Conn: newConn(op.l.loop, nfd), Source: s.source}, nil
		case unix.EAGAIN, unix.EINTR, unix.ECONNABORTED:
			continue
		default:
			op.finish()
			return sockio.Accepted{}, errors.Wrap(err, "netsock: accept4")
		}
	}
	if len(op.regs) != len(op.l.sockets) {
		for i := range op.regs {
			op.regs[i].disarm()
		}
		op.regs = make([]registration, len(op.l.sockets))
		for i, s := range op.l.sockets {
			op.regs[i] = registration{loop: op.l.loop, fd: s.fd}
		}
	}
	for i := range op.regs {
		if err := op.regs[i].arm(); err != nil {
			op.finish()
			return sockio.Accepted{}, err
		}
	}
	return sockio.Accepted{}, iox.ErrWouldBlock
}

func (op *acceptOp) finish() {
	op.done = true
	for i := range op.regs {
		op.regs[i].disarm()
	}
}

func (op *acceptOp) Cancel() {
	if !op.done {
		op.finish()
	}
}
