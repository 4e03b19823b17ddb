// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memsock

import (
	"net"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"code.hybscloud.com/sockio"
	"github.com/pkg/errors"
)

type backlogEntry struct {
	conn   *Conn
	source any
}

// Listener is an in-memory accept queue. It implements sockio.Acceptor.
// All ports bound on one Listener feed the same backlog.
type Listener struct {
	n        *Network
	ports    []uint16
	sources  map[uint16]any
	backlog  lfq.SPSC[backlogEntry]
	failures []error
	closed   bool
}

// Bind binds addr (an Addr, or nil for an ephemeral port). Only stream
// sockets with the default or TCP protocol are supported.
func (l *Listener) Bind(addr net.Addr, typ sockio.SocketType, proto sockio.Protocol, source any) (net.Addr, error) {
	if l.closed {
		return nil, ErrClosed
	}
	if typ != sockio.SocketStream {
		return nil, errors.Wrapf(ErrUnsupported, "socket type %v", typ)
	}
	if proto != sockio.ProtocolDefault && proto != sockio.ProtocolTCP {
		return nil, errors.Wrapf(ErrUnsupported, "protocol %v", proto)
	}
	port, ok := portOf(addr)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "address family %s", addr.Network())
	}
	if port == 0 {
		port = l.n.ephemeral()
	}
	if _, used := l.n.ports[port]; used {
		return nil, errors.Wrapf(ErrAddrInUse, "port %d", port)
	}
	l.n.ports[port] = l
	l.ports = append(l.ports, port)
	l.sources[port] = source
	return Addr{Port: port}, nil
}

// AddPort binds port with a stream socket and no source object.
func (l *Listener) AddPort(port uint16) error {
	_, err := l.Bind(Addr{Port: port}, sockio.SocketStream, sockio.ProtocolDefault, nil)
	return err
}

// AcceptAsync starts an accept on the shared backlog.
func (l *Listener) AcceptAsync() sockio.Pending[sockio.Accepted] {
	return &acceptOp{l: l, reg: registration{n: l.n}}
}

// FailAccept queues err to be returned by the next accept that is polled,
// ahead of any queued connection.
func (l *Listener) FailAccept(err error) {
	l.failures = append(l.failures, err)
}

// Close unbinds every port and closes connections still in the backlog.
// Accepts polled afterwards fail with ErrClosed.
func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	for _, p := range l.ports {
		delete(l.n.ports, p)
	}
	for {
		e, err := l.backlog.Dequeue()
		if err != nil {
			break
		}
		e.conn.Close()
	}
	return nil
}

type acceptOp struct {
	l        *Listener
	reg      registration
	done     bool
	canceled bool
}

func (op *acceptOp) Poll() (sockio.Accepted, error) {
	switch {
	case op.canceled:
		return sockio.Accepted{}, ErrCanceled
	case op.done:
		return sockio.Accepted{}, sockio.ErrCompleted
	case op.l.closed:
		op.finish()
		return sockio.Accepted{}, ErrClosed
	}
	if len(op.l.failures) > 0 {
		err := op.l.failures[0]
		op.l.failures = op.l.failures[1:]
		op.finish()
		return sockio.Accepted{}, err
	}
	e, err := op.l.backlog.Dequeue()
	if err != nil {
		op.reg.arm()
		return sockio.Accepted{}, iox.ErrWouldBlock
	}
	op.finish()
	return sockio.Accepted{Conn: e.conn, Source: e.source}, nil
}

func (op *acceptOp) finish() {
	op.done = true
	op.reg.disarm()
}

func (op *acceptOp) Cancel() {
	op.reg.disarm()
	if !op.done {
		op.canceled = true
	}
}

// Dialer connects to listeners on its Network. It implements
// sockio.Connector.
type Dialer struct {
	n *Network
}

// ConnectAsync starts a connection to target, which must be an Addr.
// The connection completes once it is queued in the listener's backlog.
func (d *Dialer) ConnectAsync(target net.Addr) sockio.Pending[sockio.RawConn] {
	return &connectOp{n: d.n, target: target, reg: registration{n: d.n}}
}

type connectOp struct {
	n        *Network
	target   net.Addr
	reg      registration
	done     bool
	canceled bool
}

func (op *connectOp) Poll() (sockio.RawConn, error) {
	if op.canceled {
		return nil, ErrCanceled
	}
	if op.done {
		return nil, sockio.ErrCompleted
	}
	port, ok := portOf(op.target)
	if !ok || op.target == nil {
		op.finish()
		return nil, errors.Wrapf(ErrUnsupported, "target %v", op.target)
	}
	l := op.n.ports[port]
	if l == nil || l.closed {
		op.finish()
		return nil, errors.Wrapf(ErrRefused, "port %d", port)
	}
	client, server := op.n.pair(Addr{Port: op.n.ephemeral()}, Addr{Port: port})
	e := backlogEntry{conn: server, source: l.sources[port]}
	if err := l.backlog.Enqueue(&e); err != nil {
		op.reg.arm()
		return nil, iox.ErrWouldBlock
	}
	op.finish()
	return client, nil
}

func (op *connectOp) finish() {
	op.done = true
	op.reg.disarm()
}

func (op *connectOp) Cancel() {
	op.reg.disarm()
	if !op.done {
		op.canceled = true
	}
}
