// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"context"
	"iter"
	"net"

	"code.hybscloud.com/iox"
)

// Listener accepts incoming connections through a toolkit Acceptor.
//
// A Listener may serve one-shot Accept calls and any number of Incoming
// sequences at the same time. They share one accept queue: each queued
// connection goes to whichever operation is polled first.
type Listener struct {
	a     Acceptor
	addrs []net.Addr
}

// NewListener returns a Listener over a.
func NewListener(a Acceptor) *Listener {
	return &Listener{a: a}
}

// AddPort listens on port on all local addresses.
func (l *Listener) AddPort(port uint16) error {
	if err := l.a.AddPort(port); err != nil {
		return &BindError{Addr: &net.TCPAddr{Port: int(port)}, Err: err}
	}
	return nil
}

// Bind listens on addr with the given socket type and protocol. source is
// handed back with every connection accepted on this address. It returns
// the effective address, which differs from addr when addr asks for an
// ephemeral port.
func (l *Listener) Bind(addr net.Addr, typ SocketType, proto Protocol, source any) (net.Addr, error) {
	bound, err := l.a.Bind(addr, typ, proto, source)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	l.addrs = append(l.addrs, bound)
	return bound, nil
}

// Addrs returns the addresses bound through Bind.
func (l *Listener) Addrs() []net.Addr {
	return append([]net.Addr(nil), l.addrs...)
}

// Accept starts a one-shot accept. The returned future yields one Conn or
// an *AcceptError.
func (l *Listener) Accept() Pending[*Conn] {
	return &accepting{op: l.a.AcceptAsync()}
}

// Incoming returns a new sequence of accepted connections. The sequence
// refers to l without owning it; l must not be closed while the sequence
// is in use.
func (l *Listener) Incoming() *Incoming {
	return &Incoming{l: l}
}

// Conns ranges over accepted connections until the consumer stops or ctx
// is done. The underlying Incoming is closed when the range ends, which
// cancels any accept still in flight.
func (l *Listener) Conns(ctx context.Context, w Waiter) iter.Seq2[*Conn, error] {
	return func(yield func(*Conn, error) bool) {
		in := l.Incoming()
		defer in.Close()
		for c, err := range in.All(ctx, w) {
			if !yield(c, err) {
				return
			}
		}
	}
}

// Close closes the acceptor.
func (l *Listener) Close() error {
	return l.a.Close()
}

type accepting struct {
	op Pending[Accepted]
}

func (f *accepting) Poll() (*Conn, error) {
	if f.op == nil {
		return nil, ErrCompleted
	}
	a, err := f.op.Poll()
	if iox.IsWouldBlock(err) {
		return nil, iox.ErrWouldBlock
	}
	f.op = nil
	return acceptResult(a, err)
}

func (f *accepting) Cancel() {
	if f.op != nil {
		f.op.Cancel()
		f.op = nil
	}
}

// acceptResult turns a completed accept into a Conn or an *AcceptError.
func acceptResult(a Accepted, err error) (*Conn, error) {
	if err != nil {
		return nil, &AcceptError{Err: err}
	}
	c, err := newConn(a.Conn)
	if err != nil {
		return nil, &AcceptError{Err: err}
	}
	c.source = a.Source
	return c, nil
}
