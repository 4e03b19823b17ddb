// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio_test

import (
	"context"
	"net"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/sockio"
	"code.hybscloud.com/sockio/memsock"
)

// fixture is one in-memory network with a bound listener.
type fixture struct {
	n    *memsock.Network
	raw  *memsock.Listener
	ln   *sockio.Listener
	addr net.Addr
	cl   *sockio.Client
	dial *capture
}

func newFixture(tb testing.TB, opts ...memsock.Option) *fixture {
	tb.Helper()
	n := memsock.New(opts...)
	raw := n.Listener()
	ln := sockio.NewListener(raw)
	addr, err := ln.Bind(nil, sockio.SocketStream, sockio.ProtocolDefault, nil)
	if err != nil {
		tb.Fatalf("Bind: %v", err)
	}
	d := &capture{Connector: n.Dialer()}
	return &fixture{n: n, raw: raw, ln: ln, addr: addr, cl: sockio.NewClient(d), dial: d}
}

// connect dials the listener and fails the test on error.
func (f *fixture) connect(tb testing.TB) *sockio.Conn {
	tb.Helper()
	c, err := f.cl.Dial(context.Background(), f.n, f.addr)
	if err != nil {
		tb.Fatalf("Dial: %v", err)
	}
	return c
}

// accept takes one queued connection and fails the test on error.
func (f *fixture) accept(tb testing.TB) *sockio.Conn {
	tb.Helper()
	c, err := sockio.Await(context.Background(), f.n, f.ln.Accept())
	if err != nil {
		tb.Fatalf("Accept: %v", err)
	}
	return c
}

// pair returns a connected client and its accepted server side.
func (f *fixture) pair(tb testing.TB) (client, server *sockio.Conn) {
	tb.Helper()
	client = f.connect(tb)
	server = f.accept(tb)
	return client, server
}

// lastRaw returns the raw connection behind the most recent Connect.
func (f *fixture) lastRaw(tb testing.TB) *memsock.Conn {
	tb.Helper()
	if len(f.dial.raws) == 0 {
		tb.Fatal("no connection was made")
	}
	return f.dial.raws[len(f.dial.raws)-1].(*memsock.Conn)
}

// balanced fails the test when readiness registrations are still held.
func (f *fixture) balanced(tb testing.TB) {
	tb.Helper()
	if out := f.n.Outstanding(); out != 0 {
		tb.Fatalf("outstanding registrations: %d (registered %d, released %d)",
			out, f.n.Registered(), f.n.Released())
	}
}

// capture records every raw connection its Connector hands out.
type capture struct {
	sockio.Connector
	raws []sockio.RawConn
}

func (c *capture) ConnectAsync(target net.Addr) sockio.Pending[sockio.RawConn] {
	return &capturing{p: c.Connector.ConnectAsync(target), c: c}
}

type capturing struct {
	p sockio.Pending[sockio.RawConn]
	c *capture
}

func (f *capturing) Poll() (sockio.RawConn, error) {
	raw, err := f.p.Poll()
	if err == nil {
		f.c.raws = append(f.c.raws, raw)
	}
	return raw, err
}

func (f *capturing) Cancel() { f.p.Cancel() }

// waiterFunc adapts a function to sockio.Waiter. Tests use it to drive the
// peer while the side under test is parked.
type waiterFunc func()

func (f waiterFunc) Wait() { f() }

// drain reads from c until it would block or ends.
func drain(tb testing.TB, c *sockio.Conn) []byte {
	tb.Helper()
	var out []byte
	buf := make([]byte, 16)
	for {
		n, err := c.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if iox.IsWouldBlock(err) || err == iox.EOF {
				return out
			}
			tb.Fatalf("Read: %v", err)
		}
	}
}

// execExpr drives a protocol to completion on c via the Step+Advance loop,
// retrying on iox.ErrWouldBlock. The peer must already have produced
// whatever the protocol reads.
func execExpr[R any](c *sockio.Conn, protocol kont.Expr[R]) kont.Either[error, R] {
	result, susp := sockio.Step[R](protocol)
	for susp != nil {
		var err error
		result, susp, err = sockio.Advance(c, susp)
		if err != nil {
			continue
		}
	}
	return result
}

// readResult is one canned return of a scripted read half.
type readResult struct {
	data string
	err  error
}

// scripted is a RawConn whose read half replays canned results and whose
// handles fail to close on demand. Writes are accepted whole.
type scripted struct {
	reads  []readResult
	inErr  error
	outErr error
	rawErr error
	closed []string
}

// open wraps s into a Conn through a Connector that completes at once.
func (s *scripted) open(tb testing.TB) *sockio.Conn {
	tb.Helper()
	c, err := sockio.NewClient(readyDialer{s}).Dial(context.Background(), nil, &net.TCPAddr{})
	if err != nil {
		tb.Fatalf("Dial: %v", err)
	}
	return c
}

func (s *scripted) InputStream() sockio.Stream  { return scriptedIn{s} }
func (s *scripted) OutputStream() sockio.Stream { return scriptedOut{s} }

func (s *scripted) LocalAddr() (net.Addr, error)  { return &net.TCPAddr{}, nil }
func (s *scripted) RemoteAddr() (net.Addr, error) { return &net.TCPAddr{}, nil }

func (s *scripted) Close() error {
	s.closed = append(s.closed, "raw")
	return s.rawErr
}

type scriptedIn struct{ s *scripted }

func (h scriptedIn) CanPoll() bool { return true }

func (h scriptedIn) Read(p []byte) (int, error) {
	if len(h.s.reads) == 0 {
		return 0, iox.ErrWouldBlock
	}
	r := h.s.reads[0]
	h.s.reads = h.s.reads[1:]
	return copy(p, r.data), r.err
}

func (h scriptedIn) Close() error {
	h.s.closed = append(h.s.closed, "input")
	return h.s.inErr
}

type scriptedOut struct{ s *scripted }

func (h scriptedOut) CanPoll() bool               { return true }
func (h scriptedOut) Write(p []byte) (int, error) { return len(p), nil }
func (h scriptedOut) Flush() error                { return nil }
func (h scriptedOut) CloseWrite() error           { return nil }

func (h scriptedOut) Close() error {
	h.s.closed = append(h.s.closed, "output")
	return h.s.outErr
}

// readyDialer hands out one prepared RawConn per connect.
type readyDialer struct{ raw sockio.RawConn }

func (d readyDialer) ConnectAsync(net.Addr) sockio.Pending[sockio.RawConn] {
	return &ready{raw: d.raw}
}

type ready struct {
	raw  sockio.RawConn
	done bool
}

func (r *ready) Poll() (sockio.RawConn, error) {
	if r.done {
		return nil, sockio.ErrCompleted
	}
	r.done = true
	return r.raw, nil
}

func (r *ready) Cancel() { r.done = true }
