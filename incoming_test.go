// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/sockio"
)

func TestIncomingYieldsEveryConnection(t *testing.T) {
	f := newFixture(t)
	const n = 5
	var clients []*sockio.Conn
	for range n {
		clients = append(clients, f.connect(t))
	}
	defer closeAll(clients)

	in := f.ln.Incoming()
	seen := make(map[uint32]bool)
	var servers []*sockio.Conn
	for range n {
		c, err := in.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if seen[c.Serial()] {
			t.Fatalf("serial %d yielded twice", c.Serial())
		}
		seen[c.Serial()] = true
		servers = append(servers, c)
	}
	if _, err := in.Next(); !iox.IsWouldBlock(err) {
		t.Fatalf("Next: got %v, want ErrWouldBlock", err)
	}
	if !in.Awaiting() {
		t.Fatal("expected an accept in flight")
	}

	in.Close()
	if in.Awaiting() {
		t.Fatal("accept still in flight after Close")
	}
	closeAll(servers)
	f.balanced(t)
}

func TestIncomingErrorDoesNotEndSequence(t *testing.T) {
	f := newFixture(t)
	errA := errors.New("accept failure A")
	f.raw.FailAccept(errA)
	client := f.connect(t)
	defer client.Close()

	in := f.ln.Incoming()
	defer in.Close()

	_, err := in.Next()
	var ae *sockio.AcceptError
	if !errors.As(err, &ae) || !errors.Is(err, errA) {
		t.Fatalf("first Next: got %v, want *AcceptError wrapping errA", err)
	}
	if in.Awaiting() {
		t.Fatal("slot not cleared after an error")
	}

	c, err := in.Next()
	if err != nil {
		t.Fatalf("second Next: %v", err)
	}
	c.Close()
}

func TestIncomingDropWhileAwaiting(t *testing.T) {
	f := newFixture(t)
	in := f.ln.Incoming()

	for range 3 {
		if _, err := in.Next(); !iox.IsWouldBlock(err) {
			t.Fatalf("Next: got %v, want ErrWouldBlock", err)
		}
	}
	if got := f.n.Outstanding(); got != 1 {
		t.Fatalf("outstanding: got %d, want 1", got)
	}

	in.Close()
	in.Close()
	f.balanced(t)
	if f.n.Registered() != f.n.Released() {
		t.Fatalf("registered %d, released %d", f.n.Registered(), f.n.Released())
	}
}

func TestIncomingStartsAndPollsInOneCall(t *testing.T) {
	f := newFixture(t)
	client := f.connect(t)
	defer client.Close()

	in := f.ln.Incoming()
	defer in.Close()
	if in.Awaiting() {
		t.Fatal("fresh sequence is awaiting")
	}
	c, err := in.Next()
	if err != nil {
		t.Fatalf("Next: got %v, want a connection on the first call", err)
	}
	c.Close()
	if f.n.Registered() != 0 {
		t.Fatalf("registered %d, want 0", f.n.Registered())
	}
}

func TestIncomingNextAfterClose(t *testing.T) {
	f := newFixture(t)
	client := f.connect(t)
	defer client.Close()

	in := f.ln.Incoming()
	in.Close()
	if _, err := in.Next(); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Next: got %v, want net.ErrClosed", err)
	}
	if in.Awaiting() {
		t.Fatal("closed sequence started an accept")
	}

	// The queued connection is still available to others.
	c := f.accept(t)
	c.Close()
}

func TestIncomingAllContextDone(t *testing.T) {
	f := newFixture(t)
	in := f.ln.Incoming()
	defer in.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	for c, err := range in.All(ctx, f.n) {
		t.Fatalf("unexpected item: %v, %v", c, err)
	}
	if !in.Awaiting() {
		t.Fatal("in-flight accept dropped when the range ended")
	}

	// A later range resumes the same accept.
	client := f.connect(t)
	defer client.Close()
	for c, err := range in.All(t.Context(), f.n) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		c.Close()
		break
	}
	in.Close()
	f.balanced(t)
}

func TestIncomingAllYieldsErrors(t *testing.T) {
	f := newFixture(t)
	errA := errors.New("accept failure A")
	f.raw.FailAccept(errA)
	client := f.connect(t)
	defer client.Close()

	in := f.ln.Incoming()
	defer in.Close()
	var errs, conns int
	for c, err := range in.All(t.Context(), nil) {
		if err != nil {
			if !errors.Is(err, errA) {
				t.Fatalf("All: got %v, want errA", err)
			}
			errs++
			continue
		}
		conns++
		c.Close()
		break
	}
	if errs != 1 || conns != 1 {
		t.Fatalf("got %d errors and %d connections, want 1 and 1", errs, conns)
	}
}

func TestIncomingAllStopsOnClose(t *testing.T) {
	f := newFixture(t)
	for range 2 {
		c := f.connect(t)
		defer c.Close()
	}

	in := f.ln.Incoming()
	count := 0
	for c, err := range in.All(t.Context(), f.n) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		count++
		c.Close()
		in.Close()
	}
	if count != 1 {
		t.Fatalf("got %d connections after Close, want 1", count)
	}
	f.balanced(t)
}
