// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"context"
	"net"

	"code.hybscloud.com/iox"
)

// Client opens outgoing connections through a toolkit Connector.
type Client struct {
	c Connector
}

// NewClient returns a Client that connects through c.
func NewClient(c Connector) *Client {
	return &Client{c: c}
}

// Connect starts a connection to target. The returned future has a single
// suspension point, the toolkit connect; on completion it yields a Conn.
// Failures are reported as *ConnectError and are never retried.
func (cl *Client) Connect(target net.Addr) Pending[*Conn] {
	return &connecting{target: target, op: cl.c.ConnectAsync(target)}
}

// Dial connects to target and waits for the result with w.
func (cl *Client) Dial(ctx context.Context, w Waiter, target net.Addr) (*Conn, error) {
	return Await(ctx, w, cl.Connect(target))
}

type connecting struct {
	target net.Addr
	op     Pending[RawConn]
}

func (f *connecting) Poll() (*Conn, error) {
	if f.op == nil {
		return nil, ErrCompleted
	}
	raw, err := f.op.Poll()
	if iox.IsWouldBlock(err) {
		return nil, iox.ErrWouldBlock
	}
	f.op = nil
	if err != nil {
		return nil, &ConnectError{Target: f.target, Err: err}
	}
	c, err := newConn(raw)
	if err != nil {
		return nil, &ConnectError{Target: f.target, Err: err}
	}
	return c, nil
}

func (f *connecting) Cancel() {
	if f.op != nil {
		f.op.Cancel()
		f.op = nil
	}
}
