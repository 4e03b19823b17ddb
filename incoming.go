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

// Incoming is a lazily advanced sequence of accepted connections.
//
// It holds at most one accept in flight. The slot is filled on the first
// Next after it was last cleared and is cleared on every completion, so an
// accept error does not end the sequence: the following Next starts a fresh
// accept. The sequence never ends on its own.
//
// Incoming must be driven from a single goroutine.
type Incoming struct {
	l       *Listener
	pending Pending[Accepted]
	closed  bool
}

// Next advances the sequence by one poll.
//
// It returns a Conn on success, an *AcceptError when the accept failed,
// or iox.ErrWouldBlock while the accept is still in flight. When the slot
// is empty Next starts an accept and polls it within the same call.
func (in *Incoming) Next() (*Conn, error) {
	if in.closed {
		return nil, net.ErrClosed
	}
	if in.pending == nil {
		in.pending = in.l.a.AcceptAsync()
	}
	a, err := in.pending.Poll()
	if iox.IsWouldBlock(err) {
		return nil, iox.ErrWouldBlock
	}
	in.pending = nil
	return acceptResult(a, err)
}

// Awaiting reports whether an accept is in flight.
func (in *Incoming) Awaiting() bool {
	return in.pending != nil
}

// Close cancels the accept in flight, if any, and ends the sequence.
// It is idempotent.
func (in *Incoming) Close() error {
	in.closed = true
	if in.pending != nil {
		in.pending.Cancel()
		in.pending = nil
	}
	return nil
}

// All ranges over the sequence, waiting with w whenever Next would block.
// Accept errors are yielded as items. The range ends when the consumer
// stops or ctx is done; the in-flight accept is kept, so a later Next or
// All resumes it. Use Close to drop it.
func (in *Incoming) All(ctx context.Context, w Waiter) iter.Seq2[*Conn, error] {
	return func(yield func(*Conn, error) bool) {
		wt := waiterOrBackoff(w)
		for {
			c, err := in.Next()
			if iox.IsWouldBlock(err) {
				if ctx.Err() != nil {
					return
				}
				wt.Wait()
				continue
			}
			wt.progress()
			if !yield(c, err) {
				return
			}
			if in.closed {
				return
			}
		}
	}
}
