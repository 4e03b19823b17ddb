// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"context"
	"io"

	"code.hybscloud.com/iox"
)

// Waiter parks the caller until readiness may have changed.
//
// An event loop implements Wait by waiting for its next readiness event.
// *iox.Backoff is a Waiter for sources that have no event to wait on.
// A Waiter that also has a Reset method is reset after every step that
// made progress.
type Waiter interface {
	Wait()
}

type resetter interface {
	Reset()
}

// waiter wraps a Waiter with the progress hook; a nil Waiter becomes a
// private iox.Backoff.
type waiter struct {
	w Waiter
}

func waiterOrBackoff(w Waiter) waiter {
	if w == nil {
		return waiter{w: new(iox.Backoff)}
	}
	return waiter{w: w}
}

func (w waiter) Wait() { w.w.Wait() }

func (w waiter) progress() {
	if r, ok := w.w.(resetter); ok {
		r.Reset()
	}
}

// Await polls p until it completes. Between polls it waits with w.
// When ctx is done, p is cancelled and ctx.Err() is returned.
func Await[T any](ctx context.Context, w Waiter, p Pending[T]) (T, error) {
	wt := waiterOrBackoff(w)
	for {
		v, err := p.Poll()
		if !iox.IsWouldBlock(err) {
			wt.progress()
			return v, err
		}
		if ctx.Err() != nil {
			p.Cancel()
			var zero T
			return zero, ctx.Err()
		}
		wt.Wait()
	}
}

// WriteAll writes all of p to c, resuming short writes until every byte
// has been accepted. It returns the number of bytes written.
func WriteAll(ctx context.Context, w Waiter, c *Conn, p []byte) (int, error) {
	wt := waiterOrBackoff(w)
	written := 0
	for written < len(p) {
		n, err := c.Write(p[written:])
		written += n
		if n > 0 {
			wt.progress()
		}
		if err == nil {
			continue
		}
		if !iox.IsWouldBlock(err) {
			return written, err
		}
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		wt.Wait()
	}
	return written, nil
}

// ReadFull reads exactly len(p) bytes from c, resuming short reads. If the
// stream ends first it returns io.ErrUnexpectedEOF, or io.EOF when nothing
// was read.
func ReadFull(ctx context.Context, w Waiter, c *Conn, p []byte) (int, error) {
	wt := waiterOrBackoff(w)
	read := 0
	for read < len(p) {
		n, err := c.Read(p[read:])
		read += n
		if n > 0 {
			wt.progress()
		}
		switch {
		case err == nil || read == len(p):
		case err == io.EOF:
			if read == 0 {
				return 0, io.EOF
			}
			return read, io.ErrUnexpectedEOF
		case iox.IsWouldBlock(err):
			if ctx.Err() != nil {
				return read, ctx.Err()
			}
			wt.Wait()
		default:
			return read, err
		}
	}
	return read, nil
}

// FlushWait flushes c, waiting with w while the write half would block.
func FlushWait(ctx context.Context, w Waiter, c *Conn) error {
	return drive(ctx, w, c.Flush)
}

// Shutdown closes the write half of c, waiting with w while it would block.
func Shutdown(ctx context.Context, w Waiter, c *Conn) error {
	return drive(ctx, w, c.CloseWrite)
}

func drive(ctx context.Context, w Waiter, step func() error) error {
	wt := waiterOrBackoff(w)
	for {
		err := step()
		if !iox.IsWouldBlock(err) {
			wt.progress()
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wt.Wait()
	}
}
