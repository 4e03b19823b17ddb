// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// connDispatcher is the structural interface for connection operations.
// DispatchConn is non-blocking: it returns iox.ErrWouldBlock at the
// readiness boundary and leaves the operation to be dispatched again.
type connDispatcher interface {
	DispatchConn(c *Conn) (kont.Resumed, error)
}

// Read is the effect operation for reading into Buf.
// Perform(Read{Buf: p}) resumes with the number of bytes read (> 0).
// End of stream is reported as io.EOF.
type Read struct {
	kont.Phantom[int]
	Buf []byte
}

// DispatchConn handles Read on the connection's read half.
func (op Read) DispatchConn(c *Conn) (kont.Resumed, error) {
	n, err := c.Read(op.Buf)
	if n > 0 || (err == nil && len(op.Buf) == 0) {
		return n, nil
	}
	return nil, noProgress(err)
}

// Write is the effect operation for writing Buf.
// Perform(Write{Buf: p}) resumes with the number of bytes accepted, which
// may be fewer than len(Buf).
type Write struct {
	kont.Phantom[int]
	Buf []byte
}

// DispatchConn handles Write on the connection's write half.
func (op Write) DispatchConn(c *Conn) (kont.Resumed, error) {
	n, err := c.Write(op.Buf)
	if n > 0 || (err == nil && len(op.Buf) == 0) {
		return n, nil
	}
	return nil, noProgress(err)
}

// noProgress reports a half that moved no bytes without an error as not
// ready, so a continuation is never resumed with no value.
func noProgress(err error) error {
	if err == nil {
		return iox.ErrWouldBlock
	}
	return err
}

// Flush is the effect operation for flushing the write half.
type Flush struct {
	kont.Phantom[struct{}]
}

// DispatchConn handles Flush on the connection's write half.
func (Flush) DispatchConn(c *Conn) (kont.Resumed, error) {
	if err := c.Flush(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// CloseWrite is the effect operation for shutting down the write half.
type CloseWrite struct {
	kont.Phantom[struct{}]
}

// DispatchConn handles CloseWrite on the connection's write half.
func (CloseWrite) DispatchConn(c *Conn) (kont.Resumed, error) {
	if err := c.CloseWrite(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}
