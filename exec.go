// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// errorDispatcher is the structural interface of kont error operations
// (ThrowError, CatchError) specialised to error values.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}

// connHandler handles connection and error effects on one Conn.
// Connection ops wait past iox.ErrWouldBlock with the waiter; any other
// I/O failure and any Throw short-circuit to Left.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type connHandler[A any] struct {
	c      *Conn
	w      waiter
	errCtx *kont.ErrorContext[error]
}

// Dispatch implements kont.Handler for the composed Conn+Error handler.
// Dispatch order: Conn → Error.
func (h connHandler[A]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if cop, ok := op.(connDispatcher); ok {
		v, err := dispatchWait(h.c, h.w, cop)
		if err != nil {
			return kont.Left[error, A](err), false
		}
		return v, true
	}
	if eop, ok := op.(errorDispatcher); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[error, A](h.errCtx.Err), false
		}
		return v, true
	}
	panic("sockio: unhandled effect in connHandler")
}

// dispatchWait dispatches cop until it stops returning iox.ErrWouldBlock.
func dispatchWait(c *Conn, w waiter, cop connDispatcher) (kont.Resumed, error) {
	for {
		v, err := cop.DispatchConn(c)
		if err == nil {
			w.progress()
			return v, nil
		}
		if !iox.IsWouldBlock(err) {
			return nil, err
		}
		w.Wait()
	}
}

// Exec runs a Cont-world connection protocol on c.
// Returns Either[error, R]: Right on success, Left on an I/O failure or
// a Throw. Waits past iox.ErrWouldBlock with w (nil uses iox.Backoff),
// without spawning goroutines or creating channels.
func Exec[R any](w Waiter, c *Conn, protocol kont.Eff[R]) kont.Either[error, R] {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	var errCtx kont.ErrorContext[error]
	h := connHandler[R]{c: c, w: waiterOrBackoff(w), errCtx: &errCtx}
	return kont.Handle(wrapped, h)
}

// ExecExpr runs an Expr-world connection protocol on c.
// Same result and waiting behavior as Exec.
func ExecExpr[R any](w Waiter, c *Conn, protocol kont.Expr[R]) kont.Either[error, R] {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	var errCtx kont.ErrorContext[error]
	h := connHandler[R]{c: c, w: waiterOrBackoff(w), errCtx: &errCtx}
	return kont.HandleExpr(wrapped, h)
}
