// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Step evaluates a connection protocol until the first effect suspension.
// Returns (Either[error, R], nil) on completion or Throw, or
// (zero, suspension) if an effect is pending.
func Step[R any](protocol kont.Expr[R]) (kont.Either[error, R], *kont.Suspension[kont.Either[error, R]]) {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[error, R] {
		return kont.Right[error, R](r)
	})
	return kont.StepExpr(wrapped)
}

// Advance dispatches the suspended operation on c.
//
// Connection ops are non-blocking: on iox.ErrWouldBlock the suspension is
// returned unconsumed together with the error and may be retried once the
// connection is ready. Any other I/O failure discards the suspension and
// returns Left. Error ops are eager: Throw discards the suspension and
// returns Left.
func Advance[R any](c *Conn, susp *kont.Suspension[kont.Either[error, R]]) (kont.Either[error, R], *kont.Suspension[kont.Either[error, R]], error) {
	if cop, ok := susp.Op().(connDispatcher); ok {
		v, err := cop.DispatchConn(c)
		if iox.IsWouldBlock(err) {
			var zero kont.Either[error, R]
			return zero, susp, err
		}
		if err != nil {
			susp.Discard()
			return kont.Left[error, R](err), nil, nil
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	if eop, ok := susp.Op().(errorDispatcher); ok {
		var ctx kont.ErrorContext[error]
		v, _ := eop.DispatchError(&ctx)
		if ctx.HasErr {
			susp.Discard()
			return kont.Left[error, R](ctx.Err), nil, nil
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	panic("sockio: unhandled effect in Advance")
}
