// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/kont"
)

// Loop repeats a connection protocol step over a state. Reading until a
// byte total has arrived is a Loop over the count so far, as is echoing
// rounds back until the peer closes: step returns Left(nextState) to go
// around again or Right(result) to stop.
//
//	sockio.Loop(0, func(got int) kont.Eff[kont.Either[int, int]] {
//		return sockio.ReadBind(buf, func(n int) kont.Eff[kont.Either[int, int]] {
//			if got+n >= total {
//				return kont.Pure(kont.Right[int, int](got + n))
//			}
//			return kont.Pure(kont.Left[int, int](got + n))
//		})
//	})
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return Loop(left, step)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}

// ExprLoop is Loop for Expr-world protocols, as driven by Step and
// Advance. A step that finishes without touching the connection is
// unrolled on the spot instead of being chained as a frame.
func ExprLoop[S, A any](initial S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	m := step(initial)
	if _, ok := m.Frame.(kont.ReturnFrame); ok {
		if left, ok := m.Value.GetLeft(); ok {
			return ExprLoop(left, step)
		}
		right, _ := m.Value.GetRight()
		return kont.ExprReturn(right)
	}
	bf := kont.AcquireBindFrame()
	bf.F = func(a kont.Erased) kont.Expr[kont.Erased] {
		e := a.(kont.Either[S, A])
		if left, ok := e.GetLeft(); ok {
			next := ExprLoop(left, step)
			return kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
		}
		right, _ := e.GetRight()
		return kont.Expr[kont.Erased]{Value: kont.Erased(right), Frame: exprReturnFrame}
	}
	bf.Next = exprReturnFrame
	var zero A
	return kont.Expr[A]{Value: zero, Frame: kont.ChainFrames(m.Frame, bf)}
}
