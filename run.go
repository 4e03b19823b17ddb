// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Run runs two Cont-world protocols, a on ca and b on cb, and returns both
// results. Execution is interleaved on the calling goroutine; when neither
// side can make progress it waits with w (nil uses iox.Backoff).
// Does not spawn goroutines or create channels.
//
// Run is how both ends of a connected pair are driven by one cooperative
// loop, for example a client and the server side accepted for it.
func Run[A, B any](w Waiter, ca *Conn, a kont.Eff[A], cb *Conn, b kont.Eff[B]) (kont.Either[error, A], kont.Either[error, B]) {
	return RunExpr(w, ca, Reify(a), cb, Reify(b))
}

// RunExpr is Run for Expr-world protocols.
func RunExpr[A, B any](w Waiter, ca *Conn, a kont.Expr[A], cb *Conn, b kont.Expr[B]) (kont.Either[error, A], kont.Either[error, B]) {
	resultA, suspA := Step[A](a)
	resultB, suspB := Step[B](b)
	wt := waiterOrBackoff(w)
	for suspA != nil || suspB != nil {
		progress := false
		if suspA != nil {
			var err error
			resultA, suspA, err = Advance(ca, suspA)
			if !iox.IsWouldBlock(err) {
				progress = true
			}
		}
		if suspB != nil {
			var err error
			resultB, suspB, err = Advance(cb, suspB)
			if !iox.IsWouldBlock(err) {
				progress = true
			}
		}
		if !progress {
			wt.Wait()
		} else {
			wt.progress()
		}
	}
	return resultA, resultB
}
