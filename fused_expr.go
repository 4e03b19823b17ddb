// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/kont"
)

// Pre-boxed frame and operations for the Expr-world constructors.
var (
	exprReturnFrame kont.Frame  = kont.ReturnFrame{}
	exprFlush       kont.Erased = Flush{}
	exprCloseWrite  kont.Erased = CloseWrite{}
)

func identityResume(v kont.Erased) kont.Erased { return v }

// thenExpr performs op and continues with next, discarding op's result.
func thenExpr[B any](op kont.Erased, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

// ExprWriteThen writes p once and continues with next.
// Fuses ExprPerform(Write{Buf: p}) + ExprThen.
func ExprWriteThen[B any](p []byte, next kont.Expr[B]) kont.Expr[B] {
	return thenExpr(Write{Buf: p}, next)
}

func readBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(int) kont.Expr[B])
	result := f(current.(int))
	return kont.Erased(result.Value), result.Frame
}

// ExprReadBind reads once into buf and passes the byte count to f.
// Fuses ExprPerform(Read{Buf: buf}) + ExprBind.
func ExprReadBind[B any](buf []byte, f func(int) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = readBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Read{Buf: buf}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

// ExprFlushThen flushes the write half and continues with next.
// Fuses ExprPerform(Flush{}) + ExprThen.
func ExprFlushThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return thenExpr(exprFlush, next)
}

// ExprCloseWriteDone shuts down the write half and returns a.
// Fuses ExprPerform(CloseWrite{}) + ExprThen + ExprReturn.
func ExprCloseWriteDone[A any](a A) kont.Expr[A] {
	return thenExpr(exprCloseWrite, kont.Expr[A]{Value: a, Frame: exprReturnFrame})
}
