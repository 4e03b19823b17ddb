// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"code.hybscloud.com/kont"
)

// ReadBind reads once into buf and passes the byte count to f.
// Fuses Perform(Read{Buf: buf}) + Bind.
func ReadBind[B any](buf []byte, f func(int) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Read{Buf: buf}), f)
}

// WriteThen writes p once and continues with next. A short write is not
// resumed; use WriteFullThen for that.
// Fuses Perform(Write{Buf: p}) + Then.
func WriteThen[B any](p []byte, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Write{Buf: p}), next)
}

// WriteFullThen writes all of p, resuming short writes, then continues
// with next.
func WriteFullThen[B any](p []byte, next kont.Eff[B]) kont.Eff[B] {
	if len(p) == 0 {
		return next
	}
	return kont.Bind(kont.Perform(Write{Buf: p}), func(n int) kont.Eff[B] {
		return WriteFullThen(p[n:], next)
	})
}

// ReadFullBind fills buf, resuming short reads, then passes buf to f.
// A stream that ends early short-circuits with io.EOF.
func ReadFullBind[B any](buf []byte, f func([]byte) kont.Eff[B]) kont.Eff[B] {
	return readFullFrom(buf, 0, f)
}

func readFullFrom[B any](buf []byte, off int, f func([]byte) kont.Eff[B]) kont.Eff[B] {
	if off == len(buf) {
		return f(buf)
	}
	return kont.Bind(kont.Perform(Read{Buf: buf[off:]}), func(n int) kont.Eff[B] {
		return readFullFrom(buf, off+n, f)
	})
}

// FlushThen flushes the write half and continues with next.
// Fuses Perform(Flush{}) + Then.
func FlushThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Flush{}), next)
}

// CloseWriteDone shuts down the write half and returns a.
// Fuses Perform(CloseWrite{}) + Then + Pure.
func CloseWriteDone[A any](a A) kont.Eff[A] {
	return kont.Then(kont.Perform(CloseWrite{}), kont.Pure(a))
}
