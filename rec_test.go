// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/sockio"
	"code.hybscloud.com/sockio/memsock"
)

func TestLoopCountsUntilTotal(t *testing.T) {
	f := newFixture(t, memsock.WithBufferSize(8))
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	const want = 40
	payload := bytes.Repeat([]byte("z"), want)
	buf := make([]byte, 3)

	// Count bytes read until want have arrived.
	counter := sockio.Loop(0, func(total int) kont.Eff[kont.Either[int, int]] {
		if total >= want {
			return kont.Pure(kont.Right[int, int](total))
		}
		return sockio.ReadBind(buf, func(n int) kont.Eff[kont.Either[int, int]] {
			return kont.Pure(kont.Left[int, int](total + n))
		})
	})
	writer := sockio.WriteFullThen(payload, kont.Pure(struct{}{}))

	_, sr := sockio.Run(f.n, client, writer, server, counter)
	if v, ok := sr.GetRight(); !ok || v != want {
		t.Fatalf("server got %v, want Right(%d)", sr, want)
	}
}

func TestLoopEcho(t *testing.T) {
	f := newFixture(t)
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	// The server echoes one byte per round; the client sends a message per
	// round and collects the echo.
	msgs := []string{"a", "b", "c", "d"}
	echo := sockio.Loop(0, func(i int) kont.Eff[kont.Either[int, int]] {
		if i == len(msgs) {
			return sockio.CloseWriteDone(kont.Right[int, int](i))
		}
		return sockio.ReadFullBind(make([]byte, 1), func(b []byte) kont.Eff[kont.Either[int, int]] {
			return sockio.WriteFullThen(b, kont.Pure(kont.Left[int, int](i+1)))
		})
	})
	type state struct {
		i   int
		got string
	}
	talker := sockio.Loop(state{}, func(s state) kont.Eff[kont.Either[state, string]] {
		if s.i == len(msgs) {
			return kont.Pure(kont.Right[state, string](s.got))
		}
		return sockio.WriteFullThen([]byte(msgs[s.i]),
			sockio.ReadFullBind(make([]byte, 1), func(b []byte) kont.Eff[kont.Either[state, string]] {
				return kont.Pure(kont.Left[state, string](state{i: s.i + 1, got: s.got + string(b)}))
			}),
		)
	})

	cr, sr := sockio.Run(f.n, client, talker, server, echo)
	if v, ok := cr.GetRight(); !ok || v != "abcd" {
		t.Fatalf("client got %v, want Right(abcd)", cr)
	}
	if v, ok := sr.GetRight(); !ok || v != len(msgs) {
		t.Fatalf("server got %v, want Right(%d)", sr, len(msgs))
	}
	f.balanced(t)
}

func TestExprLoopDrain(t *testing.T) {
	f := newFixture(t)
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	client.Write([]byte("hello world"))
	client.CloseWrite()

	// Read in small chunks until the whole message has arrived.
	const want = len("hello world")
	buf := make([]byte, 4)
	reader := sockio.ExprLoop(0, func(total int) kont.Expr[kont.Either[int, int]] {
		if total == want {
			return kont.ExprReturn(kont.Right[int, int](total))
		}
		return sockio.ExprReadBind(buf, func(n int) kont.Expr[kont.Either[int, int]] {
			return kont.ExprReturn(kont.Left[int, int](total + n))
		})
	})
	result := sockio.ExecExpr(f.n, server, reader)
	if v, ok := result.GetRight(); !ok || v != want {
		t.Fatalf("got %v, want Right(%d)", result, want)
	}
}

func TestExprLoopPureSteps(t *testing.T) {
	// Steps that never suspend collapse into a single return.
	counter := sockio.ExprLoop(0, func(i int) kont.Expr[kont.Either[int, int]] {
		if i == 10 {
			return kont.ExprReturn(kont.Right[int, int](i))
		}
		return kont.ExprReturn(kont.Left[int, int](i + 1))
	})
	result, susp := sockio.Step[int](counter)
	if susp != nil {
		t.Fatal("pure loop suspended")
	}
	if v, ok := result.GetRight(); !ok || v != 10 {
		t.Fatalf("got %v, want Right(10)", result)
	}
}
