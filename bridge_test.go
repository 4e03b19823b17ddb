// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/sockio"
)

func TestReifyContToExpr(t *testing.T) {
	f := newFixture(t)
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	// Cont protocol → Reify → RunExpr
	cont := sockio.WriteFullThen([]byte("hey"),
		sockio.ReadFullBind(make([]byte, 2), func(b []byte) kont.Eff[string] {
			return kont.Pure(string(b))
		}),
	)
	sbuf := make([]byte, 3)
	responder := sockio.ExprReadBind(sbuf, func(n int) kont.Expr[int] {
		return sockio.ExprWriteThen([]byte("ok"), kont.ExprReturn(n))
	})

	cr, sr := sockio.RunExpr(f.n, client, sockio.Reify(cont), server, responder)
	if v, ok := cr.GetRight(); !ok || v != "ok" {
		t.Fatalf("client got %v, want Right(ok)", cr)
	}
	if v, ok := sr.GetRight(); !ok || v != 3 {
		t.Fatalf("server got %v, want Right(3)", sr)
	}
}

func TestReflectExprToCont(t *testing.T) {
	f := newFixture(t)
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	// Expr protocol → Reflect → Exec
	client.Write([]byte("in"))
	buf := make([]byte, 2)
	expr := sockio.ExprReadBind(buf, func(n int) kont.Expr[string] {
		return kont.ExprReturn(string(buf[:n]))
	})
	result := sockio.Exec(f.n, server, sockio.Reflect(expr))
	if v, ok := result.GetRight(); !ok || v != "in" {
		t.Fatalf("got %v, want Right(in)", result)
	}
}

func TestRoundTripReifyReflect(t *testing.T) {
	f := newFixture(t)
	client, server := f.pair(t)
	defer client.Close()
	defer server.Close()

	// Reflect(Reify(cont)) preserves semantics
	cont := sockio.WriteFullThen([]byte("rt"), sockio.CloseWriteDone(2))
	result := sockio.Exec(f.n, client, sockio.Reflect(sockio.Reify(cont)))
	if v, ok := result.GetRight(); !ok || v != 2 {
		t.Fatalf("got %v, want Right(2)", result)
	}
	if got := drain(t, server); string(got) != "rt" {
		t.Fatalf("server read %q", got)
	}
}
