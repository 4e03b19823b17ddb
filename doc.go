// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sockio adapts a readiness-notification socket toolkit into
// non-blocking connections, one-shot connect/accept futures, and a lazily
// produced sequence of accepted connections.
//
// Every operation is polled. A poll that cannot make progress returns
// [code.hybscloud.com/iox.ErrWouldBlock] after the toolkit has registered
// interest in the relevant readiness event; the caller retries after a
// [Waiter] reports that readiness may have changed.
//
// # Architecture
//
//   - Toolkit: [Connector] and [Acceptor] hand out [Pending] operations and [RawConn] handles.
//     Implementations live in [code.hybscloud.com/sockio/netsock] (epoll) and
//     [code.hybscloud.com/sockio/memsock] (in-memory, lfq rings).
//   - Composition: a [RawConn] is split into one [ReadHalf] and one [WriteHalf] and wrapped in a [Conn].
//   - Futures: [Client.Connect] and [Listener.Accept] return [Pending] values; [Await] drives one to completion.
//   - Sequence: [Incoming] keeps at most one accept in flight and yields each result, errors included.
//
// # API Topologies
//
//   - Byte streams: [Conn.Read], [Conn.Write], [Conn.Flush], [Conn.CloseWrite], [WriteAll], [ReadFull].
//   - Cont-world protocols: [ReadBind], [WriteThen], [WriteFullThen], [ReadFullBind], [FlushThen], [CloseWriteDone].
//   - Expr-world protocols: [ExprReadBind], [ExprWriteThen], [ExprFlushThen], [ExprCloseWriteDone].
//   - Stepping: [Step] and [Advance] evaluate a protocol one effect at a time for an external event loop.
//   - Blocking: [Exec], [ExecExpr], [Run], [RunExpr] wait past readiness boundaries with a [Waiter].
//
// # Example
//
//	ln := sockio.NewListener(loop.Listener())
//	if err := ln.AddPort(12345); err != nil {
//		return err
//	}
//	for conn, err := range ln.Conns(ctx, loop) {
//		if err != nil {
//			continue
//		}
//		sockio.WriteAll(ctx, loop, conn, []byte("test"))
//		conn.Close()
//	}
package sockio
