// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package netsock is an epoll-backed TCP socket toolkit for sockio.
//
// A Loop owns one epoll instance. Sockets are non-blocking; an operation
// that returns iox.ErrWouldBlock first registers interest in the readiness
// event it needs, and the registration is dropped again on progress,
// completion, cancellation or close. Loop.Wait blocks until one of the
// registered events fires (or a short timeout passes) and is the
// sockio.Waiter for everything created from the Loop.
//
// A Loop and everything created from it must be driven from a single
// goroutine. Only Linux is supported; other platforms get ErrUnsupported.
package netsock

import "github.com/pkg/errors"

// ErrUnsupported is returned for unsupported platforms, address families,
// socket types and protocols.
var ErrUnsupported = errors.New("netsock: unsupported")
