// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sockio

import (
	"errors"
	"net"
)

// ErrCompleted is returned when a Connect or Accept future is polled
// again after it has already reported its result.
var ErrCompleted = errors.New("sockio: operation already completed")

// ConnectError reports a failed outgoing connection.
type ConnectError struct {
	Target net.Addr
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Target == nil {
		return "sockio: connect: " + e.Err.Error()
	}
	return "sockio: connect " + e.Target.String() + ": " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AcceptError reports a failed accept, one-shot or from an Incoming sequence.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string { return "sockio: accept: " + e.Err.Error() }

func (e *AcceptError) Unwrap() error { return e.Err }

// BindError reports an address that could not be bound: already in use,
// or an unsupported combination of family, socket type and protocol.
type BindError struct {
	Addr net.Addr
	Err  error
}

func (e *BindError) Error() string {
	if e.Addr == nil {
		return "sockio: bind: " + e.Err.Error()
	}
	return "sockio: bind " + e.Addr.String() + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }

// AddressError reports a failed local or remote address query.
// Side is "local" or "remote".
type AddressError struct {
	Side string
	Err  error
}

func (e *AddressError) Error() string {
	return "sockio: " + e.Side + " address: " + e.Err.Error()
}

func (e *AddressError) Unwrap() error { return e.Err }

// StreamConversionError means a raw connection handed out a stream that
// cannot be polled. It is an environment fault, not a transient condition,
// and is never retried.
type StreamConversionError struct {
	Direction string
	Reason    string
}

func (e *StreamConversionError) Error() string {
	return "sockio: " + e.Direction + " stream: " + e.Reason
}
