// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package netsock

import (
	"net"
	"time"

	"code.hybscloud.com/sockio"
)

// DefaultWaitTimeout bounds a single Wait.
const DefaultWaitTimeout = 50 * time.Millisecond

// Loop is unavailable on this platform.
type Loop struct{}

// NewLoop returns ErrUnsupported.
func NewLoop() (*Loop, error) { return nil, ErrUnsupported }

func (l *Loop) SetWaitTimeout(time.Duration) {}
func (l *Loop) Dialer() *Dialer { return &Dialer{} }
func (l *Loop) Listener() *Listener { return &Listener{} }
func (l *Loop) Wait() { time.Sleep(DefaultWaitTimeout) }
func (l *Loop) WaitTimeout(d time.Duration) (int, error) { return 0, ErrUnsupported }
func (l *Loop) Registered() uint32 { return 0 }
func (l *Loop) Released() uint32 { return 0 }
func (l *Loop) Outstanding() uint32 { return 0 }
func (l *Loop) Close() error { return nil }

// Dialer is unavailable on this platform.
type Dialer struct{}

func (d *Dialer) ConnectAsync(net.Addr) sockio.Pending[sockio.RawConn] {
	return failed[sockio.RawConn]{}
}

// Listener is unavailable on this platform.
type Listener struct{}

func (l *Listener) Bind(net.Addr, sockio.SocketType, sockio.Protocol, any) (net.Addr, error) {
	return nil, ErrUnsupported
}

func (l *Listener) AddPort(uint16) error { return ErrUnsupported }

func (l *Listener) AcceptAsync() sockio.Pending[sockio.Accepted] {
	return failed[sockio.Accepted]{}
}

func (l *Listener) Close() error { return nil }

type failed[T any] struct{}

func (failed[T]) Poll() (T, error) {
	var zero T
	return zero, ErrUnsupported
}

func (failed[T]) Cancel() {}
