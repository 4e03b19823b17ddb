// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package netsock

import (
	"net"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/sockio"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Dialer opens TCP connections. It implements sockio.Connector.
type Dialer struct {
	loop *Loop
}

// ConnectAsync starts a non-blocking connect to target, which must be a
// *net.TCPAddr. The returned operation completes once the socket becomes
// writable and SO_ERROR reports the outcome.
func (d *Dialer) ConnectAsync(target net.Addr) sockio.Pending[sockio.RawConn] {
	op := &connectOp{loop: d.loop, fd: -1}
	sa, family, err := sockaddrOf(target)
	if err != nil {
		op.err = err
		return op
	}
	fd, err := openStream(family)
	if err != nil {
		op.err = err
		return op
	}
	op.fd = fd
	op.reg = registration{loop: d.loop, fd: fd, write: true}
	switch err := unix.Connect(fd, sa); err {
	case nil:
		op.connected = true
	case unix.EINPROGRESS, unix.EINTR:
	default:
		unix.Close(fd)
		op.fd = -1
		op.err = errors.Wrapf(err, "netsock: connect %v", target)
	}
	return op
}

type connectOp struct {
	loop      *Loop
	fd        int
	reg       registration
	err       error
	connected bool
	done      bool
}

func (op *connectOp) Poll() (sockio.RawConn, error) {
	if op.done {
		return nil, sockio.ErrCompleted
	}
	if op.err != nil {
		op.done = true
		return nil, op.err
	}
	if !op.connected {
		pfd := []unix.PollFd{{Fd: int32(op.fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(pfd, 0)
		if err == unix.EINTR || (err == nil && n == 0) {
			if err := op.reg.arm(); err != nil {
				return nil, op.fail(err)
			}
			return nil, iox.ErrWouldBlock
		}
		if err != nil {
			return nil, op.fail(errors.Wrap(err, "netsock: poll"))
		}
		soerr, err := unix.GetsockoptInt(op.fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return nil, op.fail(errors.Wrap(err, "netsock: getsockopt"))
		}
		if soerr != 0 {
			return nil, op.fail(errors.Wrap(unix.Errno(soerr), "netsock: connect"))
		}
	}
	op.reg.disarm()
	op.done = true
	return newConn(op.loop, op.fd), nil
}

func (op *connectOp) fail(err error) error {
	op.reg.disarm()
	op.done = true
	unix.Close(op.fd)
	op.fd = -1
	return err
}

func (op *connectOp) Cancel() {
	if op.done {
		return
	}
	op.reg.disarm()
	op.done = true
	if op.fd >= 0 {
		unix.Close(op.fd)
		op.fd = -1
	}
}
