// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package netsock

import (
	"time"

	"code.hybscloud.com/atomix"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultWaitTimeout bounds a single Wait so that callers get to observe
// context cancellation even when nothing becomes ready.
const DefaultWaitTimeout = 50 * time.Millisecond

const (
	eventRead  = unix.EPOLLIN | unix.EPOLLRDHUP
	eventWrite = unix.EPOLLOUT
)

// interest is the aggregated epoll registration of one fd. Several
// registrations may share an fd (two accepts on one listener, or the read
// and write halves of one connection).
type interest struct {
	reads  int
	writes int
	mask   uint32
}

func (in *interest) wanted() uint32 {
	var m uint32
	if in.reads > 0 {
		m |= eventRead
	}
	if in.writes > 0 {
		m |= eventWrite
	}
	return m
}

// Loop is a single-threaded epoll readiness loop.
type Loop struct {
	epfd       int
	interests  map[int]*interest
	events     []unix.EpollEvent
	timeout    time.Duration
	registered atomix.Uint32
	released   atomix.Uint32
	closed     bool
}

// NewLoop creates a Loop with its own epoll instance.
func NewLoop() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "netsock: epoll_create1")
	}
	return &Loop{
		epfd:      epfd,
		interests: make(map[int]*interest),
		events:    make([]unix.EpollEvent, 64),
		timeout:   DefaultWaitTimeout,
	}, nil
}

// SetWaitTimeout changes the upper bound of a single Wait.
func (l *Loop) SetWaitTimeout(d time.Duration) { l.timeout = d }

// Dialer returns a sockio.Connector on this Loop.
func (l *Loop) Dialer() *Dialer { return &Dialer{loop: l} }

// Listener returns a new unbound sockio.Acceptor on this Loop.
func (l *Loop) Listener() *Listener { return &Listener{loop: l} }

// Wait implements sockio.Waiter: it blocks until a registered event fires
// or the wait timeout passes.
func (l *Loop) Wait() {
	l.WaitTimeout(l.timeout)
}

// WaitTimeout waits up to d for registered events and returns how many
// fds became ready.
func (l *Loop) WaitTimeout(d time.Duration) (int, error) {
	if l.closed {
		return 0, unix.EBADF
	}
	n, err := unix.EpollWait(l.epfd, l.events, int(d/time.Millisecond))
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "netsock: epoll_wait")
	}
	return n, nil
}

// Registered returns how many readiness registrations were taken.
func (l *Loop) Registered() uint32 { return l.registered.Load() }

// Released returns how many readiness registrations were released.
func (l *Loop) Released() uint32 { return l.released.Load() }

// Outstanding returns the number of registrations currently held.
func (l *Loop) Outstanding() uint32 { return l.Registered() - l.Released() }

// Close closes the epoll instance. Sockets created from the Loop must be
// closed first.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return unix.Close(l.epfd)
}

func (l *Loop) add(fd int, write bool) (*interest, error) {
	in := l.interests[fd]
	fresh := in == nil
	if fresh {
		in = &interest{}
	}
	if write {
		in.writes++
	} else {
		in.reads++
	}
	want := in.wanted()
	if want != in.mask {
		ev := unix.EpollEvent{Events: want, Fd: int32(fd)}
		op := unix.EPOLL_CTL_MOD
		if fresh {
			op = unix.EPOLL_CTL_ADD
		}
		if err := unix.EpollCtl(l.epfd, op, fd, &ev); err != nil {
			if write {
				in.writes--
			} else {
				in.reads--
			}
			return nil, errors.Wrap(err, "netsock: epoll_ctl")
		}
		in.mask = want
	}
	l.interests[fd] = in
	return in, nil
}

// remove drops one count from in. An interest that forget already
// dropped is left alone, since fd may by now name another socket.
func (l *Loop) remove(in *interest, fd int, write bool) {
	if in == nil || l.interests[fd] != in {
		return
	}
	if write {
		in.writes--
	} else {
		in.reads--
	}
	want := in.wanted()
	if want == 0 {
		unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		delete(l.interests, fd)
		return
	}
	if want != in.mask {
		ev := unix.EpollEvent{Events: want, Fd: int32(fd)}
		unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
		in.mask = want
	}
}

// forget drops every interest in fd before the caller closes it. The
// kernel removes a closed fd from the epoll set on its own, and a stale
// entry here would stop the next socket given the same number from ever
// being added.
func (l *Loop) forget(fd int) {
	if _, ok := l.interests[fd]; !ok {
		return
	}
	unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(l.interests, fd)
}

// registration is one readiness registration on one fd.
type registration struct {
	loop  *Loop
	fd    int
	write bool
	armed bool
	in    *interest
}

func (r *registration) arm() error {
	if r.armed {
		return nil
	}
	in, err := r.loop.add(r.fd, r.write)
	if err != nil {
		return err
	}
	r.in = in
	r.armed = true
	r.loop.registered.Add(1)
	return nil
}

func (r *registration) disarm() {
	if !r.armed {
		return
	}
	r.armed = false
	r.loop.remove(r.in, r.fd, r.write)
	r.in = nil
	r.loop.released.Add(1)
}
