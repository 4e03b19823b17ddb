// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memsock is an in-process socket toolkit for sockio.
//
// Connections are pairs of bounded lock-free SPSC byte rings from lfq; the
// accept backlog is another ring. Operations that cannot make progress
// return iox.ErrWouldBlock and take a readiness registration, which is
// released again on progress, completion, cancellation or close. The
// Network counts both transitions so tests can assert that nothing leaks.
//
// A Network and everything created from it must be driven from a single
// goroutine.
package memsock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

var (
	ErrRefused     = errors.New("memsock: connection refused")
	ErrAddrInUse   = errors.New("memsock: address already in use")
	ErrUnsupported = errors.New("memsock: unsupported address, socket type or protocol")
	ErrCanceled    = errors.New("memsock: operation canceled")
	ErrNotBound    = errors.New("memsock: socket is not bound")
	ErrClosed      = errors.New("memsock: use of closed connection")
	ErrReset       = errors.New("memsock: connection reset by peer")
)

const (
	defaultBufferSize = 64
	defaultBacklog    = 16
	firstEphemeral    = 49152
)

type config struct {
	bufferSize int
	backlog    int
	blocking   bool
}

// Option configures a Network.
type Option func(*config)

// WithBufferSize sets the per-direction byte capacity of each connection,
// rounded up to a power of two.
func WithBufferSize(n int) Option {
	return func(c *config) { c.bufferSize = roundPow2(n) }
}

// WithBacklog sets the accept backlog of each listener, rounded up to a
// power of two.
func WithBacklog(n int) Option {
	return func(c *config) { c.backlog = roundPow2(n) }
}

// WithBlockingStreams makes every connection hand out streams that report
// CanPoll false, so composing them into a sockio.Conn fails.
func WithBlockingStreams() Option {
	return func(c *config) { c.blocking = true }
}

// roundPow2 rounds n up to a power of two no smaller than 2.
func roundPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

// Network is an in-memory address space of listeners.
type Network struct {
	cfg        config
	ports      map[uint16]*Listener
	nextPort   uint16
	registered atomix.Uint32
	released   atomix.Uint32
	bo         iox.Backoff
}

// New creates an empty Network.
func New(opts ...Option) *Network {
	cfg := config{bufferSize: defaultBufferSize, backlog: defaultBacklog}
	for _, o := range opts {
		o(&cfg)
	}
	return &Network{
		cfg:      cfg,
		ports:    make(map[uint16]*Listener),
		nextPort: firstEphemeral,
	}
}

// Dialer returns a sockio.Connector for this Network.
func (n *Network) Dialer() *Dialer {
	return &Dialer{n: n}
}

// Listener returns a new unbound sockio.Acceptor for this Network.
func (n *Network) Listener() *Listener {
	l := &Listener{n: n, sources: make(map[uint16]any)}
	l.backlog.Init(n.cfg.backlog)
	return l
}

// Wait implements sockio.Waiter. Readiness in memory only changes when the
// caller drives the other side, so Wait backs off.
func (n *Network) Wait() { n.bo.Wait() }

// Reset resets the backoff after progress.
func (n *Network) Reset() { n.bo.Reset() }

// Registered returns how many readiness registrations were taken.
func (n *Network) Registered() uint32 { return n.registered.Load() }

// Released returns how many readiness registrations were released.
func (n *Network) Released() uint32 { return n.released.Load() }

// Outstanding returns the number of registrations currently held.
func (n *Network) Outstanding() uint32 { return n.Registered() - n.Released() }

func (n *Network) ephemeral() uint16 {
	for {
		p := n.nextPort
		n.nextPort++
		if n.nextPort == 0 {
			n.nextPort = firstEphemeral
		}
		if _, used := n.ports[p]; !used {
			return p
		}
	}
}

// registration is a single readiness registration slot.
type registration struct {
	n     *Network
	armed bool
}

func (r *registration) arm() {
	if !r.armed {
		r.armed = true
		r.n.registered.Add(1)
	}
}

func (r *registration) disarm() {
	if r.armed {
		r.armed = false
		r.n.released.Add(1)
	}
}
