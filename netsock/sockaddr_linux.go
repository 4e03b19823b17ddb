// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package netsock

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// sockaddrOf converts a TCP address into a socket address and its family.
func sockaddrOf(a net.Addr) (unix.Sockaddr, int, error) {
	ta, ok := a.(*net.TCPAddr)
	if !ok || ta == nil {
		return nil, 0, errors.Wrapf(ErrUnsupported, "address %v", a)
	}
	if ip4 := ta.IP.To4(); ip4 != nil || ta.IP == nil {
		sa := &unix.SockaddrInet4{Port: ta.Port}
		if ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return sa, unix.AF_INET, nil
	}
	if ip6 := ta.IP.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{Port: ta.Port}
		copy(sa.Addr[:], ip6)
		return sa, unix.AF_INET6, nil
	}
	return nil, 0, errors.Wrapf(ErrUnsupported, "address %v", a)
}

func tcpAddrOf(sa unix.Sockaddr) net.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, v.Addr[:])
		return &net.TCPAddr{IP: ip, Port: v.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, v.Addr[:])
		return &net.TCPAddr{IP: ip, Port: v.Port}
	default:
		return nil
	}
}

// openStream creates a non-blocking, close-on-exec TCP socket.
func openStream(family int) (int, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, errors.Wrap(err, "netsock: socket")
	}
	return fd, nil
}
