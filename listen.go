package esl

import (
	"net"
	"strconv"

	"golang.org/x/net/netutil"
)

// AcceptHandler is called for each connection accepted by Serve and
// ServeThreaded, typically to Attach it.
type AcceptHandler func(sock net.Conn)

// Serve accepts connections from ln and calls handler for each, one at
// a time, until Accept fails (normally because ln was closed).
func Serve(ln net.Listener, handler AcceptHandler) error {
	for {
		sock, err := ln.Accept()
		if err != nil {
			return err
		}
		handler(sock)
	}
}

// ServeThreaded accepts connections from ln and calls handler for each
// in its own goroutine. max, when positive, caps how many accepted
// connections may be open at once.
func ServeThreaded(ln net.Listener, max int, handler AcceptHandler) error {
	if max > 0 {
		ln = netutil.LimitListener(ln, max)
	}
	for {
		sock, err := ln.Accept()
		if err != nil {
			return err
		}
		go handler(sock)
	}
}

// Listen binds host:port and runs Serve on it. It is the blocking
// entry point for outbound-socket servers; callers needing to stop the
// loop create their own listener and use Serve directly.
func Listen(host string, port uint16, handler AcceptHandler) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return err
	}
	defer ln.Close()
	return Serve(ln, handler)
}

// ListenThreaded binds host:port and runs ServeThreaded on it.
func ListenThreaded(host string, port uint16, max int, handler AcceptHandler) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return err
	}
	defer ln.Close()
	return ServeThreaded(ln, max, handler)
}
