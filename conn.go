// Package esl is a client for the FreeSWITCH event socket layer: a
// line-oriented TCP protocol for commanding and observing a running
// switch. A Conn authenticates, issues commands, and demultiplexes the
// full-duplex stream into synchronous command replies and asynchronous
// server-pushed events.
package esl

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eventsocket/esl/buffer"
	"github.com/eventsocket/esl/event"
	"github.com/eventsocket/esl/log"
)

const (
	// readChunk is how much is pulled off the socket per read.
	readChunk = 65536
	// bufStart and bufChunk size the inbound accumulation buffer.
	bufStart = 65536 * 100
	bufChunk = 65536 * 50
	// maxReplyLen bounds the reply-text snapshots.
	maxReplyLen = 1024
)

// Conn is an event socket session: one TCP connection, its framing
// buffer, and the reply and event slots the protocol state machine
// fills. All methods serialize on an internal mutex, so a Conn may be
// shared between a command thread and an event-draining thread, but a
// blocked receive holds the lock until a packet, a timeout, or a
// connection error.
type Conn struct {
	// Logger receives connection-level records; when nil the
	// process-wide logger from the log package is used.
	Logger logrus.FieldLogger

	// AsyncExecute adds "async: true" to Execute commands.
	AsyncExecute bool
	// EventLock adds "event-lock: true" to Execute commands.
	EventLock bool

	mu      sync.Mutex
	sock    net.Conn
	buf     *buffer.Buffer
	scratch []byte
	packet  []byte

	// LastReply and LastSRReply snapshot the most recent reply text
	// seen by the receive and send-receive paths respectively.
	LastReply   string
	LastSRReply string

	// LastEvent is the most recent event returned by RecvEvent.
	LastEvent *event.Event
	// LastSREvent is the reply event of the most recent SendRecv.
	LastSREvent *event.Event
	// LastIEvent holds the most recent inner payload: a parsed
	// text/event-plain or text/event-json body, or the unparsed packet of
	// a text/event-xml, log/data or disconnect-notice event.
	LastIEvent *event.Event
	// InfoEvent is the first event of the session: the auth request for
	// dialed connections, the connect reply for attached ones.
	InfoEvent *event.Event

	// race holds events that arrived while a synchronous command was in
	// flight, in arrival order.
	race []*event.Event

	connected bool
	lastErr   error
}

func newConn(sock net.Conn) *Conn {
	if tcp, ok := sock.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
		_ = tcp.SetKeepAlive(true)
	}
	return &Conn{
		sock:      sock,
		buf:       buffer.New(bufChunk, bufStart, 0),
		scratch:   make([]byte, readChunk),
		packet:    make([]byte, readChunk),
		connected: true,
	}
}

func (c *Conn) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Connected reports whether the session is still usable.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Err returns the terminal error that disconnected the session, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	if c.sock == nil {
		return nil
	}
	return c.sock.RemoteAddr()
}

// markDisconnected records the terminal error and flips the sticky
// disconnected state.
func (c *Conn) markDisconnected(err error) {
	if c.connected {
		c.logger().WithError(err).Debug("connection lost")
	}
	c.connected = false
	if err != nil && c.lastErr == nil {
		c.lastErr = err
	}
}

// Close releases the socket and every slot. It is safe to call twice.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.race = nil
	c.LastEvent, c.LastSREvent, c.LastIEvent, c.InfoEvent = nil, nil, nil, nil
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	return err
}

// Connect dials and authenticates with no deadline.
func Connect(host string, port uint16, user, password string) (*Conn, error) {
	return ConnectTimeout(host, port, user, password, 0)
}

// ConnectTimeout dials host:port and runs the authentication handshake:
// it waits for the server's auth/request, answers with the password
// (prefixed by the user when given), and requires a +OK reply.
//
// On a handshake failure after the dial succeeded, the Conn is returned
// alongside the error so the reply slots can be inspected; it is
// disconnected and only good for Close. A zero timeout blocks
// indefinitely.
func ConnectTimeout(host string, port uint16, user, password string, timeout time.Duration) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	dialer := net.Dialer{Timeout: timeout}
	sock, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("esl: connect %s: %w", addr, err)
	}

	c := newConn(sock)
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Drain until the server asks for credentials.
	for {
		ev, err := c.recvPacket(deadline)
		if err != nil {
			c.markDisconnected(err)
			return c, err
		}
		if ev == nil {
			c.markDisconnected(ErrTimeout)
			return c, ErrTimeout
		}
		if ev.GetHeader("Content-Type") == "auth/request" {
			c.InfoEvent = ev
			break
		}
	}

	cmd := "auth " + password
	if user != "" {
		cmd = "userauth " + user + ":" + password
	}
	if err := c.send(cmd); err != nil {
		c.markDisconnected(err)
		return c, err
	}

	ev, err := c.recvPacket(deadline)
	if err != nil {
		c.markDisconnected(err)
		return c, err
	}
	if ev == nil {
		c.markDisconnected(ErrTimeout)
		return c, ErrTimeout
	}
	reply := ev.GetHeader("Reply-Text")
	c.LastSRReply = truncateReply(reply)
	c.LastSREvent = ev
	if !strings.HasPrefix(reply, "+OK") {
		c.markDisconnected(ErrAuthFailed)
		return c, fmt.Errorf("%w: %s", ErrAuthFailed, reply)
	}

	c.logger().WithField("addr", addr).Debug("authenticated")
	return c, nil
}

// Attach wraps an already-established connection, as used on the
// outbound ("socket application") side: no password is exchanged; the
// library sends "connect" and stores the server's channel description
// in InfoEvent. A zero timeout blocks indefinitely.
func Attach(sock net.Conn, timeout time.Duration) (*Conn, error) {
	c := newConn(sock)
	if err := c.SendRecvTimed("connect\n\n", timeout); err != nil {
		return c, err
	}
	c.mu.Lock()
	c.InfoEvent = c.LastSREvent
	c.mu.Unlock()
	return c, nil
}

func truncateReply(s string) string {
	if len(s) > maxReplyLen {
		return s[:maxReplyLen]
	}
	return s
}
