package esl

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/eventsocket/esl/event"
)

// fill pulls one chunk off the socket into the accumulation buffer. It
// returns false with a nil error when the deadline passed before
// anything arrived.
func (c *Conn) fill(deadline time.Time) (bool, error) {
	if !deadline.IsZero() {
		if !time.Now().Before(deadline) {
			return false, nil
		}
		_ = c.sock.SetReadDeadline(deadline)
	} else {
		_ = c.sock.SetReadDeadline(time.Time{})
	}

	n, err := c.sock.Read(c.scratch)
	if n > 0 {
		if c.buf.Write(c.scratch[:n]) == 0 {
			return false, errors.New("esl: inbound buffer overflow")
		}
	}
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return n > 0, nil
		}
		return false, fmt.Errorf("esl: read: %w", err)
	}
	return true, nil
}

// recvPacket reads one complete wire packet: a header block, plus the
// Content-Length body that follows it when announced. A zero deadline
// blocks indefinitely; an expired one returns (nil, nil).
//
// Timing out after the header block was consumed would desynchronise
// the stream, so a missing body within the budget is terminal. Any
// malformed block is too: the buffer is drained and the connection
// marked disconnected.
func (c *Conn) recvPacket(deadline time.Time) (*event.Event, error) {
	if !c.connected || c.sock == nil {
		return nil, ErrDisconnected
	}

	for c.buf.PacketCount() == 0 {
		ok, err := c.fill(deadline)
		if err != nil {
			c.markDisconnected(err)
			return nil, err
		}
		if !ok && c.buf.PacketCount() == 0 {
			return nil, nil
		}
	}

	n := c.buf.ReadPacket(c.packet)
	ev, err := event.ParsePlain(string(c.packet[:n]))
	if err != nil {
		c.buf.Zero()
		err = fmt.Errorf("esl: malformed packet: %w", err)
		c.markDisconnected(err)
		return nil, err
	}

	if cl := ev.GetHeader("Content-Length"); cl != "" {
		want, err := strconv.Atoi(cl)
		if err != nil || want < 0 || want > event.MaxBodyLength {
			c.buf.Zero()
			err = fmt.Errorf("esl: bad Content-Length %q", cl)
			c.markDisconnected(err)
			return nil, err
		}
		for c.buf.InUse() < want {
			ok, err := c.fill(deadline)
			if err != nil {
				c.markDisconnected(err)
				return nil, err
			}
			if !ok && c.buf.InUse() < want {
				err = fmt.Errorf("esl: timed out reading %d byte body", want)
				c.markDisconnected(err)
				return nil, err
			}
		}
		body := make([]byte, want)
		c.buf.Read(body)
		if err := ev.SetBody(string(body)); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// RecvEvent blocks until the next event arrives. With checkQ set, any
// event parked on the race queue by an earlier SendRecv is returned
// first, before the socket is touched.
func (c *Conn) RecvEvent(checkQ bool) (*event.Event, error) {
	return c.RecvEventTimed(0, checkQ)
}

// RecvEventTimed is RecvEvent with a time budget; zero means
// unbounded. An elapsed budget is not an error: it returns (nil, nil).
func (c *Conn) RecvEventTimed(timeout time.Duration, checkQ bool) (*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if checkQ && len(c.race) > 0 {
		ev := c.race[0]
		c.race = c.race[1:]
		c.LastEvent = ev
		return ev, nil
	}
	if !c.connected {
		return nil, ErrDisconnected
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	ev, err := c.recvPacket(deadline)
	if err != nil || ev == nil {
		return nil, err
	}
	c.sortEvent(ev)
	c.LastEvent = ev
	return ev, nil
}

// Recv drains one event, discarding it. The reply and inner-event slots
// are still updated.
func (c *Conn) Recv() error {
	_, err := c.RecvEvent(false)
	return err
}

// RecvTimed is Recv with a budget.
func (c *Conn) RecvTimed(timeout time.Duration) error {
	_, err := c.RecvEventTimed(timeout, false)
	return err
}

// sortEvent files a freshly received packet into the handle slots: the
// reply snapshot for command replies, LastIEvent for inner payloads and
// log lines, and the sticky disconnected state for a disconnect notice.
func (c *Conn) sortEvent(ev *event.Event) {
	switch ev.GetHeader("Content-Type") {
	case "command/reply":
		c.LastReply = truncateReply(ev.GetHeader("Reply-Text"))
	case "text/disconnect-notice":
		c.LastIEvent = ev
		c.connected = false
	case "text/event-plain":
		if ev.Body == "" {
			return
		}
		inner, err := event.ParsePlain(ev.Body)
		if err != nil {
			c.logger().WithError(err).Warn("unparseable plain event payload")
			return
		}
		c.LastIEvent = inner
	case "text/event-json":
		if ev.Body == "" {
			return
		}
		inner, err := event.ParseJSON(ev.Body)
		if err != nil {
			c.logger().WithError(err).Warn("unparseable JSON event payload")
			return
		}
		c.LastIEvent = inner
	case "text/event-xml", "log/data":
		// No XML codec; the raw packet is kept as-is, like log lines.
		c.LastIEvent = ev
	}
}
