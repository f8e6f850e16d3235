package esl

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eventsocket/esl/event"
)

// send writes a command, appending the "\n\n" frame terminator when the
// command does not already end in a newline. Callers hold the mutex.
func (c *Conn) send(cmd string) error {
	if !c.connected || c.sock == nil {
		return ErrDisconnected
	}
	if _, err := io.WriteString(c.sock, cmd); err != nil {
		err = fmt.Errorf("esl: write: %w", err)
		c.markDisconnected(err)
		return err
	}
	if !strings.HasSuffix(cmd, "\n") {
		if _, err := io.WriteString(c.sock, "\n\n"); err != nil {
			err = fmt.Errorf("esl: write: %w", err)
			c.markDisconnected(err)
			return err
		}
	}
	return nil
}

// Send writes a raw command without waiting for the reply.
func (c *Conn) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmd)
}

// SendRecv sends a command and blocks until its reply lands in
// LastSREvent and LastSRReply.
func (c *Conn) SendRecv(cmd string) error {
	return c.SendRecvTimed(cmd, 0)
}

// SendRecvTimed is SendRecv with a budget; zero means unbounded. The
// budget bounds the wait for the reply; the command write itself has no
// deadline.
//
// Events that arrive while the reply is pending are not lost: inner
// text/event-plain and text/event-json payloads are parsed and parked on
// the race queue for the next RecvEvent(checkQ=true), text/event-xml
// packets are parked as received without parsing, and log/data lands in
// LastIEvent.
func (c *Conn) SendRecvTimed(cmd string, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.LastSREvent = nil
	if err := c.send(cmd); err != nil {
		return err
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		ev, err := c.recvPacket(deadline)
		if err != nil {
			return err
		}
		if ev == nil {
			return ErrTimeout
		}
		switch ct := ev.GetHeader("Content-Type"); ct {
		case "command/reply":
			c.LastSRReply = truncateReply(ev.GetHeader("Reply-Text"))
			c.LastSREvent = ev
			return nil
		case "api/response":
			c.LastSRReply = truncateReply(ev.Body)
			c.LastSREvent = ev
			return nil
		case "text/disconnect-notice":
			c.LastIEvent = ev
			c.connected = false
			return ErrDisconnected
		case "log/data":
			c.LastIEvent = ev
		default:
			c.enqueueRace(ev, ct)
		}
	}
}

// enqueueRace parks an event that raced a pending command reply.
// Serialized payloads are parsed first so the caller drains ready-made
// events.
func (c *Conn) enqueueRace(ev *event.Event, contentType string) {
	switch contentType {
	case "text/event-plain":
		if inner, err := event.ParsePlain(ev.Body); err == nil {
			ev = inner
		} else {
			c.logger().WithError(err).Warn("unparseable raced plain event")
		}
	case "text/event-json":
		if inner, err := event.ParseJSON(ev.Body); err == nil {
			ev = inner
		} else {
			c.logger().WithError(err).Warn("unparseable raced JSON event")
		}
	}
	c.race = append(c.race, ev)
}

// SendEvent fires an event into the switch's event system.
func (c *Conn) SendEvent(ev *event.Event) error {
	if ev == nil {
		return errors.New("esl: nil event")
	}
	return c.SendRecv("sendevent " + ev.Type.String() + "\n" + ev.Serialize(false))
}

// SendMsg delivers an event as a message to a channel; uuid may be
// empty on the outbound socket, where the channel is implicit.
func (c *Conn) SendMsg(ev *event.Event, uuid string) error {
	if ev == nil {
		return errors.New("esl: nil event")
	}
	cmd := "sendmsg"
	if uuid != "" {
		cmd += " " + uuid
	}
	return c.SendRecv(cmd + "\n" + ev.Serialize(false))
}

// Execute runs a dialplan application on a channel via sendmsg. The
// conn's AsyncExecute and EventLock switches become the corresponding
// headers.
func (c *Conn) Execute(app, arg, uuid string) error {
	ev, err := event.New(event.Clone)
	if err != nil {
		return err
	}
	must := func(name, value string) {
		if err == nil {
			err = ev.AddHeader(event.StackBottom, name, value)
		}
	}
	must("call-command", "execute")
	must("execute-app-name", app)
	if arg != "" {
		must("execute-app-arg", arg)
	}
	if c.EventLock {
		must("event-lock", "true")
	}
	if c.AsyncExecute {
		must("async", "true")
	}
	if err != nil {
		return err
	}
	return c.SendMsg(ev, uuid)
}

// Filter narrows the subscribed event stream to events whose header
// matches value.
func (c *Conn) Filter(header, value string) error {
	return c.SendRecv("filter " + header + " " + value + "\n\n")
}

// EventsFormat selects the serialization the server uses when pushing
// subscribed events.
type EventsFormat int

const (
	EventsPlain EventsFormat = iota
	EventsXML
	EventsJSON
)

func (f EventsFormat) String() string {
	switch f {
	case EventsXML:
		return "xml"
	case EventsJSON:
		return "json"
	}
	return "plain"
}

// Events subscribes to the named events in the given format. A JSON
// subscription requires a value.
func (c *Conn) Events(format EventsFormat, value string) error {
	if format == EventsJSON && value == "" {
		return errors.New("esl: json event subscription needs a value")
	}
	return c.SendRecv("event " + format.String() + " " + value + "\n\n")
}
