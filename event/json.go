package event

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/eventsocket/esl/strutil"
)

const (
	maxJSONLength     = 16 * 1024 * 1024
	maxJSONHeaders    = 4096
	maxJSONArrayItems = 4096
)

// ErrBadJSON is returned when a JSON document cannot be decoded into an
// event: a non-object root, a member that is neither string nor array of
// strings, or a breached size limit.
var ErrBadJSON = errors.New("event: malformed event JSON")

// SerializeJSON renders the event as a JSON object with one member per
// header record, in insertion order. Scalar records become strings,
// indexed records arrays of strings. A body appears as a Content-Length
// string plus a "_body" member.
func (e *Event) SerializeJSON() (string, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)

	stream.WriteObjectStart()
	more := false
	for _, h := range e.Headers {
		if len(h.Name) > MaxHeaderNameLength || len(h.Value) > maxJSONLength {
			return "", ErrTooLarge
		}
		if more {
			stream.WriteMore()
		}
		more = true
		stream.WriteObjectField(h.Name)
		if h.Array != nil {
			stream.WriteArrayStart()
			for i, element := range h.Array {
				if len(element) > maxJSONLength {
					return "", ErrTooLarge
				}
				if i > 0 {
					stream.WriteMore()
				}
				stream.WriteString(element)
			}
			stream.WriteArrayEnd()
		} else {
			stream.WriteString(h.Value)
		}
	}
	if e.Body != "" {
		if len(e.Body) > MaxBodyLength {
			return "", ErrTooLarge
		}
		if more {
			stream.WriteMore()
		}
		stream.WriteObjectField("Content-Length")
		stream.WriteString(strconv.Itoa(len(e.Body)))
		stream.WriteMore()
		stream.WriteObjectField(bodyName)
		stream.WriteString(e.Body)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return "", stream.Error
	}
	return string(stream.Buffer()), nil
}

// ParseJSON decodes a JSON object into a fresh event. String members
// become scalar headers (with "event-name" also resolving the event
// type and "_body" setting the body), arrays of strings become indexed
// headers. Any other member type, a non-object root, or a breached
// limit fails the whole decode. An unresolvable event name leaves the
// type as Clone.
func ParseJSON(data string) (*Event, error) {
	if len(data) > maxJSONLength {
		return nil, ErrTooLarge
	}
	iter := jsoniter.ConfigDefault.BorrowIterator([]byte(data))
	defer jsoniter.ConfigDefault.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, ErrBadJSON
	}

	e := &Event{Type: Clone}
	count := 0
	for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
		count++
		if count > maxJSONHeaders {
			return nil, ErrBadJSON
		}
		if len(field) > MaxHeaderNameLength {
			return nil, ErrTooLarge
		}

		switch iter.WhatIsNext() {
		case jsoniter.StringValue:
			text := iter.ReadString()
			if len(text) > maxJSONLength {
				return nil, ErrTooLarge
			}
			if strutil.EqualFold(field, bodyName) {
				if err := e.SetBody(text); err != nil {
					return nil, err
				}
				continue
			}
			if strutil.EqualFold(field, "event-name") {
				e.DelHeader(field)
				if t, ok := NameToType(text); ok {
					e.Type = t
				}
			}
			if err := e.AddHeader(StackBottom, field, text); err != nil {
				return nil, err
			}
		case jsoniter.ArrayValue:
			items := 0
			for iter.ReadArray() {
				if iter.WhatIsNext() != jsoniter.StringValue {
					return nil, ErrBadJSON
				}
				element := iter.ReadString()
				if len(element) > maxJSONLength {
					return nil, ErrTooLarge
				}
				items++
				if items > maxJSONArrayItems {
					return nil, ErrBadJSON
				}
				if err := e.AddHeader(StackPush, field, element); err != nil {
					return nil, err
				}
			}
		default:
			return nil, ErrBadJSON
		}
		if iter.Error != nil && iter.Error != io.EOF {
			return nil, fmt.Errorf("event: %w", iter.Error)
		}
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("event: %w", iter.Error)
	}
	if sub := e.GetHeader("Event-Subclass"); sub != "" {
		e.Subclass = sub
	}
	return e, nil
}
