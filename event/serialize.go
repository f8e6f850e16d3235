package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eventsocket/esl/strutil"
)

// undefValue stands in for empty header values on the wire; the line
// format has no way to express an empty right-hand side.
const undefValue = "_undef_"

// Serialize renders the event in the line-based wire format: one
// "Name: value" line per header record, then, when a body is present, a
// Content-Length line, a blank line and the body bytes; without a body a
// single blank line ends the block. With
// encode set, header values are percent-encoded first; names never are.
func (e *Event) Serialize(encode bool) string {
	var b strings.Builder
	for _, h := range e.Headers {
		v := h.Value
		if encode {
			v = strutil.EncodeToString(v)
		}
		if v == "" {
			v = undefValue
		}
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteByte('\n')
	}
	if e.Body != "" {
		fmt.Fprintf(&b, "Content-Length: %d\n\n%s", len(e.Body), e.Body)
	} else {
		b.WriteByte('\n')
	}
	return b.String()
}

// ParsePlain decodes a serialized header block back into an Event.
// Header values are percent-decoded, "_undef_" collapses to the empty
// string, and an "ARRAY::" rendering is split back into an indexed
// record. When the block carries a Content-Length header, that many of
// the bytes following the blank line become the body (clamped to what
// is actually present). An Event-Name header, when resolvable, sets the
// event type; otherwise the event stays a Clone.
func ParsePlain(data string) (*Event, error) {
	e := &Event{Type: Clone}

	rest := data
	for {
		line, remainder, found := strings.Cut(rest, "\n")
		rest = remainder
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("event: malformed header line %q", line)
		}
		name = strings.TrimSpace(name)
		value = strutil.URLDecode(strings.TrimSpace(value))
		if value == undefValue {
			value = ""
		}
		if err := e.AddHeader(StackBottom, name, value); err != nil {
			return nil, err
		}
		if !found {
			break
		}
	}

	if cl := e.GetHeader("Content-Length"); cl != "" {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("event: bad Content-Length %q", cl)
		}
		if n > MaxBodyLength {
			return nil, ErrTooLarge
		}
		if n > len(rest) {
			n = len(rest)
		}
		if err := e.SetBody(rest[:n]); err != nil {
			return nil, err
		}
	}

	if name := e.GetHeader("Event-Name"); name != "" {
		if t, ok := NameToType(name); ok {
			e.Type = t
		}
	}
	if sub := e.GetHeader("Event-Subclass"); sub != "" {
		e.Subclass = sub
	}
	return e, nil
}
