// Package event implements the fundamental unit of the event socket
// protocol: a name-keyed, insertion-ordered header collection with an
// optional opaque body, serializable both as the line-based wire format
// and as JSON.
package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eventsocket/esl/strutil"
)

const (
	// MaxBodyLength caps the body and any stored header value.
	MaxBodyLength = 16 * 1024 * 1024
	// MaxHeaderNameLength caps a single header name.
	MaxHeaderNameLength = 1024

	headerIndexMax = 4000
	arrayPrefix    = "ARRAY::"
	arrayDelim     = "|:"
	bodyName       = "_body"
)

var (
	// ErrHeaderIndex is returned for a malformed or out-of-range [N]
	// header index.
	ErrHeaderIndex = errors.New("event: bad header index")
	// ErrTooLarge is returned when a name, value or body exceeds its
	// limit.
	ErrTooLarge = errors.New("event: string exceeds limit")
	// ErrSubclass is returned when a subclass is given for a type that
	// does not allow one.
	ErrSubclass = errors.New("event: subclass requires CUSTOM or CLONE")
)

// Stack selects where AddHeader places or extends a header.
type Stack int

const (
	// StackBottom appends a new record at the end of the header list.
	StackBottom Stack = iota
	// StackTop prepends a new record at the head of the header list.
	StackTop
	// StackPush appends to a record's value array, promoting a scalar.
	StackPush
	// StackUnshift prepends to a record's value array, promoting a
	// scalar.
	StackUnshift
)

// Priority is the event priority carried in the "priority" header.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityLow
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "NORMAL"
	case PriorityLow:
		return "LOW"
	case PriorityHigh:
		return "HIGH"
	}
	return "INVALID"
}

// Flags is the event flag bitset.
type Flags uint32

const (
	// FlagUniqueHeaders makes AddHeader delete same-named records before
	// inserting.
	FlagUniqueHeaders Flags = 1 << 0
)

// Header is one record of the event's ordered header list. A record is
// either scalar (Array nil) or indexed (Array non-nil); Value always
// holds the materialised rendering, which for indexed records is the
// elements joined with "|:" behind an "ARRAY::" prefix once there are at
// least two.
type Header struct {
	Name  string
	Value string
	Array []string

	hash uint32
}

// headerHash is the case-folded 33*c rolling hash used as a fast-reject
// prefilter for name lookups.
func headerHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(strutil.ToLower(int(name[i])))
	}
	return h
}

func newHeader(name string) *Header {
	return &Header{Name: name, hash: headerHash(name)}
}

// rematerialize refreshes Value from Array after any array mutation.
func (h *Header) rematerialize() {
	switch len(h.Array) {
	case 0:
	case 1:
		h.Value = h.Array[0]
	default:
		h.Value = arrayPrefix + strings.Join(h.Array, arrayDelim)
	}
}

// Event is a set of named headers plus an optional opaque body.
type Event struct {
	Type     Type
	Subclass string
	Headers  []*Header
	Body     string
	Priority Priority
	Flags    Flags

	// UserData rides along on Dup and is otherwise opaque to the
	// library.
	UserData any
}

// New creates an event of the given type. Every type except Clone gets
// an Event-Name header derived from the type's ordinal.
func New(t Type) (*Event, error) {
	return NewSubclass(t, "")
}

// NewSubclass creates an event with a subclass name. A non-empty
// subclass is only legal for Custom and Clone events and is mirrored
// into the Event-Subclass header.
func NewSubclass(t Type, subclass string) (*Event, error) {
	if subclass != "" && t != Clone && t != Custom {
		return nil, ErrSubclass
	}
	e := &Event{Type: t}
	if t != Clone {
		if err := e.AddHeader(StackBottom, "Event-Name", t.String()); err != nil {
			return nil, err
		}
	}
	if subclass != "" {
		e.Subclass = subclass
		if err := e.AddHeader(StackBottom, "Event-Subclass", subclass); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// GetHeaderPtr returns the first record whose name matches
// case-insensitively, or nil.
func (e *Event) GetHeaderPtr(name string) *Header {
	if e == nil || name == "" {
		return nil
	}
	hash := headerHash(name)
	for _, h := range e.Headers {
		if h.hash == hash && strutil.EqualFold(h.Name, name) {
			return h
		}
	}
	return nil
}

// GetHeader returns the value of the first matching header; for indexed
// records that is the ARRAY:: rendering. The reserved name "_body"
// returns the body. Missing headers yield the empty string.
func (e *Event) GetHeader(name string) string {
	return e.GetHeaderIdx(name, -1)
}

// GetHeaderIdx returns element idx of an indexed header, or the whole
// value when idx is -1. Out-of-range indexes and missing headers yield
// the empty string.
func (e *Event) GetHeaderIdx(name string, idx int) string {
	if e == nil {
		return ""
	}
	if h := e.GetHeaderPtr(name); h != nil {
		if idx > -1 {
			if idx < len(h.Array) {
				return h.Array[idx]
			}
			return ""
		}
		return h.Value
	}
	if name == bodyName {
		return e.Body
	}
	return ""
}

// DelHeader removes every record with the given name. It reports
// whether anything was removed.
func (e *Event) DelHeader(name string) bool {
	return e.DelHeaderVal(name, "")
}

// DelHeaderVal removes every record whose name matches and whose value
// equals val; an empty val matches any value. It reports whether
// anything was removed.
func (e *Event) DelHeaderVal(name, val string) bool {
	if e == nil || name == "" {
		return false
	}
	hash := headerHash(name)
	removed := false
	kept := e.Headers[:0]
	for _, h := range e.Headers {
		if h.hash == hash && strutil.EqualFold(h.Name, name) &&
			(val == "" || h.Value == val) {
			removed = true
			continue
		}
		kept = append(kept, h)
	}
	e.Headers = kept
	return removed
}

// parseHeaderIndex validates the text between '[' and the end of the
// header name: a decimal integer in [0, 4000] immediately followed by a
// closing ']' at the very end.
func parseHeaderIndex(expr string) (int, error) {
	if len(expr) < 2 || expr[len(expr)-1] != ']' {
		return 0, ErrHeaderIndex
	}
	n, err := strconv.Atoi(expr[:len(expr)-1])
	if err != nil || n < 0 || n > headerIndexMax {
		return 0, ErrHeaderIndex
	}
	return n, nil
}

// AddHeader inserts, replaces or extends a header according to stack.
//
// A name carrying an "[N]" suffix addresses slot N of an indexed record
// on the bare name, replacing the slot when it exists and extending the
// array (empty-string gaps) when it does not; the stack flag is ignored.
// StackPush and StackUnshift append/prepend to the record's array,
// promoting a scalar first. StackTop and StackBottom insert a fresh
// record, with three twists: an empty value deletes the name instead, a
// value carrying the "ARRAY::" prefix is split on "|:" and pushed
// element-wise, and StackBottom onto an already-indexed record appends
// to its array.
func (e *Event) AddHeader(stack Stack, name, value string) error {
	if e == nil || name == "" {
		return errors.New("event: nil event or empty header name")
	}
	if name == bodyName {
		return e.SetBody(value)
	}
	if len(name) > MaxHeaderNameLength || len(value) > MaxBodyLength {
		return ErrTooLarge
	}

	if i := strings.IndexByte(name, '['); i >= 0 {
		idx, err := parseHeaderIndex(name[i+1:])
		if err != nil {
			return err
		}
		return e.setIndexed(name[:i], idx, value)
	}

	switch stack {
	case StackPush, StackUnshift:
		if h := e.GetHeaderPtr(name); h != nil {
			h.promote()
			if stack == StackPush {
				h.Array = append(h.Array, value)
			} else {
				h.Array = append([]string{value}, h.Array...)
			}
			h.rematerialize()
			return nil
		}
	case StackBottom:
		// A name that grew an array keeps accumulating on re-add.
		if value != "" && !strings.HasPrefix(value, arrayPrefix) {
			if h := e.GetHeaderPtr(name); h != nil && h.Array != nil {
				return e.AddHeader(StackPush, name, value)
			}
		}
	}

	if value == "" {
		e.DelHeader(name)
		return nil
	}
	if e.Flags&FlagUniqueHeaders != 0 {
		e.DelHeader(name)
	}
	if strings.HasPrefix(value, arrayPrefix) {
		return e.addArray(name, value)
	}

	h := newHeader(name)
	if stack == StackPush || stack == StackUnshift {
		h.Array = []string{value}
	}
	h.Value = value
	if stack == StackTop {
		e.Headers = append([]*Header{h}, e.Headers...)
	} else {
		e.Headers = append(e.Headers, h)
	}
	return nil
}

// promote turns a scalar record into a one-element array.
func (h *Header) promote() {
	if h.Array == nil {
		h.Array = []string{h.Value}
	}
}

// setIndexed writes value at slot idx of the record named by the bare
// name, creating the record and any gap slots as needed.
func (e *Event) setIndexed(name string, idx int, value string) error {
	if name == "" {
		return ErrHeaderIndex
	}
	h := e.GetHeaderPtr(name)
	if h == nil {
		if e.Flags&FlagUniqueHeaders != 0 {
			e.DelHeader(name)
		}
		h = newHeader(name)
		e.Headers = append(e.Headers, h)
	}
	if idx < len(h.Array) {
		h.Array[idx] = value
	} else {
		for len(h.Array) < idx {
			h.Array = append(h.Array, "")
		}
		h.Array = append(h.Array, value)
	}
	h.rematerialize()
	return nil
}

// addArray splits an "ARRAY::a|:b" rendering and pushes each element
// under the bare name.
func (e *Event) addArray(name, value string) error {
	if len(value) <= len(arrayPrefix) {
		return fmt.Errorf("event: empty %s value for %s", arrayPrefix, name)
	}
	tail := value[len(arrayPrefix):]
	for _, element := range strutil.SeparateString(tail, arrayDelim, len(tail)+1) {
		if err := e.AddHeader(StackPush, name, element); err != nil {
			return err
		}
	}
	return nil
}

// SetBody replaces the body. Bodies are limited to 16 MiB.
func (e *Event) SetBody(body string) error {
	if e == nil {
		return errors.New("event: nil event")
	}
	if len(body) > MaxBodyLength {
		return ErrTooLarge
	}
	e.Body = body
	return nil
}

// AddBodyf formats and sets the body.
func (e *Event) AddBodyf(format string, args ...any) error {
	return e.SetBody(fmt.Sprintf(format, args...))
}

// SetPriority records the priority and mirrors it into a "priority"
// header at the head of the list.
func (e *Event) SetPriority(p Priority) error {
	if e == nil {
		return errors.New("event: nil event")
	}
	e.Priority = p
	return e.AddHeader(StackTop, "priority", p.String())
}

// Merge pushes every header of src into e: indexed records element-wise,
// scalars at the bottom. The body is not merged.
func (e *Event) Merge(src *Event) error {
	if e == nil || src == nil {
		return errors.New("event: nil event")
	}
	for _, h := range src.Headers {
		if h.Array != nil {
			for _, element := range h.Array {
				if err := e.AddHeader(StackPush, h.Name, element); err != nil {
					return err
				}
			}
			continue
		}
		if err := e.AddHeader(StackBottom, h.Name, h.Value); err != nil {
			return err
		}
	}
	return nil
}

// Dup deep-copies the event into a fresh Clone carrying the subclass,
// type, flags, body and user data. The Event-Subclass header is
// re-created by the subclass mechanism rather than copied.
func (e *Event) Dup() (*Event, error) {
	if e == nil {
		return nil, errors.New("event: nil event")
	}
	dup, err := NewSubclass(Clone, e.Subclass)
	if err != nil {
		return nil, err
	}
	dup.Type = e.Type
	dup.Flags = e.Flags
	dup.Priority = e.Priority
	dup.UserData = e.UserData
	for _, h := range e.Headers {
		if e.Subclass != "" && h.Name == "Event-Subclass" {
			continue
		}
		if h.Array != nil {
			for _, element := range h.Array {
				if err := dup.AddHeader(StackPush, h.Name, element); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := dup.AddHeader(StackBottom, h.Name, h.Value); err != nil {
			return nil, err
		}
	}
	dup.Body = e.Body
	return dup, nil
}
