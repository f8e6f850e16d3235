// Package config reads the classic "[section] key = value" client
// configuration format and resolves the connection settings from
// defaults, file and environment.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Pair is one key/value line of a configuration file, tagged with the
// section it appeared under.
type Pair struct {
	Section string
	Key     string
	Value   string
}

// File is a parsed configuration file whose pairs can be walked in
// declaration order.
type File struct {
	pairs []Pair
	next  int
}

// Open loads and parses the file at path. Both "key = value" and
// "key => value" pair spellings are accepted.
func Open(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse parses configuration text.
func Parse(raw []byte) (*File, error) {
	// ini splits on single delimiter characters, so the legacy "=>"
	// arrow is normalised to "=" first.
	raw = bytes.ReplaceAll(raw, []byte("=>"), []byte("="))

	f, err := ini.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	c := &File{}
	for _, section := range f.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			name = ""
		}
		for _, key := range section.Keys() {
			c.pairs = append(c.pairs, Pair{
				Section: name,
				Key:     key.Name(),
				Value:   key.Value(),
			})
		}
	}
	return c, nil
}

// Next returns the next pair in declaration order; ok is false once the
// file is exhausted.
func (c *File) Next() (p Pair, ok bool) {
	if c == nil || c.next >= len(c.pairs) {
		return Pair{}, false
	}
	p = c.pairs[c.next]
	c.next++
	return p, true
}

// Rewind restarts iteration from the first pair.
func (c *File) Rewind() {
	if c != nil {
		c.next = 0
	}
}

// Len returns the number of pairs in the file.
func (c *File) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pairs)
}

// CASBits decodes a "sig:XXXX" channel-associated-signaling pattern into
// its 4-bit value. Every X must be '0' or '1'.
func CASBits(pattern string) (uint8, error) {
	const prefix = "sig:"
	if len(pattern) != len(prefix)+4 || pattern[:len(prefix)] != prefix {
		return 0, fmt.Errorf("config: bad CAS pattern %q", pattern)
	}
	var bits uint8
	for _, c := range pattern[len(prefix):] {
		bits <<= 1
		switch c {
		case '1':
			bits |= 1
		case '0':
		default:
			return 0, fmt.Errorf("config: bad CAS pattern %q", pattern)
		}
	}
	return bits, nil
}
