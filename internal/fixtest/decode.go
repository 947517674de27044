// Package fixtest decodes the sender's output. It is used by tests and by the
// sink example to check what went over the wire.
package fixtest

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

const soh = 0x01

var (
	ErrIncomplete = errors.New("incomplete message")
	ErrMalformed  = errors.New("malformed message")
	ErrBodyLength = errors.New("body length mismatch")
	ErrChecksum   = errors.New("checksum mismatch")
)

var trailerMarker = []byte("\x0110=")

type Field struct {
	Tag   int
	Value string
}

type Message struct {
	Fields []Field
	Raw    []byte
}

// Get returns the value of the first field with the given tag.
func (m *Message) Get(tag int) (string, bool) {
	for _, f := range m.Fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

func (m *Message) Int(tag int) (int64, error) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, fmt.Errorf("%w: tag %d missing", ErrMalformed, tag)
	}
	return strconv.ParseInt(v, 10, 64)
}

func (m *Message) Tags() []int {
	tags := make([]int, 0, len(m.Fields))
	for _, f := range m.Fields {
		tags = append(tags, f.Tag)
	}
	return tags
}

// Next returns the length of the first complete message in b, or
// ErrIncomplete if b does not hold one yet.
func Next(b []byte) (int, error) {
	ix := bytes.Index(b, trailerMarker)
	if ix < 0 {
		return 0, ErrIncomplete
	}
	end := bytes.IndexByte(b[ix+1:], soh)
	if end < 0 {
		return 0, ErrIncomplete
	}
	return ix + 1 + end + 1, nil
}

// Split cuts b into complete messages. Trailing bytes that do not form a
// complete message are returned as rest.
func Split(b []byte) (msgs [][]byte, rest []byte) {
	for len(b) > 0 {
		n, err := Next(b)
		if err != nil {
			break
		}
		msgs = append(msgs, b[:n])
		b = b[n:]
	}
	return msgs, b
}

// Decode parses one complete message and verifies its body length and
// checksum.
func Decode(b []byte) (*Message, error) {
	if len(b) == 0 || b[len(b)-1] != soh {
		return nil, ErrIncomplete
	}

	m := &Message{Raw: b}

	var (
		bodyStart  = -1
		trailerPos = -1
		off        = 0
	)
	for _, token := range bytes.Split(b[:len(b)-1], []byte{soh}) {
		eq := bytes.IndexByte(token, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("%w: token %q", ErrMalformed, token)
		}
		tag, err := strconv.Atoi(string(token[:eq]))
		if err != nil {
			return nil, fmt.Errorf("%w: tag %q", ErrMalformed, token[:eq])
		}
		m.Fields = append(m.Fields, Field{Tag: tag, Value: string(token[eq+1:])})

		switch tag {
		case 9:
			bodyStart = off + len(token) + 1
		case 10:
			trailerPos = off
		}
		off += len(token) + 1
	}

	if bodyStart < 0 || trailerPos < 0 || trailerPos < bodyStart {
		return nil, fmt.Errorf("%w: missing 9= or 10=", ErrMalformed)
	}

	declared, err := m.Int(9)
	if err != nil {
		return nil, err
	}
	if got := trailerPos - bodyStart; int64(got) != declared {
		return nil, fmt.Errorf("%w: declared=%d actual=%d", ErrBodyLength, declared, got)
	}

	var sum uint8
	for _, c := range b[:trailerPos] {
		sum += c
	}
	cs, _ := m.Get(10)
	if want := fmt.Sprintf("%03d", sum); cs != want {
		return nil, fmt.Errorf("%w: declared=%s actual=%s", ErrChecksum, cs, want)
	}

	return m, nil
}
