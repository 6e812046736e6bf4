// Package headers implements parsing and storage of HTTP header fields.
// Fields keep their wire order and duplicates stay separate entries;
// lookup is case-insensitive and returns the first match.
package headers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// MaxLineBytes bounds a single header or request line on the wire.
const MaxLineBytes = 64 * 1024

// ErrLineTooLong is returned by Parse when a line exceeds MaxLineBytes.
var ErrLineTooLong = errors.New("header line exceeds maximum length")

type Field struct {
	Name  string
	Value string
}

type Headers struct {
	fields []Field
}

func New() *Headers {
	return &Headers{}
}

// Parse consumes at most one header line from data. It returns the number
// of bytes consumed, done=true once the empty line ending the header block
// was consumed, and n=0 when data holds no complete line yet. Lines end
// with LF; a preceding CR is stripped, so both CRLF and bare LF framing
// are accepted.
func (h *Headers) Parse(data []byte) (n int, done bool, err error) {
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		if len(data) > MaxLineBytes {
			return 0, false, ErrLineTooLong
		}
		return 0, false, nil
	}
	// The bound counts raw line bytes including the terminator.
	if idx+1 > MaxLineBytes {
		return 0, false, ErrLineTooLong
	}

	consumed := idx + 1
	line := string(bytes.TrimSuffix(data[:idx], []byte("\r")))
	if line == "" {
		return consumed, true, nil
	}

	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return 0, false, fmt.Errorf("malformed header: %s", line)
	}

	rawKey := parts[0]
	if strings.TrimRight(rawKey, " \t") != rawKey {
		return 0, false, fmt.Errorf("spaces between header name and colon not allowed")
	}

	key := strings.TrimSpace(rawKey)
	value := strings.TrimSpace(parts[1])

	if key == "" {
		return 0, false, fmt.Errorf("empty header key not allowed")
	}

	if !validateHeaderKey(key) {
		return 0, false, fmt.Errorf("invalid characters in header name: %s", key)
	}

	h.fields = append(h.fields, Field{Name: key, Value: value})
	return consumed, false, nil
}

func validateHeaderKey(key string) bool {
	for _, char := range key {
		isAlpha := (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
		isDigit := char >= '0' && char <= '9'
		isSpecial := strings.ContainsRune("!#$%&'*+-.^_`|~", char)

		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

// Get returns the value of the first field matching name, ignoring case.
func (h *Headers) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set replaces the first field matching name, or appends if none exists.
func (h *Headers) Set(name, value string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			h.fields[i].Value = value
			return
		}
	}
	h.Add(name, value)
}

func (h *Headers) Len() int {
	return len(h.fields)
}

// All returns the fields in wire order.
func (h *Headers) All() []Field {
	return h.fields
}
