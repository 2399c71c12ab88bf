package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is wrapped by all errors arising from malformed header values or
// malformed response framing. Use errors.Is to detect parse failures.
var ErrParse = fmt.Errorf("wire: parse error")

// Field is a single header name/value pair.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered collection of header fields. Lookups are
// case-insensitive; insertion order is preserved on the wire.
type Header struct {
	fields []Field
}

// Put sets the value for name, overwriting an existing field with the same
// name (case-insensitive). New names are appended in order.
func (h *Header) Put(name, value string) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Name, name) {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Get returns the value for name and whether it is present.
func (h *Header) Get(name string) (string, bool) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Name, name) {
			return h.fields[i].Value, true
		}
	}
	return "", false
}

// Uint returns the value for name parsed as a non-negative integer.
// A missing header or a malformed value yields an error wrapping ErrParse.
func (h *Header) Uint(name string) (int64, error) {
	v, ok := h.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: header %q not present", ErrParse, name)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: header %q: %v", ErrParse, name, err)
	}
	return int64(n), nil
}

// Contains reports whether the value for name contains substr,
// case-insensitively. A missing header reports false.
func (h *Header) Contains(name, substr string) bool {
	v, ok := h.Get(name)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), strings.ToLower(substr))
}

// Fields returns the fields in insertion order. The returned slice is shared;
// callers must not modify it.
func (h *Header) Fields() []Field {
	return h.fields
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Clone returns a deep copy of the header collection.
func (h *Header) Clone() Header {
	fields := make([]Field, len(h.fields))
	copy(fields, h.fields)
	return Header{fields: fields}
}
