// Package cstring provides String, the owned NUL-terminated text handle used for
// every string the song database exposes.
//
// A String owns its backing buffer exclusively. Buffers are immutable once a
// String is built, so values can be shared between goroutines freely. Pointers
// handed out by Ptr borrow from the String and stay valid for as long as the
// String itself is reachable; callers must never free or write through them.
package cstring

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// ErrEmbeddedNUL is returned when the input holds a NUL byte, which would
// truncate the terminated representation.
var ErrEmbeddedNUL = errors.New("cstring: input contains an embedded NUL byte")

// String is an owned, NUL-terminated byte buffer. The zero value is the empty
// string and has no buffer.
type String struct {
	// content followed by exactly one NUL, or "" when there is no buffer
	data string
}

// New copies b into a freshly allocated buffer.
func New(b []byte) (String, error) {
	if bytes.IndexByte(b, 0) >= 0 {
		return String{}, ErrEmbeddedNUL
	}
	if len(b) == 0 {
		return String{}, nil
	}
	buf := make([]byte, len(b)+1)
	copy(buf, b)
	return String{data: unsafe.String(&buf[0], len(buf))}, nil
}

// Adopt takes ownership of buf without copying its content. The caller hands
// the buffer over and must not touch it afterwards.
func Adopt(buf []byte) (String, error) {
	if bytes.IndexByte(buf, 0) >= 0 {
		return String{}, ErrEmbeddedNUL
	}
	if len(buf) == 0 {
		return String{}, nil
	}
	buf = append(buf, 0)
	return String{data: unsafe.String(&buf[0], len(buf))}, nil
}

// FromString builds a String holding s.
func FromString(s string) (String, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return String{}, ErrEmbeddedNUL
	}
	if s == "" {
		return String{}, nil
	}
	return String{data: s + "\x00"}, nil
}

// Must is FromString for trusted literals. It panics on an embedded NUL.
func Must(s string) String {
	str, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return str
}

// Copy returns an independent deep copy. The receiver is left untouched.
func (s String) Copy() String {
	if s.data == "" {
		return String{}
	}
	return String{data: strings.Clone(s.data)}
}

// Text decodes the buffer. A missing buffer or content that is not valid
// UTF-8 yields "".
func (s String) Text() string {
	if len(s.data) == 0 {
		return ""
	}
	t := s.data[:len(s.data)-1]
	if !utf8.ValidString(t) {
		return ""
	}
	return t
}

// Ptr borrows the first byte of the NUL-terminated buffer, or nil for the zero
// value.
func (s String) Ptr() *byte {
	if s.data == "" {
		return nil
	}
	return unsafe.StringData(s.data)
}

// Len is the content length in bytes, excluding the terminator.
func (s String) Len() int {
	if s.data == "" {
		return 0
	}
	return len(s.data) - 1
}

func (s String) IsZero() bool {
	return s.data == ""
}

// Equal compares decoded text, never buffer identity.
func (s String) Equal(other String) bool {
	return s.Text() == other.Text()
}

func (s String) Compare(other String) int {
	return strings.Compare(s.Text(), other.Text())
}

// Hash is consistent with Equal.
func (s String) Hash() uint64 {
	return xxhash.Sum64String(s.Text())
}

func (s String) String() string {
	return s.Text()
}

func (s String) MarshalText() ([]byte, error) {
	return []byte(s.Text()), nil
}
