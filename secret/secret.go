// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package secret holds key material in buffers that refuse to be printed,
// logged or marshalled, and that can be wiped once they are no longer needed.
//
// Go has no destructors, so callers scope a secret with defer:
//
//	s := secret.From(entropy)
//	defer s.Destroy()
package secret

import (
	"fmt"
)

// Redacted is what a secret renders as wherever it would otherwise be printed.
const Redacted = "[redacted]"

// Bytes is an owned secret byte buffer.
type Bytes struct {
	b []byte
}

// New returns a zero-filled secret of n bytes.
func New(n int) *Bytes {
	return &Bytes{b: make([]byte, n)}
}

// From copies b into a new secret. The caller still owns b and should clear
// it if it is sensitive.
func From(b []byte) *Bytes {
	s := New(len(b))
	copy(s.b, b)
	return s
}

// Wrap takes ownership of b without copying it. b is wiped by Destroy.
func Wrap(b []byte) *Bytes {
	return &Bytes{b: b}
}

// Expose returns the underlying buffer. The slice aliases the secret: it is
// wiped by Destroy and must not be retained past the secret's lifetime.
func (s *Bytes) Expose() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Copy returns a copy of the secret's bytes that the caller owns.
func (s *Bytes) Copy() []byte {
	if s == nil {
		return nil
	}
	out := make([]byte, len(s.b))
	copy(out, s.b)
	return out
}

// Len returns the buffer length, or 0 once destroyed.
func (s *Bytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Destroy zeroes the buffer and releases it. Destroy is idempotent.
func (s *Bytes) Destroy() {
	if s == nil || s.b == nil {
		return
	}
	clear(s.b)
	s.b = nil
}

// Destroyed reports whether Destroy has been called.
func (s *Bytes) Destroyed() bool {
	return s == nil || s.b == nil
}

// String implements fmt.Stringer.
func (s *Bytes) String() string {
	return Redacted
}

// GoString implements fmt.GoStringer so %#v does not dump the buffer.
func (s *Bytes) GoString() string {
	return "secret.Bytes{" + Redacted + "}"
}

// Format implements fmt.Formatter. Every verb, including %x and %v, renders
// the redacted marker.
func (s *Bytes) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = fmt.Fprint(f, s.GoString())
		return
	}
	_, _ = fmt.Fprint(f, Redacted)
}

// MarshalJSON keeps secrets out of structured logs and JSON dumps.
func (s *Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}

// MarshalText keeps secrets out of text encoders.
func (s *Bytes) MarshalText() ([]byte, error) {
	return []byte(Redacted), nil
}
