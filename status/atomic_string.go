package status

import (
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen bounds stored strings in bytes so overlay rows stay short
const MaxStringLen = 32

// AtomicString is a lock-free string cell; the zero value holds ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, cut to at most MaxStringLen bytes on a rune boundary
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.ptr.Store(&val)
}

// Load returns the current value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
