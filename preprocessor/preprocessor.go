// Package preprocessor implements the code-point preprocessing stage shared
// by the HTML and CSS tokenizers: a peekable, rollback-by-one stream of
// Unicode scalar values with newline normalization applied eagerly.
//
// Both the HTML5 and CSS Syntax 3 specifications require that an input
// byte/rune stream be normalized before tokenization: every CR, CR LF pair,
// and FF is converted to a single LF. CSS additionally requires NULL and
// lone surrogates to be replaced with U+FFFD at this stage; HTML leaves
// those two cases to the tokenizer's per-state rules (see NullMode below),
// so the same Stream type serves both consumers.
package preprocessor

import "unicode/utf16"

// NullMode controls how the stream treats NUL and lone surrogates.
type NullMode int

const (
	// NullModeContextual leaves U+0000 and lone surrogates untouched; this
	// is the mode the HTML tokenizer uses, since the HTML5 state machine
	// decides per-state whether to substitute U+FFFD.
	NullModeContextual NullMode = iota

	// NullModeReplace substitutes U+0000 and lone surrogates with U+FFFD
	// eagerly, during preprocessing. This is the mode CSS Syntax 3 requires.
	NullModeReplace
)

// Stream is a peekable code-point stream with single-slot rollback.
type Stream struct {
	runes []rune
	pos   int

	reconsume bool
	ignoreLF  bool

	nullMode NullMode
}

// New creates a Stream over input, applying newline normalization
// (CR, CR LF, FF -> LF) and, depending on mode, NUL/surrogate replacement.
func New(input string, mode NullMode) *Stream {
	s := &Stream{nullMode: mode}
	s.Reset(input)
	return s
}

// Reset re-initializes the stream over new input, discarding position state.
func (s *Stream) Reset(input string) {
	raw := []rune(input)
	s.runes = normalize(raw, s.nullMode)
	s.pos = 0
	s.reconsume = false
	s.ignoreLF = false
}

func normalize(raw []rune, mode NullMode) []rune {
	out := make([]rune, 0, len(raw))
	ignoreLF := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '\r':
			ignoreLF = true
			out = append(out, '\n')
			continue
		case '\n':
			if ignoreLF {
				ignoreLF = false
				continue
			}
			out = append(out, '\n')
			continue
		case '\f':
			ignoreLF = false
			out = append(out, '\n')
			continue
		}
		ignoreLF = false
		if mode == NullModeReplace {
			if c == 0 || utf16.IsSurrogate(c) {
				out = append(out, '�')
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Next consumes and returns the next code point. ok is false at EOF.
func (s *Stream) Next() (rune, bool) {
	if s.reconsume {
		s.reconsume = false
		if s.pos == 0 {
			return 0, false
		}
		s.pos--
	}
	if s.pos >= len(s.runes) {
		return 0, false
	}
	c := s.runes[s.pos]
	s.pos++
	return c, true
}

// Rollback restores the single most recently consumed code point so the
// next Next() call returns it again. A no-op on a fresh stream or when
// called twice in a row without an intervening Next().
func (s *Stream) Rollback() {
	if s.pos == 0 {
		return
	}
	s.reconsume = true
}

// Current returns the code point last returned by Next, without consuming.
func (s *Stream) Current() (rune, bool) {
	i := s.pos - 1
	if s.reconsume {
		i--
	}
	if i < 0 || i >= len(s.runes) {
		return 0, false
	}
	return s.runes[i], true
}

// PeekAt returns the code point offset positions ahead of the next
// unconsumed code point, without consuming anything.
func (s *Stream) PeekAt(offset int) (rune, bool) {
	i := s.pos + offset
	if s.reconsume {
		i--
	}
	if i < 0 || i >= len(s.runes) {
		return 0, false
	}
	return s.runes[i], true
}

// PeekN returns up to n upcoming code points as a string, without consuming.
func (s *Stream) PeekN(n int) string {
	start := s.pos
	if s.reconsume {
		start--
	}
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(s.runes) {
		end = len(s.runes)
	}
	if start >= end {
		return ""
	}
	return string(s.runes[start:end])
}

// PeekUntilEnd returns every remaining unconsumed code point as a string.
func (s *Stream) PeekUntilEnd() string {
	start := s.pos
	if s.reconsume {
		start--
	}
	if start < 0 {
		start = 0
	}
	if start >= len(s.runes) {
		return ""
	}
	return string(s.runes[start:])
}

// Advance consumes and discards up to k code points, stopping early at EOF.
func (s *Stream) Advance(k int) {
	for i := 0; i < k; i++ {
		if _, ok := s.Next(); !ok {
			return
		}
	}
}

// ConsumeLiteral consumes lit if it occurs next in the stream (case
// sensitive), advancing past it and returning true; otherwise the stream
// is left untouched.
func (s *Stream) ConsumeLiteral(lit string) bool {
	r := []rune(lit)
	start := s.pos
	if s.reconsume {
		start--
	}
	if start+len(r) > len(s.runes) || start < 0 {
		return false
	}
	for i := range r {
		if s.runes[start+i] != r[i] {
			return false
		}
	}
	s.pos = start + len(r)
	s.reconsume = false
	return true
}

// ConsumeLiteralFold is like ConsumeLiteral but case-insensitive (ASCII
// fold only, sufficient for HTML/CSS keyword matching).
func (s *Stream) ConsumeLiteralFold(lit string) bool {
	r := []rune(lit)
	start := s.pos
	if s.reconsume {
		start--
	}
	if start+len(r) > len(s.runes) || start < 0 {
		return false
	}
	for i := range r {
		if asciiFold(s.runes[start+i]) != asciiFold(r[i]) {
			return false
		}
	}
	s.pos = start + len(r)
	s.reconsume = false
	return true
}

func asciiFold(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}
	return r
}

// Eof reports whether the stream has no more code points to consume.
func (s *Stream) Eof() bool {
	i := s.pos
	if s.reconsume {
		i--
	}
	return i >= len(s.runes)
}
