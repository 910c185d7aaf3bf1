// Package css implements the tokenizer defined by CSS Syntax Level 3
// (https://www.w3.org/TR/css-syntax-3/). It is a leaf component: it turns a
// stream of Unicode code points into CSS tokens and performs no parsing of
// rules, declarations, or selectors — that is left to a consumer outside
// this module.
package css

import (
	"strconv"
	"strings"

	"github.com/corehtml/corehtml/preprocessor"
)

// Tokenizer implements the CSS Syntax Level 3 tokenization algorithm.
type Tokenizer struct {
	stream *preprocessor.Stream
	done   bool
}

// New creates a Tokenizer over input. Newlines are normalized and NUL /
// lone surrogates are replaced with U+FFFD eagerly, per CSS Syntax 3 §3.3.
func New(input string) *Tokenizer {
	return &Tokenizer{
		stream: preprocessor.New(input, preprocessor.NullModeReplace),
	}
}

func isWhitespace(r rune) bool {
	return r == '\n' || r == '\t' || r == ' '
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r > 0x7F
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}

// Next returns the next token in the stream. Once Eof is returned, every
// subsequent call also returns Eof; re-invoke New on a fresh string to
// restart tokenization.
func (t *Tokenizer) Next() Token {
	if t.done {
		return Token{Kind: EOF}
	}
	t.consumeComments()
	c, ok := t.stream.Next()
	if !ok {
		t.done = true
		return Token{Kind: EOF}
	}

	switch {
	case isWhitespace(c):
		t.consumeRunOfWhitespace()
		return Token{Kind: Whitespace}
	case c == '"':
		return t.consumeStringToken('"')
	case c == '#':
		if n, ok := t.stream.PeekAt(0); ok && (isIdentChar(n) || t.isValidEscapeAt(0)) {
			flag := HashUnrestricted
			if t.wouldStartIdentSequenceAt(0) {
				flag = HashID
			}
			name := t.consumeName()
			return Token{Kind: Hash, Value: name, HashFlag: flag}
		}
		return Token{Kind: Delim, Delim: c}
	case c == '\'':
		return t.consumeStringToken('\'')
	case c == '(':
		return Token{Kind: LeftParen}
	case c == ')':
		return Token{Kind: RightParen}
	case c == '+':
		if t.wouldStartNumberAt(-1) {
			t.stream.Rollback()
			return t.consumeNumericToken()
		}
		return Token{Kind: Delim, Delim: c}
	case c == ',':
		return Token{Kind: Comma}
	case c == '-':
		if t.wouldStartNumberAt(-1) {
			t.stream.Rollback()
			return t.consumeNumericToken()
		}
		if n1, ok1 := t.stream.PeekAt(0); ok1 && n1 == '-' {
			if n2, ok2 := t.stream.PeekAt(1); ok2 && n2 == '>' {
				t.stream.Advance(2)
				return Token{Kind: CDC}
			}
		}
		if t.wouldStartIdentSequenceAt(-1) {
			t.stream.Rollback()
			return t.consumeIdentLikeToken()
		}
		return Token{Kind: Delim, Delim: c}
	case c == '.':
		if t.wouldStartNumberAt(-1) {
			t.stream.Rollback()
			return t.consumeNumericToken()
		}
		return Token{Kind: Delim, Delim: c}
	case c == ':':
		return Token{Kind: Colon}
	case c == ';':
		return Token{Kind: Semicolon}
	case c == '<':
		if t.stream.PeekN(3) == "!--" {
			t.stream.Advance(3)
			return Token{Kind: CDO}
		}
		return Token{Kind: Delim, Delim: c}
	case c == '@':
		if t.wouldStartIdentSequenceAt(0) {
			name := t.consumeName()
			return Token{Kind: AtKeyword, Value: name}
		}
		return Token{Kind: Delim, Delim: c}
	case c == '[':
		return Token{Kind: LeftBracket}
	case c == '\\':
		if t.isValidEscapeAt(-1) {
			t.stream.Rollback()
			return t.consumeIdentLikeToken()
		}
		return Token{Kind: Delim, Delim: c}
	case c == ']':
		return Token{Kind: RightBracket}
	case c == '{':
		return Token{Kind: LeftBrace}
	case c == '}':
		return Token{Kind: RightBrace}
	case isDigit(c):
		t.stream.Rollback()
		return t.consumeNumericToken()
	case isIdentStart(c):
		t.stream.Rollback()
		return t.consumeIdentLikeToken()
	default:
		return Token{Kind: Delim, Delim: c}
	}
}

// consumeComments consumes zero or more comments transparently, per
// CSS Syntax 3 §4.3.2. An unterminated comment runs to EOF without
// producing a token for it.
func (t *Tokenizer) consumeComments() {
	for {
		if t.stream.PeekN(2) != "/*" {
			return
		}
		t.stream.Advance(2)
		for {
			c, ok := t.stream.Next()
			if !ok {
				return
			}
			if c == '*' {
				if n, ok := t.stream.PeekAt(0); ok && n == '/' {
					t.stream.Advance(1)
					break
				}
			}
		}
	}
}

func (t *Tokenizer) consumeRunOfWhitespace() {
	for {
		c, ok := t.stream.Next()
		if !ok {
			return
		}
		if !isWhitespace(c) {
			t.stream.Rollback()
			return
		}
	}
}

// consumeStringToken implements CSS Syntax 3 §4.3.5.
func (t *Tokenizer) consumeStringToken(ending rune) Token {
	var sb strings.Builder
	for {
		c, ok := t.stream.Next()
		if !ok {
			return Token{Kind: String, Value: sb.String()}
		}
		switch {
		case c == ending:
			return Token{Kind: String, Value: sb.String()}
		case c == '\n':
			t.stream.Rollback()
			return Token{Kind: BadString}
		case c == '\\':
			n, ok := t.stream.PeekAt(0)
			if !ok {
				continue
			}
			if n == '\n' {
				t.stream.Advance(1)
				continue
			}
			sb.WriteRune(t.consumeEscapedCodePoint())
		default:
			sb.WriteRune(c)
		}
	}
}

// isValidEscapeAt reports whether the two code points starting at the
// stream position offset past the current one form a valid escape.
func (t *Tokenizer) isValidEscapeAt(offset int) bool {
	c0, ok0 := t.stream.PeekAt(offset)
	if !ok0 || c0 != '\\' {
		return false
	}
	c1, ok1 := t.stream.PeekAt(offset + 1)
	return ok1 && c1 != '\n'
}

// wouldStartIdentSequenceAt implements the 3-code-point ident-sequence-start
// predicate (CSS Syntax 3 §4.3.9), looking ahead from offset.
func (t *Tokenizer) wouldStartIdentSequenceAt(offset int) bool {
	c0, ok0 := t.stream.PeekAt(offset)
	if !ok0 {
		return false
	}
	switch {
	case c0 == '-':
		c1, ok1 := t.stream.PeekAt(offset + 1)
		if !ok1 {
			return false
		}
		if isIdentStart(c1) || c1 == '-' {
			return true
		}
		return t.isValidEscapeAt(offset + 1)
	case isIdentStart(c0):
		return true
	case c0 == '\\':
		return t.isValidEscapeAt(offset)
	default:
		return false
	}
}

// wouldStartNumberAt implements the 3-code-point number-start predicate
// (CSS Syntax 3 §4.3.8), looking ahead from offset.
func (t *Tokenizer) wouldStartNumberAt(offset int) bool {
	c0, ok0 := t.stream.PeekAt(offset)
	if !ok0 {
		return false
	}
	switch {
	case c0 == '+' || c0 == '-':
		c1, ok1 := t.stream.PeekAt(offset + 1)
		if !ok1 {
			return false
		}
		if isDigit(c1) {
			return true
		}
		if c1 == '.' {
			c2, ok2 := t.stream.PeekAt(offset + 2)
			return ok2 && isDigit(c2)
		}
		return false
	case c0 == '.':
		c1, ok1 := t.stream.PeekAt(offset + 1)
		return ok1 && isDigit(c1)
	case isDigit(c0):
		return true
	default:
		return false
	}
}

// consumeEscapedCodePoint implements CSS Syntax 3 §4.3.7. The backslash
// itself must already be consumed.
func (t *Tokenizer) consumeEscapedCodePoint() rune {
	c, ok := t.stream.Next()
	if !ok {
		return '�'
	}
	if isHexDigit(c) {
		hex := string(c)
		for i := 0; i < 5; i++ {
			n, ok := t.stream.PeekAt(0)
			if !ok || !isHexDigit(n) {
				break
			}
			t.stream.Advance(1)
			hex += string(n)
		}
		if n, ok := t.stream.PeekAt(0); ok && isWhitespace(n) {
			t.stream.Advance(1)
		}
		v, err := strconv.ParseInt(hex, 16, 32)
		if err != nil || v == 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
			return '�'
		}
		return rune(v)
	}
	return c
}

// consumeName implements "consume an ident sequence" (CSS Syntax 3 §4.3.12).
func (t *Tokenizer) consumeName() string {
	var sb strings.Builder
	for {
		c, ok := t.stream.Next()
		if !ok {
			return sb.String()
		}
		switch {
		case isIdentChar(c):
			sb.WriteRune(c)
		case t.isValidEscapeAt(-1):
			sb.WriteRune(t.consumeEscapedCodePoint())
		default:
			t.stream.Rollback()
			return sb.String()
		}
	}
}

// consumeNumber implements "consume a number" (CSS Syntax 3 §4.3.13),
// returning the representation consumed and whether it is integer-typed.
func (t *Tokenizer) consumeNumber() (string, NumberFlag) {
	var sb strings.Builder
	flag := NumberFlagInteger

	if c, ok := t.stream.PeekAt(0); ok && (c == '+' || c == '-') {
		t.stream.Advance(1)
		sb.WriteRune(c)
	}
	for {
		c, ok := t.stream.PeekAt(0)
		if !ok || !isDigit(c) {
			break
		}
		t.stream.Advance(1)
		sb.WriteRune(c)
	}
	if c0, ok0 := t.stream.PeekAt(0); ok0 && c0 == '.' {
		if c1, ok1 := t.stream.PeekAt(1); ok1 && isDigit(c1) {
			flag = NumberFlagNumber
			t.stream.Advance(1)
			sb.WriteByte('.')
			for {
				c, ok := t.stream.PeekAt(0)
				if !ok || !isDigit(c) {
					break
				}
				t.stream.Advance(1)
				sb.WriteRune(c)
			}
		}
	}
	if c0, ok0 := t.stream.PeekAt(0); ok0 && (c0 == 'e' || c0 == 'E') {
		signOffset := 1
		if c1, ok1 := t.stream.PeekAt(1); ok1 && (c1 == '+' || c1 == '-') {
			signOffset = 2
		}
		if c2, ok2 := t.stream.PeekAt(signOffset); ok2 && isDigit(c2) {
			flag = NumberFlagNumber
			sb.WriteRune(c0)
			t.stream.Advance(1)
			if signOffset == 2 {
				sign, _ := t.stream.PeekAt(0)
				sb.WriteRune(sign)
				t.stream.Advance(1)
			}
			for {
				c, ok := t.stream.PeekAt(0)
				if !ok || !isDigit(c) {
					break
				}
				t.stream.Advance(1)
				sb.WriteRune(c)
			}
		}
	}
	return sb.String(), flag
}

func parseNumberValue(repr string) float64 {
	v, err := strconv.ParseFloat(repr, 64)
	if err != nil {
		return 0
	}
	return v
}

// consumeNumericToken implements CSS Syntax 3 §4.3.3.
func (t *Tokenizer) consumeNumericToken() Token {
	repr, flag := t.consumeNumber()
	value := parseNumberValue(repr)

	if t.wouldStartIdentSequenceAt(0) {
		unit := t.consumeName()
		return Token{Kind: Dimension, Number: value, NumberFlag: flag, Unit: unit}
	}
	if c, ok := t.stream.PeekAt(0); ok && c == '%' {
		t.stream.Advance(1)
		return Token{Kind: Percentage, Number: value}
	}
	return Token{Kind: Number, Number: value, NumberFlag: flag}
}

// consumeIdentLikeToken implements CSS Syntax 3 §4.3.4.
func (t *Tokenizer) consumeIdentLikeToken() Token {
	name := t.consumeName()
	if strings.EqualFold(name, "url") {
		if c, ok := t.stream.PeekAt(0); ok && c == '(' {
			t.stream.Advance(1)
			// Skip whitespace, then decide between a url() token and a
			// plain function token (CSS Syntax 3 §4.3.4 step 3).
			i := 0
			for {
				c, ok := t.stream.PeekAt(i)
				if ok && isWhitespace(c) {
					i++
					continue
				}
				break
			}
			c0, ok0 := t.stream.PeekAt(i)
			if ok0 && (c0 == '"' || c0 == '\'') {
				t.stream.Advance(i)
				return Token{Kind: Function, Value: name}
			}
			if !ok0 {
				t.stream.Advance(i)
				return Token{Kind: Function, Value: name}
			}
			t.stream.Advance(i)
			return t.consumeURLToken()
		}
	}
	if c, ok := t.stream.PeekAt(0); ok && c == '(' {
		t.stream.Advance(1)
		return Token{Kind: Function, Value: name}
	}
	return Token{Kind: Ident, Value: name}
}

// consumeURLToken implements CSS Syntax 3 §4.3.6. The opening "url(" and
// any leading whitespace have already been consumed by the caller.
func (t *Tokenizer) consumeURLToken() Token {
	var sb strings.Builder
	for {
		c, ok := t.stream.Next()
		if !ok {
			return Token{Kind: URL, Value: sb.String()}
		}
		switch {
		case c == ')':
			return Token{Kind: URL, Value: sb.String()}
		case isWhitespace(c):
			t.consumeRunOfWhitespace()
			if n, ok := t.stream.Next(); !ok || n == ')' {
				return Token{Kind: URL, Value: sb.String()}
			}
			return t.consumeBadURLRemnants()
		case c == '"' || c == '\'' || c == '(':
			return t.consumeBadURLRemnants()
		case isNonPrintable(c):
			return t.consumeBadURLRemnants()
		case c == '\\':
			if t.isValidEscapeAt(-1) {
				sb.WriteRune(t.consumeEscapedCodePoint())
				continue
			}
			return t.consumeBadURLRemnants()
		default:
			sb.WriteRune(c)
		}
	}
}

func isNonPrintable(r rune) bool {
	return (r >= 0 && r <= 0x08) || r == 0x0B || (r >= 0x0E && r <= 0x1F) || r == 0x7F
}

// consumeBadURLRemnants implements "consume the remnants of a bad url"
// (CSS Syntax 3 §4.3.14).
func (t *Tokenizer) consumeBadURLRemnants() Token {
	for {
		c, ok := t.stream.Next()
		if !ok {
			return Token{Kind: BadURL}
		}
		if c == ')' {
			return Token{Kind: BadURL}
		}
		if t.isValidEscapeAt(-1) {
			t.consumeEscapedCodePoint()
		}
	}
}
