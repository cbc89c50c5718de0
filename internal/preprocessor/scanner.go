package preprocessor

import "strings"

// scanner walks the source buffer and yields one classified token per
// call. It never fails: a byte it cannot classify becomes a length-1
// Unknown token, so lexing always makes forward progress.
type scanner struct {
	buf   string
	cur   int
	lines *LineIndex

	// suppressTo marks the end of include-spliced text; line breaks
	// inside it are not recorded as line starts, so diagnostics keep
	// referring to the primary buffer.
	suppressTo int
}

func newScanner(src string) *scanner {
	return &scanner{buf: src, lines: NewLineIndex()}
}

func (s *scanner) text(t Token) string { return s.buf[t.Begin:t.End()] }

// splice inserts text at the cursor, extending the buffer in place.
// The text is normalized to end with a newline.
func (s *scanner) splice(text string) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	s.buf = s.buf[:s.cur] + text + s.buf[s.cur:]
	if s.suppressTo > s.cur {
		s.suppressTo += len(text)
	} else {
		s.suppressTo = s.cur + len(text)
	}
}

func (s *scanner) next() Token {
	s.skipSpaceAndComments()
	if s.cur >= len(s.buf) {
		return Token{Begin: s.cur, Kind: EOF}
	}

	start := s.cur
	c := s.buf[s.cur]

	if c == '\n' {
		s.cur++
		if s.cur > s.suppressTo {
			s.lines.Add(s.cur)
		}
		return Token{start, 1, Newline}
	}

	if isIdentStart(c) {
		s.cur++
		for s.cur < len(s.buf) && isIdentPart(s.buf[s.cur]) {
			s.cur++
		}
		return Token{start, s.cur - start, Ident}
	}

	if isDigit(c) || (c == '.' && s.cur+1 < len(s.buf) && isDigit(s.buf[s.cur+1])) {
		s.scanNumber()
		return Token{start, s.cur - start, PPNumber}
	}

	if c == '"' || c == '\'' {
		s.scanQuoted(c)
		if c == '"' {
			return Token{start, s.cur - start, StringLit}
		}
		return Token{start, s.cur - start, CharLit}
	}

	if c == '#' {
		s.cur++
		if s.cur < len(s.buf) && s.buf[s.cur] == '#' {
			s.cur++
			return Token{start, 2, HashHash}
		}
		return Token{start, 1, Hash}
	}

	// Punctuators, longest match first.
	if s.cur+3 <= len(s.buf) {
		if k, ok := punct3[s.buf[s.cur:s.cur+3]]; ok {
			s.cur += 3
			return Token{start, 3, k}
		}
	}
	if s.cur+2 <= len(s.buf) {
		if k, ok := punct2[s.buf[s.cur:s.cur+2]]; ok {
			s.cur += 2
			return Token{start, 2, k}
		}
	}
	s.cur++
	if k, ok := punct1[c]; ok {
		return Token{start, 1, k}
	}
	return Token{start, 1, Unknown}
}

// skipSpaceAndComments advances past horizontal whitespace and both
// comment forms. Line breaks stay visible as tokens. An unterminated
// block comment consumes to the end of the buffer without error.
func (s *scanner) skipSpaceAndComments() {
	for s.cur < len(s.buf) {
		c := s.buf[s.cur]
		if c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f' {
			s.cur++
			continue
		}
		if c == '/' && s.cur+1 < len(s.buf) {
			if s.buf[s.cur+1] == '/' {
				for s.cur < len(s.buf) && s.buf[s.cur] != '\n' {
					s.cur++
				}
				continue
			}
			if s.buf[s.cur+1] == '*' {
				s.cur += 2
				for s.cur+1 < len(s.buf) && !(s.buf[s.cur] == '*' && s.buf[s.cur+1] == '/') {
					s.cur++
				}
				if s.cur+1 < len(s.buf) {
					s.cur += 2
				} else {
					s.cur = len(s.buf)
				}
				continue
			}
		}
		return
	}
}

// scanNumber consumes a PPNumber greedily: decimal or .-led decimal
// with optional [eE] exponent, or 0x/0X hex with optional hex fraction
// and [pP] binary exponent, then any trailing alphanumeric suffix
// characters (L, UL, f, ...).
func (s *scanner) scanNumber() {
	if s.buf[s.cur] == '0' && s.cur+1 < len(s.buf) && (s.buf[s.cur+1] == 'x' || s.buf[s.cur+1] == 'X') {
		s.cur += 2
		for s.cur < len(s.buf) && isHexDigit(s.buf[s.cur]) {
			s.cur++
		}
		if s.cur < len(s.buf) && s.buf[s.cur] == '.' {
			s.cur++
			for s.cur < len(s.buf) && isHexDigit(s.buf[s.cur]) {
				s.cur++
			}
		}
		if s.cur < len(s.buf) && (s.buf[s.cur] == 'p' || s.buf[s.cur] == 'P') {
			s.scanExponent()
		}
	} else {
		for s.cur < len(s.buf) && isDigit(s.buf[s.cur]) {
			s.cur++
		}
		if s.cur < len(s.buf) && s.buf[s.cur] == '.' {
			s.cur++
			for s.cur < len(s.buf) && isDigit(s.buf[s.cur]) {
				s.cur++
			}
		}
		if s.cur < len(s.buf) && (s.buf[s.cur] == 'e' || s.buf[s.cur] == 'E') {
			s.scanExponent()
		}
	}
	for s.cur < len(s.buf) && isAlnum(s.buf[s.cur]) {
		s.cur++
	}
}

// scanExponent consumes [eEpP][+-]?digits if and only if the digits are
// present; otherwise the letter is left for the suffix loop.
func (s *scanner) scanExponent() {
	j := s.cur + 1
	if j < len(s.buf) && (s.buf[j] == '+' || s.buf[j] == '-') {
		j++
	}
	if j >= len(s.buf) || !isDigit(s.buf[j]) {
		return
	}
	s.cur = j
	for s.cur < len(s.buf) && isDigit(s.buf[s.cur]) {
		s.cur++
	}
}

// scanQuoted consumes a string or character literal including the
// closing quote. A backslash escapes the following character. An
// unterminated literal consumes to the end of the buffer without error.
func (s *scanner) scanQuoted(quote byte) {
	s.cur++
	for s.cur < len(s.buf) {
		c := s.buf[s.cur]
		s.cur++
		if c == '\\' {
			if s.cur < len(s.buf) {
				s.cur++
			}
			continue
		}
		if c == quote {
			return
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlnum(b byte) bool { return isIdentPart(b) }

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
