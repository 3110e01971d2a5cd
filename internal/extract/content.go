package extract

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// kerningSpace is the TJ displacement, in thousandths of text space,
// beyond which an array gap is read as a word space.
const kerningSpace = -200

// textFromStream collects the strings shown by text operators in a page
// content stream, breaking lines on the operators that move to a new line.
// Line layout of the stream itself is irrelevant; only tokens count.
func textFromStream(data []byte) string {
	var (
		sb       strings.Builder
		operands []string
		inArray  bool
	)
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	show := func() {
		for _, s := range operands {
			sb.WriteString(s)
		}
	}

	sc := contentScanner{data: data}
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString:
			operands = append(operands, tok.text)
		case tokArrayOpen:
			inArray = true
		case tokArrayClose:
			inArray = false
		case tokNumber:
			if inArray && tok.number < kerningSpace {
				operands = append(operands, " ")
			}
		case tokOperator:
			switch tok.text {
			case "Tj", "TJ":
				show()
			case "'", `"`:
				newline()
				show()
			case "Td", "TD", "T*", "Tm", "ET":
				newline()
			case "BI":
				sc.skipInlineImage()
			}
			operands = operands[:0]
			inArray = false
		}
	}
	return cleanLines(sb.String())
}

type tokenKind int

const (
	tokString tokenKind = iota
	tokNumber
	tokOperator
	tokArrayOpen
	tokArrayClose
)

type token struct {
	kind   tokenKind
	text   string
	number float64
}

// contentScanner tokenises a PDF content stream. Names, dictionaries and
// comments are consumed silently.
type contentScanner struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *contentScanner) next() (token, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isPDFSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			return token{kind: tokString, text: s.literalString()}, true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				continue
			}
			return token{kind: tokString, text: s.hexString()}, true
		case c == '>', c == ')', c == '{', c == '}':
			s.pos++
		case c == '[':
			s.pos++
			return token{kind: tokArrayOpen}, true
		case c == ']':
			s.pos++
			return token{kind: tokArrayClose}, true
		case c == '/':
			s.pos++
			s.regular()
		default:
			word := s.regular()
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, number: n}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

// regular consumes a run of regular characters.
func (s *contentScanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isPDFSpace(s.data[s.pos]) && !isPDFDelimiter(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// literalString consumes a (...) string with balanced parentheses.
func (s *contentScanner) literalString() string {
	s.pos++
	start, depth := s.pos, 1
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case '\\':
			s.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw := s.data[start:s.pos]
				s.pos++
				return decodePDFString(raw)
			}
		}
		s.pos++
	}
	return decodePDFString(s.data[start:])
}

// hexString consumes a <...> string. Whitespace is ignored and an odd
// final digit is padded with zero.
func (s *contentScanner) hexString() string {
	s.pos++
	var digits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		if c := s.data[s.pos]; isHexDigit(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, len(digits)/2)
	for i := range raw {
		v, _ := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		raw[i] = byte(v)
	}
	return textFromBytes(raw)
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// skipInlineImage moves past the binary data of an inline image, which
// runs from the ID operator to a standalone EI.
func (s *contentScanner) skipInlineImage() {
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			s.pos > 0 && isPDFSpace(s.data[s.pos-1]) &&
			(s.pos+2 == len(s.data) || isPDFSpace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// decodePDFString handles the escape sequences of a literal string.
func decodePDFString(raw []byte) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\r', '\n':
			// line continuation
			if raw[i] == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			if raw[i] < '0' || raw[i] > '7' {
				out = append(out, raw[i])
				continue
			}
			// Octal escape, up to three digits.
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			out = append(out, byte(val))
		}
	}
	return textFromBytes(out)
}

// textFromBytes decodes string bytes: UTF-16BE when they carry a byte
// order mark, otherwise one rune per byte.
func textFromBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
