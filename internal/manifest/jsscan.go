package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// errUnterminated is returned when a string, comment, regexp, or bracket
// pair runs past the end of the source.
var errUnterminated = errors.New("unterminated literal")

// ErrNotStatic is returned when the manifest needs to be evaluated to know
// its stories.
var ErrNotStatic = errors.New("manifest cannot be read statically; use the node loader")

// jsScanner walks JavaScript source just far enough to find and copy object
// and array literals. It understands strings, template literals, comments,
// and regexp literals so that brackets inside them are not counted.
type jsScanner struct {
	src []byte
	pos int
	// prev is the last significant byte consumed; used to tell a regexp
	// literal apart from a division operator.
	prev byte
}

func (s *jsScanner) eof() bool { return s.pos >= len(s.src) }

func (s *jsScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *jsScanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

// skipTrivia skips whitespace and comments.
func (s *jsScanner) skipTrivia() error {
	for !s.eof() {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.peekAt(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.pos++
			}
		case c == '/' && s.peekAt(1) == '*':
			end := strings.Index(string(s.src[s.pos+2:]), "*/")
			if end < 0 {
				return fmt.Errorf("block comment at offset %d: %w", s.pos, errUnterminated)
			}
			s.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

// regexpAllowed reports whether a '/' at the current position starts a
// regexp literal rather than a division.
func (s *jsScanner) regexpAllowed() bool {
	switch s.prev {
	case 0, '(', ',', '=', ':', '[', '!', '&', '|', '?', '{', '}', ';':
		return true
	}
	return false
}

// readString reads a quoted string starting at the opening quote and returns
// its decoded value.
func (s *jsScanner) readString() (string, error) {
	start := s.pos
	quote := s.src[s.pos]
	s.pos++
	var b strings.Builder
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			s.prev = quote
			return b.String(), nil
		case c == '\\':
			if err := s.readEscape(&b); err != nil {
				return "", err
			}
		case c == '\n' && quote != '`':
			return "", fmt.Errorf("string at offset %d: %w", start, errUnterminated)
		case c == '$' && quote == '`' && s.peekAt(1) == '{':
			return "", fmt.Errorf("%w: template literal at offset %d uses interpolation", ErrNotStatic, start)
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", fmt.Errorf("string at offset %d: %w", start, errUnterminated)
}

// readEscape decodes one backslash escape sequence into b.
func (s *jsScanner) readEscape(b *strings.Builder) error {
	s.pos++ // backslash
	if s.eof() {
		return errUnterminated
	}
	c := s.src[s.pos]
	s.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		if s.pos+2 > len(s.src) {
			return errUnterminated
		}
		n, err := strconv.ParseUint(string(s.src[s.pos:s.pos+2]), 16, 8)
		if err != nil {
			return fmt.Errorf("invalid \\x escape at offset %d", s.pos)
		}
		b.WriteRune(rune(n))
		s.pos += 2
	case 'u':
		hex := ""
		if s.peek() == '{' {
			end := strings.IndexByte(string(s.src[s.pos:]), '}')
			if end < 0 {
				return errUnterminated
			}
			hex = string(s.src[s.pos+1 : s.pos+end])
			s.pos += end + 1
		} else {
			if s.pos+4 > len(s.src) {
				return errUnterminated
			}
			hex = string(s.src[s.pos : s.pos+4])
			s.pos += 4
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return fmt.Errorf("invalid \\u escape %q", hex)
		}
		b.WriteRune(rune(n))
	default:
		b.WriteByte(c)
	}
	return nil
}

// readRegexp reads a regexp literal starting at the opening slash and
// returns its source text, delimiters and flags included.
func (s *jsScanner) readRegexp() (string, error) {
	start := s.pos
	s.pos++
	inClass := false
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case c == '\n':
			return "", fmt.Errorf("regexp at offset %d: %w", start, errUnterminated)
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			s.pos++
			for !s.eof() && isIdentByte(s.peek()) {
				s.pos++
			}
			s.prev = '/'
			return string(s.src[start:s.pos]), nil
		}
		s.pos++
	}
	return "", fmt.Errorf("regexp at offset %d: %w", start, errUnterminated)
}

// readIdent reads an identifier at the current position.
func (s *jsScanner) readIdent() string {
	start := s.pos
	for !s.eof() && isIdentByte(s.peek()) {
		s.pos++
	}
	if s.pos > start {
		s.prev = 'a'
	}
	return string(s.src[start:s.pos])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// skipValue advances past one property value, stopping in front of the ','
// or '}' that ends it at the current nesting level.
func (s *jsScanner) skipValue() error {
	depth := 0
	for {
		if err := s.skipTrivia(); err != nil {
			return err
		}
		if s.eof() {
			return fmt.Errorf("object literal: %w", errUnterminated)
		}
		c := s.peek()
		switch {
		case c == '"' || c == '\'' || c == '`':
			if _, err := s.skipQuoted(); err != nil {
				return err
			}
			continue
		case c == '/' && s.regexpAllowed():
			if _, err := s.readRegexp(); err != nil {
				return err
			}
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return nil
			}
			depth--
		case c == ',' && depth == 0:
			return nil
		case isIdentByte(c):
			s.readIdent()
			continue
		}
		s.prev = c
		s.pos++
	}
}

// skipQuoted skips a string or template literal, tolerating interpolation.
func (s *jsScanner) skipQuoted() (int, error) {
	start := s.pos
	quote := s.src[s.pos]
	s.pos++
	nested := 0
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case quote == '`' && c == '$' && s.peekAt(1) == '{':
			nested++
			s.pos += 2
			continue
		case quote == '`' && c == '}' && nested > 0:
			nested--
		case c == quote && nested == 0:
			s.pos++
			s.prev = quote
			return start, nil
		}
		s.pos++
	}
	return start, fmt.Errorf("string at offset %d: %w", start, errUnterminated)
}

// findExport positions the scanner on the '{' of the object literal bound
// by "module.exports =" or "export default". Comments, strings, template
// literals and regexps are skipped so that text inside them never matches.
func (s *jsScanner) findExport() (bool, error) {
	for {
		if err := s.skipTrivia(); err != nil {
			return false, err
		}
		if s.eof() {
			return false, nil
		}
		c := s.peek()
		switch {
		case c == '"' || c == '\'' || c == '`':
			if _, err := s.skipQuoted(); err != nil {
				return false, err
			}
		case c == '/' && s.regexpAllowed():
			if _, err := s.readRegexp(); err != nil {
				return false, err
			}
		case isIdentByte(c):
			member := s.prev == '.'
			word := s.readIdent()
			if member {
				continue
			}
			mark, prev := s.pos, s.prev
			if s.exportTail(word) {
				return true, nil
			}
			s.pos, s.prev = mark, prev
		default:
			s.prev = c
			s.pos++
		}
	}
}

// exportTail matches the tokens that follow "module" or "export" in an
// object export and leaves the scanner on the '{'.
func (s *jsScanner) exportTail(word string) bool {
	switch word {
	case "module":
		if !s.expectByte('.') || !s.expectIdent("exports") || !s.expectByte('=') {
			return false
		}
		if s.peek() == '=' {
			return false // comparison, not assignment
		}
	case "export":
		if !s.expectIdent("default") {
			return false
		}
	default:
		return false
	}
	if s.skipTrivia() != nil {
		return false
	}
	return s.peek() == '{'
}

func (s *jsScanner) expectByte(c byte) bool {
	if s.skipTrivia() != nil || s.peek() != c {
		return false
	}
	s.pos++
	s.prev = c
	return true
}

func (s *jsScanner) expectIdent(name string) bool {
	if s.skipTrivia() != nil || !isIdentByte(s.peek()) {
		return false
	}
	return s.readIdent() == name
}

// findProperty scans the object literal whose '{' is at the current position
// for a top-level property called name. On success the scanner is left on
// the first byte of the property value.
func (s *jsScanner) findProperty(name string) (bool, error) {
	s.pos++ // '{'
	s.prev = '{'
	for {
		if err := s.skipTrivia(); err != nil {
			return false, err
		}
		if s.eof() {
			return false, fmt.Errorf("object literal: %w", errUnterminated)
		}

		var key string
		c := s.peek()
		switch {
		case c == '}':
			return false, nil
		case c == ',':
			s.pos++
			s.prev = ','
			continue
		case c == '"' || c == '\'':
			k, err := s.readString()
			if err != nil {
				return false, err
			}
			key = k
		case c == '.' && s.peekAt(1) == '.' && s.peekAt(2) == '.':
			s.pos += 3
			if err := s.skipValue(); err != nil {
				return false, err
			}
			continue
		case c == '[':
			// computed key
			if err := s.skipValue(); err != nil {
				return false, err
			}
			continue
		case isIdentByte(c):
			key = s.readIdent()
		default:
			return false, fmt.Errorf("unexpected %q at offset %d in object literal", c, s.pos)
		}

		if err := s.skipTrivia(); err != nil {
			return false, err
		}
		if key == name {
			switch s.peek() {
			case ':':
				s.pos++
				s.prev = ':'
				if err := s.skipTrivia(); err != nil {
					return false, err
				}
				return true, nil
			case ',', '}':
				return false, fmt.Errorf("%w: property %q uses shorthand syntax", ErrNotStatic, name)
			default:
				return false, fmt.Errorf("%w: property %q is not a plain value", ErrNotStatic, name)
			}
		}
		if err := s.skipValue(); err != nil {
			return false, err
		}
	}
}

// copyArray re-emits the array literal at the current position as a YAML
// flow sequence: strings become double-quoted scalars, regexp literals become
// strings holding their source, comments and trailing commas are dropped.
// Anything that needs evaluation (identifiers, spreads, member access, calls,
// operators) is rejected with ErrNotStatic.
func (s *jsScanner) copyArray() (string, error) {
	if s.peek() != '[' {
		return "", fmt.Errorf("expected array literal at offset %d", s.pos)
	}
	var (
		b     strings.Builder
		stack []byte
	)
	for {
		if err := s.skipTrivia(); err != nil {
			return "", err
		}
		if s.eof() {
			return "", fmt.Errorf("array literal: %w", errUnterminated)
		}
		c := s.peek()
		switch {
		case c == '"' || c == '\'' || c == '`':
			v, err := s.readString()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.Quote(v))
			continue
		case c == '/' && s.regexpAllowed():
			v, err := s.readRegexp()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.Quote(v))
			continue
		case isIdentByte(c):
			start := s.pos
			word := s.readIdent()
			if err := s.skipTrivia(); err != nil {
				return "", err
			}
			inObject := len(stack) > 0 && stack[len(stack)-1] == '{'
			if !(inObject && s.peek() == ':') && !isLiteralWord(word) {
				return "", fmt.Errorf("%w: stories entry %q at offset %d is not a literal", ErrNotStatic, word, start)
			}
			b.WriteString(word)
			continue
		case c == '[' || c == '{':
			stack = append(stack, c)
			b.WriteByte(c)
		case c == ']' || c == '}':
			open := byte('[')
			if c == '}' {
				open = '{'
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return "", fmt.Errorf("unbalanced %q at offset %d in array literal", c, s.pos)
			}
			stack = stack[:len(stack)-1]
			trimTrailingComma(&b)
			b.WriteByte(c)
			if len(stack) == 0 {
				s.pos++
				s.prev = c
				return b.String(), nil
			}
		case c == ':':
			b.WriteString(": ")
		case c == ',':
			b.WriteString(", ")
		case c == '.' && s.peekAt(1) == '.' && s.peekAt(2) == '.':
			return "", fmt.Errorf("%w: stories uses a spread at offset %d", ErrNotStatic, s.pos)
		default:
			return "", fmt.Errorf("%w: unexpected %q at offset %d in stories", ErrNotStatic, c, s.pos)
		}
		s.prev = c
		s.pos++
	}
}

// isLiteralWord reports whether an identifier-like token is a keyword
// literal or a number, the only bare words a static value may contain.
func isLiteralWord(word string) bool {
	switch word {
	case "true", "false", "null":
		return true
	}
	return word[0] >= '0' && word[0] <= '9'
}

// trimTrailingComma drops a dangling ", " before a closing bracket.
func trimTrailingComma(b *strings.Builder) {
	out := strings.TrimRight(b.String(), " ")
	if strings.HasSuffix(out, ",") {
		out = strings.TrimSuffix(out, ",")
		b.Reset()
		b.WriteString(out)
	}
}
