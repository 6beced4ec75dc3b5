package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidGlob reports unbalanced brackets, braces, or parentheses.
	ErrInvalidGlob = errors.New("invalid glob")

	// ErrUnsupportedGlob reports glob syntax that has no RE2 equivalent.
	ErrUnsupportedGlob = errors.New("unsupported glob syntax")
)

// hasMagic reports whether a path segment contains glob syntax.
func hasMagic(segment string) bool {
	return strings.ContainsAny(segment, "*?[]{}()")
}

// SplitGlob separates the literal leading directory of pattern from its glob
// remainder. A pattern without glob syntax splits into its directory and
// file name. "./" prefixes are kept in base; an empty base is ".".
func SplitGlob(pattern string) (base, glob string) {
	segments := strings.Split(pattern, "/")

	first := -1
	for i, seg := range segments {
		if hasMagic(seg) {
			first = i
			break
		}
	}
	if first < 0 {
		first = len(segments) - 1
	}

	base = strings.Join(segments[:first], "/")
	glob = strings.Join(segments[first:], "/")
	switch {
	case first == 0:
		base = "."
	case base == "":
		base = "/"
	}
	return base, glob
}

// IsRecursive reports whether a glob remainder can match below its first
// path segment.
func IsRecursive(glob string) bool {
	return strings.Contains(glob, "**") || strings.Contains(glob, "/")
}

// GlobToRegexp translates a glob remainder into an unanchored RE2 expression.
func GlobToRegexp(glob string) (string, error) {
	t := &translator{src: glob}
	out, _, err := t.until("")
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", glob, err)
	}
	return out, nil
}

type translator struct {
	src string
	pos int
}

// until translates input until one of the bytes in stops is reached at the
// current nesting level. It returns the translation and the stop byte
// consumed, or 0 at end of input. With a non-empty stops set, running out
// of input is an error.
func (t *translator) until(stops string) (string, byte, error) {
	var b strings.Builder
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		if stops != "" && strings.IndexByte(stops, c) >= 0 {
			t.pos++
			return b.String(), c, nil
		}

		next := byte(0)
		if t.pos+1 < len(t.src) {
			next = t.src[t.pos+1]
		}

		switch {
		case c == '\\':
			if next == 0 {
				return "", 0, fmt.Errorf("%w: trailing backslash", ErrInvalidGlob)
			}
			b.WriteString(regexp.QuoteMeta(string(next)))
			t.pos += 2
		case c == '*' && next == '*' && t.segmentStart():
			t.pos += 2
			if t.pos < len(t.src) && t.src[t.pos] == '/' {
				t.pos++
				b.WriteString(`(?:[^/]*/)*`)
			} else if t.pos == len(t.src) {
				b.WriteString(`.*`)
			} else {
				b.WriteString(`[^/]*`)
			}
		case next == '(' && strings.IndexByte("*?+@!", c) >= 0:
			if c == '!' {
				return "", 0, fmt.Errorf("%w: negated extglob !(...) at offset %d", ErrUnsupportedGlob, t.pos)
			}
			t.pos += 2
			alts, err := t.group(")", '|')
			if err != nil {
				return "", 0, err
			}
			b.WriteString("(?:" + strings.Join(alts, "|") + ")")
			switch c {
			case '*':
				b.WriteByte('*')
			case '?':
				b.WriteByte('?')
			case '+':
				b.WriteByte('+')
			}
		case c == '*':
			b.WriteString(`[^/]*`)
			t.pos++
		case c == '?':
			b.WriteString(`[^/]`)
			t.pos++
		case c == '[':
			class, err := t.class()
			if err != nil {
				return "", 0, err
			}
			b.WriteString(class)
		case c == '{':
			t.pos++
			alts, err := t.group("}", ',')
			if err != nil {
				return "", 0, err
			}
			if len(alts) == 1 {
				b.WriteString(`\{` + alts[0] + `\}`)
			} else {
				b.WriteString("(?:" + strings.Join(alts, "|") + ")")
			}
		case c == ']' || c == '}' || c == ')':
			return "", 0, fmt.Errorf("%w: unbalanced %q at offset %d", ErrInvalidGlob, c, t.pos)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			t.pos++
		}
	}
	if stops != "" {
		return "", 0, fmt.Errorf("%w: missing %q", ErrInvalidGlob, stops[len(stops)-1])
	}
	return b.String(), 0, nil
}

// group translates alternatives separated by sep up to the closing byte.
func (t *translator) group(closer string, sep byte) ([]string, error) {
	var alts []string
	for {
		alt, stop, err := t.until(string(sep) + closer)
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		if stop != sep {
			return alts, nil
		}
	}
}

// class copies a bracket expression, turning a leading '!' into '^'.
func (t *translator) class() (string, error) {
	start := t.pos
	i := t.pos + 1
	var b strings.Builder
	b.WriteByte('[')
	if i < len(t.src) && (t.src[i] == '!' || t.src[i] == '^') {
		b.WriteByte('^')
		i++
	}
	if i < len(t.src) && t.src[i] == ']' {
		b.WriteString(`\]`)
		i++
	}
	for ; i < len(t.src); i++ {
		c := t.src[i]
		switch c {
		case ']':
			b.WriteByte(']')
			t.pos = i + 1
			return b.String(), nil
		case '\\':
			if i+1 < len(t.src) {
				b.WriteString(regexp.QuoteMeta(string(t.src[i+1])))
				i++
				continue
			}
		case '[':
			b.WriteString(`\[`)
			continue
		}
		b.WriteByte(c)
	}
	return "", fmt.Errorf("%w: unterminated class at offset %d", ErrInvalidGlob, start)
}

// segmentStart reports whether the translator sits at the start of a path
// segment.
func (t *translator) segmentStart() bool {
	return t.pos == 0 || t.src[t.pos-1] == '/'
}
