package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agentx-labs/storyshots/internal/manifest"
)

// ErrMalformedMatch reports a match value that is not a well-formed
// serialized regular expression literal.
var ErrMalformedMatch = errors.New("malformed match literal")

// keyPrefix anchors every generated expression to the "./" that context
// keys start with.
const keyPrefix = `^\./`

// Directive is the canonical form of a story pattern: enumerate SubPath
// under Root, descending into subdirectories when Recursive is set, and keep
// the keys Match accepts.
type Directive struct {
	Root      string
	SubPath   string
	Recursive bool
	Match     *regexp.Regexp
}

// ToRequireContext converts a story pattern into a specifier. Structured
// specifiers pass through unchanged; globs are split and translated.
func ToRequireContext(p manifest.StoryPattern) (manifest.Specifier, error) {
	if !p.IsGlob() {
		return *p.Specifier, nil
	}

	base, glob := SplitGlob(p.Glob)
	expr, err := GlobToRegexp(glob)
	if err != nil {
		return manifest.Specifier{}, err
	}
	return manifest.Specifier{
		Path:      base,
		Recursive: IsRecursive(glob),
		Match:     "/" + keyPrefix + expr + "$/",
	}, nil
}

// ParseRegexpLiteral strips the delimiters from a serialized regular
// expression literal and compiles the body. The literal must start and end
// with an unescaped '/' and carry no flags.
func ParseRegexpLiteral(lit string) (*regexp.Regexp, error) {
	if len(lit) < 3 || lit[0] != '/' || lit[len(lit)-1] != '/' {
		return nil, fmt.Errorf("%w: %q is not wrapped in / delimiters", ErrMalformedMatch, lit)
	}
	body := lit[1 : len(lit)-1]
	if trailingBackslashes(body)%2 == 1 {
		return nil, fmt.Errorf("%w: %q has an escaped closing delimiter", ErrMalformedMatch, lit)
	}
	re, err := regexp.Compile(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrMalformedMatch, lit, err)
	}
	return re, nil
}

// Normalize resolves a story pattern declared in root into a Directive.
func Normalize(root string, p manifest.StoryPattern) (Directive, error) {
	spec, err := ToRequireContext(p)
	if err != nil {
		return Directive{}, fmt.Errorf("normalizing story pattern %s: %w", p, err)
	}
	re, err := ParseRegexpLiteral(spec.Match)
	if err != nil {
		return Directive{}, fmt.Errorf("normalizing story pattern %s: %w", p, err)
	}
	return Directive{
		Root:      root,
		SubPath:   spec.Path,
		Recursive: spec.Recursive,
		Match:     re,
	}, nil
}

func trailingBackslashes(s string) int {
	return len(s) - len(strings.TrimRight(s, `\`))
}
