package pattern

import (
	"errors"
	"testing"

	"github.com/agentx-labs/storyshots/internal/manifest"
)

func TestToRequireContext_Glob(t *testing.T) {
	spec, err := ToRequireContext(manifest.StoryPattern{Glob: "./src/**/*.stories.js"})
	if err != nil {
		t.Fatalf("ToRequireContext error: %v", err)
	}
	if spec.Path != "./src" {
		t.Errorf("Path = %q, want %q", spec.Path, "./src")
	}
	if !spec.Recursive {
		t.Error("Recursive = false, want true")
	}
	if want := `/^\./(?:[^/]*/)*[^/]*\.stories\.js$/`; spec.Match != want {
		t.Errorf("Match = %q, want %q", spec.Match, want)
	}
}

func TestToRequireContext_SpecifierPassesThrough(t *testing.T) {
	in := manifest.Specifier{Path: "../lib", Recursive: false, Match: `/\.js$/`}
	spec, err := ToRequireContext(manifest.StoryPattern{Specifier: &in})
	if err != nil {
		t.Fatalf("ToRequireContext error: %v", err)
	}
	if spec != in {
		t.Errorf("spec = %+v, want %+v", spec, in)
	}
}

func TestParseRegexpLiteral(t *testing.T) {
	re, err := ParseRegexpLiteral(`/^\.\/.*\.stories\.js$/`)
	if err != nil {
		t.Fatalf("ParseRegexpLiteral error: %v", err)
	}
	if got, want := re.String(), `^\.\/.*\.stories\.js$`; got != want {
		t.Errorf("source = %q, want %q", got, want)
	}
	if !re.MatchString("./a/b.stories.js") {
		t.Error("expected ./a/b.stories.js to match")
	}
}

func TestParseRegexpLiteral_Malformed(t *testing.T) {
	for _, lit := range []string{
		"",
		"/",
		"//",
		`\.stories\.js$`,
		`/\.stories\.js$`,
		`\.stories\.js$/`,
		`/\.stories\.js$/i`,
		`/abc\/`,
		`/(?=x)/`,
		`/[a-/`,
	} {
		t.Run(lit, func(t *testing.T) {
			if _, err := ParseRegexpLiteral(lit); !errors.Is(err, ErrMalformedMatch) {
				t.Errorf("ParseRegexpLiteral(%q) error = %v, want ErrMalformedMatch", lit, err)
			}
		})
	}
}

func TestNormalize_StoriesGlobMatchesSuffix(t *testing.T) {
	d, err := Normalize("/repo/.storybook", manifest.StoryPattern{Glob: "./src/**/*.stories.js"})
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if d.Root != "/repo/.storybook" || d.SubPath != "./src" || !d.Recursive {
		t.Errorf("Directive = %+v, want root /repo/.storybook, subpath ./src, recursive", d)
	}
	for key, want := range map[string]bool{
		"./Button.stories.js":       true,
		"./forms/Input.stories.js":  true,
		"./forms/Input.stories.jsx": false,
		"./forms/Input.js":          false,
		"Button.stories.js":         false,
	} {
		if got := d.Match.MatchString(key); got != want {
			t.Errorf("Match(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    manifest.StoryPattern
		want error
	}{
		{"negated extglob", manifest.StoryPattern{Glob: "./src/!(x).js"}, ErrUnsupportedGlob},
		{"unbalanced brace", manifest.StoryPattern{Glob: "./src/{a,b"}, ErrInvalidGlob},
		{"undelimited match", manifest.StoryPattern{Specifier: &manifest.Specifier{Path: ".", Match: `\.js$`}}, ErrMalformedMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize("/root", tt.p)
			if !errors.Is(err, tt.want) {
				t.Errorf("Normalize error = %v, want %v", err, tt.want)
			}
		})
	}
}
