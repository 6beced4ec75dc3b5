package manifest

import "encoding/json"

// FileName is the fixed manifest file name looked up in a config directory.
const FileName = "main.js"

// Main holds the decoded exports of a manifest file. Exports other than
// stories are ignored.
type Main struct {
	Stories []StoryPattern `json:"stories" yaml:"stories"`
}

// StoryPattern is one entry of the stories list. Exactly one of Glob or
// Specifier is set.
type StoryPattern struct {
	Glob      string
	Specifier *Specifier
}

// Specifier is the structured form of a story pattern. Match holds a
// serialized regular expression literal including its / delimiters.
type Specifier struct {
	Path      string `json:"path" yaml:"path"`
	Recursive bool   `json:"recursive" yaml:"recursive"`
	Match     string `json:"match" yaml:"match"`
}

// IsGlob reports whether the pattern is a plain glob string.
func (p StoryPattern) IsGlob() bool { return p.Specifier == nil }

// String returns the glob, or a compact rendering of the specifier.
func (p StoryPattern) String() string {
	if p.IsGlob() {
		return p.Glob
	}
	data, _ := json.Marshal(p.Specifier)
	return string(data)
}

// MarshalJSON encodes the pattern in the shape it was declared in.
func (p StoryPattern) MarshalJSON() ([]byte, error) {
	if p.IsGlob() {
		return json.Marshal(p.Glob)
	}
	return json.Marshal(p.Specifier)
}
