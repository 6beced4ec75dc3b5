package manifest

import "fmt"

// Decode validates generic manifest exports (as produced by a JSON or YAML
// decoder) and converts them into a Main. A nil value decodes to an empty
// manifest. Schema violations are returned as *ValidationError.
func Decode(raw interface{}) (*Main, error) {
	if raw == nil {
		return &Main{}, nil
	}

	result, err := ValidateValue(raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Issues: result.Issues}
	}

	exports, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("manifest exports are %T, want an object", raw)
	}

	m := &Main{}
	entries, _ := exports["stories"].([]interface{})
	for i, entry := range entries {
		p, err := patternFromValue(entry)
		if err != nil {
			return nil, fmt.Errorf("stories[%d]: %w", i, err)
		}
		m.Stories = append(m.Stories, p)
	}
	return m, nil
}

// patternFromValue converts one schema-valid stories entry.
func patternFromValue(v interface{}) (StoryPattern, error) {
	switch val := v.(type) {
	case string:
		return StoryPattern{Glob: val}, nil
	case map[string]interface{}:
		spec := &Specifier{}
		spec.Path, _ = val["path"].(string)
		spec.Recursive, _ = val["recursive"].(bool)
		spec.Match, _ = val["match"].(string)
		return StoryPattern{Specifier: spec}, nil
	default:
		return StoryPattern{}, fmt.Errorf("unsupported entry type %T", v)
	}
}
