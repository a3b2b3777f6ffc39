package kind

import (
	"fmt"
	"strings"
)

// Parse resolves a kind from its canonical spelling as produced by Name,
// e.g. "integer", "array<string>" or "map<string,float>".
func Parse(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	for _, p := range primitives {
		if p.Name() == name {
			return p, nil
		}
	}
	if body, ok := compound(name, "array"); ok {
		element, err := Parse(body)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return Array{Element: element}, nil
	}
	if body, ok := compound(name, "map"); ok {
		left, right, ok := splitPair(body)
		if !ok {
			return nil, fmt.Errorf("map kind %q needs a key and a value", name)
		}
		key, err := Parse(left)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		value, err := Parse(right)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		return Map{Key: key, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", name)
}

// compound strips the "name<...>" wrapper, returning the bracketed body.
func compound(name, prefix string) (string, bool) {
	if !strings.HasPrefix(name, prefix+"<") || !strings.HasSuffix(name, ">") {
		return "", false
	}
	return name[len(prefix)+1 : len(name)-1], true
}

// splitPair cuts a comma-separated pair at bracket depth zero.
func splitPair(body string) (string, string, bool) {
	depth := 0
	for i, r := range body {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				return body[:i], body[i+1:], true
			}
		}
	}
	return "", "", false
}
