package config

import (
	"sort"
	"strings"
)

const (
	// nestingDelimiter separates nested key segments in environment
	// variable names (CORE_DB__HOST addresses db.host).
	nestingDelimiter = "__"

	// pathDelimiter separates segments in dot-notation key paths.
	pathDelimiter = "."
)

// applyOverrides merges environment variable overrides onto a base mapping
// and returns a new mapping; the base is never mutated. Variables whose
// name starts with prefix + "_" are selected, the prefix is stripped and
// the remainder lower-cased to form the config key path. A double
// underscore in the path addresses nested keys, creating intermediate
// mappings as needed. Variables are applied in lexical order of their
// names, so when two names normalize to the same path the lexically
// greatest name wins.
func applyOverrides(base map[string]any, prefix string, environ map[string]string) map[string]any {
	merged := deepCopyMap(base)
	if merged == nil {
		merged = make(map[string]any)
	}

	marker := prefix + "_"
	names := make([]string, 0, len(environ))
	for name := range environ {
		if strings.HasPrefix(name, marker) && len(name) > len(marker) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.ToLower(strings.TrimPrefix(name, marker))
		value := coerce(environ[name])
		if strings.Contains(key, nestingDelimiter) {
			setPath(merged, strings.Split(key, nestingDelimiter), value)
		} else {
			merged[key] = value
		}
	}

	return merged
}

// setPath assigns value at the given path, creating intermediate mappings
// as needed. An intermediate segment holding a non-mapping value is
// replaced with a new empty mapping; the previous value is lost.
func setPath(m map[string]any, segments []string, value any) {
	current := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// getPath navigates the given path and reports whether every segment
// resolved through mappings to a value.
func getPath(m map[string]any, segments []string) (any, bool) {
	var current any = m
	for _, seg := range segments {
		mapping, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = mapping[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// deepCopyMap returns a deep copy of m. Nested mappings and slices are
// copied; leaf values are shared.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
