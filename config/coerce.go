package config

import (
	"strconv"
	"strings"
)

// coerce converts a textual environment value into a typed value.
// Rules are tried in order, first match wins: boolean spellings, base-10
// integer, floating point, and finally the original string unchanged.
// It never fails.
func coerce(text string) any {
	switch strings.ToLower(text) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	}

	if i, err := strconv.Atoi(text); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}

	return text
}
