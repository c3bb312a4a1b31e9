package enums

import (
	"fmt"
	"strings"
)

func contains[T ~string](set []T, value T) bool {
	for _, candidate := range set {
		if candidate == value {
			return true
		}
	}
	return false
}

func parse[T ~string](set []T, value, kind string) (T, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range set {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
