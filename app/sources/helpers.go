package sources

import (
	"strings"
	"time"
)

// Map accessors for probing loosely-typed upstream JSON. Every
// accessor tolerates missing keys and wrong types.

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func asList(value any) []any {
	l, _ := value.([]any)
	return l
}

func str(m map[string]any, candidates ...string) string {
	for _, key := range candidates {
		if value, ok := m[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func num(m map[string]any, candidates ...string) (float64, bool) {
	for _, key := range candidates {
		switch value := m[key].(type) {
		case float64:
			return value, true
		case int:
			return float64(value), true
		}
	}
	return 0, false
}

func boolean(m map[string]any, key string) bool {
	value, _ := m[key].(bool)
	return value
}

// epochTime converts an epoch timestamp in seconds or milliseconds to
// a time, guessing the unit from magnitude.
func epochTime(value float64) time.Time {
	if value > 1e12 {
		return time.UnixMilli(int64(value)).UTC()
	}
	return time.Unix(int64(value), 0).UTC()
}
