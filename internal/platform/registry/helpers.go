package registry

import (
	"time"
)

// Type-safe extraction helpers for ProbeConfig.Custom, used by probe
// factories. Values may come from YAML (int, float64, []interface{}) or be
// set directly in code.

// GetStringConfig extracts a non-empty string, or defaultValue.
func GetStringConfig(custom map[string]interface{}, key, defaultValue string) string {
	if val, ok := custom[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// GetIntConfig extracts an int; float64 values are truncated.
func GetIntConfig(custom map[string]interface{}, key string, defaultValue int) int {
	switch val := custom[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return defaultValue
}

// GetDurationConfig accepts time.Duration, a duration string ("5s") or
// integer nanoseconds.
func GetDurationConfig(custom map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	switch val := custom[key].(type) {
	case time.Duration:
		return val
	case int:
		return time.Duration(val)
	case int64:
		return time.Duration(val)
	case float64:
		return time.Duration(val)
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetSliceConfig extracts a []string. A []interface{} containing a
// non-string item yields defaultValue.
func GetSliceConfig(custom map[string]interface{}, key string, defaultValue []string) []string {
	switch val := custom[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultValue
			}
			out = append(out, s)
		}
		return out
	}
	return defaultValue
}
