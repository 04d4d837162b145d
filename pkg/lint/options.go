package lint

// GetOption extracts a typed option with a default value.
func GetOption[T any](opts map[string]any, key string, defaultVal T) T {
	if v, ok := opts[key].(T); ok {
		return v
	}
	return defaultVal
}

// GetIntOption extracts an int option. YAML and JSON decoders hand numbers
// over as int, int64 or float64.
func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	switch n := opts[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return defaultVal
	}
}

// GetStringSliceOption extracts a string slice option. A single string is
// treated as a one-element list.
func GetStringSliceOption(opts map[string]any, key string, defaultVal []string) []string {
	switch s := opts[key].(type) {
	case []string:
		return s
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return defaultVal
	}
}
