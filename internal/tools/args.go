package tools

import (
	"math"
	"strconv"
)

// Argument extraction helpers. Arguments arrive as decoded JSON, so numbers
// are float64 and ids may also show up as numeric strings.

func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func argBool(args map[string]interface{}, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func argUint(args map[string]interface{}, key string) (uint, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	default:
		return 0, false
	}
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func argUintSlice(args map[string]interface{}, key string) ([]uint, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]uint, 0, len(raw))
	for _, item := range raw {
		n, ok := argUint(map[string]interface{}{"v": item}, "v")
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func argMap(args map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func optString(args map[string]interface{}, key string) *string {
	if s, ok := argString(args, key); ok {
		return &s
	}
	return nil
}

func optUint(args map[string]interface{}, key string) *uint {
	if n, ok := argUint(args, key); ok {
		return &n
	}
	return nil
}

func optInt(args map[string]interface{}, key string) *int {
	if n, ok := argInt(args, key); ok {
		return &n
	}
	return nil
}
