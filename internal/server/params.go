package server

import (
	"fmt"
	"strconv"
)

// StringParam reads a string argument. Numbers are formatted since
// JSON clients sometimes send ids unquoted.
func StringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

// IntParam reads an integer argument. JSON numbers arrive as float64.
func IntParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i
			}
		}
	}
	return defaultVal
}

func FloatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return defaultVal
}

func BoolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
	}
	return defaultVal
}

// optString returns a pointer to the argument, or nil when it is absent.
func optString(params map[string]interface{}, key string) *string {
	if _, ok := params[key]; !ok {
		return nil
	}
	s := StringParam(params, key, "")
	return &s
}

func optBool(params map[string]interface{}, key string) *bool {
	if _, ok := params[key]; !ok {
		return nil
	}
	b := BoolParam(params, key, false)
	return &b
}
