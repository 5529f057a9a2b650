package ask

import (
	"fmt"
	"strconv"
)

// Answers is the flat result of asking a batch of questions.
// Values are string, bool, float64 or []string depending on the question kind.
type Answers map[string]any

// Has reports whether name was answered
func (a Answers) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a text answer, or "" when absent or not text
func (a Answers) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns a boolean answer, or false when absent
func (a Answers) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Number returns a numeric answer
func (a Answers) Number(name string) (float64, bool) {
	switch v := a[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Strings returns a list answer such as selected image paths
func (a Answers) Strings(name string) []string {
	switch v := a[name].(type) {
	case []string:
		return v
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// Equals returns a condition matching a text answer
func Equals(name, value string) func(Answers) bool {
	return func(a Answers) bool {
		return a.String(name) == value
	}
}

// IsTrue returns a condition matching a true boolean answer
func IsTrue(name string) func(Answers) bool {
	return func(a Answers) bool {
		return a.Bool(name)
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprint(v)
	}
}
