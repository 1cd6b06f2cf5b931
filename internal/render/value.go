package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// literal renders a JSON-shaped value (as decoded into any) as a Go composite
// literal. Map keys are emitted in sorted order so output is deterministic.
func literal(v any, indent string) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return strconv.Quote(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case map[string]any:
		if len(val) == 0 {
			return "map[string]any{}"
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("map[string]any{\n")
		inner := indent + "\t"
		for _, k := range keys {
			fmt.Fprintf(&b, "%s%s: %s,\n", inner, strconv.Quote(k), literal(val[k], inner))
		}
		b.WriteString(indent + "}")
		return b.String()
	case []any:
		if len(val) == 0 {
			return "[]any{}"
		}
		var b strings.Builder
		b.WriteString("[]any{\n")
		inner := indent + "\t"
		for _, item := range val {
			fmt.Fprintf(&b, "%s%s,\n", inner, literal(item, inner))
		}
		b.WriteString(indent + "}")
		return b.String()
	default:
		return fmt.Sprintf("%#v", val)
	}
}

// stringMap renders a map[string]string literal with sorted keys.
func stringMap(m map[string]string, indent string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("map[string]string{\n")
	inner := indent + "\t"
	for _, k := range keys {
		fmt.Fprintf(&b, "%s%s: %s,\n", inner, strconv.Quote(k), strconv.Quote(m[k]))
	}
	b.WriteString(indent + "}")
	return b.String()
}

// stringSlice renders a []string literal on one line.
func stringSlice(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}
