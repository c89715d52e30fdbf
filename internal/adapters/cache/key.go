package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Entry lifetimes in seconds. Fallback data is kept briefly so a provider
// outage heals on its own.
const (
	DefaultTTL  = 3600
	FallbackTTL = 300
)

// MakeKey renders params as "prefix:a:1|b:2". Absent values (nil, or nil
// pointers) are dropped and names are sorted, so two logically equal
// requests always map to the same key.
func MakeKey(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	vals := make(map[string]string, len(params))
	for k, v := range params {
		s, ok := render(v)
		if !ok {
			continue
		}
		names = append(names, k)
		vals[k] = s
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+":"+vals[k])
	}
	return prefix + ":" + strings.Join(parts, "|")
}

func render(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface()), true
}
