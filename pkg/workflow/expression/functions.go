package expression

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// builtins are the helper functions available to every expression.
// "contains" is reserved by expr for string operations, hence "has".
var builtins = map[string]any{
	"has":      containsFunc,
	"includes": containsFunc,
	"length":   lenFunc,
	"isURL":    isURLFunc,
}

// containsFunc checks whether a slice holds an element, a map holds a key,
// or a string holds a substring.
func containsFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has requires exactly 2 arguments, got %d", len(args))
	}

	collection, target := args[0], args[1]
	if collection == nil {
		return false, nil
	}

	v := reflect.ValueOf(collection)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if reflect.DeepEqual(v.Index(i).Interface(), target) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		key := reflect.ValueOf(target)
		if !key.IsValid() || !key.Type().AssignableTo(v.Type().Key()) {
			return false, nil
		}
		return v.MapIndex(key).IsValid(), nil
	case reflect.String:
		substr, ok := target.(string)
		if !ok || substr == "" {
			return false, nil
		}
		return strings.Contains(v.String(), substr), nil
	default:
		return false, nil
	}
}

// lenFunc returns the length of a collection or string. nil has length 0.
func lenFunc(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("length requires exactly 1 argument, got %d", len(args))
	}
	if args[0] == nil {
		return 0, nil
	}

	v := reflect.ValueOf(args[0])
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return v.Len(), nil
	default:
		return nil, fmt.Errorf("length: unsupported type %T", args[0])
	}
}

// isURLFunc reports whether the argument is an absolute http(s) URL.
func isURLFunc(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("isURL requires exactly 1 argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok || s == "" {
		return false, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return false, nil
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", nil
}
