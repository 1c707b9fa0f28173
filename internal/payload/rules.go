package payload

// Rule extracts one candidate value for a logical field. It returns false
// when obj does not provide a usable value.
type Rule func(obj Object) (any, bool)

// Key matches a top-level key holding a non-null, non-blank value.
func Key(name string) Rule {
	return func(obj Object) (any, bool) {
		v, ok := obj[name]
		if !ok || absent(v) {
			return nil, false
		}
		return v, true
	}
}

// Nested matches key name inside the object stored under parent. A parent
// that is missing or not an object does not match.
func Nested(parent, name string) Rule {
	return func(obj Object) (any, bool) {
		inner, ok := obj[parent].(map[string]any)
		if !ok {
			return nil, false
		}
		return Key(name)(inner)
	}
}

// First applies rules in order and returns the first match.
func First(obj Object, rules ...Rule) (any, bool) {
	for _, rule := range rules {
		if v, ok := rule(obj); ok {
			return v, true
		}
	}
	return nil, false
}

// FirstText is First rendered with Text, falling back to def.
func FirstText(obj Object, def string, rules ...Rule) string {
	v, ok := First(obj, rules...)
	if !ok {
		return def
	}
	return Text(v)
}
