package rulesrt

import (
	"encoding/json"
	"reflect"
)

// Value is any property or attribute value: nil, bool, string,
// json.Number, []Value, or []Property.
type Value = any

// Endpoint is a resolved endpoint.
type Endpoint struct {
	URL         string
	Headers     []Header
	Properties  []Property
	AuthSchemes []AuthScheme
}

// Header is one header and its values.
type Header struct {
	Name   string
	Values []string
}

// Property is one key/value pair. Nested objects are []Property.
type Property struct {
	Key   string
	Value Value
}

// AuthScheme is a named authentication descriptor.
type AuthScheme struct {
	Name       string
	Properties []Property
}

// EndpointEqual reports whether two endpoints match. Header and property
// order is ignored; values compare structurally.
func EndpointEqual(want, got Endpoint) bool {
	if want.URL != got.URL {
		return false
	}
	if !reflect.DeepEqual(headerMap(want.Headers), headerMap(got.Headers)) {
		return false
	}
	if !reflect.DeepEqual(normalize(want.Properties), normalize(got.Properties)) {
		return false
	}
	if len(want.AuthSchemes) != len(got.AuthSchemes) {
		return false
	}
	for i := range want.AuthSchemes {
		w, g := want.AuthSchemes[i], got.AuthSchemes[i]
		if w.Name != g.Name || !reflect.DeepEqual(normalize(w.Properties), normalize(g.Properties)) {
			return false
		}
	}
	return true
}

func headerMap(headers []Header) map[string][]string {
	m := make(map[string][]string, len(headers))
	for _, h := range headers {
		m[h.Name] = append(m[h.Name], h.Values...)
	}
	for k := range m {
		if len(m[k]) == 0 {
			m[k] = nil
		}
	}
	return m
}

// normalize maps a Value onto comparable plain Go values: objects become
// maps, arrays become []any, numbers become their text.
func normalize(v Value) any {
	switch x := v.(type) {
	case []Property:
		m := make(map[string]any, len(x))
		for _, p := range x {
			m[p.Key] = normalize(p.Value)
		}
		return m
	case []Value:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case []string:
		return normalize(stringsToValues(x))
	case json.Number:
		return string(x)
	default:
		return x
	}
}

func stringsToValues(s []string) []Value {
	out := make([]Value, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
