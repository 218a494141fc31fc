package rulesrt

import (
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// OrElse returns *p, or def when p is nil.
func OrElse[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// deref unwraps pointers; a nil pointer yields nil.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// IsSet reports whether v holds a value. Nil pointers are unset.
func IsSet(v any) bool {
	return deref(v) != nil
}

// Truthy reports whether v is set and not a zero value.
func Truthy(v any) bool {
	v = deref(v)
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return !reflect.ValueOf(v).IsZero()
}

// Not negates a boolean.
func Not(v any) bool {
	return !Truthy(v)
}

// BooleanEquals compares two booleans.
func BooleanEquals(a, b any) bool {
	x, ok1 := deref(a).(bool)
	y, ok2 := deref(b).(bool)
	return ok1 && ok2 && x == y
}

// StringEquals compares two strings.
func StringEquals(a, b any) bool {
	x, ok1 := deref(a).(string)
	y, ok2 := deref(b).(string)
	return ok1 && ok2 && x == y
}

// GetAttr walks a path such as "name", "a.b" or "items[1]" into v.
// It returns nil when any step is missing.
func GetAttr(v any, path string) Value {
	cur := deref(v)
	for _, part := range strings.Split(path, ".") {
		key, indexes := splitIndexes(part)
		if key != "" {
			cur = lookupKey(cur, key)
		}
		for _, i := range indexes {
			cur = lookupIndex(cur, i)
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// splitIndexes splits "a[1][2]" into "a" and [1 2]. Malformed indexes
// yield -1, which never matches.
func splitIndexes(part string) (string, []int) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, nil
	}
	key := part[:open]
	var idx []int
	for rest := part[open:]; strings.HasPrefix(rest, "["); {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, append(idx, -1)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			n = -1
		}
		idx = append(idx, n)
		rest = rest[end+1:]
	}
	return key, idx
}

func lookupKey(v any, key string) any {
	switch x := v.(type) {
	case []Property:
		for _, p := range x {
			if p.Key == key {
				return deref(p.Value)
			}
		}
	case map[string]any:
		return deref(x[key])
	case URL:
		return x.attr(key)
	}
	return nil
}

func lookupIndex(v any, i int) any {
	if i < 0 {
		return nil
	}
	switch x := v.(type) {
	case []string:
		if i < len(x) {
			return x[i]
		}
	case []Value:
		if i < len(x) {
			return deref(x[i])
		}
	}
	return nil
}

// Substring returns input[start:stop], counted from the end when reverse
// is set. Non-ASCII input or an out-of-range window yields nil.
func Substring(input any, start, stop int, reverse bool) *string {
	s, ok := deref(input).(string)
	if !ok || start < 0 || start >= stop || len(s) < stop {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil
		}
	}
	if reverse {
		start, stop = len(s)-stop, len(s)-start
	}
	out := s[start:stop]
	return &out
}

// URIEncode percent-encodes every byte outside the RFC 3986 unreserved set.
func URIEncode(v any) string {
	s, _ := deref(v).(string)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&0xf])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// URL is a parsed endpoint URL.
type URL struct {
	Scheme         string
	Authority      string
	Path           string
	NormalizedPath string
	IsIP           bool
}

func (u URL) attr(name string) any {
	switch name {
	case "scheme":
		return u.Scheme
	case "authority":
		return u.Authority
	case "path":
		return u.Path
	case "normalizedPath":
		return u.NormalizedPath
	case "isIp":
		return u.IsIP
	default:
		return nil
	}
}

// ParseURL parses an http or https URL without a query string.
func ParseURL(v any) *URL {
	s, ok := deref(v).(string)
	if !ok {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	if u.RawQuery != "" || u.ForceQuery {
		return nil
	}

	path := u.EscapedPath()
	normalized := path
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return &URL{
		Scheme:         u.Scheme,
		Authority:      u.Host,
		Path:           path,
		NormalizedPath: normalized,
		IsIP:           net.ParseIP(u.Hostname()) != nil,
	}
}

// IsValidHostLabel reports whether v is a DNS host label, or a dotted
// sequence of labels when allowSubDomains is set.
func IsValidHostLabel(v any, allowSubDomains any) bool {
	s, ok := deref(v).(string)
	if !ok {
		return false
	}
	if !Truthy(allowSubDomains) {
		return isHostLabel(s)
	}
	for _, label := range strings.Split(s, ".") {
		if !isHostLabel(label) {
			return false
		}
	}
	return true
}

func isHostLabel(s string) bool {
	if len(s) == 0 || len(s) > 63 || s[0] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}
