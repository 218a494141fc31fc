package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a sealed interface for opaque JSON values whose structure
// must be preserved verbatim, such as endpoint properties. Object member
// order is kept as written.
// Implemented by DocNull, DocBool, DocNumber, DocString, DocArray, and DocObject.
type Document interface {
	document()
}

// DocNull is a JSON null.
type DocNull struct{}

func (DocNull) document() {}

// DocBool is a JSON boolean.
type DocBool bool

func (DocBool) document() {}

// DocNumber is a JSON number kept in its original textual form.
type DocNumber json.Number

func (DocNumber) document() {}

// DocString is a JSON string. Inside endpoint properties it may carry
// template placeholders.
type DocString string

func (DocString) document() {}

// DocArray is a JSON array.
type DocArray []Document

func (DocArray) document() {}

// DocObject is a JSON object as an ordered member list.
type DocObject []Member

func (DocObject) document() {}

// Member is one key/value pair of a DocObject.
type Member struct {
	Key   string
	Value Document
}

// Get returns the value for key.
func (o DocObject) Get(key string) (Document, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Without returns the members other than key, preserving order.
func (o DocObject) Without(key string) DocObject {
	out := make(DocObject, 0, len(o))
	for _, m := range o {
		if m.Key != key {
			out = append(out, m)
		}
	}
	return out
}

// AuthSchemesKey is the endpoint property lifted into the auth scheme list.
const AuthSchemesKey = "authSchemes"

// AuthScheme is one entry of an endpoint's authSchemes property.
type AuthScheme struct {
	Name       string
	Properties DocObject // members other than "name"
}

// SplitAuthSchemes separates the authSchemes property from the rest.
// Each scheme must be an object with a string "name".
func SplitAuthSchemes(props DocObject) (DocObject, []AuthScheme, error) {
	raw, ok := props.Get(AuthSchemesKey)
	if !ok {
		return props, nil, nil
	}
	arr, ok := raw.(DocArray)
	if !ok {
		return nil, nil, fmt.Errorf("%s must be an array, got %s", AuthSchemesKey, docKind(raw))
	}

	schemes := make([]AuthScheme, 0, len(arr))
	for i, entry := range arr {
		obj, ok := entry.(DocObject)
		if !ok {
			return nil, nil, fmt.Errorf("%s[%d] must be an object, got %s", AuthSchemesKey, i, docKind(entry))
		}
		nameDoc, ok := obj.Get("name")
		if !ok {
			return nil, nil, fmt.Errorf("%s[%d] has no name", AuthSchemesKey, i)
		}
		name, ok := nameDoc.(DocString)
		if !ok {
			return nil, nil, fmt.Errorf("%s[%d].name must be a string", AuthSchemesKey, i)
		}
		schemes = append(schemes, AuthScheme{Name: string(name), Properties: obj.Without("name")})
	}
	return props.Without(AuthSchemesKey), schemes, nil
}

// MarshalJSON encodes the object with members in their original order.
func (o DocObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocument(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDocument encodes any Document as JSON, preserving member order.
func MarshalDocument(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocument(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDocument(buf *bytes.Buffer, d Document) error {
	switch v := d.(type) {
	case nil, DocNull:
		buf.WriteString("null")
	case DocBool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case DocNumber:
		buf.WriteString(string(v))
	case DocString:
		b, err := json.Marshal(string(v))
		if err != nil {
			return err
		}
		buf.Write(b)
	case DocArray:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeDocument(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case DocObject:
		buf.WriteByte('{')
		for i, m := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeDocument(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported document type: %T", d)
	}
	return nil
}

func docKind(d Document) string {
	switch d.(type) {
	case DocNull:
		return "null"
	case DocBool:
		return "boolean"
	case DocNumber:
		return "number"
	case DocString:
		return "string"
	case DocArray:
		return "array"
	case DocObject:
		return "object"
	default:
		return fmt.Sprintf("%T", d)
	}
}
