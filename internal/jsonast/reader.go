// Package jsonast provides a pull-style JSON token reader.
//
// The ruleset and test-case parsers never materialize a generic JSON tree;
// they walk tokens, peeking where a decision depends on the next value's
// shape. Reader is the narrow interface they consume, so any tokenizer that
// can peek without consuming can drive them.
package jsonast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies a token's type.
type Kind int

const (
	KindEOF Kind = iota
	KindObjectBegin
	KindObjectEnd
	KindArrayBegin
	KindArrayEnd
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "end of input"
	case KindObjectBegin:
		return "object begin"
	case KindObjectEnd:
		return "object end"
	case KindArrayBegin:
		return "array begin"
	case KindArrayEnd:
		return "array end"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is a single JSON token. Object keys arrive as KindString tokens.
type Token struct {
	Kind   Kind
	String string      // KindString
	Number json.Number // KindNumber
	Bool   bool        // KindBool
}

// Reader pulls tokens from a JSON document.
type Reader interface {
	// Peek returns the next token without consuming it.
	Peek() (Token, error)
	// Next consumes and returns the next token.
	Next() (Token, error)
	// Offset reports the input offset of the most recently consumed token.
	Offset() int64
}

// decoderReader adapts encoding/json's streaming tokenizer to Reader.
type decoderReader struct {
	dec    *json.Decoder
	peeked *Token
	offset int64
}

// NewReader returns a Reader over r. Numbers are kept as json.Number so
// integer arguments never round-trip through float64.
func NewReader(r io.Reader) Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &decoderReader{dec: dec}
}

// NewBytesReader returns a Reader over an in-memory document.
func NewBytesReader(data []byte) Reader {
	return NewReader(bytes.NewReader(data))
}

func (d *decoderReader) Peek() (Token, error) {
	if d.peeked != nil {
		return *d.peeked, nil
	}
	tok, err := d.read()
	if err != nil {
		return Token{}, err
	}
	d.peeked = &tok
	return tok, nil
}

func (d *decoderReader) Next() (Token, error) {
	if d.peeked != nil {
		tok := *d.peeked
		d.peeked = nil
		return tok, nil
	}
	return d.read()
}

func (d *decoderReader) Offset() int64 {
	return d.offset
}

func (d *decoderReader) read() (Token, error) {
	d.offset = d.dec.InputOffset()
	raw, err := d.dec.Token()
	if errors.Is(err, io.EOF) {
		return Token{Kind: KindEOF}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("offset %d: %w", d.offset, err)
	}

	switch v := raw.(type) {
	case json.Delim:
		switch v {
		case '{':
			return Token{Kind: KindObjectBegin}, nil
		case '}':
			return Token{Kind: KindObjectEnd}, nil
		case '[':
			return Token{Kind: KindArrayBegin}, nil
		default:
			return Token{Kind: KindArrayEnd}, nil
		}
	case string:
		return Token{Kind: KindString, String: v}, nil
	case json.Number:
		return Token{Kind: KindNumber, Number: v}, nil
	case bool:
		return Token{Kind: KindBool, Bool: v}, nil
	case nil:
		return Token{Kind: KindNull}, nil
	default:
		return Token{}, fmt.Errorf("offset %d: unexpected token %T", d.offset, raw)
	}
}
