package jsonast

import "fmt"

// UnexpectedTokenError reports a token of the wrong kind.
type UnexpectedTokenError struct {
	Offset int64
	Want   Kind
	Got    Kind
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("offset %d: expected %s, got %s", e.Offset, e.Want, e.Got)
}

// Expect consumes the next token and fails unless it has the given kind.
func Expect(r Reader, want Kind) (Token, error) {
	tok, err := r.Next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != want {
		return Token{}, &UnexpectedTokenError{Offset: r.Offset(), Want: want, Got: tok.Kind}
	}
	return tok, nil
}

// ReadString consumes a string token.
func ReadString(r Reader) (string, error) {
	tok, err := Expect(r, KindString)
	if err != nil {
		return "", err
	}
	return tok.String, nil
}

// ReadBool consumes a bool token.
func ReadBool(r Reader) (bool, error) {
	tok, err := Expect(r, KindBool)
	if err != nil {
		return false, err
	}
	return tok.Bool, nil
}

// ReadObject consumes an object, calling fn once per key. fn must consume
// exactly one value for the key (use Skip to ignore it).
func ReadObject(r Reader, fn func(key string) error) error {
	if _, err := Expect(r, KindObjectBegin); err != nil {
		return err
	}
	for {
		tok, err := r.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindObjectEnd:
			return nil
		case KindString:
			if err := fn(tok.String); err != nil {
				return err
			}
		default:
			return &UnexpectedTokenError{Offset: r.Offset(), Want: KindString, Got: tok.Kind}
		}
	}
}

// ReadArray consumes an array, calling fn once per element with its index.
// fn must consume exactly one value.
func ReadArray(r Reader, fn func(i int) error) error {
	if _, err := Expect(r, KindArrayBegin); err != nil {
		return err
	}
	for i := 0; ; i++ {
		tok, err := r.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == KindArrayEnd {
			_, err := r.Next()
			return err
		}
		if tok.Kind == KindEOF {
			return &UnexpectedTokenError{Offset: r.Offset(), Want: KindArrayEnd, Got: KindEOF}
		}
		if err := fn(i); err != nil {
			return err
		}
	}
}

// Skip consumes one complete value, including any nested containers.
func Skip(r Reader) error {
	depth := 0
	for {
		tok, err := r.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindObjectBegin, KindArrayBegin:
			depth++
		case KindObjectEnd, KindArrayEnd:
			depth--
		case KindEOF:
			return &UnexpectedTokenError{Offset: r.Offset(), Want: KindNull, Got: KindEOF}
		}
		if depth <= 0 {
			return nil
		}
	}
}
