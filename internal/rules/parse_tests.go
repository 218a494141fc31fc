package rules

import (
	"fmt"

	"github.com/roach88/rulesgen/internal/jsonast"
)

// ParseTests reads a conformance test document:
//
//	{"version": "1.0", "testCases": [{"documentation", "expect", "params"}]}
//
// Keys such as operationInputs are logged and skipped.
func (p *Parser) ParseTests(r jsonast.Reader) ([]TestCase, error) {
	var cases []TestCase

	err := jsonast.ReadObject(r, func(key string) error {
		switch key {
		case "version":
			v, err := p.readString(r, key)
			if err != nil {
				return err
			}
			if v != SupportedVersion {
				return &ParseError{
					Path:    key,
					Offset:  r.Offset(),
					Code:    ErrCodeUnsupportedVersion,
					Message: fmt.Sprintf("unsupported test version %q (want %q)", v, SupportedVersion),
				}
			}
			return nil
		case "testCases":
			err := jsonast.ReadArray(r, func(i int) error {
				tc, err := p.parseTestCase(r, indexPath(key, i))
				if err != nil {
					return err
				}
				cases = append(cases, tc)
				return nil
			})
			return asParseError(r, key, err)
		default:
			return p.skipUnknown(r, "", key)
		}
	})
	if err != nil {
		return nil, asParseError(r, "", err)
	}
	if _, err := jsonast.Expect(r, jsonast.KindEOF); err != nil {
		return nil, asParseError(r, "", err)
	}
	return cases, nil
}

func (p *Parser) parseTestCase(r jsonast.Reader, path string) (TestCase, error) {
	var tc TestCase
	hasExpect := false

	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "documentation":
			s, err := p.readString(r, at)
			tc.Documentation = s
			return err
		case "expect":
			e, err := p.parseExpectation(r, at)
			tc.Expect, hasExpect = e, true
			return err
		case "params":
			params, err := p.parseTestParams(r, at)
			tc.Params = params
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return TestCase{}, asParseError(r, path, err)
	}
	if !hasExpect {
		return TestCase{}, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "test case has no expect"}
	}
	return tc, nil
}

func (p *Parser) parseExpectation(r jsonast.Reader, path string) (Expectation, error) {
	var e Expectation
	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "endpoint":
			ep, err := p.parseExpectedEndpoint(r, at)
			e.Endpoint = ep
			return err
		case "error":
			s, err := p.readString(r, at)
			e.Error = &s
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return Expectation{}, asParseError(r, path, err)
	}
	if (e.Endpoint == nil) == (e.Error == nil) {
		return Expectation{}, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "expect needs exactly one of endpoint or error"}
	}
	return e, nil
}

func (p *Parser) parseExpectedEndpoint(r jsonast.Reader, path string) (*ExpectedEndpoint, error) {
	ep := &ExpectedEndpoint{}
	hasURL := false

	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "url":
			s, err := p.readString(r, at)
			ep.URL, hasURL = s, true
			return err
		case "headers":
			return asParseError(r, at, jsonast.ReadObject(r, func(name string) error {
				h := ExpectedHeader{Name: name, Values: []string{}}
				err := jsonast.ReadArray(r, func(int) error {
					s, err := jsonast.ReadString(r)
					h.Values = append(h.Values, s)
					return err
				})
				if err != nil {
					return asParseError(r, joinPath(at, name), err)
				}
				ep.Headers = append(ep.Headers, h)
				return nil
			}))
		case "properties":
			obj, err := p.readObjectDocument(r, at)
			ep.Properties = obj
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	if !hasURL {
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "expected endpoint has no url"}
	}
	return ep, nil
}

// parseTestParams reads input values. Only booleans, strings and string
// arrays are accepted; any other shape is fatal.
func (p *Parser) parseTestParams(r jsonast.Reader, path string) ([]TestParam, error) {
	var params []TestParam
	err := jsonast.ReadObject(r, func(name string) error {
		at := joinPath(path, name)
		v, err := p.parseTestParamValue(r, at)
		if err != nil {
			return err
		}
		params = append(params, TestParam{Name: name, Value: v})
		return nil
	})
	return params, asParseError(r, path, err)
}

func (p *Parser) parseTestParamValue(r jsonast.Reader, path string) (Document, error) {
	tok, err := r.Peek()
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	unknown := func(k jsonast.Kind) error {
		return &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeUnknownShape, Message: fmt.Sprintf("unsupported parameter value %s", k)}
	}

	switch tok.Kind {
	case jsonast.KindBool:
		b, err := jsonast.ReadBool(r)
		return DocBool(b), asParseError(r, path, err)
	case jsonast.KindString:
		s, err := jsonast.ReadString(r)
		return DocString(s), asParseError(r, path, err)
	case jsonast.KindArrayBegin:
		arr := DocArray{}
		err := jsonast.ReadArray(r, func(int) error {
			el, err := r.Peek()
			if err != nil {
				return err
			}
			if el.Kind != jsonast.KindString {
				return unknown(el.Kind)
			}
			s, err := jsonast.ReadString(r)
			arr = append(arr, DocString(s))
			return err
		})
		return arr, asParseError(r, path, err)
	default:
		return nil, unknown(tok.Kind)
	}
}
