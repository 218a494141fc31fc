package rules

import (
	"fmt"
	"log/slog"

	"github.com/roach88/rulesgen/internal/jsonast"
)

// Parser builds RuleSets and TestCases from a token stream.
//
// Unknown properties anywhere are logged at Warn and skipped so newer
// ruleset revisions still load. Every other structural violation is a
// fatal *ParseError.
type Parser struct {
	log *slog.Logger
}

// NewParser creates a Parser. A nil logger means slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{log: logger}
}

// ParseRuleSet reads one ruleset document.
func (p *Parser) ParseRuleSet(r jsonast.Reader) (*RuleSet, error) {
	rs := &RuleSet{}
	seenVersion := false

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
					Message: fmt.Sprintf("unsupported ruleset version %q (want %q)", v, SupportedVersion),
				}
			}
			rs.Version = v
			seenVersion = true
			return nil
		case "parameters":
			params, err := p.parseParameters(r, key)
			rs.Parameters = params
			return err
		case "rules":
			rules, err := p.parseRules(r, key)
			rs.Rules = rules
			return err
		default:
			return p.skipUnknown(r, "", key)
		}
	})
	if err != nil {
		return nil, asParseError(r, "", err)
	}
	if !seenVersion {
		return nil, &ParseError{
			Offset:  r.Offset(),
			Code:    ErrCodeUnsupportedVersion,
			Message: "ruleset has no version",
		}
	}
	if _, err := jsonast.Expect(r, jsonast.KindEOF); err != nil {
		return nil, asParseError(r, "", err)
	}
	return rs, nil
}

func (p *Parser) parseParameters(r jsonast.Reader, path string) ([]Parameter, error) {
	var params []Parameter
	seen := make(map[string]bool)

	err := jsonast.ReadObject(r, func(name string) error {
		at := joinPath(path, name)
		if seen[name] {
			return &ParseError{Path: at, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "duplicate parameter"}
		}
		seen[name] = true

		param, err := p.parseParameter(r, at, name)
		if err != nil {
			return err
		}
		params = append(params, param)
		return nil
	})
	return params, asParseError(r, path, err)
}

func (p *Parser) parseParameter(r jsonast.Reader, path, name string) (Parameter, error) {
	param := Parameter{Name: name}
	haveType := false

	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "type":
			s, err := p.readString(r, at)
			if err != nil {
				return err
			}
			kind, ok := ParseParamKind(s)
			if !ok {
				return &ParseError{Path: at, Offset: r.Offset(), Code: ErrCodeMalformed, Message: fmt.Sprintf("unknown parameter type %q", s)}
			}
			if haveType && param.Type.HasDefault() && kind != param.Type.Kind {
				return &ParseError{Path: at, Offset: r.Offset(), Code: ErrCodeTypeMismatch, Message: "type redeclared after default"}
			}
			param.Type.Kind = kind
			haveType = true
			return nil
		case "default":
			if !haveType {
				return &ParseError{Path: at, Offset: r.Offset(), Code: ErrCodeDefaultBeforeType, Message: "default must follow type"}
			}
			d, err := p.parseDefault(r, at, param.Type.Kind)
			param.Type.Default = d
			return err
		case "required":
			b, err := jsonast.ReadBool(r)
			param.Required = b
			return asParseError(r, at, err)
		case "documentation":
			s, err := p.readString(r, at)
			param.Documentation = s
			return err
		case "builtIn":
			s, err := p.readString(r, at)
			param.BuiltIn = s
			return err
		case "deprecated":
			d, err := p.parseDeprecation(r, at)
			param.Deprecated = d
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return Parameter{}, asParseError(r, path, err)
	}
	if !haveType {
		return Parameter{}, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "parameter has no type"}
	}
	return param, nil
}

// parseDefault reads a default whose JSON shape must match kind.
func (p *Parser) parseDefault(r jsonast.Reader, path string, kind ParamKind) (ArgValue, error) {
	tok, err := r.Peek()
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	mismatch := func(got jsonast.Kind) error {
		return &ParseError{
			Path:    path,
			Offset:  r.Offset(),
			Code:    ErrCodeTypeMismatch,
			Message: fmt.Sprintf("default for %s parameter cannot be %s", kind, got),
		}
	}

	switch kind {
	case ParamBool:
		if tok.Kind != jsonast.KindBool {
			return nil, mismatch(tok.Kind)
		}
		b, err := jsonast.ReadBool(r)
		return Bool(b), asParseError(r, path, err)
	case ParamString:
		if tok.Kind != jsonast.KindString {
			return nil, mismatch(tok.Kind)
		}
		s, err := jsonast.ReadString(r)
		return String(s), asParseError(r, path, err)
	default:
		if tok.Kind != jsonast.KindArrayBegin {
			return nil, mismatch(tok.Kind)
		}
		arr := Array{}
		err := jsonast.ReadArray(r, func(i int) error {
			el, err := r.Peek()
			if err != nil {
				return err
			}
			if el.Kind != jsonast.KindString {
				return mismatch(el.Kind)
			}
			s, err := jsonast.ReadString(r)
			arr = append(arr, String(s))
			return err
		})
		return arr, asParseError(r, path, err)
	}
}

func (p *Parser) parseDeprecation(r jsonast.Reader, path string) (*Deprecation, error) {
	d := &Deprecation{}
	err := jsonast.ReadObject(r, func(key string) error {
		switch key {
		case "message":
			s, err := p.readString(r, joinPath(path, key))
			d.Message = s
			return err
		case "since":
			s, err := p.readString(r, joinPath(path, key))
			d.Since = s
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	return d, nil
}

func (p *Parser) parseRules(r jsonast.Reader, path string) ([]Rule, error) {
	var rules []Rule
	err := jsonast.ReadArray(r, func(i int) error {
		rule, err := p.parseRule(r, indexPath(path, i))
		if err != nil {
			return err
		}
		rules = append(rules, rule)
		return nil
	})
	return rules, asParseError(r, path, err)
}

// ruleTypes maps an explicit "type" value to the payload key it requires.
var ruleTypes = map[string]string{
	"endpoint": "endpoint",
	"error":    "error",
	"tree":     "rules",
}

// parseRule reads one rule. The discriminating key may appear anywhere
// among the object's keys, so conditions and documentation are collected
// first and attached once the variant is known.
func (p *Parser) parseRule(r jsonast.Reader, path string) (Rule, error) {
	var (
		common   RuleCommon
		explicit string
		payload  string
		message  StringValue
		endpoint Endpoint
		children []Rule
	)

	setPayload := func(key string) error {
		if payload != "" && payload != key {
			return &ParseError{
				Path:    path,
				Offset:  r.Offset(),
				Code:    ErrCodeMalformed,
				Message: fmt.Sprintf("rule has both %q and %q", payload, key),
			}
		}
		payload = key
		return nil
	}

	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "type":
			s, err := p.readString(r, at)
			explicit = s
			return err
		case "conditions":
			conds, err := p.parseConditions(r, at)
			common.Conditions = conds
			return err
		case "documentation":
			s, err := p.readString(r, at)
			common.Documentation = s
			return err
		case "error":
			if err := setPayload(key); err != nil {
				return err
			}
			v, err := p.parseStringValue(r, at)
			message = v
			return err
		case "endpoint":
			if err := setPayload(key); err != nil {
				return err
			}
			ep, err := p.parseEndpoint(r, at)
			endpoint = ep
			return err
		case "rules":
			if err := setPayload(key); err != nil {
				return err
			}
			rs, err := p.parseRules(r, at)
			children = rs
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return nil, asParseError(r, path, err)
	}

	if explicit != "" {
		want, ok := ruleTypes[explicit]
		if !ok {
			return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeUnrecognizedRule, Message: fmt.Sprintf("unknown rule type %q", explicit)}
		}
		if payload == "" {
			return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: fmt.Sprintf("rule of type %q has no %q", explicit, want)}
		}
		if payload != want {
			return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("rule of type %q carries %q", explicit, payload)}
		}
	}

	switch payload {
	case "error":
		return &ErrorRule{RuleCommon: common, Message: message}, nil
	case "endpoint":
		return &EndpointRule{RuleCommon: common, Endpoint: endpoint}, nil
	case "rules":
		return &TreeRule{RuleCommon: common, Rules: children}, nil
	default:
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeUnrecognizedRule, Message: "rule has no endpoint, error or rules key"}
	}
}

func (p *Parser) parseConditions(r jsonast.Reader, path string) ([]Condition, error) {
	var conds []Condition
	err := jsonast.ReadArray(r, func(i int) error {
		c, err := p.parseCondition(r, indexPath(path, i))
		if err != nil {
			return err
		}
		conds = append(conds, c)
		return nil
	})
	return conds, asParseError(r, path, err)
}

func (p *Parser) parseCondition(r jsonast.Reader, path string) (Condition, error) {
	var c Condition
	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "fn":
			s, err := p.readString(r, at)
			c.Fn = s
			return err
		case "argv":
			args, err := p.parseArgs(r, at)
			c.Args = args
			return err
		case "assign":
			s, err := p.readString(r, at)
			c.Assign = s
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return Condition{}, asParseError(r, path, err)
	}
	if c.Fn == "" {
		return Condition{}, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "condition has no fn"}
	}
	return c, nil
}

func (p *Parser) parseArgs(r jsonast.Reader, path string) ([]ArgValue, error) {
	var args []ArgValue
	err := jsonast.ReadArray(r, func(i int) error {
		v, err := p.parseArg(r, indexPath(path, i))
		if err != nil {
			return err
		}
		args = append(args, v)
		return nil
	})
	return args, asParseError(r, path, err)
}

// parseArg reads literals, nested arrays, references, and nested calls.
func (p *Parser) parseArg(r jsonast.Reader, path string) (ArgValue, error) {
	tok, err := r.Peek()
	if err != nil {
		return nil, asParseError(r, path, err)
	}

	switch tok.Kind {
	case jsonast.KindString:
		s, err := jsonast.ReadString(r)
		return String(s), asParseError(r, path, err)
	case jsonast.KindBool:
		b, err := jsonast.ReadBool(r)
		return Bool(b), asParseError(r, path, err)
	case jsonast.KindNumber:
		if _, err := r.Next(); err != nil {
			return nil, asParseError(r, path, err)
		}
		n, err := tok.Number.Int64()
		if err != nil {
			return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("argument %s is not an integer", tok.Number)}
		}
		return Int(n), nil
	case jsonast.KindArrayBegin:
		arr := Array{}
		err := jsonast.ReadArray(r, func(i int) error {
			v, err := p.parseArg(r, indexPath(path, i))
			if err != nil {
				return err
			}
			arr = append(arr, v)
			return nil
		})
		return arr, asParseError(r, path, err)
	case jsonast.KindObjectBegin:
		return p.parseRefOrCall(r, path)
	default:
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: fmt.Sprintf("unsupported argument %s", tok.Kind)}
	}
}

// parseRefOrCall reads {"ref": name} or {"fn": id, "argv": [...]}.
func (p *Parser) parseRefOrCall(r jsonast.Reader, path string) (StringValue, error) {
	var (
		ref, fn      string
		args         []ArgValue
		hasRef, isFn bool
	)
	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "ref":
			s, err := p.readString(r, at)
			ref, hasRef = s, true
			return err
		case "fn":
			s, err := p.readString(r, at)
			fn, isFn = s, true
			return err
		case "argv":
			a, err := p.parseArgs(r, at)
			args = a
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return nil, asParseError(r, path, err)
	}

	switch {
	case hasRef && isFn:
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "object has both ref and fn"}
	case hasRef:
		return Ref(ref), nil
	case isFn:
		return FuncCall{Fn: fn, Args: args}, nil
	default:
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "object has neither ref nor fn"}
	}
}

func (p *Parser) parseStringValue(r jsonast.Reader, path string) (StringValue, error) {
	tok, err := r.Peek()
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	switch tok.Kind {
	case jsonast.KindString:
		s, err := jsonast.ReadString(r)
		return String(s), asParseError(r, path, err)
	case jsonast.KindObjectBegin:
		return p.parseRefOrCall(r, path)
	default:
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("expected a string value, got %s", tok.Kind)}
	}
}

func (p *Parser) parseEndpoint(r jsonast.Reader, path string) (Endpoint, error) {
	var ep Endpoint
	hasURL := false

	err := jsonast.ReadObject(r, func(key string) error {
		at := joinPath(path, key)
		switch key {
		case "url":
			v, err := p.parseStringValue(r, at)
			ep.URL, hasURL = v, true
			return err
		case "properties":
			obj, err := p.readObjectDocument(r, at)
			ep.Properties = obj
			return err
		case "headers":
			headers, err := p.parseHeaders(r, at)
			ep.Headers = headers
			return err
		default:
			return p.skipUnknown(r, path, key)
		}
	})
	if err != nil {
		return Endpoint{}, asParseError(r, path, err)
	}
	if !hasURL {
		return Endpoint{}, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeMalformed, Message: "endpoint has no url"}
	}
	return ep, nil
}

func (p *Parser) parseHeaders(r jsonast.Reader, path string) ([]Header, error) {
	var headers []Header
	err := jsonast.ReadObject(r, func(name string) error {
		at := joinPath(path, name)
		h := Header{Name: name, Values: []StringValue{}}
		err := jsonast.ReadArray(r, func(i int) error {
			v, err := p.parseStringValue(r, indexPath(at, i))
			if err != nil {
				return err
			}
			h.Values = append(h.Values, v)
			return nil
		})
		if err != nil {
			return asParseError(r, at, err)
		}
		headers = append(headers, h)
		return nil
	})
	return headers, asParseError(r, path, err)
}

// readObjectDocument captures an object verbatim.
func (p *Parser) readObjectDocument(r jsonast.Reader, path string) (DocObject, error) {
	doc, err := readDocument(r)
	if err != nil {
		return nil, asParseError(r, path, err)
	}
	obj, ok := doc.(DocObject)
	if !ok {
		return nil, &ParseError{Path: path, Offset: r.Offset(), Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("expected object, got %s", docKind(doc))}
	}
	return obj, nil
}

// readDocument captures one JSON value, preserving member order.
func readDocument(r jsonast.Reader) (Document, error) {
	tok, err := r.Peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case jsonast.KindObjectBegin:
		obj := DocObject{}
		err := jsonast.ReadObject(r, func(key string) error {
			v, err := readDocument(r)
			if err != nil {
				return err
			}
			obj = append(obj, Member{Key: key, Value: v})
			return nil
		})
		return obj, err
	case jsonast.KindArrayBegin:
		arr := DocArray{}
		err := jsonast.ReadArray(r, func(int) error {
			v, err := readDocument(r)
			if err != nil {
				return err
			}
			arr = append(arr, v)
			return nil
		})
		return arr, err
	}

	if _, err := r.Next(); err != nil {
		return nil, err
	}
	switch tok.Kind {
	case jsonast.KindString:
		return DocString(tok.String), nil
	case jsonast.KindNumber:
		return DocNumber(tok.Number), nil
	case jsonast.KindBool:
		return DocBool(tok.Bool), nil
	case jsonast.KindNull:
		return DocNull{}, nil
	default:
		return nil, &jsonast.UnexpectedTokenError{Offset: r.Offset(), Want: jsonast.KindNull, Got: tok.Kind}
	}
}

func (p *Parser) readString(r jsonast.Reader, path string) (string, error) {
	s, err := jsonast.ReadString(r)
	return s, asParseError(r, path, err)
}

func (p *Parser) skipUnknown(r jsonast.Reader, path, key string) error {
	p.log.Warn("skipping unknown property", "path", joinPath(path, key))
	return asParseError(r, joinPath(path, key), jsonast.Skip(r))
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
