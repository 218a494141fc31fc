package rules

import "strings"

// SupportedVersion is the only ruleset version the parser accepts.
const SupportedVersion = "1.0"

// RuleSet is one service's complete ruleset.
type RuleSet struct {
	Version    string
	Parameters []Parameter // declaration order
	Rules      []Rule
}

// Parameter returns the parameter with the given name.
func (rs *RuleSet) Parameter(name string) (Parameter, bool) {
	for _, p := range rs.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParamKind is the value type of a Parameter.
type ParamKind int

const (
	ParamBool ParamKind = iota
	ParamString
	ParamStringArray
)

func (k ParamKind) String() string {
	switch k {
	case ParamBool:
		return "boolean"
	case ParamString:
		return "string"
	case ParamStringArray:
		return "stringArray"
	default:
		return "unknown"
	}
}

// ParseParamKind maps a ruleset type name to a ParamKind. Matching is
// case-insensitive.
func ParseParamKind(s string) (ParamKind, bool) {
	switch strings.ToLower(s) {
	case "boolean":
		return ParamBool, true
	case "string":
		return ParamString, true
	case "stringarray":
		return ParamStringArray, true
	default:
		return 0, false
	}
}

// ParamType is a parameter's kind and optional default.
// Default is nil, Bool, String, or Array of String, matching Kind.
type ParamType struct {
	Kind    ParamKind
	Default ArgValue
}

// HasDefault reports whether a default value is declared.
func (t ParamType) HasDefault() bool {
	return t.Default != nil
}

// Parameter is a named input to endpoint resolution.
type Parameter struct {
	Name          string
	Type          ParamType
	Required      bool
	Documentation string
	// BuiltIn names a host capability that supplies the value, e.g. "SDK::Endpoint".
	BuiltIn    string
	Deprecated *Deprecation
}

// Deprecation marks a parameter as deprecated.
type Deprecation struct {
	Message string
	Since   string
}

// ArgValue is a sealed interface for function arguments.
// Implemented by Bool, Int, String, Ref, Array, and FuncCall.
type ArgValue interface {
	argValue()
}

// StringValue is an ArgValue that evaluates to a string.
// Implemented by String (a possibly templated literal), Ref, and FuncCall.
type StringValue interface {
	ArgValue
	stringValue()
}

// Bool is a boolean literal.
type Bool bool

func (Bool) argValue() {}

// Int is an integer literal. Non-integer numbers are rejected at parse time.
type Int int64

func (Int) argValue() {}

// String is a string literal that may embed {name} and {name#path}
// placeholders.
type String string

func (String) argValue()    {}
func (String) stringValue() {}

// Ref references a parameter or an assigned name.
type Ref string

func (Ref) argValue()    {}
func (Ref) stringValue() {}

// Array is a list of argument values.
type Array []ArgValue

func (Array) argValue() {}

// FuncCall invokes a named function.
type FuncCall struct {
	Fn   string
	Args []ArgValue
}

func (FuncCall) argValue()    {}
func (FuncCall) stringValue() {}

// Condition is one boolean test in a rule's guard. When Assign is set the
// function's result is bound to that name for later conditions and the
// guarded body.
type Condition struct {
	Fn     string
	Args   []ArgValue
	Assign string
}

// Rule is a sealed interface for decision nodes.
// Implemented by *ErrorRule, *EndpointRule, and *TreeRule.
type Rule interface {
	Common() *RuleCommon
	rule()
}

// RuleCommon carries what every rule variant has.
type RuleCommon struct {
	Conditions    []Condition
	Documentation string
}

// Common returns the shared rule fields.
func (c *RuleCommon) Common() *RuleCommon { return c }

// ErrorRule ends resolution with an error. Message is diagnostic only.
type ErrorRule struct {
	RuleCommon
	Message StringValue
}

func (*ErrorRule) rule() {}

// EndpointRule ends resolution with an endpoint.
type EndpointRule struct {
	RuleCommon
	Endpoint Endpoint
}

func (*EndpointRule) rule() {}

// TreeRule descends into nested rules when its conditions pass.
type TreeRule struct {
	RuleCommon
	Rules []Rule
}

func (*TreeRule) rule() {}

// Endpoint is the outcome of a successful resolution.
type Endpoint struct {
	URL        StringValue
	Headers    []Header  // document order
	Properties DocObject // verbatim, including any authSchemes entry
}

// Header is one endpoint header with its values.
type Header struct {
	Name   string
	Values []StringValue
}

// TestCase is one conformance example.
type TestCase struct {
	Documentation string
	Expect        Expectation
	Params        []TestParam // document order
}

// Expectation is exactly one of an endpoint or an error message.
type Expectation struct {
	Endpoint *ExpectedEndpoint
	// Error is the expected message. It is kept for documentation only;
	// conformance tests check that resolution failed, not the text.
	Error *string
}

// ExpectedEndpoint is the endpoint a test case expects.
type ExpectedEndpoint struct {
	URL        string
	Headers    []ExpectedHeader
	Properties DocObject
}

// ExpectedHeader is one expected header.
type ExpectedHeader struct {
	Name   string
	Values []string
}

// TestParam is one input value. Value is DocBool, DocString, or a DocArray
// of DocString.
type TestParam struct {
	Name  string
	Value Document
}
