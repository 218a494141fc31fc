package capability

import (
	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// Standard function ids.
const (
	FnIsSet            = "isSet"
	FnNot              = "not"
	FnBooleanEquals    = "booleanEquals"
	FnStringEquals     = "stringEquals"
	FnGetAttr          = "getAttr"
	FnSubstring        = "substring"
	FnURIEncode        = "uriEncode"
	FnParseURL         = "parseURL"
	FnIsValidHostLabel = "isValidHostLabel"
)

// BuiltInEndpoint is the standard custom-endpoint built-in.
const BuiltInEndpoint = "SDK::Endpoint"

// StandardBuiltIns returns the built-ins every registry carries.
func StandardBuiltIns() []BuiltIn {
	return []BuiltIn{
		{ID: BuiltInEndpoint, Type: rules.ParamType{Kind: rules.ParamString}},
	}
}

// call emits rulesrt.<name>(args...).
func call(name string) EmitFunc {
	return func(args []jen.Code) *jen.Statement {
		return jen.Qual(RuntimePath, name).Call(args...)
	}
}

// StandardFunctions returns the functions every registry carries. Each
// lowers to a call into the runtime package.
func StandardFunctions() []Function {
	return []Function{
		{ID: FnIsSet, ReturnType: TypeBool, RawArgs: true, Emit: call("IsSet")},
		{ID: FnNot, ReturnType: TypeBool, Emit: call("Not")},
		{ID: FnBooleanEquals, ReturnType: TypeBool, Emit: call("BooleanEquals")},
		{ID: FnStringEquals, ReturnType: TypeBool, Emit: call("StringEquals")},
		{ID: FnGetAttr, ReturnType: TypeValue, Emit: call("GetAttr")},
		{ID: FnSubstring, ReturnsOptional: true, ReturnType: TypeString, Emit: call("Substring")},
		{ID: FnURIEncode, ReturnType: TypeString, Emit: call("URIEncode")},
		{ID: FnParseURL, ReturnsOptional: true, ReturnType: TypeURL, Emit: call("ParseURL")},
		{ID: FnIsValidHostLabel, ReturnType: TypeBool, Emit: call("IsValidHostLabel")},
	}
}
