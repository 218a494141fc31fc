package capability

import (
	"fmt"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rulesgen/internal/rules"
)

func TestStandardRegistry(t *testing.T) {
	r := Standard()

	for _, id := range []string{FnIsSet, FnNot, FnBooleanEquals, FnStringEquals, FnGetAttr, FnSubstring, FnURIEncode, FnParseURL, FnIsValidHostLabel} {
		f, err := r.Function(id)
		require.NoError(t, err, id)
		assert.Equal(t, id, f.ID)
		assert.NotNil(t, f.Emit, id)
		assert.NotNil(t, f.ReturnType, id)
	}

	b, err := r.BuiltIn(BuiltInEndpoint)
	require.NoError(t, err)
	assert.Equal(t, rules.ParamString, b.Type.Kind)
	assert.False(t, b.Type.HasDefault())

	assert.Equal(t, []string{BuiltInEndpoint}, r.BuiltInIDs())
	assert.Len(t, r.FunctionIDs(), 9)
	assert.IsNonDecreasing(t, r.FunctionIDs())
}

func TestUnknownLookups(t *testing.T) {
	r := Standard()

	_, err := r.Function("aws.partition")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeFuncUnknown))
	assert.Contains(t, err.Error(), `unknown function "aws.partition"`)

	_, err = r.BuiltIn("AWS::Region")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeBuiltInUnknown))
	assert.False(t, IsCode(err, ErrCodeFuncUnknown))
}

func TestExtensions(t *testing.T) {
	region := BuiltIn{ID: "AWS::Region", Type: rules.ParamType{Kind: rules.ParamString, Default: rules.String("us-east-1")}}
	partition := Function{
		ID:              "aws.partition",
		ReturnsOptional: true,
		ReturnType:      &TypeRef{Path: "example.com/partitions", Name: "Partition"},
		Emit: func(args []jen.Code) *jen.Statement {
			return jen.Qual("example.com/partitions", "Lookup").Call(args...)
		},
	}

	r, err := New([]BuiltIn{region}, []Function{partition})
	require.NoError(t, err)

	got, err := r.BuiltIn("AWS::Region")
	require.NoError(t, err)
	assert.Equal(t, rules.String("us-east-1"), got.Type.Default)

	f, err := r.Function("aws.partition")
	require.NoError(t, err)
	assert.True(t, f.ReturnsOptional)

	stmt := f.Emit([]jen.Code{jen.Id("region")})
	assert.Equal(t, "partitions.Lookup(region)", fmt.Sprintf("%#v", stmt))
}

func TestExtensionCollisions(t *testing.T) {
	tests := []struct {
		name      string
		builtIns  []BuiltIn
		functions []Function
	}{
		{"standard function", nil, []Function{{ID: FnIsSet}}},
		{"standard built-in", []BuiltIn{{ID: BuiltInEndpoint}}, nil},
		{"two extensions", nil, []Function{{ID: "x"}, {ID: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.builtIns, tt.functions)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeDuplicateID))
		})
	}
}

func TestTypeRefCode(t *testing.T) {
	tests := []struct {
		ref  TypeRef
		want string
	}{
		{*TypeBool, "bool"},
		{*TypeStringSlice, "[]string"},
		{*TypeValue, "rulesrt.Value"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fmt.Sprintf("%#v", tt.ref.Code()))
	}

	assert.True(t, TypeBool.IsBool())
	assert.False(t, TypeString.IsBool())
	assert.False(t, TypeValue.IsBool())
}

func TestStandardEmit(t *testing.T) {
	r := Standard()
	f, err := r.Function(FnStringEquals)
	require.NoError(t, err)

	stmt := f.Emit([]jen.Code{jen.Op("*").Id("region"), jen.Lit("aws")})
	assert.Equal(t, `rulesrt.StringEquals(*region, "aws")`, fmt.Sprintf("%#v", stmt))
}
