package resolution

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// StructField is one generated parameter field.
type StructField struct {
	Name string
	// Type is the field's Go type, a pointer when Nullable.
	Type     *jen.Statement
	Nullable bool
	Doc      []string
}

// Code renders the doc comment lines followed by the field.
func (f StructField) Code() []jen.Code {
	out := make([]jen.Code, 0, len(f.Doc)+1)
	for _, line := range f.Doc {
		out = append(out, jen.Comment(line))
	}
	return append(out, jen.Id(f.Name).Add(f.Type))
}

// GenerateParametersFields returns one field per parameter in declaration
// order. Optional and defaulted parameters are nullable and absent by
// default; a required parameter with no default anywhere is a plain field.
func (c *Compiler) GenerateParametersFields() []StructField {
	fields := make([]StructField, 0, len(c.params))
	for _, p := range c.params {
		nullable := c.nullable(p)
		typ := paramGoType(p.Type.Kind)
		if nullable {
			typ = jen.Op("*").Add(typ)
		}
		fields = append(fields, StructField{
			Name:     ExportedName(p.Name),
			Type:     typ,
			Nullable: nullable,
			Doc:      fieldDoc(p),
		})
	}
	return fields
}

func fieldDoc(p rules.Parameter) []string {
	var doc []string
	if p.Documentation != "" {
		doc = append(doc, strings.Split(strings.TrimSpace(p.Documentation), "\n")...)
	}
	if p.Deprecated != nil {
		if len(doc) > 0 {
			doc = append(doc, "")
		}
		line := "Deprecated:"
		if p.Deprecated.Message != "" {
			line += " " + p.Deprecated.Message
		}
		if p.Deprecated.Since != "" {
			line += fmt.Sprintf(" (since %s)", p.Deprecated.Since)
		}
		doc = append(doc, line)
	}
	return doc
}

// GenerateParamsStruct renders the parameter struct declaration.
func (c *Compiler) GenerateParamsStruct() jen.Code {
	var body []jen.Code
	for _, f := range c.GenerateParametersFields() {
		body = append(body, f.Code()...)
	}
	return jen.Comment(fmt.Sprintf("%s holds the inputs to %s.", c.paramsType, c.resolver)).Line().
		Type().Id(c.paramsType).Struct(body...)
}

// generateParamBinding emits the local for an indirect parameter:
//
//	region := rulesrt.OrElse(config.Region, "us-east-1")
//
// or, with no default anywhere, the raw optional read. A required
// parameter with no default anywhere is an error.
func (c *Compiler) generateParamBinding(p rules.Parameter) (jen.Code, error) {
	f, ok := c.fields[p.Name]
	if !ok {
		return nil, fmt.Errorf("parameter %s is not in the field table", p.Name)
	}
	eff := c.effective[p.Name]
	read := jen.Id(varConfig).Dot(ExportedName(p.Name))

	if eff.HasDefault() {
		return f.expr().Op(":=").Qual(rt, "OrElse").Call(read, literal(eff.Default)), nil
	}
	if p.Required {
		return nil, &Error{
			Code:    ErrCodeRequiredParamHasNoValue,
			Name:    p.Name,
			Message: fmt.Sprintf("required parameter bound to %s has no default", p.BuiltIn),
		}
	}
	return f.expr().Op(":=").Add(read), nil
}
