package resolution

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/capability"
	"github.com/roach88/rulesgen/internal/rules"
)

// placeholder is one {name} or {name#attr} in a template string.
type placeholder struct {
	Name string
	Attr string
}

// templatePart is literal text or a placeholder.
type templatePart struct {
	Text        string
	Placeholder *placeholder
}

// scanTemplate splits s into literal text and placeholders. A '{' with no
// matching '}' before whitespace, another brace, or the end of s is
// literal text, as is "{}".
func scanTemplate(s string) []templatePart {
	var parts []templatePart
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, templatePart{Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			text.WriteByte(s[i])
			continue
		}
		end := closingBrace(s, i+1)
		if end <= i+1 {
			text.WriteByte('{')
			continue
		}
		flush()
		name, attr, _ := strings.Cut(s[i+1:end], "#")
		parts = append(parts, templatePart{Placeholder: &placeholder{Name: name, Attr: attr}})
		i = end
	}
	flush()
	return parts
}

// closingBrace returns the index of the '}' ending a placeholder that
// starts at from, or -1.
func closingBrace(s string, from int) int {
	for j := from; j < len(s); j++ {
		switch c := s[j]; {
		case c == '}':
			return j
		case c == '{' || unicode.IsSpace(rune(c)):
			return -1
		}
	}
	return -1
}

// template is a lowered string value. Exactly one of the forms is set:
// a literal, a format string with ordered placeholder expressions, or a
// direct expression for references and calls.
type template struct {
	Literal *string
	Format  string
	Args    []jen.Code
	Expr    jen.Code
}

// formatArgs returns the template as a format string and arguments,
// whatever its form.
func (t template) formatArgs() (string, []jen.Code) {
	switch {
	case t.Literal != nil:
		return escapePercent(*t.Literal), nil
	case t.Expr != nil:
		return "%v", []jen.Code{t.Expr}
	default:
		return t.Format, t.Args
	}
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// evalTemplateString lowers a StringValue. References and calls evaluate
// directly; literals are scanned for placeholders. {name} reads the bound
// field, dereferenced when optional; {name#attr} is an implicit getAttr
// call on the reference.
func (c *Compiler) evalTemplateString(v rules.StringValue) (template, error) {
	switch x := v.(type) {
	case rules.Ref:
		return template{Expr: c.evalRef(string(x), false)}, nil
	case rules.FuncCall:
		expr, fn, err := c.evalCall(x)
		if err != nil {
			return template{}, err
		}
		if fn.ReturnsOptional {
			expr = jen.Op("*").Parens(expr)
		}
		return template{Expr: expr}, nil
	case rules.String:
		return c.evalTemplateLiteral(string(x))
	default:
		return template{}, fmt.Errorf("unsupported string value %T", v)
	}
}

func (c *Compiler) evalTemplateLiteral(s string) (template, error) {
	parts := scanTemplate(s)
	if len(parts) == 0 || (len(parts) == 1 && parts[0].Placeholder == nil) {
		return template{Literal: &s}, nil
	}

	var format strings.Builder
	var args []jen.Code
	for _, part := range parts {
		if part.Placeholder == nil {
			format.WriteString(escapePercent(part.Text))
			continue
		}
		format.WriteString("%v")
		ref := c.evalRef(part.Placeholder.Name, false)
		if part.Placeholder.Attr == "" {
			args = append(args, ref)
			continue
		}
		getAttr, err := c.caps.Function(capability.FnGetAttr)
		if err != nil {
			return template{}, err
		}
		args = append(args, getAttr.Emit([]jen.Code{ref, jen.Lit(part.Placeholder.Attr)}))
	}
	return template{Format: format.String(), Args: args}, nil
}
