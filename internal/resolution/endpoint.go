package resolution

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// endpointBuilder accumulates the statements of one endpoint block.
type endpointBuilder struct {
	stmts []jen.Code
}

func (b *endpointBuilder) add(code ...jen.Code) {
	b.stmts = append(b.stmts, code...)
}

// allocate emits an allocation, its error check, and its rollback:
//
//	name, err := <rhs>
//	if err != nil {
//		return rulesrt.Endpoint{}, err
//	}
//	unwind.Push(func() { <free>(alloc, name) })
func (b *endpointBuilder) allocate(name string, rhs jen.Code, free string) {
	b.add(
		jen.List(jen.Id(name), jen.Id(varErr)).Op(":=").Add(rhs),
		jen.If(jen.Id(varErr).Op("!=").Nil()).Block(
			jen.Return(jen.Qual(rt, "Endpoint").Values(), jen.Id(varErr)),
		),
		jen.Id(varUnwind).Dot("Push").Call(jen.Func().Params().Block(
			jen.Qual(rt, free).Call(jen.Id(varAlloc), jen.Id(name)),
		)),
	)
}

// allocString formats t through the allocator into name.
func (b *endpointBuilder) allocString(name string, t template) {
	format, args := t.formatArgs()
	call := jen.Qual(rt, "Sprintf").Call(append([]jen.Code{jen.Id(varAlloc), jen.Lit(format)}, args...)...)
	b.allocate(name, call, "FreeString")
}

// allocSlice allocates n elements of rulesrt.<elem> into name.
func (b *endpointBuilder) allocSlice(name string, elem jen.Code, n int) {
	call := jen.Qual(rt, "Alloc").Types(elem).Call(jen.Id(varAlloc), jen.Lit(n))
	b.allocate(name, call, "Free")
}

// generateEndpointRule lowers an endpoint into a block that builds it
// all-or-nothing. Allocations run url, headers, properties, auth schemes,
// then each scheme's properties; every one registers its rollback before
// the next begins. A failure returns through the deferred unwind, which
// frees what was taken in reverse order. Success releases the guards.
func (c *Compiler) generateEndpointRule(ep rules.Endpoint) (jen.Code, error) {
	b := &endpointBuilder{}
	b.add(
		jen.Var().Id(varUnwind).Qual(rt, "Unwind"),
		jen.Defer().Id(varUnwind).Dot("Run").Call(),
	)
	result := jen.Dict{}

	url, err := c.evalTemplateString(ep.URL)
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	b.allocString("epURL", url)
	result[jen.Id("URL")] = jen.Id("epURL")

	if len(ep.Headers) > 0 {
		b.allocSlice("epHeaders", jen.Qual(rt, "Header"), len(ep.Headers))
		for i, h := range ep.Headers {
			header := jen.Dict{jen.Id("Name"): jen.Lit(h.Name)}
			if len(h.Values) > 0 {
				name := fmt.Sprintf("epHeader%d", i)
				if err := c.generateStringsArray(b, name, h.Values); err != nil {
					return nil, fmt.Errorf("header %s: %w", h.Name, err)
				}
				header[jen.Id("Values")] = jen.Id(name)
			}
			b.add(jen.Id("epHeaders").Index(jen.Lit(i)).Op("=").Qual(rt, "Header").Values(header))
		}
		result[jen.Id("Headers")] = jen.Id("epHeaders")
	}

	props, schemes, err := rules.SplitAuthSchemes(ep.Properties)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}

	if len(props) > 0 {
		if err := c.generateProperties(b, "epProps", props); err != nil {
			return nil, err
		}
		result[jen.Id("Properties")] = jen.Id("epProps")
	}

	if len(schemes) > 0 {
		b.allocSlice("epSchemes", jen.Qual(rt, "AuthScheme"), len(schemes))
		for i, s := range schemes {
			scheme := jen.Dict{jen.Id("Name"): jen.Lit(s.Name)}
			if len(s.Properties) > 0 {
				name := fmt.Sprintf("epScheme%d", i)
				if err := c.generateProperties(b, name, s.Properties); err != nil {
					return nil, fmt.Errorf("auth scheme %s: %w", s.Name, err)
				}
				scheme[jen.Id("Properties")] = jen.Id(name)
			}
			b.add(jen.Id("epSchemes").Index(jen.Lit(i)).Op("=").Qual(rt, "AuthScheme").Values(scheme))
		}
		result[jen.Id("AuthSchemes")] = jen.Id("epSchemes")
	}

	b.add(
		jen.Id(varUnwind).Dot("Release").Call(),
		jen.Return(jen.Qual(rt, "Endpoint").Values(result), jen.Nil()),
	)
	return jen.Block(b.stmts...), nil
}

// generateStringsArray allocates a []string for values. Each templated
// entry gets its own allocated intermediate, with its own rollback, before
// it is stored.
func (c *Compiler) generateStringsArray(b *endpointBuilder, name string, values []rules.StringValue) error {
	b.allocSlice(name, jen.String(), len(values))
	for i, v := range values {
		t, err := c.evalTemplateString(v)
		if err != nil {
			return err
		}
		if t.Literal != nil {
			b.add(jen.Id(name).Index(jen.Lit(i)).Op("=").Lit(*t.Literal))
			continue
		}
		entry := fmt.Sprintf("%sValue%d", name, i)
		b.allocString(entry, t)
		b.add(jen.Id(name).Index(jen.Lit(i)).Op("=").Id(entry))
	}
	return nil
}

// generateProperties allocates a []rulesrt.Property for props and fills it.
func (c *Compiler) generateProperties(b *endpointBuilder, name string, props rules.DocObject) error {
	b.allocSlice(name, jen.Qual(rt, "Property"), len(props))
	for i, m := range props {
		v, err := c.generateDocValue(b, fmt.Sprintf("%sValue%d", name, i), m.Value)
		if err != nil {
			return fmt.Errorf("property %s: %w", m.Key, err)
		}
		b.add(jen.Id(name).Index(jen.Lit(i)).Op("=").Qual(rt, "Property").Values(jen.Dict{
			jen.Id("Key"):   jen.Lit(m.Key),
			jen.Id("Value"): v,
		}))
	}
	return nil
}

// generateDocValue lowers a property value. Templated strings are
// allocated into intermediates named from name; everything else is a
// composite literal.
func (c *Compiler) generateDocValue(b *endpointBuilder, name string, d rules.Document) (jen.Code, error) {
	switch x := d.(type) {
	case rules.DocString:
		t, err := c.evalTemplateLiteral(string(x))
		if err != nil {
			return nil, err
		}
		if t.Literal != nil {
			return jen.Lit(*t.Literal), nil
		}
		b.allocString(name, t)
		return jen.Id(name), nil
	case rules.DocArray:
		items := make([]jen.Code, len(x))
		for i, e := range x {
			v, err := c.generateDocValue(b, fmt.Sprintf("%sItem%d", name, i), e)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return jen.Index().Qual(rt, "Value").Values(items...), nil
	case rules.DocObject:
		members := make([]jen.Code, len(x))
		for i, m := range x {
			v, err := c.generateDocValue(b, fmt.Sprintf("%sField%d", name, i), m.Value)
			if err != nil {
				return nil, err
			}
			members[i] = jen.Values(jen.Dict{jen.Id("Key"): jen.Lit(m.Key), jen.Id("Value"): v})
		}
		return jen.Index().Qual(rt, "Property").Values(members...), nil
	default:
		return docLiteral(d), nil
	}
}

// docLiteral renders a document without template scanning.
func docLiteral(d rules.Document) jen.Code {
	switch x := d.(type) {
	case rules.DocString:
		return jen.Lit(string(x))
	case rules.DocBool:
		return jen.Lit(bool(x))
	case rules.DocNumber:
		return jen.Qual("encoding/json", "Number").Call(jen.Lit(string(x)))
	case rules.DocArray:
		items := make([]jen.Code, len(x))
		for i, e := range x {
			items[i] = docLiteral(e)
		}
		return jen.Index().Qual(rt, "Value").Values(items...)
	case rules.DocObject:
		return propertiesLiteral(x)
	default:
		return jen.Nil()
	}
}

func propertiesLiteral(obj rules.DocObject) *jen.Statement {
	members := make([]jen.Code, len(obj))
	for i, m := range obj {
		members[i] = jen.Values(jen.Dict{jen.Id("Key"): jen.Lit(m.Key), jen.Id("Value"): docLiteral(m.Value)})
	}
	return jen.Index().Qual(rt, "Property").Values(members...)
}
