package resolution

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// GenerateTests renders one Go test per conformance case, numbered in
// document order. Error cases check only that resolution failed with the
// sentinel and leaked nothing; the expected message is kept as a comment.
func (c *Compiler) GenerateTests(cases []rules.TestCase) ([]jen.Code, error) {
	out := make([]jen.Code, 0, len(cases))
	for i, tc := range cases {
		fn, err := c.generateTest(i+1, tc)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i+1, err)
		}
		out = append(out, fn)
	}
	return out, nil
}

func (c *Compiler) generateTest(n int, tc rules.TestCase) (jen.Code, error) {
	name := fmt.Sprintf("Test%s_%d", c.resolver, n)

	var doc []jen.Code
	if d := strings.TrimSpace(tc.Documentation); d != "" {
		for _, line := range strings.Split(d, "\n") {
			doc = append(doc, jen.Comment(line).Line())
		}
	}

	stmts := []jen.Code{
		jen.Id(varConfig).Op(":=").Id(c.paramsType).Values(c.testConfig(tc.Params)),
		jen.Id(varAlloc).Op(":=").Qual(rt, "NewHeap").Call(),
	}

	switch {
	case tc.Expect.Error != nil:
		for _, line := range strings.Split(*tc.Expect.Error, "\n") {
			stmts = append(stmts, jen.Comment("expect error: "+line))
		}
		stmts = append(stmts,
			jen.List(jen.Id("_"), jen.Id(varErr)).Op(":=").Id(c.resolver).Call(jen.Id(varAlloc), jen.Id(varConfig)),
			jen.If(jen.Op("!").Qual("errors", "Is").Call(jen.Id(varErr), jen.Qual(rt, "ErrReachedErrorRule"))).Block(
				jen.Id("t").Dot("Fatalf").Call(jen.Lit("expected an error rule, got %v"), jen.Id(varErr)),
			),
			jen.If(jen.Id(varAlloc).Dot("InUse").Call().Op("!=").Lit(0)).Block(
				jen.Id("t").Dot("Errorf").Call(jen.Lit("%d units leaked"), jen.Id(varAlloc).Dot("InUse").Call()),
			),
		)
	case tc.Expect.Endpoint != nil:
		want, err := expectedEndpoint(*tc.Expect.Endpoint)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts,
			jen.List(jen.Id("got"), jen.Id(varErr)).Op(":=").Id(c.resolver).Call(jen.Id(varAlloc), jen.Id(varConfig)),
			jen.If(jen.Id(varErr).Op("!=").Nil()).Block(
				jen.Id("t").Dot("Fatalf").Call(jen.Lit("unexpected error: %v"), jen.Id(varErr)),
			),
			jen.Id("want").Op(":=").Add(want),
			jen.If(jen.Op("!").Qual(rt, "EndpointEqual").Call(jen.Id("want"), jen.Id("got"))).Block(
				jen.Id("t").Dot("Errorf").Call(jen.Lit("endpoint mismatch\nwant: %+v\ngot:  %+v"), jen.Id("want"), jen.Id("got")),
			),
		)
	default:
		return nil, fmt.Errorf("no expectation")
	}

	return jen.Add(doc...).Func().Id(name).Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(stmts...), nil
}

// testConfig builds the parameter struct literal. Values for unknown
// parameters, or of the wrong shape, are dropped with a warning.
func (c *Compiler) testConfig(params []rules.TestParam) jen.Dict {
	dict := jen.Dict{}
	for _, tp := range params {
		p, ok := c.param(tp.Name)
		if !ok {
			c.log.Warn("test parameter is not declared, skipping", "name", tp.Name)
			continue
		}
		v, ok := testValue(p.Type.Kind, tp.Value)
		if !ok {
			c.log.Warn("test parameter does not match its declared type, skipping",
				"name", tp.Name, "type", p.Type.Kind.String())
			continue
		}
		if c.nullable(p) {
			v = jen.Qual(rt, "Ptr").Call(v)
		}
		dict[jen.Id(ExportedName(p.Name))] = v
	}
	return dict
}

func (c *Compiler) param(name string) (rules.Parameter, bool) {
	for _, p := range c.params {
		if p.Name == name {
			return p, true
		}
	}
	return rules.Parameter{}, false
}

func testValue(kind rules.ParamKind, d rules.Document) (jen.Code, bool) {
	switch x := d.(type) {
	case rules.DocBool:
		return jen.Lit(bool(x)), kind == rules.ParamBool
	case rules.DocString:
		return jen.Lit(string(x)), kind == rules.ParamString
	case rules.DocArray:
		if kind != rules.ParamStringArray {
			return nil, false
		}
		items := make([]jen.Code, len(x))
		for i, e := range x {
			s, ok := e.(rules.DocString)
			if !ok {
				return nil, false
			}
			items[i] = jen.Lit(string(s))
		}
		return jen.Index().String().Values(items...), true
	default:
		return nil, false
	}
}

// expectedEndpoint renders the literal an endpoint case compares against.
// Strings are taken verbatim; nothing is templated.
func expectedEndpoint(ep rules.ExpectedEndpoint) (jen.Code, error) {
	dict := jen.Dict{jen.Id("URL"): jen.Lit(ep.URL)}

	if len(ep.Headers) > 0 {
		headers := make([]jen.Code, len(ep.Headers))
		for i, h := range ep.Headers {
			values := make([]jen.Code, len(h.Values))
			for j, v := range h.Values {
				values[j] = jen.Lit(v)
			}
			headers[i] = jen.Values(jen.Dict{
				jen.Id("Name"):   jen.Lit(h.Name),
				jen.Id("Values"): jen.Index().String().Values(values...),
			})
		}
		dict[jen.Id("Headers")] = jen.Index().Qual(rt, "Header").Values(headers...)
	}

	props, schemes, err := rules.SplitAuthSchemes(ep.Properties)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		dict[jen.Id("Properties")] = propertiesLiteral(props)
	}
	if len(schemes) > 0 {
		items := make([]jen.Code, len(schemes))
		for i, s := range schemes {
			scheme := jen.Dict{jen.Id("Name"): jen.Lit(s.Name)}
			if len(s.Properties) > 0 {
				scheme[jen.Id("Properties")] = propertiesLiteral(s.Properties)
			}
			items[i] = jen.Values(scheme)
		}
		dict[jen.Id("AuthSchemes")] = jen.Index().Qual(rt, "AuthScheme").Values(items...)
	}
	return jen.Qual(rt, "Endpoint").Values(dict), nil
}
