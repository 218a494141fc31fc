package resolution

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// didPassComment documents the shared guard flag in generated code.
var didPassComment = []string{
	"didPass holds the result of the most recent guard. Every guarded body",
	"is emitted directly after its own guard, before any other guard can",
	"overwrite the flag, so one variable serves every nesting level.",
}

// GenerateResolver renders the resolver function for rs's rule forest.
func (c *Compiler) GenerateResolver(forest []rules.Rule) (jen.Code, error) {
	if len(forest) == 0 {
		return nil, &Error{Code: ErrCodeEmptyRuleSet, Message: "ruleset has no rules"}
	}

	preamble := []jen.Code{
		jen.Id(varScratch).Op(":=").Qual(rt, "NewScratch").Call(jen.Qual(rt, "DefaultScratchSize")),
		jen.Id("_").Op("=").Id(varScratch),
	}
	for _, p := range c.params {
		if !c.isIndirect(p) {
			continue
		}
		binding, err := c.generateParamBinding(p)
		if err != nil {
			return nil, err
		}
		preamble = append(preamble, binding, jen.Id("_").Op("=").Add(c.fields[p.Name].Access))
	}

	var body []jen.Code
	terminated, err := c.generateResolverRules(&body, forest)
	if err != nil {
		return nil, err
	}
	if !terminated {
		body = append(body,
			jen.Qual(rt, "LogRuleError").Call(jen.Lit("no endpoint rule matched")),
			jen.Return(jen.Qual(rt, "Endpoint").Values(), jen.Qual(rt, "ErrReachedErrorRule")),
		)
	}

	stmts := append(preamble, c.hoisted...)
	if c.guarded {
		for _, line := range didPassComment {
			stmts = append(stmts, jen.Comment(line))
		}
		stmts = append(stmts, jen.Var().Id(varDidPass).Bool())
	}
	stmts = append(stmts, body...)

	return jen.Commentf("%s resolves an endpoint from config.", c.resolver).Line().
		Func().Id(c.resolver).
		Params(
			jen.Id(varAlloc).Qual(rt, "Allocator"),
			jen.Id(varConfig).Id(c.paramsType),
		).
		Params(jen.Qual(rt, "Endpoint"), jen.Error()).
		Block(stmts...), nil
}

// generateResolverRules lowers one sibling list into out and reports
// whether control can never fall past it.
//
// Rules are a priority waterfall: the first rule without conditions is
// always taken, so its later siblings are dead and not emitted.
func (c *Compiler) generateResolverRules(out *[]jen.Code, list []rules.Rule) (bool, error) {
	for _, rule := range list {
		common := rule.Common()
		if len(common.Conditions) == 0 {
			appendDoc(out, common.Documentation)
			return c.generateRuleBody(out, rule)
		}

		guard, err := c.generateGuard(common.Conditions)
		if err != nil {
			return false, err
		}
		var body []jen.Code
		if _, err := c.generateRuleBody(&body, rule); err != nil {
			return false, err
		}
		appendDoc(out, common.Documentation)
		c.guarded = true
		*out = append(*out,
			jen.Id(varDidPass).Op("=").Add(guard),
			jen.If(jen.Id(varDidPass)).Block(body...),
		)
	}
	return false, nil
}

// generateGuard lowers conditions into a short-circuit block: the first
// false condition returns false, passing all of them returns true.
func (c *Compiler) generateGuard(conds []rules.Condition) (jen.Code, error) {
	stmts := make([]jen.Code, 0, len(conds)+1)
	for _, cond := range conds {
		test, err := c.evalFunc(cond)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, jen.If(jen.Op("!").Parens(test)).Block(jen.Return(jen.False())))
	}
	stmts = append(stmts, jen.Return(jen.True()))
	return jen.Func().Params().Bool().Block(stmts...).Call(), nil
}

// generateRuleBody lowers a rule's action and reports whether it always
// returns.
func (c *Compiler) generateRuleBody(out *[]jen.Code, rule rules.Rule) (bool, error) {
	switch r := rule.(type) {
	case *rules.ErrorRule:
		stmts, err := c.generateErrorRule(r.Message)
		if err != nil {
			return false, err
		}
		*out = append(*out, stmts...)
		return true, nil
	case *rules.EndpointRule:
		block, err := c.generateEndpointRule(r.Endpoint)
		if err != nil {
			return false, err
		}
		*out = append(*out, block)
		return true, nil
	case *rules.TreeRule:
		return c.generateResolverRules(out, r.Rules)
	default:
		return false, fmt.Errorf("unsupported rule type %T", rule)
	}
}

// generateErrorRule logs the message and returns the sentinel error. The
// message never reaches the error value.
func (c *Compiler) generateErrorRule(msg rules.StringValue) ([]jen.Code, error) {
	t, err := c.evalTemplateString(msg)
	if err != nil {
		return nil, err
	}
	format, args := t.formatArgs()
	return []jen.Code{
		jen.Qual(rt, "LogRuleError").Call(append([]jen.Code{jen.Lit(format)}, args...)...),
		jen.Return(jen.Qual(rt, "Endpoint").Values(), jen.Qual(rt, "ErrReachedErrorRule")),
	}, nil
}

func appendDoc(out *[]jen.Code, doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		*out = append(*out, jen.Comment(line))
	}
}
