package resolution

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/capability"
	"github.com/roach88/rulesgen/internal/rules"
)

// evalRef reads a bound name. Optional fields are dereferenced unless raw.
//
// A name not in the Field table falls back to a direct config read of the
// case-converted field name. This is permissive: an unknown reference
// compiles here and fails in the generated package instead.
func (c *Compiler) evalRef(name string, raw bool) *jen.Statement {
	f, ok := c.fields[name]
	if !ok {
		c.log.Warn("reference to unbound name, reading config directly", "name", name)
		return jen.Id(varConfig).Dot(ExportedName(name))
	}
	if f.Optional && !raw {
		return jen.Op("*").Add(f.Access)
	}
	return f.expr()
}

// evalArg lowers an argument with optional references dereferenced.
func (c *Compiler) evalArg(v rules.ArgValue) (jen.Code, error) {
	return c.lowerArg(v, false)
}

// evalArgRaw lowers an argument leaving optional references as pointers,
// for functions that inspect optionality themselves.
func (c *Compiler) evalArgRaw(v rules.ArgValue) (jen.Code, error) {
	return c.lowerArg(v, true)
}

func (c *Compiler) lowerArg(v rules.ArgValue, raw bool) (jen.Code, error) {
	switch x := v.(type) {
	case rules.Bool:
		return jen.Lit(bool(x)), nil
	case rules.Int:
		return jen.Lit(int(x)), nil
	case rules.String:
		t, err := c.evalTemplateLiteral(string(x))
		if err != nil {
			return nil, err
		}
		if t.Literal != nil {
			return jen.Lit(*t.Literal), nil
		}
		return jen.Id(varScratch).Dot("Sprintf").Call(append([]jen.Code{jen.Lit(t.Format)}, t.Args...)...), nil
	case rules.Ref:
		return c.evalRef(string(x), raw), nil
	case rules.Array:
		items := make([]jen.Code, len(x))
		for i, e := range x {
			item, err := c.lowerArg(e, raw)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return jen.Index().Qual(rt, "Value").Values(items...), nil
	case rules.FuncCall:
		expr, _, err := c.evalCall(x)
		return expr, err
	default:
		return nil, fmt.Errorf("unsupported argument %T", v)
	}
}

// evalCall lowers a nested call. Nested calls never assign; an optional
// result stays a pointer.
func (c *Compiler) evalCall(call rules.FuncCall) (*jen.Statement, capability.Function, error) {
	fn, err := c.caps.Function(call.Fn)
	if err != nil {
		return nil, capability.Function{}, err
	}
	args, err := c.lowerArgs(fn, call.Args)
	if err != nil {
		return nil, capability.Function{}, fmt.Errorf("%s: %w", call.Fn, err)
	}
	return fn.Emit(args), fn, nil
}

func (c *Compiler) lowerArgs(fn capability.Function, args []rules.ArgValue) ([]jen.Code, error) {
	out := make([]jen.Code, len(args))
	for i, a := range args {
		var err error
		if fn.RawArgs {
			out[i], err = c.evalArgRaw(a)
		} else {
			out[i], err = c.evalArg(a)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// evalFunc lowers a condition to a boolean expression.
//
// Without assign: an optional result is tested against nil, a bool result
// is used as is, anything else passes when rulesrt.IsSet holds. A set ""
// or false from getAttr passes.
//
// With assign: the result is stored in a pre-declared pointer variable,
// wrapped with rulesrt.Ptr when the function is not optional, and the
// truth test reads that variable. The new Field is optional either way.
func (c *Compiler) evalFunc(cond rules.Condition) (jen.Code, error) {
	fn, err := c.caps.Function(cond.Fn)
	if err != nil {
		return nil, err
	}
	args, err := c.lowerArgs(fn, cond.Args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cond.Fn, err)
	}
	call := fn.Emit(args)

	if cond.Assign == "" {
		switch {
		case fn.ReturnsOptional:
			return call.Op("!=").Nil(), nil
		case fn.ReturnType != nil && fn.ReturnType.IsBool():
			return call, nil
		default:
			return jen.Qual(rt, "IsSet").Call(call), nil
		}
	}

	if fn.ReturnType == nil {
		return nil, &Error{
			Code:    ErrCodeFuncReturnsAny,
			Name:    cond.Fn,
			Message: fmt.Sprintf("cannot assign %q from a function with no declared return type", cond.Assign),
		}
	}

	ident := c.declare(cond.Assign)
	c.hoisted = append(c.hoisted,
		jen.Var().Id(ident).Op("*").Add(fn.ReturnType.Code()),
		jen.Id("_").Op("=").Id(ident),
	)
	c.fields[cond.Assign] = Field{Access: jen.Id(ident), Optional: true}

	var store, test jen.Code
	switch {
	case fn.ReturnsOptional:
		store = jen.Id(ident).Op("=").Add(call)
		test = jen.Id(ident).Op("!=").Nil()
	case fn.ReturnType.IsBool():
		store = jen.Id(ident).Op("=").Qual(rt, "Ptr").Call(call)
		test = jen.Op("*").Id(ident)
	default:
		store = jen.Id(ident).Op("=").Qual(rt, "Ptr").Call(call)
		test = jen.Qual(rt, "IsSet").Call(jen.Op("*").Id(ident))
	}
	return jen.Func().Params().Bool().Block(store, jen.Return(test)).Call(), nil
}
