// Package resolution lowers an endpoint ruleset into Go source.
//
// A Compiler turns the rule forest into one procedure,
//
//	func ResolveEndpoint(alloc rulesrt.Allocator, config EndpointParams) (rulesrt.Endpoint, error)
//
// plus the EndpointParams struct it reads, and, separately, one Go test
// per conformance case. Output is jennifer code; writing files is the
// caller's job.
//
// Name resolution during lowering goes through a single flat Field table.
// Parameters seed it; every condition "assign" adds to it. Entries are
// never removed when lowering leaves a nested tree, so a name assigned in
// one branch stays resolvable (and stale) in later ones. Assignment
// variables are declared at procedure scope to keep that visible to the
// Go compiler too.
package resolution

import (
	"fmt"
	"log/slog"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/capability"
	"github.com/roach88/rulesgen/internal/rules"
)

const rt = capability.RuntimePath

// Generated-code locals.
const (
	varConfig  = "config"
	varAlloc   = "alloc"
	varScratch = "scratch"
	varDidPass = "didPass"
	varUnwind  = "unwind"
	varErr     = "err"
)

// Default generated names.
const (
	DefaultParamsType = "EndpointParams"
	DefaultResolver   = "ResolveEndpoint"
)

// Capabilities resolves function and built-in ids. *capability.Registry
// implements it.
type Capabilities interface {
	BuiltIn(id string) (capability.BuiltIn, error)
	Function(id string) (capability.Function, error)
}

// Field is how a name currently resolves during lowering.
type Field struct {
	// Access reads the value. It is wrapped before use and never mutated.
	Access jen.Code
	// Optional means Access yields a pointer that may be nil.
	Optional bool
	// Direct means Access reads the config struct directly.
	Direct bool
}

func (f Field) expr() *jen.Statement {
	return jen.Add(f.Access)
}

// Options names the generated declarations.
type Options struct {
	ParamsType string
	Resolver   string
	Logger     *slog.Logger
}

// Compiler lowers one RuleSet. It is not reusable across rulesets.
type Compiler struct {
	caps       Capabilities
	params     []rules.Parameter
	fields     map[string]Field
	effective  map[string]rules.ParamType
	idents     map[string]bool
	hoisted    []jen.Code
	guarded    bool
	log        *slog.Logger
	paramsType string
	resolver   string
}

// New creates a Compiler for params and seeds the Field table. A parameter
// with a default, its own or its built-in's, becomes an indirect field bound
// to a local at the top of the procedure; every other parameter reads the
// config struct directly.
func New(caps Capabilities, params []rules.Parameter, opts Options) (*Compiler, error) {
	c := &Compiler{
		caps:       caps,
		params:     params,
		fields:     make(map[string]Field, len(params)),
		effective:  make(map[string]rules.ParamType, len(params)),
		idents:     make(map[string]bool),
		log:        opts.Logger,
		paramsType: opts.ParamsType,
		resolver:   opts.Resolver,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.paramsType == "" {
		c.paramsType = DefaultParamsType
	}
	if c.resolver == "" {
		c.resolver = DefaultResolver
	}

	for _, p := range params {
		eff, err := c.effectiveType(p)
		if err != nil {
			return nil, err
		}
		c.effective[p.Name] = eff

		if c.isIndirect(p) {
			c.fields[p.Name] = Field{
				Access:   jen.Id(c.declare(p.Name)),
				Optional: !eff.HasDefault(),
			}
			continue
		}
		c.fields[p.Name] = Field{
			Access:   jen.Id(varConfig).Dot(ExportedName(p.Name)),
			Optional: !p.Required,
			Direct:   true,
		}
	}
	return c, nil
}

// Field returns the current resolution of name.
func (c *Compiler) Field(name string) (Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// isIndirect reports whether p is materialized by a local binding.
func (c *Compiler) isIndirect(p rules.Parameter) bool {
	return p.Type.HasDefault() || p.BuiltIn != ""
}

// effectiveType returns p's type with its own default, or else its
// built-in's default.
func (c *Compiler) effectiveType(p rules.Parameter) (rules.ParamType, error) {
	if p.Type.HasDefault() || p.BuiltIn == "" {
		return p.Type, nil
	}
	b, err := c.caps.BuiltIn(p.BuiltIn)
	if err != nil {
		return rules.ParamType{}, fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	eff := p.Type
	if b.Type.HasDefault() && b.Type.Kind == p.Type.Kind {
		eff.Default = b.Type.Default
	}
	return eff, nil
}

// declare reserves a unique procedure-scope identifier derived from name.
func (c *Compiler) declare(name string) string {
	base := LocalName(name)
	if reserved[base] || isIntermediate(base) {
		base += "_"
	}
	ident := base
	for i := 2; c.idents[ident]; i++ {
		ident = fmt.Sprintf("%s%d", base, i)
	}
	c.idents[ident] = true
	return ident
}

// nullable reports whether p's struct field is a pointer.
func (c *Compiler) nullable(p rules.Parameter) bool {
	return !p.Required || c.effective[p.Name].HasDefault()
}

func paramGoType(k rules.ParamKind) *jen.Statement {
	switch k {
	case rules.ParamBool:
		return jen.Bool()
	case rules.ParamString:
		return jen.String()
	default:
		return jen.Index().String()
	}
}

// literal renders a parameter default or other literal ArgValue.
func literal(v rules.ArgValue) jen.Code {
	switch x := v.(type) {
	case rules.Bool:
		return jen.Lit(bool(x))
	case rules.String:
		return jen.Lit(string(x))
	case rules.Int:
		return jen.Lit(int(x))
	case rules.Array:
		items := make([]jen.Code, len(x))
		for i, e := range x {
			items[i] = literal(e)
		}
		return jen.Index().String().Values(items...)
	default:
		return jen.Nil()
	}
}
