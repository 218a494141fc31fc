// Package capability holds the pluggable built-ins and functions that give
// ruleset names their meaning.
//
// The resolution compiler never interprets a function id itself. It asks the
// Registry for a Function descriptor and hands the descriptor's Emit callback
// the already-lowered argument expressions.
package capability

import (
	"slices"

	"github.com/dave/jennifer/jen"

	"github.com/roach88/rulesgen/internal/rules"
)

// RuntimePath is the import path of the package generated code runs against.
const RuntimePath = "github.com/roach88/rulesgen/rulesrt"

// TypeRef names a Go type in generated code.
type TypeRef struct {
	Path  string // import path; empty for predeclared types
	Name  string
	Slice bool
}

// Code renders the type.
func (t TypeRef) Code() *jen.Statement {
	var base *jen.Statement
	if t.Path == "" {
		base = jen.Id(t.Name)
	} else {
		base = jen.Qual(t.Path, t.Name)
	}
	if t.Slice {
		return jen.Index().Add(base)
	}
	return base
}

// IsBool reports whether the type is the predeclared bool.
func (t TypeRef) IsBool() bool {
	return t.Path == "" && t.Name == "bool" && !t.Slice
}

var (
	TypeBool        = &TypeRef{Name: "bool"}
	TypeString      = &TypeRef{Name: "string"}
	TypeStringSlice = &TypeRef{Name: "string", Slice: true}
	TypeValue       = &TypeRef{Path: RuntimePath, Name: "Value"}
	TypeURL         = &TypeRef{Path: RuntimePath, Name: "URL"}
)

// EmitFunc builds a call expression from lowered arguments.
type EmitFunc func(args []jen.Code) *jen.Statement

// Function describes a named function usable in conditions, templates and
// argument position.
type Function struct {
	ID string

	// ReturnsOptional means Emit yields a pointer that is nil when the
	// function has no result.
	ReturnsOptional bool

	// ReturnType is the pointee type when ReturnsOptional, else the result
	// type. Nil means none declared; such functions cannot be assigned.
	ReturnType *TypeRef

	// RawArgs passes reference arguments in their optional form instead of
	// dereferencing them.
	RawArgs bool

	Emit EmitFunc
}

// BuiltIn describes a host-supplied parameter source.
type BuiltIn struct {
	ID   string
	Type rules.ParamType
}

// Registry resolves ids to descriptors. It is immutable after New.
type Registry struct {
	builtIns  map[string]BuiltIn
	functions map[string]Function
}

// New merges the standard tables with caller extensions. An extension id
// that collides with any other id is an error.
func New(builtIns []BuiltIn, functions []Function) (*Registry, error) {
	r := &Registry{
		builtIns:  make(map[string]BuiltIn),
		functions: make(map[string]Function),
	}

	for _, b := range append(StandardBuiltIns(), builtIns...) {
		if _, dup := r.builtIns[b.ID]; dup {
			return nil, newDuplicateError("built-in", b.ID)
		}
		r.builtIns[b.ID] = b
	}
	for _, f := range append(StandardFunctions(), functions...) {
		if _, dup := r.functions[f.ID]; dup {
			return nil, newDuplicateError("function", f.ID)
		}
		r.functions[f.ID] = f
	}
	return r, nil
}

// Standard returns a registry holding only the standard tables.
func Standard() *Registry {
	r, err := New(nil, nil)
	if err != nil {
		panic(err)
	}
	return r
}

// BuiltIn returns the descriptor for id.
func (r *Registry) BuiltIn(id string) (BuiltIn, error) {
	b, ok := r.builtIns[id]
	if !ok {
		return BuiltIn{}, &Error{Code: ErrCodeBuiltInUnknown, ID: id}
	}
	return b, nil
}

// Function returns the descriptor for id.
func (r *Registry) Function(id string) (Function, error) {
	f, ok := r.functions[id]
	if !ok {
		return Function{}, &Error{Code: ErrCodeFuncUnknown, ID: id}
	}
	return f, nil
}

// BuiltInIDs lists registered built-in ids in sorted order.
func (r *Registry) BuiltInIDs() []string {
	ids := make([]string, 0, len(r.builtIns))
	for id := range r.builtIns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FunctionIDs lists registered function ids in sorted order.
func (r *Registry) FunctionIDs() []string {
	ids := make([]string, 0, len(r.functions))
	for id := range r.functions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
