package typesystem

import (
	"sort"
	"strings"
)

// Scheme is a universally quantified type: ordered quantifier ids plus a
// body. Monotypes are schemes with no quantifiers.
type Scheme struct {
	Vars []int
	Body Type
}

func (s Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Body.String()
	}
	parts := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		parts[i] = TVar{ID: v}.String()
	}
	return "forall " + strings.Join(parts, " ") + ". " + s.Body.String()
}

// FreeVars returns the body's free variables minus the quantifiers.
func (s Scheme) FreeVars() []int {
	bound := make(map[int]bool, len(s.Vars))
	for _, v := range s.Vars {
		bound[v] = true
	}
	var out []int
	for _, v := range s.Body.FreeVars() {
		if !bound[v] {
			out = append(out, v)
		}
	}
	return out
}

// MonoScheme wraps a monotype as an unquantified scheme.
func MonoScheme(t Type) Scheme {
	return Scheme{Body: t}
}

// VarAlloc hands out fresh type variables. It is threaded explicitly
// through generation and solving; no package-level counter exists.
type VarAlloc struct {
	next int
}

func NewVarAlloc() *VarAlloc {
	return &VarAlloc{}
}

// Fresh returns a new, never-before-seen type variable.
func (a *VarAlloc) Fresh() TVar {
	v := TVar{ID: a.next}
	a.next++
	return v
}

// Env maps names to type schemes, with lexical scoping through parent
// chaining. Extending never mutates an outer frame.
type Env struct {
	parent   *Env
	bindings map[string]Scheme
}

func NewEnv() *Env {
	return &Env{bindings: make(map[string]Scheme)}
}

// Child opens a nested scope.
func (e *Env) Child() *Env {
	return &Env{parent: e, bindings: make(map[string]Scheme)}
}

// Bind adds or shadows a binding in the current frame.
func (e *Env) Bind(name string, s Scheme) {
	e.bindings[name] = s
}

// Lookup resolves a name through the scope chain.
func (e *Env) Lookup(name string) (Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.bindings[name]; ok {
			return s, true
		}
	}
	return Scheme{}, false
}

// FreeVars collects the free variables of every scheme in scope.
func (e *Env) FreeVars() map[int]bool {
	out := make(map[int]bool)
	for env := e; env != nil; env = env.parent {
		for _, s := range env.bindings {
			for _, v := range s.FreeVars() {
				out[v] = true
			}
		}
	}
	return out
}

// Names returns every name visible in scope, innermost shadowing outermost.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for env := e; env != nil; env = env.parent {
		for name := range env.bindings {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot flattens the scope chain into one map, used for the Layer 1
// initial-environment snapshot.
func (e *Env) Snapshot() map[string]Scheme {
	out := make(map[string]Scheme)
	for _, name := range e.Names() {
		s, _ := e.Lookup(name)
		out[name] = s
	}
	return out
}

// Generalize quantifies t over every free variable not free in env.
// Quantifier order is ascending id order for determinism.
func Generalize(t Type, env *Env) Scheme {
	envFree := env.FreeVars()
	var vars []int
	for _, v := range t.FreeVars() {
		if !envFree[v] {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)
	return Scheme{Vars: vars, Body: t}
}

// Instantiate replaces every quantifier with a fresh variable.
func Instantiate(s Scheme, alloc *VarAlloc) Type {
	if len(s.Vars) == 0 {
		return s.Body
	}
	subst := make(Subst, len(s.Vars))
	for _, v := range s.Vars {
		subst[v] = alloc.Fresh()
	}
	return Apply(s.Body, subst)
}

// ConstructorInfo describes one data constructor of an ADT: its name,
// payload arity, and the scheme of its curried constructor function.
type ConstructorInfo struct {
	Name   string
	Arity  int
	Scheme Scheme
	Owner  string
}

/// TypeInfo is ADT metadata: the type's name, its parameter names and its
// constructors in declaration order. It drives exhaustiveness checking and
// constructor dispatch.
type TypeInfo struct {
	Name   string
	Params []string
	Ctors  []ConstructorInfo
}

// CtorNames returns the constructor labels in declaration order.
func (ti TypeInfo) CtorNames() []string {
	out := make([]string, len(ti.Ctors))
	for i, c := range ti.Ctors {
		out[i] = c.Name
	}
	return out
}

// AdtEnv indexes ADT metadata by type name and by constructor name, plus
// named record aliases used for nominal record-pattern resolution.
type AdtEnv struct {
	Types   map[string]TypeInfo
	Ctors   map[string]ConstructorInfo
	Aliases map[string]Scheme
}

func NewAdtEnv() *AdtEnv {
	return &AdtEnv{
		Types:   make(map[string]TypeInfo),
		Ctors:   make(map[string]ConstructorInfo),
		Aliases: make(map[string]Scheme),
	}
}

// Register adds an ADT and indexes its constructors.
func (a *AdtEnv) Register(info TypeInfo) {
	a.Types[info.Name] = info
	for _, c := range info.Ctors {
		a.Ctors[c.Name] = c
	}
}

// RegisterAlias adds a named record alias.
func (a *AdtEnv) RegisterAlias(name string, s Scheme) {
	a.Aliases[name] = s
}

// Clone copies the env so one analysis run cannot leak registrations into
// another.
func (a *AdtEnv) Clone() *AdtEnv {
	out := NewAdtEnv()
	for k, v := range a.Types {
		out.Types[k] = v
	}
	for k, v := range a.Ctors {
		out.Ctors[k] = v
	}
	for k, v := range a.Aliases {
		out.Aliases[k] = v
	}
	return out
}
