package analyzer

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

// markPattern types one pattern and binds its names into env. The returned
// pattern's Type is the type of value it matches.
func (m *marker) markPattern(p ast.Pattern, env *typesystem.Env) (*ast.MPattern, error) {
	mk := func(kind ast.MPatKind, t typesystem.Type) *ast.MPattern {
		m.setType(p.GetID(), t)
		return &ast.MPattern{ID: p.GetID(), Span: p.GetSpan(), Kind: kind, Type: t}
	}

	switch pt := p.(type) {
	case *ast.WildcardPat:
		return mk(ast.MPatWildcard, m.alloc.Fresh()), nil

	case *ast.AllErrorsPat:
		return mk(ast.MPatAllErrors, m.alloc.Fresh()), nil

	case *ast.IdentPat:
		v := m.alloc.Fresh()
		env.Bind(pt.Name, typesystem.MonoScheme(v))
		mp := mk(ast.MPatIdent, v)
		mp.Name = pt.Name
		return mp, nil

	case *ast.LiteralPat:
		return mk(ast.MPatLiteral, literalType(pt.Value)), nil

	case *ast.CtorPat:
		return m.markCtorPattern(pt, env)

	case *ast.TuplePat:
		elems := make([]typesystem.Type, len(pt.Elems))
		children := make([]*ast.MPattern, len(pt.Elems))
		for i, el := range pt.Elems {
			c, err := m.markPattern(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = c.Type
			children[i] = c
		}
		mp := mk(ast.MPatTuple, typesystem.TTuple{Elems: elems})
		mp.Children = children
		return mp, nil

	case *ast.RecordPat:
		v := m.alloc.Fresh()
		names := make([]string, len(pt.Fields))
		elems := make([]typesystem.Type, len(pt.Fields))
		children := make([]*ast.MPattern, len(pt.Fields))
		for i, f := range pt.Fields {
			fv := m.alloc.Fresh()
			env.Bind(f.Name, typesystem.MonoScheme(fv))
			names[i] = f.Name
			elems[i] = fv
			m.setType(f.ID, fv)
			children[i] = &ast.MPattern{ID: f.ID, Span: f.Span, Kind: ast.MPatIdent, Type: fv, Name: f.Name}
		}
		m.emit(solver.RecordMatch{Scrutinee: v, Fields: names, Elems: elems, Origin: pt.ID})
		mp := mk(ast.MPatRecord, v)
		mp.Children = children
		return mp, nil

	default:
		t, err := m.failType(p.GetID(), p.GetSpan(), diagnostics.ReasonUnsupportedExpr, diagnostics.UnsupportedExpr{Kind: "pattern"})
		if err != nil {
			return nil, err
		}
		return mk(ast.MPatWildcard, t), nil
	}
}

func literalType(e ast.Expr) typesystem.Type {
	switch e.(type) {
	case *ast.IntLit:
		return typesystem.Int
	case *ast.BoolLit:
		return typesystem.Bool
	case *ast.CharLit:
		return typesystem.Char
	case *ast.StringLit:
		return typesystem.String
	default:
		return typesystem.Unit
	}
}

// markCtorPattern types a constructor pattern by instantiating the
// constructor's scheme and unifying the sub-patterns against its curried
// parameter types.
func (m *marker) markCtorPattern(pt *ast.CtorPat, env *typesystem.Env) (*ast.MPattern, error) {
	info, ok := m.adts.Ctors[pt.Name]
	if !ok {
		t, err := m.failType(pt.ID, pt.NameSpan, diagnostics.ReasonFreeVariable, diagnostics.FreeVariable{Name: pt.Name})
		if err != nil {
			return nil, err
		}
		mp := &ast.MPattern{ID: pt.ID, Span: pt.Span, Kind: ast.MPatCtor, Type: t, Name: pt.Name}
		for _, a := range pt.Args {
			c, cerr := m.markPattern(a, env)
			if cerr != nil {
				return nil, cerr
			}
			mp.Children = append(mp.Children, c)
		}
		m.setType(pt.ID, t)
		return mp, nil
	}

	if len(pt.Args) != info.Arity {
		if err := m.failNode(pt.ID, pt.Span, diagnostics.ReasonArityMismatch,
			diagnostics.ArityMismatch{Ctor: pt.Name, Want: info.Arity, Got: len(pt.Args)}); err != nil {
			return nil, err
		}
	}

	inst := typesystem.Instantiate(info.Scheme, m.alloc)
	var children []*ast.MPattern
	for _, a := range pt.Args {
		c, err := m.markPattern(a, env)
		if err != nil {
			return nil, err
		}
		if f, isFunc := inst.(typesystem.TFunc); isFunc {
			m.emit(solver.Unify{Left: c.Type, Right: f.From, Origin: a.GetID()})
			inst = f.To
		}
		children = append(children, c)
	}

	mp := &ast.MPattern{ID: pt.ID, Span: pt.Span, Kind: ast.MPatCtor, Type: inst, Name: pt.Name, Children: children}
	m.setType(pt.ID, inst)
	return mp, nil
}
