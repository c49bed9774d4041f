package analyzer

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

// resultish reports whether a match is over an error row: any arm naming
// Ok or Err, or an all_errors arm, puts the whole match on the result path.
func resultish(e *ast.Match) bool {
	for _, arm := range e.Arms {
		switch p := arm.Pattern.(type) {
		case *ast.CtorPat:
			if p.Name == config.OkCtorName || p.Name == config.ErrCtorName {
				return true
			}
		case *ast.AllErrorsPat:
			return true
		}
	}
	return false
}

func (m *marker) markMatch(e *ast.Match, env *typesystem.Env) (*ast.MExpr, error) {
	scr, err := m.markExpr(e.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	if resultish(e) {
		return m.markResultMatch(e, scr, env)
	}
	return m.markPlainMatch(e, scr, env)
}

// markPlainMatch handles matches over ordinary values: every arm pattern
// unifies with the scrutinee, every body with a shared result variable.
func (m *marker) markPlainMatch(e *ast.Match, scr *ast.MExpr, env *typesystem.Env) (*ast.MExpr, error) {
	res := m.alloc.Fresh()
	out := m.alloc.Fresh()

	var labels []string
	hasTail := false
	arms := make([]*ast.MArm, 0, len(e.Arms))
	for _, arm := range e.Arms {
		armEnv := env.Child()
		mp, err := m.markPattern(arm.Pattern, armEnv)
		if err != nil {
			return nil, err
		}
		m.emit(solver.Unify{Left: mp.Type, Right: scr.Type, Origin: arm.Pattern.GetID()})

		switch p := arm.Pattern.(type) {
		case *ast.CtorPat:
			labels = append(labels, p.Name)
		case *ast.WildcardPat, *ast.IdentPat:
			hasTail = true
		}

		body, err := m.markExpr(arm.Body, armEnv)
		if err != nil {
			return nil, err
		}
		m.emit(solver.Unify{Left: typesystem.Type(res), Right: body.Type, Origin: arm.Body.GetID(), Why: diagnostics.ReasonBranchMismatch})
		arms = append(arms, &ast.MArm{ID: arm.ID, Span: arm.Span, Pattern: mp, Body: body})
	}

	m.emit(solver.Unify{Left: typesystem.Type(out), Right: res, Origin: e.ID})
	m.pendingCov = append(m.pendingCov, solver.Coverage{
		Match:     e.ID,
		Scrutinee: scr.Type,
		Result:    res,
		Out:       out,
		Handled:   labels,
		HasTail:   hasTail,
		Plain:     true,
		Origin:    e.ID,
	})

	m.setType(e.ID, out)
	me := &ast.MExpr{ID: e.ID, Span: e.Span, Kind: ast.MMatch, Type: out, Children: []*ast.MExpr{scr}, Arms: arms}
	return me, nil
}

// markResultMatch handles matches over Result values. Ok arms constrain the
// payload, Err and all_errors arms cover the error tail, and every other
// constructor arm contributes a labeled case to the handled row. The
// scrutinee is unified against Result of the payload and the handled row
// left open on a fresh tail.
func (m *marker) markResultMatch(e *ast.Match, scr *ast.MExpr, env *typesystem.Env) (*ast.MExpr, error) {
	payload := m.alloc.Fresh()
	tail := m.alloc.Fresh()
	res := m.alloc.Fresh()
	out := m.alloc.Fresh()

	var cases []typesystem.RowCase
	var labels []string
	hasErr := false
	hasTail := false

	arms := make([]*ast.MArm, 0, len(e.Arms))
	for _, arm := range e.Arms {
		armEnv := env.Child()
		var mp *ast.MPattern
		var err error

		switch p := arm.Pattern.(type) {
		case *ast.CtorPat:
			switch p.Name {
			case config.OkCtorName:
				mp, err = m.markOkArm(p, armEnv, payload, scr.Type)
			case config.ErrCtorName:
				hasErr = true
				mp, err = m.markErrArm(p, armEnv, scr.Type)
			default:
				var c *typesystem.RowCase
				mp, c, err = m.markLabelArm(p, armEnv, scr.Type)
				if c != nil {
					cases = append(cases, *c)
					labels = append(labels, c.Label)
				}
			}
		case *ast.AllErrorsPat:
			hasTail = true
			mp = m.specialArm(arm.Pattern, ast.MPatAllErrors, scr.Type)
		case *ast.WildcardPat:
			hasTail = true
			mp = m.specialArm(arm.Pattern, ast.MPatWildcard, scr.Type)
		case *ast.IdentPat:
			hasTail = true
			armEnv.Bind(p.Name, typesystem.MonoScheme(scr.Type))
			mp = m.specialArm(arm.Pattern, ast.MPatIdent, scr.Type)
			mp.Name = p.Name
		default:
			mp, err = m.markPattern(arm.Pattern, armEnv)
			if err == nil {
				m.emit(solver.Unify{Left: mp.Type, Right: scr.Type, Origin: arm.Pattern.GetID()})
			}
		}
		if err != nil {
			return nil, err
		}

		body, err := m.markExpr(arm.Body, armEnv)
		if err != nil {
			return nil, err
		}
		m.emit(solver.Unify{Left: typesystem.Type(res), Right: body.Type, Origin: arm.Body.GetID(), Why: diagnostics.ReasonBranchMismatch})
		arms = append(arms, &ast.MArm{ID: arm.ID, Span: arm.Span, Pattern: mp, Body: body})
	}

	row := typesystem.NormalizeRow(cases, tail)
	expected := typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{payload, row}}
	m.emit(solver.Unify{Left: scr.Type, Right: expected, Origin: e.Scrutinee.GetID()})
	m.pendingCov = append(m.pendingCov, solver.Coverage{
		Match:     e.ID,
		Scrutinee: expected,
		Result:    res,
		Out:       out,
		Handled:   labels,
		HasErr:    hasErr,
		HasTail:   hasTail,
		Origin:    e.ID,
	})

	m.setType(e.ID, out)
	me := &ast.MExpr{ID: e.ID, Span: e.Span, Kind: ast.MMatch, Type: out, Children: []*ast.MExpr{scr}, Arms: arms}
	return me, nil
}

// specialArm builds a marked pattern for an arm that consumes the whole
// scrutinee without a constructor of its own.
func (m *marker) specialArm(p ast.Pattern, kind ast.MPatKind, t typesystem.Type) *ast.MPattern {
	m.setType(p.GetID(), t)
	return &ast.MPattern{ID: p.GetID(), Span: p.GetSpan(), Kind: kind, Type: t}
}

// markOkArm types Ok(sub): the sub-pattern matches the success payload.
func (m *marker) markOkArm(p *ast.CtorPat, env *typesystem.Env, payload typesystem.TVar, scrType typesystem.Type) (*ast.MPattern, error) {
	mp := &ast.MPattern{ID: p.ID, Span: p.Span, Kind: ast.MPatCtor, Type: scrType, Name: p.Name}
	m.setType(p.ID, scrType)
	if len(p.Args) != 1 {
		if err := m.failNode(p.ID, p.Span, diagnostics.ReasonArityMismatch,
			diagnostics.ArityMismatch{Ctor: p.Name, Want: 1, Got: len(p.Args)}); err != nil {
			return nil, err
		}
		return mp, nil
	}
	sub, err := m.markPattern(p.Args[0], env)
	if err != nil {
		return nil, err
	}
	m.emit(solver.Unify{Left: sub.Type, Right: payload, Origin: p.Args[0].GetID()})
	mp.Children = []*ast.MPattern{sub}
	return mp, nil
}

// markErrArm types Err(name): the argument must be a binding so the handler
// can see the error value. The bound type stays free; the row carries the
// real case payloads.
func (m *marker) markErrArm(p *ast.CtorPat, env *typesystem.Env, scrType typesystem.Type) (*ast.MPattern, error) {
	mp := &ast.MPattern{ID: p.ID, Span: p.Span, Kind: ast.MPatCtor, Type: scrType, Name: p.Name}
	m.setType(p.ID, scrType)
	if len(p.Args) != 1 {
		if err := m.failNode(p.ID, p.Span, diagnostics.ReasonArityMismatch,
			diagnostics.ArityMismatch{Ctor: p.Name, Want: 1, Got: len(p.Args)}); err != nil {
			return nil, err
		}
		return mp, nil
	}
	switch p.Args[0].(type) {
	case *ast.IdentPat, *ast.WildcardPat:
	default:
		if err := m.failNode(p.Args[0].GetID(), p.Args[0].GetSpan(), diagnostics.ReasonPatternBindingRequired,
			diagnostics.PatternBindingRequired{Ctor: p.Name}); err != nil {
			return nil, err
		}
	}
	sub, err := m.markPattern(p.Args[0], env)
	if err != nil {
		return nil, err
	}
	mp.Children = []*ast.MPattern{sub}
	return mp, nil
}

// markLabelArm types a bare error-case arm like NotFound or Timeout(ms).
// It yields the row case this arm handles, or nil when the constructor is
// unknown or misused.
func (m *marker) markLabelArm(p *ast.CtorPat, env *typesystem.Env, scrType typesystem.Type) (*ast.MPattern, *typesystem.RowCase, error) {
	mp := &ast.MPattern{ID: p.ID, Span: p.Span, Kind: ast.MPatCtor, Type: scrType, Name: p.Name}
	m.setType(p.ID, scrType)

	info, ok := m.adts.Ctors[p.Name]
	if !ok {
		if _, err := m.failType(p.ID, p.NameSpan, diagnostics.ReasonFreeVariable, diagnostics.FreeVariable{Name: p.Name}); err != nil {
			return nil, nil, err
		}
		for _, a := range p.Args {
			sub, err := m.markPattern(a, env)
			if err != nil {
				return nil, nil, err
			}
			mp.Children = append(mp.Children, sub)
		}
		return mp, nil, nil
	}
	if len(p.Args) != info.Arity {
		if err := m.failNode(p.ID, p.Span, diagnostics.ReasonArityMismatch,
			diagnostics.ArityMismatch{Ctor: p.Name, Want: info.Arity, Got: len(p.Args)}); err != nil {
			return nil, nil, err
		}
		return mp, nil, nil
	}

	inst := typesystem.Instantiate(info.Scheme, m.alloc)
	var payloads []typesystem.Type
	for _, a := range p.Args {
		sub, err := m.markPattern(a, env)
		if err != nil {
			return nil, nil, err
		}
		if f, isFunc := inst.(typesystem.TFunc); isFunc {
			m.emit(solver.Unify{Left: sub.Type, Right: f.From, Origin: a.GetID()})
			payloads = append(payloads, f.From)
			inst = f.To
		}
		mp.Children = append(mp.Children, sub)
	}

	c := &typesystem.RowCase{Label: p.Name}
	switch len(payloads) {
	case 0:
	case 1:
		c.Payload = payloads[0]
	default:
		c.Payload = typesystem.TTuple{Elems: payloads}
	}
	return mp, c, nil
}
