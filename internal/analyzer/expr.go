package analyzer

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

func opClass(op string) solver.OpClass {
	switch op {
	case "+", "-", "*", "/":
		return solver.OpArith
	case "<", ">", "<=", ">=":
		return solver.OpCompare
	case "==", "!=":
		return solver.OpEquality
	default:
		return solver.OpLogic
	}
}

// markExpr types one expression, emitting constraints and building the
// marked node.
func (m *marker) markExpr(e ast.Expr, env *typesystem.Env) (*ast.MExpr, error) {
	mk := func(kind ast.MExprKind, t typesystem.Type) *ast.MExpr {
		m.setType(e.GetID(), t)
		return &ast.MExpr{ID: e.GetID(), Span: e.GetSpan(), Kind: kind, Type: t}
	}

	switch ex := e.(type) {
	case *ast.Ident:
		t, err := m.lookupName(ex, env)
		if err != nil {
			return nil, err
		}
		me := mk(ast.MIdent, t)
		me.Name = ex.Name
		return me, nil

	case *ast.IntLit:
		return mk(ast.MInt, typesystem.Int), nil
	case *ast.BoolLit:
		return mk(ast.MBool, typesystem.Bool), nil
	case *ast.CharLit:
		return mk(ast.MChar, typesystem.Char), nil
	case *ast.StringLit:
		return mk(ast.MString, typesystem.String), nil
	case *ast.UnitLit:
		return mk(ast.MUnit, typesystem.Unit), nil

	case *ast.HoleExpr:
		v := m.alloc.Fresh()
		m.registerHole(v, ex.ID, typesystem.UserHole{ID: v.ID})
		return mk(ast.MHole, v), nil

	case *ast.Lambda:
		child := env.Child()
		vars := make(map[string]typesystem.TVar)
		var mparams []*ast.MPattern
		var paramTypes []typesystem.Type
		for _, p := range ex.Params {
			mp, t, err := m.markParam(p, child, vars)
			if err != nil {
				return nil, err
			}
			mparams = append(mparams, mp)
			paramTypes = append(paramTypes, t)
		}
		body, err := m.markExpr(ex.Body, child)
		if err != nil {
			return nil, err
		}
		var t typesystem.Type
		if len(paramTypes) == 0 {
			t = typesystem.TFunc{From: typesystem.Unit, To: body.Type}
		} else {
			t = curry(paramTypes, body.Type)
		}
		me := mk(ast.MLambda, t)
		me.Params = mparams
		me.Children = []*ast.MExpr{body}
		return me, nil

	case *ast.Call:
		callee, err := m.markExpr(ex.Callee, env)
		if err != nil {
			return nil, err
		}
		children := []*ast.MExpr{callee}
		cur := callee.Type
		if len(ex.Args) == 0 {
			res := m.alloc.Fresh()
			m.emit(solver.Call{Callee: cur, Arg: typesystem.Unit, Result: res, Origin: ex.ID})
			cur = res
		}
		for _, a := range ex.Args {
			arg, err := m.markExpr(a, env)
			if err != nil {
				return nil, err
			}
			children = append(children, arg)
			res := m.alloc.Fresh()
			m.emit(solver.Call{Callee: cur, Arg: arg.Type, Result: res, Origin: ex.ID})
			cur = res
		}
		me := mk(ast.MCall, cur)
		me.Children = children
		return me, nil

	case *ast.Binary:
		left, err := m.markExpr(ex.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := m.markExpr(ex.Right, env)
		if err != nil {
			return nil, err
		}
		res := m.alloc.Fresh()
		m.emit(solver.Op{
			Class:  opClass(ex.Op),
			Op:     ex.Op,
			Left:   left.Type,
			Right:  right.Type,
			Result: res,
			Origin: ex.ID,
		})
		me := mk(ast.MBinary, res)
		me.Op = ex.Op
		me.Children = []*ast.MExpr{left, right}
		return me, nil

	case *ast.Unary:
		operand, err := m.markExpr(ex.Operand, env)
		if err != nil {
			return nil, err
		}
		class := solver.OpNegate
		if ex.Op == "!" {
			class = solver.OpLogic
		}
		res := m.alloc.Fresh()
		m.emit(solver.Op{Class: class, Op: ex.Op, Left: operand.Type, Result: res, Origin: ex.ID})
		me := mk(ast.MUnary, res)
		me.Op = ex.Op
		me.Children = []*ast.MExpr{operand}
		return me, nil

	case *ast.If:
		cond, err := m.markExpr(ex.Cond, env)
		if err != nil {
			return nil, err
		}
		m.emit(solver.Unify{Left: cond.Type, Right: typesystem.Bool, Origin: ex.Cond.GetID(), Why: diagnostics.ReasonNotBoolean})
		then, err := m.markExpr(ex.Then, env)
		if err != nil {
			return nil, err
		}
		els, err := m.markExpr(ex.Else, env)
		if err != nil {
			return nil, err
		}
		m.emit(solver.Unify{Left: then.Type, Right: els.Type, Origin: ex.ID, Why: diagnostics.ReasonBranchMismatch})
		me := mk(ast.MIf, then.Type)
		me.Children = []*ast.MExpr{cond, then, els}
		return me, nil

	case *ast.Block:
		return m.markBlock(ex, env)

	case *ast.Record:
		fields := make([]typesystem.Field, len(ex.Fields))
		children := make([]*ast.MExpr, len(ex.Fields))
		for i, f := range ex.Fields {
			val, err := m.markExpr(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields[i] = typesystem.Field{Name: f.Name, Type: val.Type}
			children[i] = val
		}
		me := mk(ast.MRecord, typesystem.TRecord{Fields: fields})
		me.Children = children
		return me, nil

	case *ast.FieldAccess:
		target, err := m.markExpr(ex.Target, env)
		if err != nil {
			return nil, err
		}
		res := m.alloc.Fresh()
		m.emit(solver.Field{Target: target.Type, Name: ex.Name, Result: res, Origin: ex.ID})
		me := mk(ast.MFieldAccess, res)
		me.Name = ex.Name
		me.Children = []*ast.MExpr{target}
		return me, nil

	case *ast.Tuple:
		elems := make([]typesystem.Type, len(ex.Elems))
		children := make([]*ast.MExpr, len(ex.Elems))
		for i, el := range ex.Elems {
			me, err := m.markExpr(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = me.Type
			children[i] = me
		}
		me := mk(ast.MTuple, typesystem.TTuple{Elems: elems})
		me.Children = children
		return me, nil

	case *ast.Match:
		return m.markMatch(ex, env)

	default:
		t, err := m.failType(e.GetID(), e.GetSpan(), diagnostics.ReasonUnsupportedExpr, diagnostics.UnsupportedExpr{Kind: "expression"})
		if err != nil {
			return nil, err
		}
		return mk(ast.MHole, t), nil
	}
}

// lookupName resolves an identifier against the scope chain, falling back
// to data constructors used as values.
func (m *marker) lookupName(ex *ast.Ident, env *typesystem.Env) (typesystem.Type, error) {
	if scheme, ok := env.Lookup(ex.Name); ok {
		return typesystem.Instantiate(scheme, m.alloc), nil
	}
	if info, ok := m.adts.Ctors[ex.Name]; ok {
		return typesystem.Instantiate(info.Scheme, m.alloc), nil
	}
	return m.failType(ex.ID, ex.Span, diagnostics.ReasonFreeVariable, diagnostics.FreeVariable{Name: ex.Name})
}

// markBlock types a brace block: local lets extend a child scope, the last
// expression is the block's value.
func (m *marker) markBlock(b *ast.Block, env *typesystem.Env) (*ast.MExpr, error) {
	child := env.Child()
	var children []*ast.MExpr
	var last typesystem.Type = typesystem.Unit
	for _, item := range b.Items {
		switch it := item.(type) {
		case *ast.LetDecl:
			me, err := m.markLocalLet(it, child)
			if err != nil {
				return nil, err
			}
			children = append(children, me)
			last = typesystem.Unit
		case ast.Expr:
			me, err := m.markExpr(it, child)
			if err != nil {
				return nil, err
			}
			children = append(children, me)
			last = me.Type
		}
	}
	m.setType(b.ID, last)
	me := &ast.MExpr{ID: b.ID, Span: b.Span, Kind: ast.MBlock, Type: last, Children: children}
	return me, nil
}

// markLocalLet infers and generalizes a block-local binding. The binding is
// visible inside its own body for recursion but generalization runs against
// the enclosing scope only.
func (m *marker) markLocalLet(d *ast.LetDecl, env *typesystem.Env) (*ast.MExpr, error) {
	v := m.alloc.Fresh()
	frame := env.Child()
	frame.Bind(d.Name, typesystem.MonoScheme(v))

	md, t, err := m.markLetDecl(d, frame)
	if err != nil {
		return nil, err
	}
	m.emit(solver.Unify{Left: typesystem.Type(v), Right: t, Origin: d.ID})
	m.flushCoverage()

	scheme := m.generalize(v, env)
	env.Bind(d.Name, scheme)
	m.setType(d.ID, scheme.Body)

	me := &ast.MExpr{
		ID:       d.ID,
		Span:     d.Span,
		Kind:     ast.MLet,
		Type:     scheme.Body,
		Name:     d.Name,
		Params:   md.Params,
		Children: []*ast.MExpr{md.Body},
	}
	return me, nil
}
