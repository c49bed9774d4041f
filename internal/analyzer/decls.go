package analyzer

import (
	"unicode"
	"unicode/utf8"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

var primTypes = map[string]typesystem.TPrim{
	"Unit":   typesystem.Unit,
	"Int":    typesystem.Int,
	"Bool":   typesystem.Bool,
	"Char":   typesystem.Char,
	"String": typesystem.String,
}

// registerBuiltins installs the builtin Result ADT unless the seed
// environment already carries one.
func registerBuiltins(adts *typesystem.AdtEnv, alloc *typesystem.VarAlloc) {
	if _, ok := adts.Types[config.ResultTypeName]; ok {
		return
	}
	a := alloc.Fresh()
	e := alloc.Fresh()
	res := typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{a, e}}
	vars := []int{a.ID, e.ID}
	adts.Register(typesystem.TypeInfo{
		Name:   config.ResultTypeName,
		Params: []string{"a", "e"},
		Ctors: []typesystem.ConstructorInfo{
			{
				Name:   config.OkCtorName,
				Arity:  1,
				Owner:  config.ResultTypeName,
				Scheme: typesystem.Scheme{Vars: vars, Body: typesystem.TFunc{From: a, To: res}},
			},
			{
				Name:   config.ErrCtorName,
				Arity:  1,
				Owner:  config.ResultTypeName,
				Scheme: typesystem.Scheme{Vars: vars, Body: typesystem.TFunc{From: e, To: res}},
			},
		},
	})
}

// failNode reports a generation-time semantic error without minting a hole:
// strict mode returns a typed InferError, tolerant mode records a
// diagnostic.
func (m *marker) failNode(id ast.NodeID, span ast.Span, reason diagnostics.Reason, detail diagnostics.Detail) error {
	if !m.tolerant {
		msg := diagnostics.Message(diagnostics.Diagnostic{Reason: reason, Origin: id, Detail: detail}, typesystem.NewFormatter(m.adts))
		return &diagnostics.InferError{Span: span, Reason: reason, Msg: msg}
	}
	m.diags = append(m.diags, diagnostics.Diagnostic{Reason: reason, Origin: id, Detail: detail})
	return nil
}

// registerTypeDecl validates and registers an ADT or record alias. A nil
// MDecl with a nil error means the declaration was skipped in tolerant mode.
func (m *marker) registerTypeDecl(d *ast.TypeDecl) (*ast.MDecl, error) {
	_, dupType := m.adts.Types[d.Name]
	_, dupAlias := m.adts.Aliases[d.Name]
	if dupType || dupAlias {
		if err := m.failNode(d.ID, d.Span, diagnostics.ReasonTypeDeclDupType, diagnostics.TypeDeclDup{Name: d.Name}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	vars := make(map[string]typesystem.TVar, len(d.Params))
	paramIDs := make([]int, len(d.Params))
	paramTypes := make([]typesystem.Type, len(d.Params))
	for i, name := range d.Params {
		v := m.alloc.Fresh()
		vars[name] = v
		paramIDs[i] = v.ID
		paramTypes[i] = v
	}

	md := &ast.MDecl{ID: d.ID, Span: d.Span, Kind: ast.MDeclType, Name: d.Name, NameSpan: d.Span}

	if d.Alias != nil {
		body, err := m.elabType(d.Alias, vars, false)
		if err != nil {
			return nil, err
		}
		m.adts.RegisterAlias(d.Name, typesystem.Scheme{Vars: paramIDs, Body: body})
		return md, nil
	}

	// Placeholder registration so constructors may mention the type
	// recursively.
	m.adts.Types[d.Name] = typesystem.TypeInfo{Name: d.Name, Params: d.Params}

	self := typesystem.TCon{Name: d.Name, Args: paramTypes}
	var infos []typesystem.ConstructorInfo
	for _, c := range d.Ctors {
		if _, dup := m.adts.Ctors[c.Name]; dup {
			if err := m.failNode(c.ID, c.Span, diagnostics.ReasonTypeDeclDupCtor, diagnostics.TypeDeclDup{Name: c.Name}); err != nil {
				return nil, err
			}
			continue
		}
		args := make([]typesystem.Type, len(c.Args))
		for i, a := range c.Args {
			t, err := m.elabType(a, vars, false)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		infos = append(infos, typesystem.ConstructorInfo{
			Name:   c.Name,
			Arity:  len(c.Args),
			Owner:  d.Name,
			Scheme: typesystem.Scheme{Vars: paramIDs, Body: curry(args, self)},
		})
		md.Ctors = append(md.Ctors, &ast.MCtor{ID: c.ID, Span: c.Span, Name: c.Name})
	}
	m.adts.Register(typesystem.TypeInfo{Name: d.Name, Params: d.Params, Ctors: infos})
	return md, nil
}

// markLetDecl infers one let binding's monotype against the given scope.
func (m *marker) markLetDecl(d *ast.LetDecl, env *typesystem.Env) (*ast.MDecl, typesystem.Type, error) {
	declVars := make(map[string]typesystem.TVar)
	bodyEnv := env.Child()

	var mparams []*ast.MPattern
	var paramTypes []typesystem.Type
	for _, p := range d.Params {
		mp, t, err := m.markParam(p, bodyEnv, declVars)
		if err != nil {
			return nil, nil, err
		}
		mparams = append(mparams, mp)
		paramTypes = append(paramTypes, t)
	}

	var retT typesystem.Type
	if d.Ret != nil {
		t, err := m.elabType(d.Ret, declVars, true)
		if err != nil {
			return nil, nil, err
		}
		retT = t
	}

	body, err := m.markExpr(d.Body, bodyEnv)
	if err != nil {
		return nil, nil, err
	}

	resT := body.Type
	if retT != nil {
		m.emit(solver.Unify{Left: body.Type, Right: retT, Origin: d.Body.GetID()})
		resT = retT
	}

	var t typesystem.Type
	switch {
	case d.Params == nil:
		t = resT
	case len(d.Params) == 0:
		t = typesystem.TFunc{From: typesystem.Unit, To: resT}
	default:
		t = curry(paramTypes, resT)
	}

	m.setType(d.ID, t)
	md := &ast.MDecl{
		ID:       d.ID,
		Span:     d.Span,
		Kind:     ast.MDeclLet,
		Name:     d.Name,
		NameSpan: d.NameSpan,
		Params:   mparams,
		Body:     body,
	}
	return md, t, nil
}

// markParam types one parameter: an annotation elaborates, a bare name
// becomes a tracked hole.
func (m *marker) markParam(p *ast.Param, env *typesystem.Env, vars map[string]typesystem.TVar) (*ast.MPattern, typesystem.Type, error) {
	var t typesystem.Type
	if p.Ann != nil {
		et, err := m.elabType(p.Ann, vars, true)
		if err != nil {
			return nil, nil, err
		}
		t = et
	} else {
		v := m.alloc.Fresh()
		m.registerHole(v, p.ID, typesystem.ExprHole{ID: v.ID})
		t = v
	}
	env.Bind(p.Name, typesystem.MonoScheme(t))
	m.setType(p.ID, t)
	return &ast.MPattern{ID: p.ID, Span: p.Span, Kind: ast.MPatIdent, Type: t, Name: p.Name}, t, nil
}

func curry(params []typesystem.Type, ret typesystem.Type) typesystem.Type {
	t := ret
	for i := len(params) - 1; i >= 0; i-- {
		t = typesystem.TFunc{From: params[i], To: t}
	}
	return t
}

func isLowerName(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r) || r == '_'
}

// elabType turns a written annotation into a Type. vars scopes lowercase
// type variables across one declaration; allowNew permits introducing new
// ones (let annotations do, constructor payloads do not).
func (m *marker) elabType(te ast.TypeExpr, vars map[string]typesystem.TVar, allowNew bool) (typesystem.Type, error) {
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		return m.elabNamed(t, vars, allowNew)

	case *ast.FuncTypeExpr:
		params := make([]typesystem.Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := m.elabType(p, vars, allowNew)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := m.elabType(t.Ret, vars, allowNew)
		if err != nil {
			return nil, err
		}
		return curry(params, ret), nil

	case *ast.TupleTypeExpr:
		elems := make([]typesystem.Type, len(t.Elems))
		for i, e := range t.Elems {
			et, err := m.elabType(e, vars, allowNew)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return typesystem.TTuple{Elems: elems}, nil

	case *ast.RecordTypeExpr:
		fields := make([]typesystem.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := m.elabType(f.Type, vars, allowNew)
			if err != nil {
				return nil, err
			}
			fields[i] = typesystem.Field{Name: f.Name, Type: ft}
		}
		return typesystem.TRecord{Fields: fields}, nil

	case *ast.UnitTypeExpr:
		return typesystem.Unit, nil

	case *ast.HoleTypeExpr:
		v := m.alloc.Fresh()
		m.registerHole(v, t.ID, typesystem.UserHole{ID: v.ID})
		return v, nil

	default:
		return m.failType(te.GetID(), te.GetSpan(), diagnostics.ReasonUnsupportedExpr, diagnostics.UnsupportedExpr{Kind: "type expression"})
	}
}

func (m *marker) elabNamed(t *ast.NamedTypeExpr, vars map[string]typesystem.TVar, allowNew bool) (typesystem.Type, error) {
	if prim, ok := primTypes[t.Name]; ok {
		if len(t.Args) != 0 {
			return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: t.Name, Want: 0, Got: len(t.Args)})
		}
		return prim, nil
	}

	if isLowerName(t.Name) {
		if len(t.Args) != 0 {
			return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: t.Name, Want: 0, Got: len(t.Args)})
		}
		if v, ok := vars[t.Name]; ok {
			return v, nil
		}
		if allowNew {
			v := m.alloc.Fresh()
			vars[t.Name] = v
			return v, nil
		}
		return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprUnknown, diagnostics.TypeExprUnknown{Name: t.Name})
	}

	if t.Name == config.ResultTypeName {
		if len(t.Args) != 2 {
			return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: t.Name, Want: 2, Got: len(t.Args)})
		}
		payload, err := m.elabType(t.Args[0], vars, allowNew)
		if err != nil {
			return nil, err
		}
		row, err := m.elabRowArg(t.Args[1], vars, allowNew)
		if err != nil {
			return nil, err
		}
		return typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{payload, row}}, nil
	}

	if info, ok := m.adts.Types[t.Name]; ok {
		if len(t.Args) != len(info.Params) {
			return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: t.Name, Want: len(info.Params), Got: len(t.Args)})
		}
		args := make([]typesystem.Type, len(t.Args))
		for i, a := range t.Args {
			at, err := m.elabType(a, vars, allowNew)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return typesystem.TCon{Name: t.Name, Args: args}, nil
	}

	if alias, ok := m.adts.Aliases[t.Name]; ok {
		if len(t.Args) != len(alias.Vars) {
			return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: t.Name, Want: len(alias.Vars), Got: len(t.Args)})
		}
		sub := make(typesystem.Subst, len(alias.Vars))
		for i, id := range alias.Vars {
			at, err := m.elabType(t.Args[i], vars, allowNew)
			if err != nil {
				return nil, err
			}
			sub[id] = at
		}
		return typesystem.Apply(alias.Body, sub), nil
	}

	return m.failType(t.ID, t.Span, diagnostics.ReasonTypeExprUnknown, diagnostics.TypeExprUnknown{Name: t.Name})
}

// elabRowArg elaborates the error argument of a Result annotation. A named
// error ADT expands to its closed row; a type variable stands for an open,
// unknown row.
func (m *marker) elabRowArg(te ast.TypeExpr, vars map[string]typesystem.TVar, allowNew bool) (typesystem.Type, error) {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok {
		return m.elabType(te, vars, allowNew)
	}
	if isLowerName(named.Name) || named.Name == config.ResultTypeName {
		return m.elabType(te, vars, allowNew)
	}
	info, isAdt := m.adts.Types[named.Name]
	if !isAdt {
		return m.elabType(te, vars, allowNew)
	}
	if len(named.Args) != len(info.Params) {
		return m.failType(named.ID, named.Span, diagnostics.ReasonTypeExprArity, diagnostics.TypeExprArity{Name: named.Name, Want: len(info.Params), Got: len(named.Args)})
	}

	args := make([]typesystem.Type, len(named.Args))
	for i, a := range named.Args {
		at, err := m.elabType(a, vars, allowNew)
		if err != nil {
			return nil, err
		}
		args[i] = at
	}

	cases := make([]typesystem.RowCase, 0, len(info.Ctors))
	for _, ctor := range info.Ctors {
		sub := make(typesystem.Subst, len(ctor.Scheme.Vars))
		for i, id := range ctor.Scheme.Vars {
			if i < len(args) {
				sub[id] = args[i]
			}
		}
		body := typesystem.Apply(ctor.Scheme.Body, sub)
		var payloads []typesystem.Type
		for i := 0; i < ctor.Arity; i++ {
			f, ok := body.(typesystem.TFunc)
			if !ok {
				break
			}
			payloads = append(payloads, f.From)
			body = f.To
		}
		var payload typesystem.Type
		switch len(payloads) {
		case 0:
		case 1:
			payload = payloads[0]
		default:
			payload = typesystem.TTuple{Elems: payloads}
		}
		cases = append(cases, typesystem.RowCase{Label: ctor.Name, Payload: payload})
	}
	return typesystem.NormalizeRow(cases, nil), nil
}
