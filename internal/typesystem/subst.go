package typesystem

// Subst maps variable ids to types. Application is idempotent: chains are
// chased iteratively with cycle detection, and a detected cycle resolves to
// the original variable rather than looping.
type Subst map[int]Type

// Apply rewrites t under s. Equivalent to t.Apply(s); exported as a free
// function so call sites that hold a nil type stay safe.
func Apply(t Type, s Subst) Type {
	if t == nil {
		return nil
	}
	return applyWithSeen(t, s, nil)
}

func applyWithSeen(t Type, s Subst, seen map[int]bool) Type {
	if len(s) == 0 {
		return t
	}
	switch typ := t.(type) {
	case TVar:
		if seen[typ.ID] {
			// True cycle: no progress, keep the variable.
			return typ
		}
		replacement, ok := s[typ.ID]
		if !ok {
			return typ
		}
		if rv, ok := replacement.(TVar); ok && rv.ID == typ.ID {
			return typ
		}
		next := make(map[int]bool, len(seen)+1)
		for k, v := range seen {
			next[k] = v
		}
		next[typ.ID] = true
		return applyWithSeen(replacement, s, next)

	case TPrim:
		return typ

	case TFunc:
		return TFunc{
			From: applyWithSeen(typ.From, s, seen),
			To:   applyWithSeen(typ.To, s, seen),
		}

	case TCon:
		args := make([]Type, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = applyWithSeen(a, s, seen)
		}
		return TCon{Name: typ.Name, Args: args}

	case TTuple:
		elems := make([]Type, len(typ.Elems))
		for i, e := range typ.Elems {
			elems[i] = applyWithSeen(e, s, seen)
		}
		return TTuple{Elems: elems}

	case TRecord:
		fields := make([]Field, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = Field{Name: f.Name, Type: applyWithSeen(f.Type, s, seen)}
		}
		return TRecord{Fields: fields}

	case TRow:
		cases := make([]RowCase, len(typ.Cases))
		for i, c := range typ.Cases {
			payload := c.Payload
			if payload != nil {
				payload = applyWithSeen(payload, s, seen)
			}
			cases[i] = RowCase{Label: c.Label, Payload: payload}
		}
		var tail Type
		if typ.Tail != nil {
			tail = applyWithSeen(typ.Tail, s, seen)
		}
		// The tail may have resolved to another row; renormalize so nested
		// rows flatten and transparent wrappers collapse.
		return NormalizeRow(cases, tail)

	case THole:
		return typ

	default:
		return t
	}
}

// Compose combines an older substitution with one derived after it: every
// binding of newer is rewritten under older, bindings that become identity
// (id -> Var(id)) are dropped, then older's own bindings are overlaid.
func Compose(older, newer Subst) Subst {
	out := make(Subst, len(older)+len(newer))
	for id, t := range newer {
		rewritten := Apply(t, older)
		if rv, ok := rewritten.(TVar); ok && rv.ID == id {
			continue
		}
		out[id] = rewritten
	}
	for id, t := range older {
		out[id] = t
	}
	return out
}

// OccursIn reports whether variable id appears free in t. The solver checks
// this before every binding to keep infinite types out of the substitution.
func OccursIn(id int, t Type) bool {
	for _, v := range t.FreeVars() {
		if v == id {
			return true
		}
	}
	return false
}
