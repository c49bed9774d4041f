package typesystem

// Equal reports structural equality of two types. Record field order is
// ignored; row cases compare after normalization; holes compare by their
// underlying hole id.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case TVar:
		y, ok := b.(TVar)
		return ok && x.ID == y.ID
	case TPrim:
		y, ok := b.(TPrim)
		return ok && x.Kind == y.Kind
	case TFunc:
		y, ok := b.(TFunc)
		return ok && Equal(x.From, y.From) && Equal(x.To, y.To)
	case TCon:
		y, ok := b.(TCon)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case TTuple:
		y, ok := b.(TTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case TRecord:
		y, ok := b.(TRecord)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			other, found := y.FieldType(f.Name)
			if !found || !Equal(f.Type, other) {
				return false
			}
		}
		return true
	case TRow:
		ny, ok := normalizedRow(b)
		if !ok {
			return false
		}
		nx, _ := normalizedRow(x)
		if len(nx.Cases) != len(ny.Cases) {
			return false
		}
		for i := range nx.Cases {
			if nx.Cases[i].Label != ny.Cases[i].Label {
				return false
			}
			if !Equal(nx.Cases[i].Payload, ny.Cases[i].Payload) {
				return false
			}
		}
		if (nx.Tail == nil) != (ny.Tail == nil) {
			return false
		}
		if nx.Tail != nil && !Equal(nx.Tail, ny.Tail) {
			return false
		}
		return true
	case THole:
		xid, xok := UnwrapHoleID(x.Origin)
		if y, ok := b.(THole); ok {
			yid, yok := UnwrapHoleID(y.Origin)
			return xok && yok && xid == yid
		}
		return false
	default:
		return false
	}
}

func normalizedRow(t Type) (TRow, bool) {
	row, ok := t.(TRow)
	if !ok {
		return TRow{}, false
	}
	n := NormalizeRow(row.Cases, row.Tail)
	if nr, ok := n.(TRow); ok {
		return nr, true
	}
	// Transparent wrapper collapsed to its tail; treat as a caseless row.
	return TRow{Tail: n}, true
}
