package solver

import (
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/typesystem"
)

// unifyErr is a structured unification failure; the caller turns it into a
// diagnostic anchored at the constraint's origin.
type unifyErr struct {
	reason diagnostics.Reason
	detail diagnostics.Detail
}

func mismatch(expected, actual typesystem.Type) *unifyErr {
	return &unifyErr{
		reason: diagnostics.ReasonTypeMismatch,
		detail: diagnostics.TypeMismatch{Expected: expected, Actual: actual},
	}
}

// unify makes a and b equal under the running substitution, extending it as
// needed. Both sides are resolved against the substitution first.
func (s *Solver) unify(a, b typesystem.Type) *unifyErr {
	a = s.resolve(a)
	b = s.resolve(b)

	if av, ok := a.(typesystem.TVar); ok {
		if bv, ok := b.(typesystem.TVar); ok && av.ID == bv.ID {
			return nil
		}
		return s.bind(av.ID, b)
	}
	if bv, ok := b.(typesystem.TVar); ok {
		return s.bind(bv.ID, a)
	}

	// Holes unify with anything; the contact is recorded as a candidate so
	// the fixpoint can classify the hole later.
	if ah, ok := a.(typesystem.THole); ok {
		s.noteHoleContact(ah, b)
		return nil
	}
	if bh, ok := b.(typesystem.THole); ok {
		s.noteHoleContact(bh, a)
		return nil
	}

	switch at := a.(type) {
	case typesystem.TPrim:
		if bt, ok := b.(typesystem.TPrim); ok && at.Kind == bt.Kind {
			return nil
		}

	case typesystem.TFunc:
		if bt, ok := b.(typesystem.TFunc); ok {
			if err := s.unify(at.From, bt.From); err != nil {
				return err
			}
			return s.unify(at.To, bt.To)
		}

	case typesystem.TCon:
		if bt, ok := b.(typesystem.TCon); ok && at.Name == bt.Name && len(at.Args) == len(bt.Args) {
			for i := range at.Args {
				if err := s.unify(at.Args[i], bt.Args[i]); err != nil {
					return err
				}
			}
			return nil
		}

	case typesystem.TTuple:
		if bt, ok := b.(typesystem.TTuple); ok && len(at.Elems) == len(bt.Elems) {
			for i := range at.Elems {
				if err := s.unify(at.Elems[i], bt.Elems[i]); err != nil {
					return err
				}
			}
			return nil
		}

	case typesystem.TRecord:
		if bt, ok := b.(typesystem.TRecord); ok {
			return s.unifyRecords(at, bt)
		}

	case typesystem.TRow:
		if bt, ok := b.(typesystem.TRow); ok {
			return s.unifyRows(at, bt)
		}
	}

	return mismatch(a, b)
}

// bind extends the substitution with id -> t after the occurs check and
// records a hole candidate when id belongs to a tracked hole.
func (s *Solver) bind(id int, t typesystem.Type) *unifyErr {
	if typesystem.OccursIn(id, t) {
		return &unifyErr{
			reason: diagnostics.ReasonOccursCycle,
			detail: diagnostics.OccursCycle{Var: id, In: t},
		}
	}
	s.subst = typesystem.Compose(s.subst, typesystem.Subst{id: t})
	if _, tracked := s.holes[id]; tracked {
		s.addCandidate(id, t)
	}
	return nil
}

// unifyRecords requires the same field set and unifies fields pairwise.
func (s *Solver) unifyRecords(a, b typesystem.TRecord) *unifyErr {
	if len(a.Fields) != len(b.Fields) {
		return mismatch(a, b)
	}
	for _, f := range a.Fields {
		bt, ok := b.FieldType(f.Name)
		if !ok {
			return &unifyErr{
				reason: diagnostics.ReasonMissingField,
				detail: diagnostics.MissingField{Record: b, Field: f.Name},
			}
		}
		if err := s.unify(f.Type, bt); err != nil {
			return err
		}
	}
	return nil
}

// unifyRows unifies error rows by extension: overlapping labels must agree
// on payloads, labels present on only one side are pushed into the other
// side's tail, and a closed row facing extra labels is a mismatch.
func (s *Solver) unifyRows(a, b typesystem.TRow) *unifyErr {
	var aOnly, bOnly []typesystem.RowCase
	for _, c := range a.Cases {
		bc, ok := b.Case(c.Label)
		if !ok {
			aOnly = append(aOnly, c)
			continue
		}
		if err := s.unifyPayloads(c, bc); err != nil {
			return err
		}
	}
	for _, c := range b.Cases {
		if _, ok := a.Case(c.Label); !ok {
			bOnly = append(bOnly, c)
		}
	}

	if len(aOnly) > 0 && b.Tail == nil {
		return mismatch(a, b)
	}
	if len(bOnly) > 0 && a.Tail == nil {
		return mismatch(a, b)
	}

	switch {
	case a.Tail == nil && b.Tail == nil:
		return nil
	case a.Tail != nil && b.Tail == nil:
		return s.unify(a.Tail, typesystem.TRow{Cases: bOnly})
	case a.Tail == nil && b.Tail != nil:
		return s.unify(b.Tail, typesystem.TRow{Cases: aOnly})
	default:
		if len(aOnly) == 0 && len(bOnly) == 0 {
			return s.unify(a.Tail, b.Tail)
		}
		rest := s.alloc.Fresh()
		if err := s.unify(a.Tail, typesystem.NormalizeRow(bOnly, rest)); err != nil {
			return err
		}
		return s.unify(b.Tail, typesystem.NormalizeRow(aOnly, rest))
	}
}

func (s *Solver) unifyPayloads(a, b typesystem.RowCase) *unifyErr {
	switch {
	case a.Payload == nil && b.Payload == nil:
		return nil
	case a.Payload == nil:
		return mismatch(typesystem.Unit, b.Payload)
	case b.Payload == nil:
		return mismatch(a.Payload, typesystem.Unit)
	default:
		return s.unify(a.Payload, b.Payload)
	}
}

func (s *Solver) noteHoleContact(h typesystem.THole, other typesystem.Type) {
	id, ok := typesystem.UnwrapHoleID(h.Origin)
	if !ok {
		return
	}
	if _, tracked := s.holes[id]; tracked {
		s.addCandidate(id, other)
	}
}
