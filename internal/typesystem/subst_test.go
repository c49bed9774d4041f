package typesystem

import "testing"

func TestApply_ChasesChains(t *testing.T) {
	s := Subst{
		0: TVar{ID: 1},
		1: TVar{ID: 2},
		2: Int,
	}
	got := Apply(TVar{ID: 0}, s)
	if !Equal(got, Int) {
		t.Fatalf("expected Int, got %s", got)
	}
}

func TestApply_CycleKeepsVariable(t *testing.T) {
	s := Subst{
		0: TVar{ID: 1},
		1: TVar{ID: 0},
	}
	got := Apply(TVar{ID: 0}, s)
	if v, ok := got.(TVar); !ok || (v.ID != 0 && v.ID != 1) {
		t.Fatalf("expected a variable back, got %s", got)
	}
}

func TestApply_Structural(t *testing.T) {
	s := Subst{0: Int, 1: Bool}
	in := TFunc{From: TVar{ID: 0}, To: TTuple{Elems: []Type{TVar{ID: 1}, TVar{ID: 2}}}}
	got := Apply(in, s)
	want := TFunc{From: Int, To: TTuple{Elems: []Type{Bool, TVar{ID: 2}}}}
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestApply_RowTailFlattens(t *testing.T) {
	inner := TRow{Cases: []RowCase{{Label: "Timeout"}}, Tail: TVar{ID: 9}}
	s := Subst{5: inner}
	in := TRow{Cases: []RowCase{{Label: "Refused"}}, Tail: TVar{ID: 5}}

	got, ok := Apply(in, s).(TRow)
	if !ok {
		t.Fatalf("expected a row, got %T", Apply(in, s))
	}
	labels := got.Labels()
	if len(labels) != 2 || labels[0] != "Refused" || labels[1] != "Timeout" {
		t.Fatalf("expected merged sorted labels, got %v", labels)
	}
	if tail, ok := got.Tail.(TVar); !ok || tail.ID != 9 {
		t.Fatalf("expected tail t9, got %v", got.Tail)
	}
}

func TestCompose_RewritesNewerUnderOlder(t *testing.T) {
	older := Subst{1: Int}
	newer := Subst{0: TVar{ID: 1}}
	s := Compose(older, newer)
	if !Equal(Apply(TVar{ID: 0}, s), Int) {
		t.Fatalf("expected t0 -> Int, got %s", Apply(TVar{ID: 0}, s))
	}
	if !Equal(Apply(TVar{ID: 1}, s), Int) {
		t.Fatalf("expected t1 -> Int, got %s", Apply(TVar{ID: 1}, s))
	}
}

func TestCompose_DropsIdentity(t *testing.T) {
	older := Subst{1: TVar{ID: 0}}
	newer := Subst{0: TVar{ID: 1}}
	s := Compose(older, newer)
	if _, bound := s[0]; bound {
		t.Fatalf("identity binding must be dropped, got %v", s)
	}
}

func TestOccursIn(t *testing.T) {
	in := TFunc{From: TVar{ID: 3}, To: Int}
	if !OccursIn(3, in) {
		t.Fatal("expected t3 to occur")
	}
	if OccursIn(4, in) {
		t.Fatal("t4 must not occur")
	}
}

func TestNormalizeRow_SortsAndDedups(t *testing.T) {
	row, ok := NormalizeRow([]RowCase{
		{Label: "Timeout", Payload: Int},
		{Label: "Refused"},
		{Label: "Timeout", Payload: Bool},
	}, nil).(TRow)
	if !ok {
		t.Fatal("expected a row")
	}
	labels := row.Labels()
	if len(labels) != 2 || labels[0] != "Refused" || labels[1] != "Timeout" {
		t.Fatalf("expected [Refused Timeout], got %v", labels)
	}
	c, _ := row.Case("Timeout")
	if !Equal(c.Payload, Int) {
		t.Fatalf("first occurrence must win, got %v", c.Payload)
	}
}

func TestNormalizeRow_TransparentWrapperCollapses(t *testing.T) {
	got := NormalizeRow(nil, TVar{ID: 7})
	if v, ok := got.(TVar); !ok || v.ID != 7 {
		t.Fatalf("expected bare t7, got %s", got)
	}
}
