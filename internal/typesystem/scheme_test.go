package typesystem

import "testing"

func TestGeneralize_SkipsEnvVars(t *testing.T) {
	env := NewEnv()
	env.Bind("x", MonoScheme(TVar{ID: 0}))

	s := Generalize(TFunc{From: TVar{ID: 0}, To: TVar{ID: 1}}, env)
	if len(s.Vars) != 1 || s.Vars[0] != 1 {
		t.Fatalf("expected only t1 quantified, got %v", s.Vars)
	}
}

func TestInstantiate_FreshCopies(t *testing.T) {
	alloc := NewVarAlloc()
	v := alloc.Fresh()
	s := Scheme{Vars: []int{v.ID}, Body: TFunc{From: v, To: v}}

	a := Instantiate(s, alloc).(TFunc)
	b := Instantiate(s, alloc).(TFunc)

	av, aok := a.From.(TVar)
	bv, bok := b.From.(TVar)
	if !aok || !bok {
		t.Fatalf("expected variables, got %s and %s", a.From, b.From)
	}
	if av.ID == v.ID || bv.ID == v.ID || av.ID == bv.ID {
		t.Fatalf("instantiations must not share variables: %d %d %d", v.ID, av.ID, bv.ID)
	}
	if a.From.(TVar).ID != a.To.(TVar).ID {
		t.Fatal("instantiation must keep internal sharing")
	}
}

func TestInstantiate_MonoSchemeIsIdentity(t *testing.T) {
	alloc := NewVarAlloc()
	body := TFunc{From: Int, To: Bool}
	got := Instantiate(MonoScheme(body), alloc)
	if !Equal(got, body) {
		t.Fatalf("expected %s, got %s", body, got)
	}
}

func TestEnv_ChildShadowing(t *testing.T) {
	parent := NewEnv()
	parent.Bind("x", MonoScheme(Int))
	child := parent.Child()
	child.Bind("x", MonoScheme(Bool))

	if s, ok := child.Lookup("x"); !ok || !Equal(s.Body, Bool) {
		t.Fatalf("child must see its own binding, got %v", s)
	}
	if s, ok := parent.Lookup("x"); !ok || !Equal(s.Body, Int) {
		t.Fatalf("parent binding must be untouched, got %v", s)
	}
	if _, ok := child.Lookup("missing"); ok {
		t.Fatal("lookup must miss unbound names")
	}
}

func TestAdtEnv_CloneIsIndependent(t *testing.T) {
	a := NewAdtEnv()
	a.Register(TypeInfo{
		Name:  "Color",
		Ctors: []ConstructorInfo{{Name: "Red", Owner: "Color"}, {Name: "Blue", Owner: "Color"}},
	})
	a.RegisterAlias("Point", MonoScheme(TRecord{Fields: []Field{{Name: "x", Type: Int}}}))

	clone := a.Clone()
	clone.Register(TypeInfo{Name: "Other", Ctors: []ConstructorInfo{{Name: "O", Owner: "Other"}}})

	if _, ok := a.Types["Other"]; ok {
		t.Fatal("clone must not leak into the original")
	}
	if _, ok := clone.Ctors["Red"]; !ok {
		t.Fatal("clone must carry constructors")
	}
	if _, ok := clone.Aliases["Point"]; !ok {
		t.Fatal("clone must carry aliases")
	}
}

func TestSchemeJSON_RoundTrip(t *testing.T) {
	s := Scheme{
		Vars: []int{0, 1},
		Body: TFunc{
			From: TVar{ID: 0},
			To: TCon{Name: "Result", Args: []Type{
				TVar{ID: 1},
				TRow{Cases: []RowCase{{Label: "Timeout", Payload: Int}}, Tail: nil},
			}},
		},
	}
	data, err := SchemeJSON(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := SchemeFromJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Vars) != 2 || !Equal(back.Body, s.Body) {
		t.Fatalf("round trip changed the scheme: %s vs %s", back.Body, s.Body)
	}
}
