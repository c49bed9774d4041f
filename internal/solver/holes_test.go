package solver

import (
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/typesystem"
)

func trackedSolver(t *testing.T) (*Solver, typesystem.TVar, ast.NodeID) {
	t.Helper()
	alloc := typesystem.NewVarAlloc()
	v := alloc.Fresh()
	node := ast.NodeID(42)
	holes := map[int]HoleInfo{
		v.ID: {Node: node, Origin: typesystem.UserHole{ID: v.ID}},
	}
	s := New(Options{Alloc: alloc, Adts: typesystem.NewAdtEnv(), Holes: holes, Tolerant: true})
	return s, v, node
}

func TestHole_Unsolved(t *testing.T) {
	s, _, node := trackedSolver(t)
	res := s.Finish()
	sol, ok := res.HoleSolutions[node]
	if !ok || sol.State != HoleUnsolved {
		t.Fatalf("expected an unsolved hole, got %+v", sol)
	}
}

func TestHole_PartialFromBinding(t *testing.T) {
	s, v, node := trackedSolver(t)
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 1})
	res := s.Finish()
	sol := res.HoleSolutions[node]
	if sol.State != HolePartial || !typesystem.Equal(sol.Known, typesystem.Int) {
		t.Fatalf("expected partial Int, got %+v", sol)
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %+v", res.Conflicts)
	}
}

func TestHole_RepeatedAgreementStaysPartial(t *testing.T) {
	s, v, node := trackedSolver(t)
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 1})
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 2})
	sol := s.Finish().HoleSolutions[node]
	if sol.State != HolePartial {
		t.Fatalf("agreeing requirements must not conflict, got %+v", sol)
	}
}

func TestHole_Conflicted(t *testing.T) {
	s, v, node := trackedSolver(t)
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 1})
	s.Add(Unify{Left: v, Right: typesystem.Bool, Origin: 2})

	res := s.Finish()
	sol := res.HoleSolutions[node]
	if sol.State != HoleConflicted || len(sol.Candidates) != 2 {
		t.Fatalf("expected two conflicting candidates, got %+v", sol)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Origin != node {
		t.Fatalf("expected one conflict anchored at the hole's node, got %+v", res.Conflicts)
	}
}

func TestHole_BareVariableContactIgnored(t *testing.T) {
	s, v, node := trackedSolver(t)
	other := s.alloc.Fresh()
	s.Add(Unify{Left: v, Right: other, Origin: 1})
	sol := s.Finish().HoleSolutions[node]
	if sol.State != HoleUnsolved {
		t.Fatalf("a bare variable tells the hole nothing, got %+v", sol)
	}
}
