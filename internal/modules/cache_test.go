package modules

import (
	"path/filepath"
	"testing"

	"github.com/quill-lang/quill/internal/typesystem"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), ".quill", "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_RoundTrip(t *testing.T) {
	c := openTestCache(t)

	sum := &Summary{
		Module: "core.net",
		Hash:   "abc123",
		Exports: map[string]typesystem.Scheme{
			"id": {Vars: []int{0}, Body: typesystem.TFunc{From: typesystem.TVar{ID: 0}, To: typesystem.TVar{ID: 0}}},
		},
		Types: map[string]typesystem.TypeInfo{
			"NetErr": {
				Name: "NetErr",
				Ctors: []typesystem.ConstructorInfo{
					{Name: "Timeout", Arity: 0, Owner: "NetErr", Scheme: typesystem.MonoScheme(typesystem.TCon{Name: "NetErr"})},
					{Name: "Code", Arity: 1, Owner: "NetErr", Scheme: typesystem.MonoScheme(
						typesystem.TFunc{From: typesystem.Int, To: typesystem.TCon{Name: "NetErr"}},
					)},
				},
			},
		},
		Aliases: map[string]typesystem.Scheme{
			"Point": typesystem.MonoScheme(typesystem.TRecord{Fields: []typesystem.Field{
				{Name: "x", Type: typesystem.Int},
				{Name: "y", Type: typesystem.Int},
			}}),
		},
	}

	if err := c.Put(sum); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get("abc123")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Module != "core.net" {
		t.Fatalf("unexpected module: %q", got.Module)
	}
	id, ok := got.Exports["id"]
	if !ok || len(id.Vars) != 1 {
		t.Fatalf("export lost in round trip: %+v", got.Exports)
	}
	info, ok := got.Types["NetErr"]
	if !ok || len(info.Ctors) != 2 || info.Ctors[1].Arity != 1 {
		t.Fatalf("type info lost in round trip: %+v", got.Types)
	}
	alias, ok := got.Aliases["Point"]
	if !ok || !typesystem.Equal(alias.Body, sum.Aliases["Point"].Body) {
		t.Fatalf("alias lost in round trip: %+v", got.Aliases)
	}
}

func TestCache_MissOnUnknownHash(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("expected a miss")
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := openTestCache(t)
	sum := &Summary{Module: "a", Hash: "h", Exports: map[string]typesystem.Scheme{}}
	if err := c.Put(sum); err != nil {
		t.Fatalf("put: %v", err)
	}
	sum.Module = "b"
	if err := c.Put(sum); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, ok := c.Get("h")
	if !ok || got.Module != "b" {
		t.Fatalf("expected the replaced row, got %+v", got)
	}
}
