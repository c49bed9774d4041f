package modules

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/quill-lang/quill/internal/typesystem"
)

// Summary is the externally visible surface of a checked module: exported
// value schemes plus the ADTs and record aliases it declares. Summaries are
// what dependents get seeded with, and what the cache stores keyed by
// content hash.
type Summary struct {
	Module  string
	Hash    string
	Exports map[string]typesystem.Scheme
	Types   map[string]typesystem.TypeInfo
	Aliases map[string]typesystem.Scheme
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS summaries (
	hash       TEXT PRIMARY KEY,
	module     TEXT NOT NULL,
	snapshot   TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Cache is the on-disk module summary store. Safe to share between
// sequential check runs; the watch loop reuses one instance.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) the summary database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up a summary by content hash. A decode failure is treated as a
// miss so a stale or corrupt row never poisons a check run.
func (c *Cache) Get(hash string) (*Summary, bool) {
	var module string
	var payload []byte
	err := c.db.QueryRow(
		`SELECT module, payload FROM summaries WHERE hash = ?`, hash,
	).Scan(&module, &payload)
	if err != nil {
		return nil, false
	}
	s, err := decodeSummary(module, hash, payload)
	if err != nil {
		return nil, false
	}
	return s, true
}

// Put stores a summary under its hash, replacing any previous row. Each
// write gets a fresh snapshot id so external tooling can tell rewrites
// apart.
func (c *Cache) Put(s *Summary) error {
	payload, err := encodeSummary(s)
	if err != nil {
		return fmt.Errorf("encode summary for %s: %w", s.Module, err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO summaries (hash, module, snapshot, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.Hash, s.Module, uuid.NewString(), payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store summary for %s: %w", s.Module, err)
	}
	return nil
}

type summaryDTO struct {
	Exports map[string]json.RawMessage `json:"exports"`
	Types   []typeInfoDTO              `json:"types"`
	Aliases map[string]json.RawMessage `json:"aliases"`
}

type typeInfoDTO struct {
	Name   string    `json:"name"`
	Params []string  `json:"params,omitempty"`
	Ctors  []ctorDTO `json:"ctors,omitempty"`
}

type ctorDTO struct {
	Name   string          `json:"name"`
	Arity  int             `json:"arity"`
	Owner  string          `json:"owner"`
	Scheme json.RawMessage `json:"scheme"`
}

func encodeSummary(s *Summary) ([]byte, error) {
	dto := summaryDTO{
		Exports: make(map[string]json.RawMessage, len(s.Exports)),
		Aliases: make(map[string]json.RawMessage, len(s.Aliases)),
	}
	for name, scheme := range s.Exports {
		raw, err := typesystem.SchemeJSON(scheme)
		if err != nil {
			return nil, err
		}
		dto.Exports[name] = raw
	}
	for name, scheme := range s.Aliases {
		raw, err := typesystem.SchemeJSON(scheme)
		if err != nil {
			return nil, err
		}
		dto.Aliases[name] = raw
	}

	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := s.Types[name]
		ti := typeInfoDTO{Name: info.Name, Params: info.Params}
		for _, ctor := range info.Ctors {
			raw, err := typesystem.SchemeJSON(ctor.Scheme)
			if err != nil {
				return nil, err
			}
			ti.Ctors = append(ti.Ctors, ctorDTO{
				Name:   ctor.Name,
				Arity:  ctor.Arity,
				Owner:  ctor.Owner,
				Scheme: raw,
			})
		}
		dto.Types = append(dto.Types, ti)
	}
	return json.Marshal(dto)
}

func decodeSummary(module, hash string, payload []byte) (*Summary, error) {
	var dto summaryDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return nil, err
	}
	s := &Summary{
		Module:  module,
		Hash:    hash,
		Exports: make(map[string]typesystem.Scheme, len(dto.Exports)),
		Types:   make(map[string]typesystem.TypeInfo, len(dto.Types)),
		Aliases: make(map[string]typesystem.Scheme, len(dto.Aliases)),
	}
	for name, raw := range dto.Exports {
		scheme, err := typesystem.SchemeFromJSON(raw)
		if err != nil {
			return nil, err
		}
		s.Exports[name] = scheme
	}
	for name, raw := range dto.Aliases {
		scheme, err := typesystem.SchemeFromJSON(raw)
		if err != nil {
			return nil, err
		}
		s.Aliases[name] = scheme
	}
	for _, ti := range dto.Types {
		info := typesystem.TypeInfo{Name: ti.Name, Params: ti.Params}
		for _, ctor := range ti.Ctors {
			scheme, err := typesystem.SchemeFromJSON(ctor.Scheme)
			if err != nil {
				return nil, err
			}
			info.Ctors = append(info.Ctors, typesystem.ConstructorInfo{
				Name:   ctor.Name,
				Arity:  ctor.Arity,
				Owner:  ctor.Owner,
				Scheme: scheme,
			})
		}
		s.Types[info.Name] = info
	}
	return s, nil
}
