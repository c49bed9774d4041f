package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/pipeline"
	"github.com/quill-lang/quill/internal/presenter"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Checker loads a project, checks its modules dependencies-first and keeps
// the summary cache warm. One Checker serves any number of runs; the watch
// loop reuses it across rebuilds.
type Checker struct {
	Root     string
	Manifest *Manifest
	Tolerant bool

	cache *Cache
}

// ModuleResult is the outcome for one module in one run.
type ModuleResult struct {
	Module *Module
	Source string
	Cached bool
	Report *presenter.Report
	Fatal  error // lex/parse error, or strict-mode inference error

	summary *Summary
}

// Clean reports whether the module checked without errors. Warnings do not
// count.
func (r *ModuleResult) Clean() bool {
	if r.Fatal != nil {
		return false
	}
	if r.Cached {
		return true
	}
	for _, n := range r.Report.Notes {
		if !n.Warning {
			return false
		}
	}
	return true
}

// NewChecker reads the manifest at root and opens the summary cache.
func NewChecker(root string, tolerant bool) (*Checker, error) {
	manifest, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}
	cache, err := OpenCache(filepath.Join(root, manifest.Cache))
	if err != nil {
		return nil, err
	}
	return &Checker{Root: root, Manifest: manifest, Tolerant: tolerant, cache: cache}, nil
}

func (c *Checker) Close() error {
	return c.cache.Close()
}

// Discover scans the source directory for Quill files and attaches the
// manifest-declared dependencies. Module names mirror the relative path,
// with path separators becoming dots: src/core/list.ql is core.list.
func (c *Checker) Discover() ([]*Module, error) {
	srcDir := filepath.Join(c.Root, c.Manifest.Source)
	var mods []*Module
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".quill" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), config.SourceFileExt) {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), config.SourceFileExt)
		name = strings.ReplaceAll(name, "/", ".")
		mods = append(mods, &Module{
			Name: name,
			Path: path,
			Deps: c.Manifest.Modules[name].Deps,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", srcDir, err)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
	return mods, nil
}

// Run checks the whole project dependencies-first. Modules whose content
// and dependency surface are unchanged come straight from the cache; the
// rest are analyzed with their dependencies' exports in scope. A module
// that fails fatally yields no exports, so its dependents see unbound
// names rather than being skipped.
func (c *Checker) Run() ([]*ModuleResult, error) {
	mods, err := c.Discover()
	if err != nil {
		return nil, err
	}
	ordered, err := SortModules(mods)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]*Summary, len(ordered))
	results := make([]*ModuleResult, 0, len(ordered))

	for _, mod := range ordered {
		res := c.checkModule(mod, summaries)
		if res.summary != nil {
			summaries[mod.Name] = res.summary
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Checker) checkModule(mod *Module, summaries map[string]*Summary) *ModuleResult {
	res := &ModuleResult{Module: mod}

	data, err := os.ReadFile(mod.Path)
	if err != nil {
		res.Fatal = fmt.Errorf("read %s: %w", mod.Path, err)
		return res
	}
	res.Source = string(data)

	hash := contentHash(data, mod.Deps, summaries)
	if sum, ok := c.cache.Get(hash); ok {
		res.Cached = true
		res.summary = sum
		return res
	}

	prog, _, err := parser.Parse(mod.Path, res.Source)
	if err != nil {
		res.Fatal = err
		return res
	}

	env, adts := seedScope(mod.Deps, summaries)
	analysis, err := pipeline.Analyze(prog, pipeline.Options{Tolerant: c.Tolerant, Env: env, Adts: adts})
	if err != nil {
		res.Fatal = err
		return res
	}
	res.Report = presenter.Present(analysis)

	sum := exportSummary(mod.Name, hash, analysis)
	res.summary = sum
	if res.Clean() {
		// Cache trouble must not fail the check.
		_ = c.cache.Put(sum)
	}
	return res
}

// contentHash keys the cache: the module's bytes plus the hashes of its
// dependencies' summaries, so a changed dependency invalidates dependents.
func contentHash(src []byte, deps []string, summaries map[string]*Summary) string {
	h := sha256.New()
	h.Write(src)
	sorted := append([]string{}, deps...)
	sort.Strings(sorted)
	for _, dep := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(dep))
		h.Write([]byte{0})
		if sum, ok := summaries[dep]; ok {
			h.Write([]byte(sum.Hash))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// seedScope builds the initial environment and ADT scope from dependency
// summaries.
func seedScope(deps []string, summaries map[string]*Summary) (*typesystem.Env, *typesystem.AdtEnv) {
	env := typesystem.NewEnv()
	adts := typesystem.NewAdtEnv()
	for _, dep := range deps {
		sum, ok := summaries[dep]
		if !ok {
			continue
		}
		for name, scheme := range sum.Exports {
			env.Bind(name, scheme)
		}
		for _, info := range sum.Types {
			adts.Register(info)
		}
		for name, scheme := range sum.Aliases {
			adts.RegisterAlias(name, scheme)
		}
	}
	return env, adts
}

// exportSummary collects the module's own top-level surface from the marked
// program: let schemes plus declared types and record aliases.
func exportSummary(name, hash string, analysis *pipeline.AnalysisResult) *Summary {
	sum := &Summary{
		Module:  name,
		Hash:    hash,
		Exports: make(map[string]typesystem.Scheme),
		Types:   make(map[string]typesystem.TypeInfo),
		Aliases: make(map[string]typesystem.Scheme),
	}
	adts := analysis.Layer1.Adts
	for _, d := range analysis.Layer1.Program.Decls {
		switch d.Kind {
		case ast.MDeclLet:
			sum.Exports[d.Name] = d.Scheme
		case ast.MDeclType:
			if info, ok := adts.Types[d.Name]; ok {
				sum.Types[d.Name] = info
			} else if alias, ok := adts.Aliases[d.Name]; ok {
				sum.Aliases[d.Name] = alias
			}
		}
	}
	return sum
}
