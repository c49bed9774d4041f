package modules

import (
	"fmt"
	"sort"
	"strings"
)

// Module is one source file plus its declared dependencies.
type Module struct {
	Name string
	Path string
	Deps []string
}

// SortModules orders modules dependencies-first with Kahn's algorithm.
// A dependency on an unknown module or a dependency cycle is fatal: the
// checker cannot seed an environment it never built.
func SortModules(mods []*Module) ([]*Module, error) {
	byName := make(map[string]*Module, len(mods))
	for _, m := range mods {
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q", m.Name)
		}
		byName[m.Name] = m
	}

	indeg := make(map[string]int, len(mods))
	dependents := make(map[string][]string)
	for _, m := range mods {
		indeg[m.Name] += 0
		for _, dep := range m.Deps {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("module %q depends on unknown module %q", m.Name, dep)
			}
			indeg[m.Name]++
			dependents[dep] = append(dependents[dep], m.Name)
		}
	}

	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	out := make([]*Module, 0, len(mods))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		out = append(out, byName[name])

		var freed []string
		for _, dep := range dependents[name] {
			indeg[dep]--
			if indeg[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		sort.Strings(freed)
		ready = append(ready, freed...)
	}

	if len(out) != len(mods) {
		var stuck []string
		for name, d := range indeg {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle involving: %s", strings.Join(stuck, ", "))
	}
	return out, nil
}
