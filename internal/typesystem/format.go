package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quill-lang/quill/internal/config"
)

// Formatter renders types for display. Unlike String, it renames variables
// to stable letters and summarizes error rows against known ADTs: when a
// row's labels are exactly one ADT's constructor set, the ADT name is shown
// instead of the raw labels. That grouping is a presentation convenience,
// not part of the type system.
type Formatter struct {
	Adts  *AdtEnv
	names map[int]string
}

func NewFormatter(adts *AdtEnv) *Formatter {
	return &Formatter{Adts: adts, names: make(map[int]string)}
}

// Format renders a type. Variable letters are assigned in first-appearance
// order and remain stable across calls on the same Formatter.
func (f *Formatter) Format(t Type) string {
	if t == nil {
		return "?"
	}
	switch typ := t.(type) {
	case TVar:
		return f.varName(typ.ID)
	case TPrim:
		return typ.String()
	case TFunc:
		from := f.Format(typ.From)
		if _, ok := typ.From.(TFunc); ok {
			from = "(" + from + ")"
		}
		return from + " -> " + f.Format(typ.To)
	case TCon:
		if len(typ.Args) == 0 {
			return typ.Name
		}
		parts := make([]string, len(typ.Args))
		for i, a := range typ.Args {
			parts[i] = f.Format(a)
		}
		return fmt.Sprintf("%s<%s>", typ.Name, strings.Join(parts, ", "))
	case TTuple:
		parts := make([]string, len(typ.Elems))
		for i, e := range typ.Elems {
			parts[i] = f.Format(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TRecord:
		parts := make([]string, len(typ.Fields))
		for i, fd := range typ.Fields {
			parts[i] = fd.Name + ": " + f.Format(fd.Type)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case TRow:
		return f.formatRow(typ)
	case THole:
		return "?"
	default:
		return t.String()
	}
}

// FormatScheme renders a scheme with its quantifier prefix.
func (f *Formatter) FormatScheme(s Scheme) string {
	if len(s.Vars) == 0 {
		return f.Format(s.Body)
	}
	parts := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		parts[i] = f.varName(v)
	}
	return "forall " + strings.Join(parts, " ") + ". " + f.Format(s.Body)
}

func (f *Formatter) formatRow(row TRow) string {
	if len(row.Cases) == 0 {
		if row.Tail != nil {
			return f.Format(row.Tail)
		}
		return "{}"
	}
	if name, ok := f.groupRow(row); ok {
		return name
	}
	parts := make([]string, len(row.Cases))
	for i, c := range row.Cases {
		if c.Payload != nil {
			parts[i] = c.Label + "(" + f.Format(c.Payload) + ")"
		} else {
			parts[i] = c.Label
		}
	}
	body := strings.Join(parts, ", ")
	if row.Tail != nil {
		return "{" + body + " | " + f.Format(row.Tail) + "}"
	}
	return "{" + body + "}"
}

// groupRow finds an ADT whose constructor set matches the row's labels
// exactly. Only closed rows group; an open row still lists raw labels so
// the residual tail stays visible.
func (f *Formatter) groupRow(row TRow) (string, bool) {
	if f.Adts == nil || row.Tail != nil {
		return "", false
	}
	labels := append([]string{}, row.Labels()...)
	sort.Strings(labels)
	names := make([]string, 0, len(f.Adts.Types))
	for name := range f.Adts.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := f.Adts.Types[name]
		if name == config.ResultTypeName {
			continue
		}
		ctors := append([]string{}, info.CtorNames()...)
		sort.Strings(ctors)
		if len(ctors) != len(labels) {
			continue
		}
		match := true
		for i := range ctors {
			if ctors[i] != labels[i] {
				match = false
				break
			}
		}
		if match {
			return name, true
		}
	}
	return "", false
}

func (f *Formatter) varName(id int) string {
	if name, ok := f.names[id]; ok {
		return name
	}
	n := len(f.names)
	name := string(rune('a' + n%26))
	if n >= 26 {
		name = fmt.Sprintf("%s%d", name, n/26)
	}
	f.names[id] = name
	return name
}
