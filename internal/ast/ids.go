package ast

// NodeID is a per-analysis-run unique identifier stamped on every AST node
// at parse time. It is the spine of all cross-layer indexing: span lookup,
// type lookup and diagnostic anchoring key off it.
type NodeID int

// NoNode marks the absence of an anchoring node.
const NoNode NodeID = -1

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether off falls inside the span.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off < s.End
}

// Width returns the span length in bytes.
func (s Span) Width() int {
	return s.End - s.Start
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	out := s
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// IDAllocator hands out NodeIDs for one parse. It is threaded explicitly
// through the parser instead of living in package state, so independent
// analyses never share a counter.
type IDAllocator struct {
	next NodeID
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh NodeID.
func (a *IDAllocator) Next() NodeID {
	id := a.next
	a.next++
	return id
}

// Count returns how many IDs have been handed out.
func (a *IDAllocator) Count() int {
	return int(a.next)
}
