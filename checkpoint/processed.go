package checkpoint

// ProcessedSet is the set of sample IDs whose stats have been folded into the
// totals.  It remembers insertion order so checkpoints are written
// deterministically.
type ProcessedSet struct {
	ids   map[string]struct{}
	order []string
}

// NewProcessedSet returns an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[string]struct{})}
}

// Contains reports whether id has been marked.
func (p *ProcessedSet) Contains(id string) bool {
	_, ok := p.ids[id]
	return ok
}

// Mark adds id, returning false if it was already present.
func (p *ProcessedSet) Mark(id string) bool {
	if p.Contains(id) {
		return false
	}
	p.ids[id] = struct{}{}
	p.order = append(p.order, id)
	return true
}

// unmarkLast undoes the most recent Mark.
func (p *ProcessedSet) unmarkLast() {
	n := len(p.order)
	delete(p.ids, p.order[n-1])
	p.order = p.order[:n-1]
}

// Len returns the number of marked IDs.
func (p *ProcessedSet) Len() int {
	return len(p.order)
}

// IDs returns the marked IDs in the order they were marked.  The caller must
// not modify the result.
func (p *ProcessedSet) IDs() []string {
	return p.order
}
