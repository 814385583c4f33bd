// Package intern implements a simple string interning pool, modeled on the
// original hlslparser's StringLibrary: a general pool for identifiers and
// literals encountered while tokenizing, kept separate from a preprocessor's
// define-name pool so macro-table lookups never compete with the much
// larger stream of ordinary source identifiers.
package intern

// Pool interns strings so repeated identifiers and literals across a
// translation unit share one backing string and one comparable handle.
type Pool struct {
	strings []string
	index   map[string]uint32
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{index: map[string]uint32{}}
}

// Intern returns the handle for s, interning it on first use.
func (p *Pool) Intern(s string) uint32 {
	if h, ok := p.index[s]; ok {
		return h
	}
	h := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = h
	return h
}

// String returns the string for a handle previously returned by Intern.
func (p *Pool) String(h uint32) string {
	return p.strings[h]
}

// Len returns the number of distinct strings interned so far.
func (p *Pool) Len() int {
	return len(p.strings)
}
