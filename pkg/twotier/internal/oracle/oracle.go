// Package oracle provides a deliberately simple, map-backed reference model
// of twotier.Table's publicly observable behavior.
//
// The model favors clarity over performance: it does not reproduce T1/T2
// geometry, probing, or eviction at all, only the key/value mapping a
// correctly-sized table is expected to converge to. It is meant to be
// compared against the real table via go-cmp in metamorphic tests, not used
// on its own.
package oracle

// Model is an in-memory map mirroring the logical contents of a table.
type Model struct {
	entries map[uint64]string
}

// New returns an empty model.
func New() *Model {
	return &Model{entries: make(map[uint64]string)}
}

// Insert records key/value, overwriting any previous value for key. It
// mirrors Table.Insert's guarantee that the inserted key is always stored;
// it does not model eviction-to-overflow failure (open question (a)), so
// callers should only compare against real tables sized large enough that
// the overflow tier never saturates.
func (m *Model) Insert(key uint64, value []byte) {
	m.entries[key] = string(value)
}

// Find reports the value stored for key, if any.
func (m *Model) Find(key uint64) ([]byte, bool) {
	v, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	return []byte(v), true
}

// Len returns the number of distinct keys recorded.
func (m *Model) Len() int {
	return len(m.entries)
}

// Snapshot returns a plain map copy, suitable for cmp.Diff against a walk of
// the real table's contents.
func (m *Model) Snapshot() map[uint64]string {
	out := make(map[uint64]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}

	return out
}
