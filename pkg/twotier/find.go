package twotier

// Find looks up key and returns its value payload if present.
//
// The returned slice aliases the table's internal storage: it remains
// valid until the next [Table.Insert] (which may shift primary slots) or
// until the table is discarded, whichever comes first. Callers that need
// to retain the bytes across a subsequent insert must copy them.
func (t *Table) Find(key uint64) ([]byte, bool) {
	hash := primaryHash(key, t.hashShift)
	home := t.phys(hash)

	s0 := t.primarySlot(home)

	var lastHeaderMatch uint8

	switch s0.tag() {
	case 0:
		return nil, false
	case 2:
		if s0.key() == key {
			return s0.value(), true
		}

		lastHeaderMatch = s0.header()
	case 1:
		return t.findLeft(key, hash, home, 0)
	}

	return t.findRight(key, hash, home, lastHeaderMatch)
}

func (t *Table) findRight(key uint64, hash, home uint64, lastHeaderMatch uint8) ([]byte, bool) {
	s1 := t.primarySlot(home + 1)

	switch s1.tag() {
	case 0:
		return nil, false
	case 3:
		if s1.key() == key {
			return s1.value(), true
		}

		lastHeaderMatch = max(lastHeaderMatch, s1.header())
	}

	return t.findLeft(key, hash, home, lastHeaderMatch)
}

func (t *Table) findLeft(key uint64, hash, home uint64, lastHeaderMatch uint8) ([]byte, bool) {
	sL := t.primarySlot(home - 1)

	switch sL.tag() {
	case 0:
		return nil, false
	case 1:
		if sL.key() == key {
			return sL.value(), true
		}

		lastHeaderMatch = max(lastHeaderMatch, sL.header())
	}

	if lastHeaderMatch < 4 { // t2_offset field is zero: no overflow chain
		return nil, false
	}

	return t.overflowProbe(hash, lastHeaderMatch>>2, key)
}
