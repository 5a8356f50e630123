package twotier

// Insert stores value under key, overwriting any existing value for key.
//
// It returns true unless a spill that occurred while making room for this
// insert could not be placed in the overflow tier — in that case some
// other, already-stored key becomes unreachable (the key passed to this
// call is always stored). It also
// returns false, without mutating the table, if len(value) does not match
// [Table.ValueBytes].
func (t *Table) Insert(key uint64, value []byte) bool {
	if len(value) != t.valueBytes {
		return false
	}

	hash := primaryHash(key, t.hashShift)
	home := t.phys(hash)

	s0 := t.primarySlot(home)
	header := s0.header()
	pos0Offset := header & 3

	switch pos0Offset {
	case 0:
		s0.setHeader(2)
		s0.setKey(key)
		copy(s0.value(), value)

		return true
	case 1:
		return t.insertLeft(key, value, hash, home, pos0Offset, 0)
	case 2:
		if s0.key() == key {
			copy(s0.value(), value)
			return true
		}

		return t.insertRight(key, value, hash, home, pos0Offset, header)
	default:
		// tag == 3 is impossible at the home slot (invariant 1); mirror the
		// source's unconditional fall-through to the right probe.
		return t.insertRight(key, value, hash, home, pos0Offset, 0)
	}
}

func (t *Table) insertRight(key uint64, value []byte, hash, home uint64, pos0Offset, lastHeaderMatch uint8) bool {
	s1 := t.primarySlot(home + 1)
	header := s1.header()

	switch header & 3 {
	case 0:
		s1.setHeader(3)
		s1.setKey(key)
		copy(s1.value(), value)

		return true
	case 3:
		if s1.key() == key {
			copy(s1.value(), value)
			return true
		}

		lastHeaderMatch = max(lastHeaderMatch, header)
	}

	return t.insertLeft(key, value, hash, home, pos0Offset, lastHeaderMatch)
}

func (t *Table) insertLeft(key uint64, value []byte, hash, home uint64, pos0Offset, lastHeaderMatch uint8) bool {
	sL := t.primarySlot(home - 1)
	header := sL.header()

	switch header & 3 {
	case 0:
		sL.setHeader(1)
		sL.setKey(key)
		copy(sL.value(), value)

		return true
	case 1:
		if sL.key() == key {
			copy(sL.value(), value)
			return true
		}

		lastHeaderMatch = max(lastHeaderMatch, header)
	}

	if lastHeaderMatch >= 4 {
		if val, found := t.overflowProbe(hash, lastHeaderMatch>>2, key); found {
			copy(val, value)
			return true
		}
		// Not found in T2 either: the entry is genuinely new. Fall through
		// to pushing, same as the source's goto insert_pushing.
	}

	return t.push(key, value, hash, home, pos0Offset, lastHeaderMatch)
}

// push relocates existing occupants to make room for (key, value) at home,
// choosing a direction and then delegating to pushRight or pushLeft.
func (t *Table) push(key uint64, value []byte, hash, home uint64, pos0Offset, lastHeaderMatch uint8) bool {
	pushRight := false

	switch pos0Offset {
	case 2:
		if hash&1 != 0 {
			pushRight = t.primarySlot(home - 2).header() != 0
		} else {
			pushRight = t.primarySlot(home + 2).header() == 0
		}
	case 1:
		pushRight = true
	}

	if pushRight {
		return t.pushRight(key, value, hash, home, lastHeaderMatch)
	}

	return t.pushLeft(key, value, hash, home, lastHeaderMatch)
}

// pushRight scans rightward from home, bumping displaced-left (tag 1) and
// home (tag 2) occupants by one tag step, evicting any tag-3 occupant it
// meets (it cannot be pushed further right within its 3-slot neighborhood),
// and finally bulk-shifting everything between home and the first empty
// slot one step right to make room at home.
func (t *Table) pushRight(key uint64, value []byte, hash, home uint64, lastHeaderMatch uint8) bool {
	scan := home
	h := hash
	var headerOld1, headerOld2 uint8
	spillOK := true

	for {
		s := t.primarySlot(scan)
		header := s.header()

		switch header & 3 {
		case 3:
			newOffset, placed := t.overflowInsert(s, h-1)
			if !placed {
				spillOK = false
			}

			merged := max((newOffset<<2)+7, header)
			mid := scan - 1
			t.primarySlot(mid).setHeader(merged)

			if headerOld2&3 == 1 {
				t.primarySlot(mid - 1).setHeader(merged - 1)
			}

			fallthrough
		case 0:
			t.shiftRight(home, scan)

			dst := t.primarySlot(home)
			dst.setHeader((lastHeaderMatch &^ 3) | 2)
			dst.setKey(key)
			copy(dst.value(), value)

			return spillOK
		default:
			s.setHeader(header + 1)
			scan++
			h++
			headerOld2 = headerOld1
			headerOld1 = header
		}
	}
}

// pushLeft is the mirror image of pushRight: it scans leftward, bumping
// tag-2 and tag-3 occupants, evicting any tag-1 occupant it meets.
func (t *Table) pushLeft(key uint64, value []byte, hash, home uint64, lastHeaderMatch uint8) bool {
	scan := home
	h := hash
	var headerOld1, headerOld2 uint8
	spillOK := true

	for {
		s := t.primarySlot(scan)
		header := s.header()

		switch header & 3 {
		case 1:
			newOffset, placed := t.overflowInsert(s, h+1)
			if !placed {
				spillOK = false
			}

			merged := max((newOffset<<2)+5, header)
			mid := scan + 1
			t.primarySlot(mid).setHeader(merged)

			if headerOld2&3 == 3 {
				t.primarySlot(mid + 1).setHeader(merged + 1)
			}

			fallthrough
		case 0:
			t.shiftLeft(scan, home)

			dst := t.primarySlot(home)
			dst.setHeader((lastHeaderMatch &^ 3) | 2)
			dst.setKey(key)
			copy(dst.value(), value)

			return spillOK
		default:
			s.setHeader(header - 1)
			scan--
			h--
			headerOld2 = headerOld1
			headerOld1 = header
		}
	}
}

// shiftRight moves physical slots [home, scan) one slot to the right,
// into [home+1, scan+1), freeing up home for a new entry.
func (t *Table) shiftRight(home, scan uint64) {
	n := int(scan-home) * t.stride
	if n == 0 {
		return
	}

	srcOff := int(home) * t.stride
	dstOff := int(home+1) * t.stride
	copy(t.buf[dstOff:dstOff+n], t.buf[srcOff:srcOff+n])
}

// shiftLeft moves physical slots [scan+1, home+1) one slot to the left,
// into [scan, home), freeing up home for a new entry.
func (t *Table) shiftLeft(scan, home uint64) {
	n := int(home-scan) * t.stride
	if n == 0 {
		return
	}

	dstOff := int(scan) * t.stride
	srcOff := int(scan+1) * t.stride
	copy(t.buf[dstOff:dstOff+n], t.buf[srcOff:srcOff+n])
}
