package twotier

import "math/bits"

// keyBytes is the fixed width of a key: 64 bits.
const keyBytes = 8

// Table is a two-tier hash table mapping uint64 keys to fixed-width byte
// values.
//
// The backing storage is a single flat allocation split into two regions:
// a primary tier (T1), a power-of-two array of header+key+value slots with
// a one-slot padding on each side, and an overflow tier (T2), a smaller
// array of key+value slots (no header) addressed by a reshuffled hash.
//
// Table is not safe for concurrent use.
type Table struct {
	buf []byte

	valueBytes int
	stride     int // 1 (header) + keyBytes + valueBytes
	t2Stride   int // keyBytes + valueBytes

	t1Size    uint64 // power of two, >= 8
	t2Size    uint64 // t1Size / 8
	hashShift uint8  // 64 - log2(t1Size), in [3, 61]

	t2Base int // byte offset of T2 slot 0 within buf

	overflowInsertsRemaining int64
	zeroKeyLocation          uint64 // 1-based index into T2, 0 = not present
}

// Create allocates a new table with room for at least minCapacity entries
// of valueBytes width each.
//
// minCapacity must be >= 1 (it should be at least 1.125x the expected
// number of elements, per the source's sizing guidance). valueBytes must be
// >= 0.
func Create(minCapacity int, valueBytes int) (*Table, error) {
	if minCapacity < 1 {
		return nil, ErrInvalidCapacity
	}

	if valueBytes < 0 {
		return nil, ErrInvalidValueWidth
	}

	log2Size := bits.Len64(uint64(minCapacity - 1))
	if log2Size < 3 {
		log2Size = 3
	}

	t1Size := uint64(1) << uint(log2Size)
	t2Size := t1Size >> 3

	stride := 1 + keyBytes + valueBytes
	t2Stride := keyBytes + valueBytes

	t1Bytes := (t1Size + 2) * uint64(stride)
	t2Bytes := t2Size * uint64(t2Stride)

	t := &Table{
		buf:        make([]byte, t1Bytes+t2Bytes),
		valueBytes: valueBytes,
		stride:     stride,
		t2Stride:   t2Stride,
		t1Size:     t1Size,
		t2Size:     t2Size,
		hashShift:  uint8(64 - log2Size),
		t2Base:     int(t1Bytes),
		// T2 load factor guard: floor(t2Size * 0.75) + 1, matching the
		// source's `((T2_slot_count * 6) >> 3) + 1`.
		overflowInsertsRemaining: int64((t2Size*6)>>3) + 1,
	}

	return t, nil
}

// ValueBytes returns the fixed value width this table was created with.
func (t *Table) ValueBytes() int {
	return t.valueBytes
}

// phys converts a logical T1 bucket index (0..t1Size-1) into a physical
// slot index that accounts for the one-slot left padding, i.e. phys(0) is
// the first real slot, not the padding slot before it.
func (t *Table) phys(h uint64) uint64 {
	return h + 1
}

// primarySlot returns the stride-wide view of the physical T1 slot at
// physIndex, where 0 is the permanently-empty left padding slot and
// t1Size+1 is the permanently-empty right padding slot.
func (t *Table) primarySlot(physIndex uint64) primarySlotView {
	off := int(physIndex) * t.stride
	return primarySlotView(t.buf[off : off+t.stride])
}

// overflowSlot returns the stride-wide view of T2 slot i (0-based).
func (t *Table) overflowSlot(i uint64) overflowSlotView {
	off := t.t2Base + int(i)*t.t2Stride
	return overflowSlotView(t.buf[off : off+t.t2Stride])
}

// Stats is a read-only snapshot of table geometry and load, used for
// introspection (the twotierctl dump/stats commands, and tests).
type Stats struct {
	T1Size                   uint64
	T2Size                   uint64
	ValueBytes               int
	OverflowInsertsRemaining int64
	ZeroKeyInOverflow        bool
	T1OverflowChains         int // count of T1 headers with a nonzero t2_offset
}

// Stats returns a snapshot of the table's current geometry and load.
func (t *Table) Stats() Stats {
	chains := 0
	for i := uint64(1); i <= t.t1Size; i++ {
		if t.primarySlot(i).t2Offset() != 0 {
			chains++
		}
	}

	return Stats{
		T1Size:                   t.t1Size,
		T2Size:                   t.t2Size,
		ValueBytes:               t.valueBytes,
		OverflowInsertsRemaining: t.overflowInsertsRemaining,
		ZeroKeyInOverflow:        t.zeroKeyLocation != 0,
		T1OverflowChains:         chains,
	}
}

// NeedsGrow reports whether the overflow-tier load-factor guard has been
// exhausted. The table never resizes itself (resize is a non-goal of the
// core); callers may use this as a hint to call [Table.Grow].
func (t *Table) NeedsGrow() bool {
	return t.overflowInsertsRemaining <= 0
}

// Grow allocates a new, larger table and re-inserts every live entry from
// t into it. It does not mutate t. This is a convenience built on top of
// Create/Insert/debugWalk, not a change to the core insert/find algorithm;
// automatic resizing itself remains out of scope.
func (t *Table) Grow(newMinCapacity int) (*Table, error) {
	grown, err := Create(newMinCapacity, t.valueBytes)
	if err != nil {
		return nil, err
	}

	t.debugWalk(func(key uint64, value []byte) {
		grown.Insert(key, value)
	})

	return grown, nil
}

// Walk calls fn once for every live entry in the table, in unspecified
// order. It exists for introspection tooling (twotierctl's dump command)
// and tests; it is not a stable iteration order and fn must not mutate the
// table.
func (t *Table) Walk(fn func(key uint64, value []byte)) {
	t.debugWalk(fn)
}

// debugWalk calls fn once for every live entry in the table, T1 slots
// first (in physical order) followed by T2 slots. Order is an
// implementation artifact, not a guarantee; this backs Grow and Walk.
func (t *Table) debugWalk(fn func(key uint64, value []byte)) {
	for i := uint64(1); i <= t.t1Size; i++ {
		s := t.primarySlot(i)
		if s.tag() != 0 {
			fn(s.key(), s.value())
		}
	}

	for i := uint64(0); i < t.t2Size; i++ {
		s := t.overflowSlot(i)
		if s.key() != 0 || i+1 == t.zeroKeyLocation {
			fn(s.key(), s.value())
		}
	}
}
