package twotier

import "encoding/binary"

// primarySlotView is a thin accessor over a single T1 slot's raw bytes:
//
//	byte 0:       header (tag in bits 0-1, t2_offset in bits 2-7)
//	bytes 1-8:    key (valid only when tag != 0)
//	bytes 9-end:  value payload
//
// It exists so the insert/find engine never computes byte offsets by hand;
// the layout stays centralized here.
type primarySlotView []byte

// header returns the raw header byte.
func (s primarySlotView) header() uint8 {
	return s[0]
}

// setHeader overwrites the raw header byte.
func (s primarySlotView) setHeader(h uint8) {
	s[0] = h
}

// tag returns the 2-bit occupancy tag: 0 empty, 1 belongs to index+1,
// 2 belongs to this index, 3 belongs to index-1.
func (s primarySlotView) tag() uint8 {
	return s[0] & 3
}

// t2Offset returns the 6-bit forward-pointer field. Zero means no
// overflow chain originates from this bucket.
func (s primarySlotView) t2Offset() uint8 {
	return s[0] >> 2
}

// key returns the 8-byte key field.
func (s primarySlotView) key() uint64 {
	return binary.LittleEndian.Uint64(s[1 : 1+keyBytes])
}

// setKey overwrites the 8-byte key field.
func (s primarySlotView) setKey(k uint64) {
	binary.LittleEndian.PutUint64(s[1:1+keyBytes], k)
}

// value returns the value payload, sized to the table's value width.
func (s primarySlotView) value() []byte {
	return s[1+keyBytes:]
}

// copyFrom overwrites this slot's header, key, and value from src,
// src must have the exact same length as s.
func (s primarySlotView) copyFrom(src primarySlotView) {
	copy(s, src)
}

// overflowSlotView is a thin accessor over a single T2 slot's raw bytes:
// no header, just an 8-byte key followed by the value payload.
type overflowSlotView []byte

// key returns the 8-byte key field.
func (s overflowSlotView) key() uint64 {
	return binary.LittleEndian.Uint64(s[:keyBytes])
}

// setKey overwrites the 8-byte key field.
func (s overflowSlotView) setKey(k uint64) {
	binary.LittleEndian.PutUint64(s[:keyBytes], k)
}

// value returns the value payload.
func (s overflowSlotView) value() []byte {
	return s[keyBytes:]
}

// empty reports whether this T2 slot is unoccupied: its key field is zero
// and it is not the slot recorded as holding a genuine key=0.
func (s overflowSlotView) empty(isZeroKeyLocation bool) bool {
	return s.key() == 0 && !isZeroKeyLocation
}
