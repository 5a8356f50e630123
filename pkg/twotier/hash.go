package twotier

// fibMultiplier is the 64-bit fractional part of the golden ratio, used as
// the multiplicative constant in the hash mix. Matches the source's
// 11400714819323198485 (0x9E3779B97F4A7C15) exactly.
const fibMultiplier = 0x9E3779B97F4A7C15

// primaryHash computes the T1 bucket index for key, given a table whose
// T1 size is 1 << (64 - hashShift).
//
// The mix is `((k ^ (k >> 33)) * fib) >> hashShift`; only the top
// (64 - hashShift) bits of the product are kept. hashShift must be in
// [3, 61].
func primaryHash(key uint64, hashShift uint8) uint64 {
	h := (key ^ (key >> 33)) * fibMultiplier
	return h >> hashShift
}

// overflowHash reshuffles a primary hash into a T2 index, masked to
// t2Size-1 (t2Size is always a power of two: T1_size/8).
//
// The reshuffle is `h ^= h << 2`, not `h += h << 2`: the two are not
// equivalent, and insert/find must agree on which one is used.
func overflowHash(primary uint64, t2Size uint64) uint64 {
	h := primary
	h ^= h << 2
	return h & (t2Size - 1)
}
