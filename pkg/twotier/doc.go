// Package twotier implements an in-memory hash table mapping 64-bit integer
// keys to fixed-size opaque values, using a two-tier probing design.
//
// Each primary bucket carries a 2-bit tag that localizes collisions to a
// 3-slot neighborhood (index-1, index, index+1). Keys that cannot be placed
// within that neighborhood spill into a secondary overflow tier addressed by
// a reshuffled hash, with the primary header recording where to find them.
//
// A positive or negative [Table.Find] touches at most three contiguous
// primary slots, falling through to the overflow tier only for entries that
// genuinely collided.
//
// # Basic usage
//
//	t, err := twotier.Create(1000, 8)
//	if err != nil {
//		// handle err
//	}
//	t.Insert(42, []byte{1, 2, 3, 4, 5, 6, 7, 8})
//	v, ok := t.Find(42)
//
// # Concurrency
//
// Table is not safe for concurrent use. All operations must be serialized
// by the caller.
//
// # Non-goals
//
// Cryptographically strong hashing, variable-length keys or values,
// concurrent access, durable storage, and ordered iteration are all out of
// scope; [Table.Walk] visits live entries in an unspecified order, for
// introspection. Deletion is not implemented.
package twotier
