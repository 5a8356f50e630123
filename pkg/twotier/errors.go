package twotier

import "errors"

// Sentinel errors returned by twotier operations.
//
// Callers should use [errors.Is] to check error types.
var (
	// ErrInvalidValueWidth indicates a value slice whose length does not
	// match the width the table was created with.
	//
	// Recovery: pass a value of exactly [Table.ValueBytes] bytes.
	ErrInvalidValueWidth = errors.New("twotier: invalid value width")

	// ErrInvalidCapacity indicates Create was called with minCapacity < 1.
	ErrInvalidCapacity = errors.New("twotier: invalid capacity")
)
