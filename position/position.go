// Package position holds the primitive types shared by blockpool, lineenc
// and linestorage: the line/offset domain types and the width constraint
// distinguishing the 32-bit and 64-bit storage paths.
package position

// Width constrains the element type a block pool or encoder operates on.
// The compressed line-position storage only ever instantiates this with
// uint32 (the "small offset" pool) or uint64 (the "long offset" pool).
type Width interface {
	~uint32 | ~uint64
}

// LineNumber is a 0-based, dense line index into the storage.
type LineNumber uint64

// LineOffset is the byte offset, in the underlying log, of a line's start.
type LineOffset uint64
