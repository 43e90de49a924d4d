// Package clpstore provides a compact, append-only index of line start
// offsets for large text logs.
//
// Rather than holding one uint64 per line, clpstore encodes each line's
// offset relative to its predecessor — one byte for the common case, two
// for a wider gap, and a full absolute value only when neither fits —
// and packs the stream into fixed-capacity blocks. Reading a line by
// index, appending the next one, and undoing the last append are all
// O(1) amortized; only a block's own lines need decoding, not the whole
// index.
//
// # Core Features
//
//   - Three-tier delta encoding (1-byte, 2-byte, absolute fallback) keyed
//     off the previous line's offset
//   - A 32-bit pool for logs under 4 GiB, transitioning permanently and
//     transparently to a 64-bit pool the first time an offset needs it
//   - A caller-owned Cache that turns sequential At calls into O(1)
//     resumed decodes instead of re-walking a block from its seed
//   - An xxHash64 Checksum over the encoded bytes, for callers that
//     persist the index and want to detect a stale copy
//
// # Basic Usage
//
//	s := clpstore.New()
//	for _, off := range []clpstore.LineOffset{0, 47, 203, 204, 981} {
//	    if err := s.Append(off); err != nil {
//	        // offsets must be non-decreasing
//	    }
//	}
//
//	var cache clpstore.Cache
//	for i := 0; i < s.Size(); i++ {
//	    off, _ := s.At(clpstore.LineNumber(i), &cache)
//	    fmt.Println(off)
//	}
//
//	_ = s.PopBack() // undo the last append
//
// # Package Structure
//
// This package re-exports the storage type and its supporting types from
// linestorage for the common case of indexing a single log. Package
// lineenc holds the opcode codec and package blockpool the block arena,
// for callers assembling their own variant of the storage state machine.
package clpstore

import (
	"github.com/kloggish/clpstore/linestorage"
	"github.com/kloggish/clpstore/position"
)

// LineNumber is a 0-based, dense line index into a Storage.
type LineNumber = position.LineNumber

// LineOffset is the byte offset, in the underlying log, of a line's start.
type LineOffset = position.LineOffset

// Storage is the compressed line-position index: append, random-access
// read, and undo-last-append over a growable pair of block pools.
type Storage = linestorage.Storage

// Cache accelerates a sequence of ascending, mostly consecutive Storage.At
// calls by resuming decode from the previous call instead of re-walking
// the block from its seed.
type Cache = linestorage.Cache

// ErrOutOfRange is returned by Storage.At when the requested index is
// beyond the current size.
var ErrOutOfRange = linestorage.ErrOutOfRange

// ErrOrderingViolation is returned by Storage.Append when the offset
// precedes the last appended one.
var ErrOrderingViolation = linestorage.ErrOrderingViolation

// New creates an empty Storage.
func New() *Storage {
	return linestorage.New()
}
