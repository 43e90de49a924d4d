// Package checksum computes a digest over the bytes a frozen storage holds,
// for external callers that persist a re-derived index (the log viewer's own
// session cache, out of scope here) and want to detect a stale snapshot.
package checksum

import "github.com/cespare/xxhash/v2"

// Bytes computes the xxHash64 digest of a single byte slice.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates a checksum across multiple byte slices (one per block)
// without concatenating them first.
type Digest struct {
	h *xxhash.Digest
}

// New creates an empty Digest.
func New() *Digest {
	return &Digest{h: xxhash.New()}
}

// Write feeds block bytes into the running digest, in the order the blocks
// appear in their pool.
func (d *Digest) Write(data []byte) {
	_, _ = d.h.Write(data)
}

// Sum64 returns the digest accumulated so far.
func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}
