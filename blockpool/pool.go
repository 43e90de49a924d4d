// Package blockpool implements the growable arena of fixed-capacity
// blocks a CompressedLinePositionStorage appends its encoded lines into.
//
// Each block is a contiguous byte buffer whose first sizeof(T) bytes hold
// the absolute seed offset of the block's first line, followed by a
// variable-length stream of encoded deltas/absolutes for up to
// BlockSize-1 further lines (see package lineenc).
//
// Blocks are append-only once sealed: only the last block is ever
// mutated in place (ResizeLastBlock) or removed (FreeLastBlock). This
// admits a trivial arena with no intrusive metadata — a plain slice of
// buffers.
package blockpool

import (
	"unsafe"

	"github.com/kloggish/clpstore/endian"
	"github.com/kloggish/clpstore/position"
	"github.com/kloggish/clpstore/internal/pool"
)

// BlockSize is the number of lines held by a single block before it seals
// and a new one opens.
const BlockSize = 256

// NoBlock is the sentinel index returned by FreeLastBlock when the pool
// becomes empty.
const NoBlock = -1

// PaddedElementSize returns sizeof(u16) + alignof(T) + sizeof(T): the extra
// space reserved past a sealed block's used bytes so that, if its final
// entry is popped and re-appended as an absolute, the Long form always fits
// without reallocating the block.
func PaddedElementSize[T position.Width]() int {
	var zero T

	return int(unsafe.Sizeof(uint16(0))) + int(unsafe.Alignof(zero)) + int(unsafe.Sizeof(zero))
}

// Pool is a growable arena of BlockSize-capacity blocks seeded with an
// absolute T value. T is uint32 for the "small offset" pool or uint64 for
// the "long offset" pool; the two are structurally identical, so one
// generic implementation serves both rather than duplicated code per width.
type Pool[T position.Width] struct {
	blocks []*pool.BlockBuffer
}

// New creates an empty block pool.
func New[T position.Width]() *Pool[T] {
	return &Pool[T]{}
}

func (p *Pool[T]) capacity() int {
	return BlockSize * PaddedElementSize[T]()
}

func (p *Pool[T]) acquire() *pool.BlockBuffer {
	switch p.capacity() {
	case pool.Block32Capacity:
		return pool.GetBlock32()
	case pool.Block64Capacity:
		return pool.GetBlock64()
	default:
		return pool.NewBlockBuffer(p.capacity())
	}
}

func (p *Pool[T]) release(bb *pool.BlockBuffer) {
	switch p.capacity() {
	case pool.Block32Capacity:
		pool.PutBlock32(bb)
	case pool.Block64Capacity:
		pool.PutBlock64(bb)
	}
}

// AllocateBlock grows the pool by one block, writes seed to its first
// sizeof(T) bytes in native byte order, and returns the new block's index
// together with the byte cursor positioned immediately after the seed.
func (p *Pool[T]) AllocateBlock(seed T) (blockIndex int, cursor int) {
	bb := p.acquire()
	endian.PutNative(bb.Bytes(), seed)
	p.blocks = append(p.blocks, bb)

	return len(p.blocks) - 1, int(unsafe.Sizeof(seed))
}

// ResizeLastBlock shrinks the last block's visible backing storage to
// newLen bytes. The change is stable across subsequent AllocateBlock calls
// since each block owns an independent buffer.
func (p *Pool[T]) ResizeLastBlock(newLen int) {
	p.blocks[len(p.blocks)-1].SetLength(newLen)
}

// FreeLastBlock removes the last block and returns the pool buffer to the
// shared buffer pool for reuse by the next AllocateBlock of the same
// width. It returns the index of the now-last block, or NoBlock if the
// pool is now empty.
func (p *Pool[T]) FreeLastBlock() int {
	n := len(p.blocks)
	if n == 0 {
		return NoBlock
	}

	last := p.blocks[n-1]
	p.blocks = p.blocks[:n-1]
	p.release(last)

	if len(p.blocks) == 0 {
		return NoBlock
	}

	return len(p.blocks) - 1
}

// At returns the byte buffer backing the block at blockIndex.
func (p *Pool[T]) At(blockIndex int) []byte {
	return p.blocks[blockIndex].Bytes()
}

// NumBlocks returns the number of blocks currently held.
func (p *Pool[T]) NumBlocks() int {
	return len(p.blocks)
}

// AllocatedSize returns the total bytes held across all blocks: the full
// capacity of each block's backing array. ResizeLastBlock only shortens a
// block's visible length and never releases backing storage, so the value
// does not drop when a block seals.
func (p *Pool[T]) AllocatedSize() int {
	total := 0
	for _, bb := range p.blocks {
		total += bb.Cap()
	}

	return total
}
