// Package linestorage implements CompressedLinePositionStorage: the
// append/at/pop_back state machine over a 32-bit and a 64-bit blockpool.Pool,
// transitioning permanently to the 64-bit pool the first time an appended
// offset reaches 2^32, plus a caller-owned Cache accelerating sequential
// reads.
//
// Storage is not safe for concurrent mutation, and not safe for concurrent
// reads while a mutation is in flight — it owns no internal synchronization
// (spec: a single writer calls Append/PopBack; readers may share the
// storage across goroutines only once it is quiescent, each with its own
// Cache).
package linestorage

import (
	"errors"
	"fmt"

	"github.com/kloggish/clpstore/blockpool"
	"github.com/kloggish/clpstore/internal/checksum"
	"github.com/kloggish/clpstore/lineenc"
	"github.com/kloggish/clpstore/position"
)

// BlockSize is the number of lines held per block before it seals.
const BlockSize = blockpool.BlockSize

// longThreshold is the first offset that no longer fits a uint32: 2^32.
const longThreshold = uint64(1) << 32

var (
	// ErrOutOfRange is returned by At when index >= Size().
	ErrOutOfRange = errors.New("linestorage: line index out of range")

	// ErrOrderingViolation is returned by Append when pos < the last
	// appended position (and pos is not the initial 0). Per spec this is a
	// precondition the caller is contractually required to honor; Storage
	// still reports it instead of corrupting the block stream silently.
	ErrOrderingViolation = errors.New("linestorage: offsets must be appended in non-decreasing order")
)

// Cache is a caller-owned record that accelerates sequential At calls: when
// the next request is for Index+1 and it isn't the first line of a block,
// At resumes decoding from Position/Cursor instead of re-walking the block
// from its seed.
//
// Supplying the same Cache value across calls is the caller's contract for
// the speedup; supplying a stale one (from a different Storage, or from
// before a PopBack) cannot corrupt memory but may yield a wrong answer,
// since At trusts Index/Position/Cursor without re-validating them against
// the block.
type Cache struct {
	Index    position.LineNumber
	Position position.LineOffset
	Cursor   int
}

// Storage is the append/read/pop state machine of spec.md §3-§4: two block
// pools (32-bit for offsets below 2^32, 64-bit beyond), the append cursor
// bookkeeping needed for a one-step PopBack, and the permanent
// small-to-long pool transition.
//
// Storage is move-only in spirit: copying a Storage by value aliases both
// pools' internal slices through their pointers, so a Storage value should
// have exactly one owner at a time, the way the teacher's NumericDecoder
// documents itself as not reusable/not thread-safe.
type Storage struct {
	pool32 *blockpool.Pool[uint32]
	pool64 *blockpool.Pool[uint64]

	nbLines    position.LineNumber
	currentPos position.LineOffset

	firstLongLine    position.LineNumber
	hasFirstLongLine bool

	blockIndex     int
	longBlockIndex int

	blockOffset         int
	previousBlockOffset int
}

// New creates an empty storage.
func New() *Storage {
	return &Storage{
		pool32: blockpool.New[uint32](),
		pool64: blockpool.New[uint64](),
	}
}

// Size returns the number of lines recorded.
func (s *Storage) Size() int {
	return int(s.nbLines)
}

// AllocatedSize returns the total bytes held by both pools.
func (s *Storage) AllocatedSize() int {
	return s.pool32.AllocatedSize() + s.pool64.AllocatedSize()
}

// Checksum computes an xxHash64 digest over each block's visible buffer,
// pool32 then pool64: the open block's full reserved capacity and each sealed
// block's trimmed length, so bytes past the last written entry are included
// as they stand. It serves a caller that persists
// a re-derived index elsewhere and wants to detect a stale copy. This core
// owns no on-disk format itself; the digest is a primitive for that
// external collaborator, not a snapshot format.
func (s *Storage) Checksum() uint64 {
	d := checksum.New()
	for i := 0; i < s.pool32.NumBlocks(); i++ {
		d.Write(s.pool32.At(i))
	}
	for i := 0; i < s.pool64.NumBlocks(); i++ {
		d.Write(s.pool64.At(i))
	}

	return d.Sum64()
}

// usesLongPool reports whether index routes through the 64-bit pool.
func (s *Storage) usesLongPool(index position.LineNumber) bool {
	return s.hasFirstLongLine && index >= s.firstLongLine
}

// Append records pos as the next line's offset.
//
// Preconditions (spec.md §4.4): pos >= the last appended position, or the
// storage is empty and pos == 0.
func (s *Storage) Append(pos position.LineOffset) error {
	if s.nbLines > 0 && pos < s.currentPos {
		return fmt.Errorf("%w: got %d after %d", ErrOrderingViolation, pos, s.currentPos)
	}

	s.previousBlockOffset = s.blockOffset

	storeLong := uint64(pos) >= longThreshold
	if storeLong && !s.hasFirstLongLine {
		s.firstLongLine = s.nbLines
		s.hasFirstLongLine = true
		s.blockOffset = 0
		// The 32-bit pool's open-block cursor we just saved above no longer
		// describes the block this append is about to land in (a brand new
		// 64-bit block); clear it so a PopBack of this exact append frees
		// the new block instead of mistakenly rewinding into the old pool.
		s.previousBlockOffset = 0
	}

	if s.blockOffset == 0 {
		if !storeLong {
			s.blockIndex, s.blockOffset = s.pool32.AllocateBlock(uint32(pos))
		} else {
			s.longBlockIndex, s.blockOffset = s.pool64.AllocateBlock(uint64(pos))
		}
	} else if !storeLong {
		block := s.pool32.At(s.blockIndex)
		s.blockOffset = lineenc.Encode[uint32](block, s.blockOffset, uint64(s.currentPos), uint64(pos))
	} else {
		block := s.pool64.At(s.longBlockIndex)
		s.blockOffset = lineenc.Encode[uint64](block, s.blockOffset, uint64(s.currentPos), uint64(pos))
	}

	s.currentPos = pos
	s.nbLines++

	s.sealIfFull(storeLong)

	return nil
}

// sealIfFull trims the just-written block to its used bytes plus slack for
// one future absolute rewrite, once it has taken on its BlockSize-th line.
func (s *Storage) sealIfFull(storeLong bool) {
	var linesInBlock position.LineNumber
	if !storeLong {
		linesInBlock = s.nbLines % BlockSize
	} else {
		linesInBlock = (s.nbLines - s.firstLongLine) % BlockSize
	}

	if linesInBlock != 0 {
		return
	}

	effectiveSize := s.previousBlockOffset
	if !storeLong {
		s.pool32.ResizeLastBlock(effectiveSize + blockpool.PaddedElementSize[uint32]())
	} else {
		s.pool64.ResizeLastBlock(effectiveSize + blockpool.PaddedElementSize[uint64]())
	}

	s.blockOffset = 0
	s.previousBlockOffset = effectiveSize
}

// AppendList appends every offset in positions, in order.
func (s *Storage) AppendList(positions []position.LineOffset) error {
	for _, pos := range positions {
		if err := s.Append(pos); err != nil {
			return err
		}
	}

	return nil
}

// At returns the absolute offset of line index, optionally accelerated by a
// caller-supplied Cache shared across a sequence of ascending, mostly
// consecutive calls.
func (s *Storage) At(index position.LineNumber, cache *Cache) (position.LineOffset, error) {
	if index >= s.nbLines {
		return 0, fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, index, s.nbLines)
	}

	long := s.usesLongPool(index)

	var effective position.LineNumber
	if long {
		effective = index - s.firstLongLine
	} else {
		effective = index
	}

	blockNo := int(effective / BlockSize)
	within := int(effective % BlockSize)

	var abs uint64
	var cursor int

	if cache != nil && cache.Index+1 == index && within != 0 {
		abs, cursor = decodeOne(long, s.blockAt(long, blockNo), cache.Cursor, uint64(cache.Position))
	} else {
		block := s.blockAt(long, blockNo)

		if long {
			abs, cursor = lineenc.DecodeSeed[uint64](block)
		} else {
			abs, cursor = lineenc.DecodeSeed[uint32](block)
		}

		for i := 0; i < within; i++ {
			abs, cursor = decodeOne(long, block, cursor, abs)
		}
	}

	result := position.LineOffset(abs)

	if cache != nil {
		cache.Index = index
		cache.Position = result
		cache.Cursor = cursor
	}

	return result, nil
}

func (s *Storage) blockAt(long bool, blockNo int) []byte {
	if long {
		return s.pool64.At(blockNo)
	}

	return s.pool32.At(blockNo)
}

func decodeOne(long bool, block []byte, cursor int, prev uint64) (uint64, int) {
	if long {
		return lineenc.Decode[uint64](block, cursor, prev)
	}

	return lineenc.Decode[uint32](block, cursor, prev)
}

// PopBack removes the last appended line.
//
// A second consecutive PopBack with no intervening Append is undefined
// (spec.md §4.6/§9): the single-slot rollback only remembers one prior
// cursor.
func (s *Storage) PopBack() error {
	if s.nbLines == 0 {
		return errors.New("linestorage: PopBack on empty storage")
	}

	poppedLong := s.usesLongPool(s.nbLines - 1)

	if s.previousBlockOffset > 0 {
		// The popped entry did not start a new block: just rewind the cursor.
		s.blockOffset = s.previousBlockOffset
		s.previousBlockOffset = 0
	} else {
		// The popped entry was the first line of a freshly allocated block.
		if !poppedLong {
			s.blockIndex = s.pool32.FreeLastBlock()
		} else {
			s.longBlockIndex = s.pool64.FreeLastBlock()
		}

		s.blockOffset = 0
	}

	s.nbLines--

	if poppedLong && s.hasFirstLongLine && s.nbLines == s.firstLongLine {
		// The popped entry was the one that triggered the 32->64 transition;
		// resume appending into the 32-bit pool.
		s.hasFirstLongLine = false

		if within := int(s.nbLines % BlockSize); within != 0 {
			// The 32-bit block the transition left open is still open: put the
			// append cursor back at the end of its last entry.
			block := s.pool32.At(s.blockIndex)
			abs, cursor := lineenc.DecodeSeed[uint32](block)
			for i := 1; i < within; i++ {
				abs, cursor = lineenc.Decode[uint32](block, cursor, abs)
			}
			s.blockOffset = cursor
		}
	}

	if s.nbLines > 0 {
		pos, err := s.At(s.nbLines-1, nil)
		if err != nil {
			return err
		}

		s.currentPos = pos
	} else {
		s.currentPos = 0
	}

	return nil
}
