// Copyright 2026 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package malloc implements a dynamic allocator over a single contiguous
// growable region, with no dependency on the Go heap for the allocated
// payloads.
//
// The heap is an implicit bidirectional list: every block carries a word
// header and an identical word footer packing (size, allocated), so both
// neighbors are reachable in O(1). Free blocks are found by next fit: the
// search resumes where the previous one succeeded, and wraps around once.
// Adjacent free blocks are merged eagerly on every Free.
//
// An Allocator is not safe for concurrent use.
package malloc

import (
	"github.com/cloudwego/memx/mem"
)

// DefaultChunkSize is the minimum amount the heap grows by (4KB).
const DefaultChunkSize = 1 << 12

// Ptr is the handle to an allocated block: the offset of its payload inside
// the backing region. Nil is the null handle; no payload ever sits at
// offset 0.
type Ptr int

// Nil is the null Ptr.
const Nil Ptr = 0

// Allocator owns the heap layout over one backing region.
type Allocator struct {
	region mem.Region
	heap   []byte // current region contents, refreshed after every grow

	// start is the payload offset of the prologue block; the first real
	// block begins right after it. Zero means not yet initialized.
	start int

	// cursor is the next-fit position: the payload offset the next search
	// starts from. Always a valid block.
	cursor int
}

// New binds an allocator to a region without touching it. The heap is laid
// out by Init, or lazily by the first Malloc.
func New(r mem.Region) *Allocator {
	return &Allocator{region: r}
}

// Init lays out the boundary sentinels and grows the heap by
// DefaultChunkSize. A failure here means the region cannot supply even the
// initial reservation; the allocator is left unusable and every Malloc will
// return Nil.
func (a *Allocator) Init() error {
	base, err := a.region.Sbrk(4 * wordSize)
	if err != nil {
		return err
	}
	a.heap = a.region.Bytes()

	a.store(base, 0)                                // alignment padding
	a.store(base+1*wordSize, pack(dwordSize, true)) // prologue header
	a.store(base+2*wordSize, pack(dwordSize, true)) // prologue footer
	a.store(base+3*wordSize, pack(0, true))         // epilogue header
	a.start = base + 2*wordSize
	a.cursor = a.start

	if _, err := a.grow(DefaultChunkSize / wordSize); err != nil {
		a.start = 0
		a.heap = nil
		return err
	}
	return nil
}

// grow extends the heap by the given number of words, rounded up to an even
// count to keep double-word alignment. The new free block's header lands on
// the old epilogue word, and a fresh epilogue is written at the new end.
// A region failure is recoverable: the heap is left exactly as it was.
func (a *Allocator) grow(words int) (block, error) {
	if words%2 != 0 {
		words++
	}
	size := words * wordSize
	off, err := a.region.Sbrk(size)
	if err != nil {
		return block{}, err
	}
	a.heap = a.region.Bytes()

	b := a.blockAt(off)
	b.setHeader(size, false)
	b.setFooter(size, false)
	b.next().setHeader(0, true) // new epilogue

	return a.coalesce(b), nil
}

// findFit searches for a free block of at least adjSize bytes, next-fit:
// forward from the cursor to the epilogue, then from the heap start up to
// where the search began. The cursor follows the scan, so a later search
// resumes from the last hit.
func (a *Allocator) findFit(adjSize int) (block, bool) {
	orig := a.cursor

	for b := a.blockAt(a.cursor); b.size() > 0; b = b.next() {
		a.cursor = b.off
		if !b.allocated() && b.size() >= adjSize {
			return b, true
		}
	}
	for b := a.blockAt(a.start); b.off < orig; b = b.next() {
		a.cursor = b.off
		if !b.allocated() && b.size() >= adjSize {
			return b, true
		}
	}

	a.cursor = orig
	return block{}, false
}

// place marks adjSize bytes of the free block b allocated, splitting off the
// remainder as a new free block when it is large enough to stand alone.
// A remainder below minBlockSize is absorbed into the allocation.
func (a *Allocator) place(b block, adjSize int) {
	csize := b.size()

	if csize-adjSize >= minBlockSize {
		b.setHeader(adjSize, true)
		b.setFooter(adjSize, true)
		rem := b.next()
		rem.setHeader(csize-adjSize, false)
		rem.setFooter(csize-adjSize, false)
	} else {
		b.setHeader(csize, true)
		b.setFooter(csize, true)
	}
}

// coalesce merges b with whichever of its neighbors are free, keyed on the
// previous block's footer flag and the next block's header flag. The
// sentinels are permanently allocated, so no case runs past either heap end.
// If the next-fit cursor pointed into the merged range it is moved to the
// merged block's start.
func (a *Allocator) coalesce(b block) block {
	prevAlloc := b.prevAllocated()
	nextAlloc := b.next().allocated()
	size := b.size()

	switch {
	case prevAlloc && nextAlloc:
		return b

	case prevAlloc && !nextAlloc:
		size += b.next().size()
		b.setHeader(size, false)
		b.setFooter(size, false)

	case !prevAlloc && nextAlloc:
		size += b.prev().size()
		b = b.prev()
		b.setHeader(size, false)
		b.setFooter(size, false)

	default:
		size += b.prev().size() + b.next().size()
		b = b.prev()
		b.setHeader(size, false)
		b.setFooter(size, false)
	}

	if a.cursor > b.off && a.cursor < b.off+size {
		a.cursor = b.off
	}
	return b
}

// Malloc allocates a block with a payload of at least size bytes and returns
// its handle, or Nil if size <= 0 or the region cannot grow enough. The
// payload content is arbitrary, not zeroed. The returned handle is aligned
// to the double-word granularity.
func (a *Allocator) Malloc(size int) Ptr {
	if size <= 0 {
		return Nil
	}
	if a.start == 0 {
		if err := a.Init(); err != nil {
			return Nil
		}
	}

	// Round up to granularity with header+footer overhead included.
	var adjSize int
	if size <= dwordSize {
		adjSize = 2 * dwordSize
	} else {
		adjSize = dwordSize * ((size + dwordSize + dwordSize - 1) / dwordSize)
	}

	if b, ok := a.findFit(adjSize); ok {
		a.place(b, adjSize)
		return Ptr(b.off)
	}

	growSize := adjSize
	if growSize < DefaultChunkSize {
		growSize = DefaultChunkSize
	}
	b, err := a.grow(growSize / wordSize)
	if err != nil {
		return Nil
	}
	a.place(b, adjSize)
	return Ptr(b.off)
}

// Free returns the block to the heap and merges it with any free neighbor.
// Free(Nil) is a no-op. Freeing a handle twice, or a handle that did not
// come from Malloc, corrupts the heap.
func (a *Allocator) Free(p Ptr) {
	if p == Nil {
		return
	}
	b := a.blockAt(int(p))
	size := b.size()
	b.setHeader(size, false)
	b.setFooter(size, false)
	a.coalesce(b)
}

// Realloc resizes the block at p to a payload of at least size bytes.
// Realloc(Nil, size) is Malloc(size); Realloc(p, 0) is Free(p) and returns
// Nil. Otherwise the block is always relocated: a new block is allocated,
// min(size, the old block's recorded size) bytes are copied, and the old
// block is freed. On allocation failure the old block is left intact and
// Nil is returned.
func (a *Allocator) Realloc(p Ptr, size int) Ptr {
	if size == 0 {
		a.Free(p)
		return Nil
	}
	if p == Nil {
		return a.Malloc(size)
	}

	np := a.Malloc(size)
	if np == Nil {
		return Nil
	}

	n := a.blockAt(int(p)).size()
	if size < n {
		n = size
	}
	copy(a.heap[int(np):int(np)+n], a.heap[int(p):int(p)+n])

	a.Free(p)
	return np
}

// Bytes returns the payload of the block at p as a window into the region.
// The window stays valid until the block is freed or reallocated.
func (a *Allocator) Bytes(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	b := a.blockAt(int(p))
	return a.heap[b.off : b.off+b.size()-dwordSize]
}

// Size returns the usable payload size of the block at p, which is at least
// the size it was allocated with.
func (a *Allocator) Size(p Ptr) int {
	if p == Nil {
		return 0
	}
	return a.blockAt(int(p)).size() - dwordSize
}
