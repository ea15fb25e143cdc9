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

package malloc

import "encoding/binary"

const (
	// wordSize is the size of a header or footer word.
	wordSize = 4

	// dwordSize is the alignment granularity. Every block size is a
	// multiple of it and every payload starts on a multiple of it.
	dwordSize = 8

	// minBlockSize is header + footer + the minimum payload.
	minBlockSize = 2 * dwordSize
)

// pack combines a block size and its allocated flag into one word.
// The size is a multiple of dwordSize, so the low three bits are free
// and bit 0 carries the flag.
func pack(size int, allocated bool) uint32 {
	w := uint32(size)
	if allocated {
		w |= 1
	}
	return w
}

func unpackSize(w uint32) int { return int(w &^ 0x7) }

func unpackAlloc(w uint32) bool { return w&1 == 1 }

func (a *Allocator) load(off int) uint32 {
	return binary.LittleEndian.Uint32(a.heap[off:])
}

func (a *Allocator) store(off int, w uint32) {
	binary.LittleEndian.PutUint32(a.heap[off:], w)
}

// block is a typed cursor over one heap block, identified by the offset of
// its payload. The word before the payload is the header; the footer sits in
// the last word of the block. Header and footer always hold the same value,
// which is what makes prev an O(1) step.
type block struct {
	a   *Allocator
	off int
}

func (a *Allocator) blockAt(off int) block { return block{a: a, off: off} }

func (b block) header() uint32 { return b.a.load(b.off - wordSize) }

func (b block) size() int { return unpackSize(b.header()) }

func (b block) allocated() bool { return unpackAlloc(b.header()) }

// next steps to the following block. On the last real block it lands on the
// end sentinel, whose size is 0.
func (b block) next() block { return block{a: b.a, off: b.off + b.size()} }

// prev steps to the preceding block via its footer, the word immediately
// before this block's header.
func (b block) prev() block {
	return block{a: b.a, off: b.off - unpackSize(b.a.load(b.off-dwordSize))}
}

// prevAllocated reads the preceding block's footer flag without computing
// its start.
func (b block) prevAllocated() bool { return unpackAlloc(b.a.load(b.off - dwordSize)) }

func (b block) setHeader(size int, allocated bool) {
	b.a.store(b.off-wordSize, pack(size, allocated))
}

// setFooter takes the size explicitly so a new footer can be written before
// (or without) updating the header.
func (b block) setFooter(size int, allocated bool) {
	b.a.store(b.off+size-dwordSize, pack(size, allocated))
}
