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

import "fmt"

// Check walks the whole heap and verifies its structural invariants:
// matching header/footer words, block size floor and alignment, no two
// adjacent free blocks, well-formed sentinels, and a cursor that points at a
// real block. It returns the first violation found, or nil. On an
// uninitialized allocator it returns nil.
//
// Check is meant for tests and debugging; it is linear in the block count.
func (a *Allocator) Check() error {
	if a.start == 0 {
		return nil
	}

	pro := a.blockAt(a.start)
	if pro.size() != dwordSize || !pro.allocated() {
		return fmt.Errorf("malloc: bad prologue header %#x", pro.header())
	}
	if pro.header() != a.load(pro.off) {
		return fmt.Errorf("malloc: prologue header/footer mismatch")
	}

	cursorSeen := a.cursor == a.start
	prevFree := false

	b := pro.next()
	for ; b.size() > 0; b = b.next() {
		if b.off%dwordSize != 0 {
			return fmt.Errorf("malloc: block at %d not aligned", b.off)
		}
		size := b.size()
		if size < minBlockSize || size%dwordSize != 0 {
			return fmt.Errorf("malloc: block at %d has bad size %d", b.off, size)
		}
		if b.off+size > len(a.heap) {
			return fmt.Errorf("malloc: block at %d overruns heap end", b.off)
		}
		if footer := a.load(b.off + size - dwordSize); footer != b.header() {
			return fmt.Errorf("malloc: block at %d header %#x != footer %#x",
				b.off, b.header(), footer)
		}
		if !b.allocated() {
			if prevFree {
				return fmt.Errorf("malloc: adjacent free blocks at %d", b.off)
			}
			prevFree = true
		} else {
			prevFree = false
		}
		if b.off == a.cursor {
			cursorSeen = true
		}
	}

	if !b.allocated() {
		return fmt.Errorf("malloc: bad epilogue header %#x", b.header())
	}
	if b.off != len(a.heap) {
		return fmt.Errorf("malloc: epilogue at %d, heap ends at %d", b.off, len(a.heap))
	}
	if !cursorSeen {
		return fmt.Errorf("malloc: cursor %d points inside a block", a.cursor)
	}
	return nil
}

// Available returns the total free payload bytes currently in the heap.
// It walks the block list.
func (a *Allocator) Available() int {
	if a.start == 0 {
		return 0
	}
	total := 0
	for b := a.blockAt(a.start).next(); b.size() > 0; b = b.next() {
		if !b.allocated() {
			total += b.size() - dwordSize
		}
	}
	return total
}

// HeapSize returns the current size of the backing region in bytes. It only
// ever grows.
func (a *Allocator) HeapSize() int {
	return a.region.Size()
}
