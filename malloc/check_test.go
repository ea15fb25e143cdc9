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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/memx/mem"
)

func TestCheckUninitialized(t *testing.T) {
	a := New(mem.NewRegion(0))
	assert.NoError(t, a.Check())
}

func TestCheckDetectsCorruption(t *testing.T) {
	t.Run("HeaderFooterMismatch", func(t *testing.T) {
		a := newTestAllocator(t)
		p := a.Malloc(8)
		b := a.blockAt(int(p))
		b.setFooter(b.size(), false) // flag differs from header
		assert.ErrorContains(t, a.Check(), "footer")
	})

	t.Run("AdjacentFree", func(t *testing.T) {
		a := newTestAllocator(t)
		p := a.Malloc(8)
		// clear the flag without coalescing: the block and the remainder
		// of the chunk become two adjacent free blocks
		b := a.blockAt(int(p))
		b.setHeader(b.size(), false)
		b.setFooter(b.size(), false)
		assert.ErrorContains(t, a.Check(), "adjacent free")
	})

	t.Run("BadEpilogue", func(t *testing.T) {
		a := newTestAllocator(t)
		a.store(len(a.heap)-wordSize, pack(0, false))
		assert.ErrorContains(t, a.Check(), "epilogue")
	})

	t.Run("StrayCursor", func(t *testing.T) {
		a := newTestAllocator(t)
		a.cursor += wordSize // mid-block
		assert.ErrorContains(t, a.Check(), "cursor")
	})
}

func TestAvailable(t *testing.T) {
	a := newTestAllocator(t)
	initial := a.Available()
	require.Equal(t, DefaultChunkSize-dwordSize, initial)

	p := a.Malloc(100) // 112-byte block
	assert.Equal(t, initial-112, a.Available())

	a.Free(p)
	assert.Equal(t, initial, a.Available())
}

func TestHeapSizeMonotonic(t *testing.T) {
	a := newTestAllocator(t)
	prev := a.HeapSize()

	for i := 0; i < 8; i++ {
		p := a.Malloc(DefaultChunkSize)
		require.NotEqual(t, Nil, p)
		assert.GreaterOrEqual(t, a.HeapSize(), prev)
		prev = a.HeapSize()
	}
}
