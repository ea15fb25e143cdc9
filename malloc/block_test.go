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
)

func TestPack(t *testing.T) {
	tests := []struct {
		size      int
		allocated bool
		want      uint32
	}{
		{0, true, 0x1},
		{16, false, 0x10},
		{16, true, 0x11},
		{4096, false, 0x1000},
		{4096, true, 0x1001},
	}
	for _, tt := range tests {
		w := pack(tt.size, tt.allocated)
		assert.Equal(t, tt.want, w)
		assert.Equal(t, tt.size, unpackSize(w))
		assert.Equal(t, tt.allocated, unpackAlloc(w))
	}
}

func TestBlockTraversal(t *testing.T) {
	a := newTestAllocator(t)

	p1 := a.Malloc(8)
	p2 := a.Malloc(24)
	require.NotEqual(t, Nil, p2)

	b1 := a.blockAt(int(p1))
	b2 := a.blockAt(int(p2))

	assert.Equal(t, 16, b1.size())
	assert.Equal(t, 32, b2.size())
	assert.True(t, b1.allocated())

	// next/prev are inverses
	assert.Equal(t, b2.off, b1.next().off)
	assert.Equal(t, b1.off, b2.prev().off)
	assert.Equal(t, b2.off, b2.next().prev().off)

	// prev off the first block lands on the prologue
	assert.Equal(t, a.start, b1.prev().off)
	assert.True(t, b1.prevAllocated())

	// header and footer always agree
	assert.Equal(t, b1.header(), a.load(b1.off+b1.size()-dwordSize))
}

func TestBlockSetHeaderFooter(t *testing.T) {
	a := newTestAllocator(t)

	p := a.Malloc(8)
	b := a.blockAt(int(p))

	b.setHeader(16, false)
	b.setFooter(16, false)
	assert.Equal(t, 16, b.size())
	assert.False(t, b.allocated())
	assert.Equal(t, b.header(), a.load(b.off+8))

	b.setHeader(16, true)
	b.setFooter(16, true)
	assert.True(t, b.allocated())
}
