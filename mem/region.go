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

// Package mem provides growable backing regions that emulate an OS break
// pointer: a single contiguous byte range whose end only moves forward.
package mem

import (
	"errors"
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// DefaultLimit is the default reservation size for a region (20MB).
const DefaultLimit = 20 << 20

// ErrNoSpace is returned by Sbrk when the reservation is exhausted.
var ErrNoSpace = errors.New("mem: out of address space")

// Region is a contiguous, monotonically growing byte range.
//
// Offsets into the region are stable: Sbrk never moves existing bytes.
// The content of a newly granted range is arbitrary, not zeroed.
type Region interface {
	// Sbrk moves the region end forward by delta bytes and returns the
	// offset of the start of the newly added range.
	Sbrk(delta int) (int, error)

	// Bytes returns the current region contents. Its length equals Size.
	Bytes() []byte

	// Size returns the current region size in bytes.
	Size() int
}

// sliceRegion reserves the whole limit up front as one backing array and
// grows by reslicing, so the base never moves.
type sliceRegion struct {
	buf   []byte
	limit int
}

// NewRegion creates a slice-backed region with the given reservation limit.
// A limit <= 0 selects DefaultLimit.
func NewRegion(limit int) Region {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &sliceRegion{
		buf:   dirtmake.Bytes(0, limit),
		limit: limit,
	}
}

func (r *sliceRegion) Sbrk(delta int) (int, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("mem: invalid sbrk delta %d", delta)
	}
	old := len(r.buf)
	if old+delta > r.limit {
		return 0, ErrNoSpace
	}
	r.buf = r.buf[:old+delta]
	return old, nil
}

func (r *sliceRegion) Bytes() []byte { return r.buf }

func (r *sliceRegion) Size() int { return len(r.buf) }
