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

//go:build unix

package mem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapRegion keeps the reservation in an anonymous private mapping, off the
// Go heap. Growth is the same length bump as sliceRegion; the mapping itself
// is created once at the limit size.
type MmapRegion struct {
	data []byte
	used int
}

// NewMmapRegion creates a region backed by an anonymous mmap of limit bytes.
// A limit <= 0 selects DefaultLimit. Call Close to release the mapping.
func NewMmapRegion(limit int) (*MmapRegion, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	data, err := unix.Mmap(-1, 0, limit,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mem: mmap %d bytes: %w", limit, err)
	}
	return &MmapRegion{data: data}, nil
}

func (r *MmapRegion) Sbrk(delta int) (int, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("mem: invalid sbrk delta %d", delta)
	}
	if r.data == nil {
		return 0, ErrNoSpace
	}
	if r.used+delta > len(r.data) {
		return 0, ErrNoSpace
	}
	old := r.used
	r.used += delta
	return old, nil
}

func (r *MmapRegion) Bytes() []byte { return r.data[:r.used] }

func (r *MmapRegion) Size() int { return r.used }

// Close unmaps the reservation. The region is unusable afterwards.
func (r *MmapRegion) Close() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	r.used = 0
	return err
}
