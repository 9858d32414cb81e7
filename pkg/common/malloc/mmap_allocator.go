// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux || darwin

package malloc

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

// MmapAllocator maps anonymous pages for every allocation and unmaps them
// on deallocation. The memory lives outside the Go heap, so it must never
// hold Go pointers.
type MmapAllocator struct {
	pageSize        uint64
	deallocatorPool *ClosureDeallocatorPool[mmapDeallocatorArgs, *mmapDeallocatorArgs]
}

type mmapDeallocatorArgs struct {
	mapped []byte
}

func NewMmapAllocator() (*MmapAllocator, error) {
	return &MmapAllocator{
		pageSize: uint64(os.Getpagesize()),
		deallocatorPool: NewClosureDeallocatorPool(
			func(_ Hints, args *mmapDeallocatorArgs) {
				if err := unix.Munmap(args.mapped); err != nil {
					panic(err)
				}
			},
		),
	}, nil
}

var _ Allocator = new(MmapAllocator)

func (m *MmapAllocator) Allocate(size uint64, _ Hints) ([]byte, Deallocator, error) {
	if size == 0 {
		return nil, noopDeallocator, nil
	}
	length := (size + m.pageSize - 1) / m.pageSize * m.pageSize
	mapped, err := unix.Mmap(
		-1, 0,
		int(length),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, nil, moerr.NewOOMNoCtx().WithDetail(err.Error())
	}
	// fresh anonymous mappings are zero filled, nothing to clear
	return mapped[:size], m.deallocatorPool.Get(mmapDeallocatorArgs{
		mapped: mapped,
	}), nil
}
