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

package malloc

import (
	"testing"
)

func BenchmarkClassAllocateFree(b *testing.B) {
	allocator := NewClassAllocator(64 * MB)
	for i := 0; i < b.N; i++ {
		_, dec, _ := allocator.Allocate(4096, NoClear)
		dec.Deallocate(0)
	}
}

func BenchmarkParallelClassAllocateFree(b *testing.B) {
	allocator := NewClassAllocator(64 * MB)
	b.RunParallel(func(pb *testing.PB) {
		for size := uint64(1); pb.Next(); size++ {
			_, dec, _ := allocator.Allocate(size%65536, NoClear)
			dec.Deallocate(0)
		}
	})
}

func BenchmarkMmapAllocateFree(b *testing.B) {
	allocator, err := NewMmapAllocator()
	if err != nil {
		b.Skip(err)
	}
	for i := 0; i < b.N; i++ {
		_, dec, _ := allocator.Allocate(4096, 0)
		dec.Deallocate(0)
	}
}
