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

// Allocator hands out raw byte storage. Every successful Allocate returns
// the Deallocator that releases exactly that allocation.
type Allocator interface {
	Allocate(size uint64, hints Hints) ([]byte, Deallocator, error)
}

// Deallocator releases one allocation. It must be called at most once.
type Deallocator interface {
	Deallocate(hints Hints)
}

type Hints uint64

const (
	// NoClear skips zeroing recycled memory.
	NoClear Hints = 1 << iota
	// DoNotReuse asks the allocator to release memory instead of pooling it.
	DoNotReuse
)

const (
	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

type DeallocatorFunc func(Hints)

func (f DeallocatorFunc) Deallocate(hints Hints) {
	f(hints)
}

var noopDeallocator = DeallocatorFunc(func(Hints) {})

type chainDeallocator []Deallocator

// ChainDeallocator returns a Deallocator that runs decs in order.
func ChainDeallocator(decs ...Deallocator) Deallocator {
	return chainDeallocator(decs)
}

func (c chainDeallocator) Deallocate(hints Hints) {
	for _, dec := range c {
		dec.Deallocate(hints)
	}
}
