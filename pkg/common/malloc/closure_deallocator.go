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

import "sync"

type ClosureDeallocator[T any, P interface{ *T }] struct {
	argument T
	fn       func(Hints, P)
	pool     *ClosureDeallocatorPool[T, P]
}

func (c *ClosureDeallocator[T, P]) Deallocate(hints Hints) {
	c.fn(hints, P(&c.argument))
	if c.pool != nil {
		var zero T
		c.argument = zero
		c.pool.pool.Put(c)
	}
}

// ClosureDeallocatorPool recycles ClosureDeallocator values so that
// wrapping allocators do not allocate a closure per allocation.
type ClosureDeallocatorPool[T any, P interface{ *T }] struct {
	deallocate func(Hints, P)
	pool       sync.Pool
}

func NewClosureDeallocatorPool[T any, P interface{ *T }](
	deallocate func(Hints, P),
) *ClosureDeallocatorPool[T, P] {
	ret := &ClosureDeallocatorPool[T, P]{
		deallocate: deallocate,
	}
	ret.pool.New = func() any {
		return &ClosureDeallocator[T, P]{
			fn:   ret.deallocate,
			pool: ret,
		}
	}
	return ret
}

func (c *ClosureDeallocatorPool[T, P]) Get(args T) Deallocator {
	closure := c.pool.Get().(*ClosureDeallocator[T, P])
	closure.argument = args
	return closure
}
