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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

// LeakCheckAllocator records the allocating stack of every live allocation
// and panics on double deallocation. CheckLeaks reports what is still live.
type LeakCheckAllocator struct {
	upstream Allocator
	nextID   atomic.Uint64
	mu       sync.Mutex
	live     map[uint64]leakCheckInfo
}

type leakCheckInfo struct {
	size  uint64
	stack StacktraceID
}

func NewLeakCheckAllocator(upstream Allocator) *LeakCheckAllocator {
	return &LeakCheckAllocator{
		upstream: upstream,
		live:     make(map[uint64]leakCheckInfo),
	}
}

var _ Allocator = new(LeakCheckAllocator)

func (l *LeakCheckAllocator) Allocate(size uint64, hints Hints) ([]byte, Deallocator, error) {
	bs, dec, err := l.upstream.Allocate(size, hints)
	if err != nil {
		return nil, nil, err
	}
	id := l.nextID.Add(1)
	l.mu.Lock()
	l.live[id] = leakCheckInfo{
		size:  size,
		stack: GetStacktraceID(1),
	}
	l.mu.Unlock()

	var freed atomic.Bool
	return bs, DeallocatorFunc(func(hints Hints) {
		if !freed.CompareAndSwap(false, true) {
			panic("double free")
		}
		l.mu.Lock()
		delete(l.live, id)
		l.mu.Unlock()
		dec.Deallocate(hints)
	}), nil
}

// Outstanding returns the number of allocations not yet deallocated.
func (l *LeakCheckAllocator) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

func (l *LeakCheckAllocator) CheckLeaks() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.live) == 0 {
		return nil
	}
	buf := new(strings.Builder)
	var bytes uint64
	for _, info := range l.live {
		bytes += info.size
		buf.WriteString(info.stack.String())
	}
	return moerr.NewInternalErrorNoCtx("%d allocations (%d bytes) not deallocated", len(l.live), bytes).
		WithDetail(buf.String())
}
