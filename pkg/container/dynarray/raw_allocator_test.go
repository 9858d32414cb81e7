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

package dynarray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/dynarray/pkg/common/malloc"
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

type point struct {
	x, y int32
	tag  [4]byte
}

func TestRawAllocatorRejectsPointers(t *testing.T) {
	type withString struct {
		id   int
		name string
	}
	upstream := malloc.NewGoAllocator()

	_, err := NewRawAllocator[withString](upstream)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported))
	_, err = NewRawAllocator[*int](upstream)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported))
	_, err = NewRawAllocator[[]byte](upstream)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNotSupported))

	_, err = NewRawAllocator[point](upstream)
	require.NoError(t, err)
	_, err = NewRawAllocator[[8]float64](upstream)
	require.NoError(t, err)
	_, err = NewRawAllocator[struct{}](upstream)
	require.NoError(t, err)
}

func testRawAllocator(t *testing.T, upstream malloc.Allocator) {
	leaks := malloc.NewLeakCheckAllocator(upstream)
	alloc, err := NewRawAllocator[point](leaks)
	require.NoError(t, err)

	a := New(&Options[point]{Allocator: alloc})
	for i := 0; i < 1000; i++ {
		require.NoError(t, a.PushBack(point{x: int32(i), y: int32(-i)}))
	}
	require.Equal(t, 1024, a.Cap())
	require.Equal(t, 1, alloc.Outstanding())
	for i, p := range a.All() {
		require.Equal(t, int32(i), p.x)
		require.Equal(t, int32(-i), p.y)
	}

	b, err := a.Slice(10, 20)
	require.NoError(t, err)
	require.Equal(t, int32(10), b.Front().x)
	require.Equal(t, 2, alloc.Outstanding())

	require.NoError(t, a.Resize(3))
	require.NoError(t, a.ShrinkToFit())
	require.Equal(t, 3, a.Cap())

	a.Close()
	b.Close()
	require.Equal(t, 0, alloc.Outstanding())
	require.NoError(t, leaks.CheckLeaks())
}

func TestRawAllocator(t *testing.T) {
	t.Run("go", func(t *testing.T) {
		testRawAllocator(t, malloc.NewGoAllocator())
	})
	t.Run("class", func(t *testing.T) {
		testRawAllocator(t, malloc.NewClassAllocator(malloc.MB))
	})
	t.Run("mmap", func(t *testing.T) {
		mmap, err := malloc.NewMmapAllocator()
		if moerr.IsMoErrCode(err, moerr.ErrNotSupported) {
			t.Skip("mmap not supported")
		}
		require.NoError(t, err)
		testRawAllocator(t, mmap)
	})
}

func TestRawAllocatorLimit(t *testing.T) {
	limit := malloc.NewLimitAllocator(malloc.NewGoAllocator(), 64*8)
	alloc, err := NewRawAllocator[int64](limit)
	require.NoError(t, err)

	a := New(&Options[int64]{Allocator: alloc})
	for i := 0; i < 32; i++ {
		require.NoError(t, a.PushBack(int64(i)))
	}
	// growing to 64 needs the old 32 and the new 64 at once
	err = a.PushBack(32)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	require.Equal(t, 32, a.Len())
	require.Equal(t, 32, a.Cap())
	require.Equal(t, int64(31), a.Back())

	a.Close()
	require.Equal(t, uint64(0), limit.InUse())
	require.Equal(t, 0, alloc.Outstanding())
}

func TestRawAllocatorZeroSize(t *testing.T) {
	leaks := malloc.NewLeakCheckAllocator(malloc.NewGoAllocator())
	alloc, err := NewRawAllocator[struct{}](leaks)
	require.NoError(t, err)

	a := New(&Options[struct{}]{Allocator: alloc})
	require.NoError(t, a.Append(struct{}{}, struct{}{}))
	require.Equal(t, 2, a.Len())
	a.Close()
	require.Equal(t, 0, leaks.Outstanding())
}
