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

import "github.com/matrixorigin/dynarray/pkg/common/moerr"

// Allocator is the storage capability an Array depends on.
type Allocator[T any] interface {
	// Allocate returns zeroed storage for exactly n elements.
	Allocate(n int) ([]T, error)
	// Deallocate releases storage returned by Allocate. It never fails.
	Deallocate(buf []T)
	// Construct initializes a raw slot as a copy of v.
	Construct(slot *T, v T) error
	// Destroy tears down a live slot and leaves it zeroed.
	Destroy(slot *T)
}

// Cloner is implemented by element types whose copies must not share
// state with the original. Clone errors abort the copy in progress.
type Cloner[T any] interface {
	Clone() (T, error)
}

// Destroyer is implemented (on *T) by element types that hold something
// to release when an element is destroyed.
type Destroyer interface {
	Destroy()
}

// ConstructValue is the default copy construction: Clone when T is a
// Cloner, plain assignment otherwise.
func ConstructValue[T any](slot *T, v T) error {
	if c, ok := any(&v).(Cloner[T]); ok {
		cloned, err := c.Clone()
		if err != nil {
			return err
		}
		*slot = cloned
		return nil
	}
	*slot = v
	return nil
}

// DestroyValue is the default teardown: Destroy when *T is a Destroyer,
// then zero the slot.
func DestroyValue[T any](slot *T) {
	if d, ok := any(slot).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*slot = zero
}

// HeapAllocator takes storage from the Go heap; Deallocate leaves it to
// the garbage collector.
type HeapAllocator[T any] struct{}

func NewHeapAllocator[T any]() HeapAllocator[T] {
	return HeapAllocator[T]{}
}

var _ Allocator[int] = HeapAllocator[int]{}

func (HeapAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, moerr.NewInvalidArgNoCtx("allocate count", n)
	}
	return make([]T, n), nil
}

func (HeapAllocator[T]) Deallocate([]T) {}

func (HeapAllocator[T]) Construct(slot *T, v T) error {
	return ConstructValue(slot, v)
}

func (HeapAllocator[T]) Destroy(slot *T) {
	DestroyValue(slot)
}
