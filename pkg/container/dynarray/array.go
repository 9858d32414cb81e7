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
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	v2 "github.com/matrixorigin/dynarray/pkg/util/metric/v2"
)

// New returns an empty array. Nothing is allocated until the first append.
// It panics with ErrBadConfig when the growth policy in opts is invalid;
// the other constructors return that error instead.
func New[T any](opts ...*Options[T]) *Array[T] {
	a, err := newArray(opts)
	if err != nil {
		panic(err)
	}
	return a
}

// NewWithLen returns an array holding n default values. Its capacity
// follows the growth policy.
func NewWithLen[T any](n int, opts ...*Options[T]) (*Array[T], error) {
	a, err := newArray(opts)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, moerr.NewInvalidArgNoCtx("length", n)
	}
	if n == 0 {
		return a, nil
	}
	buf, err := a.allocate(a.policy.next(0, n))
	if err != nil {
		return nil, err
	}
	if err := a.constructDefaults(buf[:n]); err != nil {
		a.alloc.Deallocate(buf)
		return nil, err
	}
	a.buf = buf
	a.size = n
	return a, nil
}

// NewFilled returns an array holding n copies of v. Its capacity follows
// the growth policy.
func NewFilled[T any](n int, v T, opts ...*Options[T]) (*Array[T], error) {
	a, err := newArray(opts)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, moerr.NewInvalidArgNoCtx("length", n)
	}
	if n == 0 {
		return a, nil
	}
	buf, err := a.alloc.Allocate(a.policy.next(0, n))
	if err != nil {
		return nil, err
	}
	if err := fill(a.alloc, buf[:n], v); err != nil {
		a.alloc.Deallocate(buf)
		return nil, err
	}
	a.buf = buf
	a.size = n
	return a, nil
}

// NewFromSlice returns an array holding copies of s, with capacity len(s).
func NewFromSlice[T any](s []T, opts ...*Options[T]) (*Array[T], error) {
	a, err := newArray(opts)
	if err != nil {
		return nil, err
	}
	buf, err := copyInto(a.alloc, s, len(s))
	if err != nil {
		return nil, err
	}
	a.buf = buf
	a.size = len(s)
	return a, nil
}

// Clone returns an independent copy sharing the allocator and policy.
func (a *Array[T]) Clone() (*Array[T], error) {
	ret := &Array[T]{
		alloc:      a.alloc,
		policy:     a.policy,
		newDefault: a.newDefault,
	}
	buf, err := copyInto(a.alloc, a.buf[:a.size], len(a.buf))
	if err != nil {
		return nil, err
	}
	ret.buf = buf
	ret.size = a.size
	return ret, nil
}

// CopyFrom replaces the contents of a with copies of src's elements.
// Existing storage is reused when it is large enough. If an element copy
// fails, a is left unchanged.
func (a *Array[T]) CopyFrom(src *Array[T]) error {
	if a == src {
		return nil
	}
	if len(a.buf) < src.size {
		buf, err := copyInto(a.alloc, src.buf[:src.size], a.policy.next(len(a.buf), src.size))
		if err != nil {
			return err
		}
		a.Close()
		a.buf = buf
		a.size = src.size
		return nil
	}
	// copies are built aside so the old contents survive a failed copy
	tmp := make([]T, src.size)
	if err := constructFrom(a.alloc, tmp, src.buf[:src.size]); err != nil {
		return err
	}
	a.Clear()
	copy(a.buf, tmp)
	a.size = src.size
	return nil
}

// Move transfers the contents of a into a new array in O(1) and leaves a
// empty and reusable.
func (a *Array[T]) Move() *Array[T] {
	ret := &Array[T]{
		alloc:      a.alloc,
		buf:        a.buf,
		size:       a.size,
		policy:     a.policy,
		newDefault: a.newDefault,
	}
	a.buf = nil
	a.size = 0
	return ret
}

// MoveFrom releases the contents of a and takes over src's buffer,
// allocator and policy. src is left empty.
func (a *Array[T]) MoveFrom(src *Array[T]) {
	if a == src {
		return
	}
	a.Close()
	a.alloc = src.alloc
	a.buf = src.buf
	a.size = src.size
	a.policy = src.policy
	a.newDefault = src.newDefault
	src.buf = nil
	src.size = 0
}

// Close destroys the live elements in index order, then returns the
// buffer to the allocator. The array stays usable.
func (a *Array[T]) Close() {
	destroyAll(a.alloc, a.buf[:a.size])
	a.size = 0
	a.release()
}

func (a *Array[T]) PushBack(v T) error {
	if err := a.grow(a.size + 1); err != nil {
		return err
	}
	if err := a.alloc.Construct(&a.buf[a.size], v); err != nil {
		return err
	}
	a.size++
	return nil
}

// EmplaceBack constructs the new last element in place. If init fails the
// slot is reset and the array is unchanged.
func (a *Array[T]) EmplaceBack(init func(slot *T) error) error {
	if err := a.grow(a.size + 1); err != nil {
		return err
	}
	if err := init(&a.buf[a.size]); err != nil {
		var zero T
		a.buf[a.size] = zero
		return err
	}
	a.size++
	return nil
}

// Append pushes vs in order with at most one growth step. It appends all
// or nothing.
func (a *Array[T]) Append(vs ...T) error {
	n := a.size + len(vs)
	if n <= len(a.buf) {
		if err := constructFrom(a.alloc, a.buf[a.size:], vs); err != nil {
			return err
		}
		a.size = n
		return nil
	}
	// vs may alias the current buffer, which must outlive the copies
	buf, err := a.allocate(a.policy.next(len(a.buf), n))
	if err != nil {
		return err
	}
	if err := constructFrom(a.alloc, buf[a.size:], vs); err != nil {
		a.alloc.Deallocate(buf)
		return err
	}
	a.adopt(buf, v2.DynArrayGrowCounter)
	a.size = n
	return nil
}

// Insert places v at index i, shifting [i, Len()) one slot up.
func (a *Array[T]) Insert(i int, v T) error {
	if debugChecks {
		checkIndex(i, a.size+1)
	}
	var tmp T
	if err := a.alloc.Construct(&tmp, v); err != nil {
		return err
	}
	if err := a.grow(a.size + 1); err != nil {
		a.alloc.Destroy(&tmp)
		return err
	}
	copy(a.buf[i+1:a.size+1], a.buf[i:a.size])
	a.buf[i] = tmp
	a.size++
	return nil
}

// PopBack moves the last element out of the array.
func (a *Array[T]) PopBack() T {
	if debugChecks {
		checkNotEmpty(a.size)
	}
	a.size--
	v := a.buf[a.size]
	var zero T
	a.buf[a.size] = zero
	return v
}

// RemoveAt destroys the element at i and shifts the tail down one slot,
// keeping the order of the rest.
func (a *Array[T]) RemoveAt(i int) {
	if debugChecks {
		checkIndex(i, a.size)
	}
	a.alloc.Destroy(&a.buf[i])
	copy(a.buf[i:a.size-1], a.buf[i+1:a.size])
	a.size--
	var zero T
	a.buf[a.size] = zero
}

// RemoveMany destroys every element whose index is in sels and compacts
// the rest in one pass, keeping their order.
func (a *Array[T]) RemoveMany(sels *roaring.Bitmap) {
	if sels == nil || sels.IsEmpty() {
		return
	}
	if debugChecks {
		checkIndex(int(sels.Maximum()), a.size)
	}
	w := 0
	for i := 0; i < a.size; i++ {
		if sels.Contains(uint32(i)) {
			a.alloc.Destroy(&a.buf[i])
			continue
		}
		if w != i {
			a.buf[w] = a.buf[i]
		}
		w++
	}
	clear(a.buf[w:a.size])
	a.size = w
}

// Resize sets the length to n, destroying the tail or appending default
// values. Growing past the capacity reallocates to exactly n.
func (a *Array[T]) Resize(n int) error {
	if n < 0 {
		return moerr.NewInvalidArgNoCtx("resize", n)
	}
	if n <= a.size {
		destroyAll(a.alloc, a.buf[n:a.size])
		a.size = n
		return nil
	}
	if n <= len(a.buf) {
		if err := a.constructDefaults(a.buf[a.size:n]); err != nil {
			return err
		}
		a.size = n
		return nil
	}
	buf, err := a.allocate(n)
	if err != nil {
		return err
	}
	if err := a.constructDefaults(buf[a.size:n]); err != nil {
		a.alloc.Deallocate(buf)
		return err
	}
	a.adopt(buf, v2.DynArrayReserveCounter)
	a.size = n
	return nil
}

// Clear destroys all elements. The capacity is kept.
func (a *Array[T]) Clear() {
	destroyAll(a.alloc, a.buf[:a.size])
	a.size = 0
}

// Reserve makes the capacity exactly n when it is smaller than n.
func (a *Array[T]) Reserve(n int) error {
	if n <= len(a.buf) {
		return nil
	}
	return a.realloc(n, v2.DynArrayReserveCounter)
}

// ShrinkToFit reallocates so that Cap() == Len(). An empty array gives its
// buffer back entirely.
func (a *Array[T]) ShrinkToFit() error {
	if a.size == len(a.buf) {
		return nil
	}
	return a.realloc(a.size, v2.DynArrayShrinkCounter)
}

// At returns the element at i without a bounds check in release builds.
func (a *Array[T]) At(i int) T {
	if debugChecks {
		checkIndex(i, a.size)
	}
	return a.buf[i]
}

// Ref returns a pointer to the element at i. It is invalidated by any
// reallocation or removal.
func (a *Array[T]) Ref(i int) *T {
	if debugChecks {
		checkIndex(i, a.size)
	}
	return &a.buf[i]
}

// Set replaces the element at i with a copy of v, destroying the old one.
func (a *Array[T]) Set(i int, v T) error {
	if debugChecks {
		checkIndex(i, a.size)
	}
	var tmp T
	if err := a.alloc.Construct(&tmp, v); err != nil {
		return err
	}
	a.alloc.Destroy(&a.buf[i])
	a.buf[i] = tmp
	return nil
}

// Get is the checked counterpart of At.
func (a *Array[T]) Get(i int) (T, error) {
	if i < 0 || i >= a.size {
		var zero T
		return zero, moerr.NewInvalidArgNoCtx("index", i)
	}
	return a.buf[i], nil
}

// Slice returns an independent copy of the elements in [first, last).
func (a *Array[T]) Slice(first, last int) (*Array[T], error) {
	if debugChecks {
		checkRange(first, last, a.size)
	}
	ret := &Array[T]{
		alloc:      a.alloc,
		policy:     a.policy,
		newDefault: a.newDefault,
	}
	buf, err := copyInto(a.alloc, a.buf[first:last], last-first)
	if err != nil {
		return nil, err
	}
	ret.buf = buf
	ret.size = last - first
	return ret, nil
}

func (a *Array[T]) Front() T {
	if debugChecks {
		checkNotEmpty(a.size)
	}
	return a.buf[0]
}

func (a *Array[T]) Back() T {
	if debugChecks {
		checkNotEmpty(a.size)
	}
	return a.buf[a.size-1]
}

// Data returns the live elements in place. The slice is invalidated by
// the next mutating call.
func (a *Array[T]) Data() []T {
	if a == nil {
		return nil
	}
	return a.buf[:a.size:a.size]
}

func (a *Array[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.size
}

func (a *Array[T]) Cap() int {
	if a == nil {
		return 0
	}
	return len(a.buf)
}

func (a *Array[T]) IsEmpty() bool {
	return a.Len() == 0
}

func (a *Array[T]) Allocator() Allocator[T] {
	return a.alloc
}

func (a *Array[T]) Policy() GrowthPolicy {
	return a.policy
}

// SetAllocator switches to alloc. Live elements are moved into storage
// from alloc and the old buffer goes back to the old allocator.
func (a *Array[T]) SetAllocator(alloc Allocator[T]) error {
	if a.buf == nil {
		a.alloc = alloc
		return nil
	}
	buf, err := alloc.Allocate(len(a.buf))
	if err != nil {
		return err
	}
	copy(buf, a.buf[:a.size])
	a.release()
	a.alloc = alloc
	a.buf = buf
	return nil
}

func (a *Array[T]) String() string {
	return fmt.Sprint(a.Data())
}
