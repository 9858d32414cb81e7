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
	"reflect"
	"sync"
	"unsafe"

	"github.com/matrixorigin/dynarray/pkg/common/malloc"
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

// RawAllocator serves element storage from a byte level malloc.Allocator.
// The bytes may live outside the Go heap, so T must not contain pointers.
type RawAllocator[T any] struct {
	upstream malloc.Allocator

	mu   sync.Mutex
	decs map[*T]malloc.Deallocator
}

func NewRawAllocator[T any](upstream malloc.Allocator) (*RawAllocator[T], error) {
	typ := reflect.TypeFor[T]()
	if hasPointers(typ) {
		return nil, moerr.NewNotSupported(moerr.Context(), "raw allocation of %v, it contains pointers", typ)
	}
	return &RawAllocator[T]{
		upstream: upstream,
		decs:     make(map[*T]malloc.Deallocator),
	}, nil
}

var _ Allocator[int64] = new(RawAllocator[int64])

func (r *RawAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, moerr.NewInvalidArgNoCtx("allocate count", n)
	}
	var zero T
	elemSize := uint64(unsafe.Sizeof(zero))
	if n == 0 || elemSize == 0 {
		return make([]T, n), nil
	}
	bs, dec, err := r.upstream.Allocate(uint64(n)*elemSize, 0)
	if err != nil {
		return nil, err
	}
	ptr := unsafe.Pointer(unsafe.SliceData(bs))
	if uintptr(ptr)%unsafe.Alignof(zero) != 0 {
		dec.Deallocate(malloc.DoNotReuse)
		return nil, moerr.NewInternalErrorNoCtx("misaligned allocation for %T", zero)
	}
	buf := unsafe.Slice((*T)(ptr), n)

	r.mu.Lock()
	r.decs[&buf[0]] = dec
	r.mu.Unlock()
	return buf, nil
}

func (r *RawAllocator[T]) Deallocate(buf []T) {
	if cap(buf) == 0 {
		return
	}
	key := unsafe.SliceData(buf)
	r.mu.Lock()
	dec, ok := r.decs[key]
	delete(r.decs, key)
	r.mu.Unlock()
	if !ok {
		// zero sized elements or storage from make
		return
	}
	dec.Deallocate(0)
}

func (r *RawAllocator[T]) Construct(slot *T, v T) error {
	return ConstructValue(slot, v)
}

func (r *RawAllocator[T]) Destroy(slot *T) {
	DestroyValue(slot)
}

// Outstanding returns the number of buffers not yet deallocated.
func (r *RawAllocator[T]) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decs)
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
