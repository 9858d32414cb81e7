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

// constructFrom copy-constructs src into the raw slots dst[:len(src)].
// On failure the slots built so far are destroyed again.
func constructFrom[T any](alloc Allocator[T], dst, src []T) error {
	for i := range src {
		if err := alloc.Construct(&dst[i], src[i]); err != nil {
			destroyAll(alloc, dst[:i])
			return err
		}
	}
	return nil
}

// fill constructs a copy of v in every slot of dst.
func fill[T any](alloc Allocator[T], dst []T, v T) error {
	for i := range dst {
		if err := alloc.Construct(&dst[i], v); err != nil {
			destroyAll(alloc, dst[:i])
			return err
		}
	}
	return nil
}

// destroyAll destroys live slots in index order.
func destroyAll[T any](alloc Allocator[T], live []T) {
	for i := range live {
		alloc.Destroy(&live[i])
	}
}

// copyInto builds copies of src in fresh storage of newCap slots. Nothing
// leaks on failure.
func copyInto[T any](alloc Allocator[T], src []T, newCap int) ([]T, error) {
	if newCap == 0 {
		return nil, nil
	}
	buf, err := alloc.Allocate(newCap)
	if err != nil {
		return nil, err
	}
	if err := constructFrom(alloc, buf, src); err != nil {
		alloc.Deallocate(buf)
		return nil, err
	}
	return buf, nil
}

// constructDefaults constructs a default value in every slot of dst,
// destroying the built prefix on failure.
func (a *Array[T]) constructDefaults(dst []T) error {
	for i := range dst {
		if err := a.alloc.Construct(&dst[i], a.defaultValue()); err != nil {
			destroyAll(a.alloc, dst[:i])
			return err
		}
	}
	return nil
}

func (a *Array[T]) defaultValue() T {
	if a.newDefault != nil {
		return a.newDefault()
	}
	var zero T
	return zero
}
