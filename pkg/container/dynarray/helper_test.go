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

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

// events is a shared journal of teardown and deallocation calls.
type events struct {
	log []string
}

func (e *events) add(format string, args ...any) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

// probe counts its teardowns and can be told to fail cloning.
type probe struct {
	id     int
	ev     *events
	budget *int // clones allowed before Clone fails, nil for unlimited
}

var errCloneFailed = moerr.NewInternalErrorNoCtx("clone failed")

func (p *probe) Destroy() {
	if p.ev != nil {
		p.ev.add("destroy %d", p.id)
	}
}

func (p *probe) Clone() (probe, error) {
	if p.budget != nil {
		if *p.budget == 0 {
			return probe{}, errCloneFailed
		}
		*p.budget--
	}
	return *p, nil
}

func makeProbes(ev *events, budget *int, n int) []probe {
	ret := make([]probe, n)
	for i := range ret {
		ret[i] = probe{id: i, ev: ev, budget: budget}
	}
	return ret
}

var errConstructFailed = moerr.NewInvalidInputNoCtx("construct failed")

// testAllocator is a heap allocator that counts buffers and element
// lifecycle calls. It can be told to fail after a number of successful
// allocations or constructions.
type testAllocator[T any] struct {
	ev          *events
	allocs      int
	outstanding int
	failAfter   int // negative for never

	constructs          int
	destroys            int
	failConstructsAfter int // negative for never
}

func newTestAllocator[T any](ev *events) *testAllocator[T] {
	return &testAllocator[T]{ev: ev, failAfter: -1, failConstructsAfter: -1}
}

func (t *testAllocator[T]) Construct(slot *T, v T) error {
	if t.failConstructsAfter >= 0 && t.constructs >= t.failConstructsAfter {
		return errConstructFailed
	}
	if err := ConstructValue(slot, v); err != nil {
		return err
	}
	t.constructs++
	return nil
}

func (t *testAllocator[T]) Destroy(slot *T) {
	t.destroys++
	DestroyValue(slot)
}

// live is the number of constructed elements not yet destroyed.
func (t *testAllocator[T]) live() int {
	return t.constructs - t.destroys
}

func (t *testAllocator[T]) Allocate(n int) ([]T, error) {
	if t.failAfter >= 0 && t.allocs >= t.failAfter {
		return nil, moerr.NewOOMNoCtx()
	}
	t.allocs++
	t.outstanding++
	return make([]T, n), nil
}

func (t *testAllocator[T]) Deallocate(buf []T) {
	t.outstanding--
	if t.ev != nil {
		t.ev.add("free %d", len(buf))
	}
}

func intsOf(a *Array[int]) []int {
	ret := make([]int, 0, a.Len())
	for v := range a.Values() {
		ret = append(ret, v)
	}
	return ret
}

func mustFromSlice[T any](s []T, opts ...*Options[T]) *Array[T] {
	a, err := NewFromSlice(s, opts...)
	if err != nil {
		panic(err)
	}
	return a
}
