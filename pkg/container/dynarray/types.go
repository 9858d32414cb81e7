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

// Package dynarray implements Array, a growable contiguous sequence whose
// backing buffer comes from a pluggable Allocator.
//
// An Array owns exactly one buffer. Slots [0, Len()) hold live elements;
// slots [Len(), Cap()) hold the zero value and are treated as raw storage.
// Elements enter through the allocator's Construct and leave through its
// Destroy, each exactly once; reallocation and removal move elements
// without running their teardown.
//
// Array is not safe for concurrent use. Index, pop and slice preconditions
// are only checked when built with the dynarray_debug tag; violating them
// otherwise is undefined. Get is the checked accessor.
package dynarray

import (
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

const (
	DefaultInitialCap = 8
	DefaultMultiplier = 2
)

// GrowthPolicy maps a requested minimal capacity to the capacity actually
// allocated by appends: start from InitialCap on an empty array and keep
// multiplying by Multiplier.
type GrowthPolicy struct {
	InitialCap int `toml:"initial-cap"`
	Multiplier int `toml:"multiplier"`
}

func DefaultGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{
		InitialCap: DefaultInitialCap,
		Multiplier: DefaultMultiplier,
	}
}

// FillDefaults replaces unset fields with the defaults.
func (p *GrowthPolicy) FillDefaults() {
	if p.InitialCap == 0 {
		p.InitialCap = DefaultInitialCap
	}
	if p.Multiplier == 0 {
		p.Multiplier = DefaultMultiplier
	}
}

func (p GrowthPolicy) Validate() error {
	if p.InitialCap < 1 {
		return moerr.NewBadConfigNoCtx("growth initial-cap %d < 1", p.InitialCap)
	}
	if p.Multiplier < 2 {
		return moerr.NewBadConfigNoCtx("growth multiplier %d < 2", p.Multiplier)
	}
	return nil
}

// Options configure a new Array. A nil field takes its default.
type Options[T any] struct {
	Allocator Allocator[T]
	Growth    GrowthPolicy
	// Default builds the value used by Resize and NewWithLen. The zero
	// value of T when nil.
	Default func() T
}

// Array is a growable contiguous sequence of T.
type Array[T any] struct {
	alloc      Allocator[T]
	buf        []T // len(buf) is the capacity
	size       int
	policy     GrowthPolicy
	newDefault func() T
}

func newArray[T any](opts []*Options[T]) (*Array[T], error) {
	var opt *Options[T]
	for _, o := range opts {
		if o != nil {
			opt = o
			break
		}
	}
	a := &Array[T]{
		alloc:  NewHeapAllocator[T](),
		policy: DefaultGrowthPolicy(),
	}
	if opt == nil {
		return a, nil
	}
	if opt.Allocator != nil {
		a.alloc = opt.Allocator
	}
	a.policy = opt.Growth
	a.policy.FillDefaults()
	if err := a.policy.Validate(); err != nil {
		return nil, err
	}
	a.newDefault = opt.Default
	return a, nil
}
