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
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/matrixorigin/dynarray/pkg/logutil"
	v2 "github.com/matrixorigin/dynarray/pkg/util/metric/v2"
)

// next returns the smallest capacity >= minimal reachable from cur (or
// InitialCap when cur is 0) by multiplying with Multiplier.
func (p GrowthPolicy) next(cur, minimal int) int {
	c := cur
	if c == 0 {
		c = p.InitialCap
	}
	for c < minimal {
		if c > math.MaxInt/p.Multiplier {
			return minimal
		}
		c *= p.Multiplier
	}
	return c
}

// grow makes room for minimal elements following the growth policy.
func (a *Array[T]) grow(minimal int) error {
	if minimal <= len(a.buf) {
		return nil
	}
	return a.realloc(a.policy.next(len(a.buf), minimal), v2.DynArrayGrowCounter)
}

// realloc moves the live elements into a buffer of exactly newCap slots.
// The new buffer is allocated before anything changes, so a failed
// allocation leaves the array as it was.
func (a *Array[T]) realloc(newCap int, counter prometheus.Counter) error {
	if newCap == 0 {
		a.release()
		return nil
	}
	buf, err := a.allocate(newCap)
	if err != nil {
		return err
	}
	a.adopt(buf, counter)
	return nil
}

// allocate returns a buffer of newCap slots without touching the array.
func (a *Array[T]) allocate(newCap int) ([]T, error) {
	buf, err := a.alloc.Allocate(newCap)
	if err != nil {
		v2.DynArrayAllocFailedCounter.Inc()
		logutil.Warn("dynarray allocation failed",
			zap.Int("size", a.size),
			zap.Int("cap", len(a.buf)),
			zap.Int("request", newCap),
			zap.Error(err),
		)
		return nil, err
	}
	return buf, nil
}

// adopt moves the live elements into buf and releases the old buffer.
func (a *Array[T]) adopt(buf []T, counter prometheus.Counter) {
	if logutil.DebugEnabled() {
		logutil.Debug("dynarray realloc",
			zap.Int("size", a.size),
			zap.Int("from", len(a.buf)),
			zap.Int("to", len(buf)),
		)
	}
	counter.Inc()

	copy(buf, a.buf[:a.size])
	a.release()
	a.buf = buf
}

// release hands the buffer back to the allocator. Live slots must already
// be destroyed or moved out.
func (a *Array[T]) release() {
	if a.buf == nil {
		return
	}
	clear(a.buf[:a.size])
	a.alloc.Deallocate(a.buf)
	a.buf = nil
}
