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

package main

import (
	"github.com/matrixorigin/dynarray/pkg/common/malloc"
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	"github.com/matrixorigin/dynarray/pkg/config"
	v2 "github.com/matrixorigin/dynarray/pkg/util/metric/v2"
)

// allocatorStack is the byte level allocator chain shared by all workers.
type allocatorStack struct {
	top     malloc.Allocator
	metrics *malloc.MetricsAllocator[malloc.Allocator]
	limit   *malloc.LimitAllocator
	class   *malloc.ClassAllocator
	leaks   *malloc.LeakCheckAllocator
}

// newAllocatorStack builds, from the bottom up: the configured base
// allocator, an optional limit, metrics, and an optional leak check.
func newAllocatorStack(cfg config.AllocatorConfig) (*allocatorStack, error) {
	s := &allocatorStack{}

	var base malloc.Allocator
	switch cfg.Kind {
	case config.AllocatorGo:
		base = malloc.NewGoAllocator()
	case config.AllocatorClass:
		s.class = malloc.NewClassAllocator(cfg.ClassBufferSize)
		base = s.class
	case config.AllocatorMmap:
		mmap, err := malloc.NewMmapAllocator()
		if err != nil {
			return nil, err
		}
		base = mmap
	default:
		return nil, moerr.NewBadConfigNoCtx("unknown allocator kind %q", cfg.Kind)
	}

	if cfg.Limit > 0 {
		s.limit = malloc.NewLimitAllocator(base, cfg.Limit)
		base = s.limit
	}

	m := v2.GetMallocMetrics(cfg.Kind)
	s.metrics = malloc.NewMetricsAllocator(
		base,
		m.AllocateBytes,
		m.InuseBytes,
		m.AllocateObjects,
		m.InuseObjects,
	)
	s.top = s.metrics

	if cfg.CheckLeaks {
		s.leaks = malloc.NewLeakCheckAllocator(s.top)
		s.top = s.leaks
	}
	return s, nil
}

func (s *allocatorStack) checkLeaks() error {
	if s.leaks == nil {
		return nil
	}
	return s.leaks.CheckLeaks()
}
