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
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/dynarray/pkg/common/malloc"
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	"github.com/matrixorigin/dynarray/pkg/config"
	"github.com/matrixorigin/dynarray/pkg/container/dynarray"
	"github.com/matrixorigin/dynarray/pkg/logutil"
	v2 "github.com/matrixorigin/dynarray/pkg/util/metric/v2"
)

const checkCtxInterval = 1024

type workerStats struct {
	ops     int
	pushes  int
	removes int
	oom     int
	maxLen  int
	maxCap  int
}

func (s *workerStats) merge(o workerStats) {
	s.ops += o.ops
	s.pushes += o.pushes
	s.removes += o.removes
	s.oom += o.oom
	s.maxLen = max(s.maxLen, o.maxLen)
	s.maxCap = max(s.maxCap, o.maxCap)
}

// run runs cfg.Workload.Workers workers on a goroutine pool. Each worker
// owns one array; arrays are never shared between workers.
func run(ctx context.Context, cfg *config.Config) error {
	stack, err := newAllocatorStack(cfg.Allocator)
	if err != nil {
		return err
	}

	workers := cfg.Workload.Workers
	results := make([]workerStats, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	start := time.Now()
	for i := 0; i < workers; i++ {
		id := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					errs[id] = moerr.ConvertPanicError(ctx, r)
				}
				wg.Done()
			}()
			results[id], errs[id] = runWorker(ctx, id, stack.top, cfg)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	var total workerStats
	for i := range results {
		if errs[i] != nil {
			return errs[i]
		}
		total.merge(results[i])
	}

	peak, peakAt := stack.metrics.Peak().Peak()
	fields := []zap.Field{
		zap.String("allocator", cfg.Allocator.Kind),
		zap.Int("workers", workers),
		zap.Int("ops", total.ops),
		zap.Int("pushes", total.pushes),
		zap.Int("removes", total.removes),
		zap.Int("oom", total.oom),
		zap.Int("max len", total.maxLen),
		zap.Int("max cap", total.maxCap),
		zap.Uint64("peak inuse bytes", peak),
		zap.Time("peak at", peakAt),
		zap.Int64("inuse bytes", stack.metrics.InuseBytes()),
		zap.Duration("elapsed", elapsed),
	}
	if stack.class != nil {
		reused, recycled := stack.class.Stats()
		fields = append(fields, zap.Int64("reused", reused), zap.Int64("recycled", recycled))
	}
	logutil.Info("dynarray-bench done", fields...)

	return stack.checkLeaks()
}

func runWorker(
	ctx context.Context,
	id int,
	upstream malloc.Allocator,
	cfg *config.Config,
) (stats workerStats, err error) {
	alloc, err := dynarray.NewRawAllocator[int64](upstream)
	if err != nil {
		return
	}
	arr := dynarray.New(&dynarray.Options[int64]{
		Allocator: alloc,
		Growth:    cfg.Growth,
	})
	defer arr.Close()

	start := time.Now()
	defer func() {
		v2.BenchOpDurationHistogram.WithLabelValues("worker").Observe(time.Since(start).Seconds())
	}()

	w := &worker{
		arr:    arr,
		rnd:    rand.New(rand.NewSource(cfg.Workload.Seed + int64(id))),
		target: cfg.Workload.ElementCount,
	}
	for i := 0; i < cfg.Workload.Ops; i++ {
		if i%checkCtxInterval == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}
		if err = w.step(&stats); err != nil {
			if !moerr.IsMoErrCode(err, moerr.ErrOOM) {
				return
			}
			stats.oom++
			err = nil
			// drop to the target size so a limited allocator can recover
			arr.Clear()
			if err = arr.ShrinkToFit(); err != nil {
				return
			}
		}
		stats.ops++
		stats.maxLen = max(stats.maxLen, arr.Len())
		stats.maxCap = max(stats.maxCap, arr.Cap())
	}
	err = w.verify()
	return
}

type worker struct {
	arr    *dynarray.Array[int64]
	rnd    *rand.Rand
	target int
}

func (w *worker) step(stats *workerStats) error {
	arr := w.arr
	n := arr.Len()
	if n > 4*w.target {
		return arr.Resize(w.target)
	}

	switch r := w.rnd.Intn(100); {
	case r < 40:
		stats.pushes++
		return arr.PushBack(w.rnd.Int63())
	case r < 48:
		batch := make([]int64, 1+w.rnd.Intn(16))
		for i := range batch {
			batch[i] = w.rnd.Int63()
		}
		stats.pushes += len(batch)
		return arr.Append(batch...)
	case r < 55:
		stats.pushes++
		return arr.Insert(w.rnd.Intn(n+1), w.rnd.Int63())
	case r < 65:
		if n > 0 {
			stats.removes++
			arr.PopBack()
		}
	case r < 73:
		if n > 0 {
			stats.removes++
			arr.RemoveAt(w.rnd.Intn(n))
		}
	case r < 78:
		if n > 0 {
			sels := roaring.New()
			for i := 0; i < 1+n/8; i++ {
				sels.Add(uint32(w.rnd.Intn(n)))
			}
			stats.removes += int(sels.GetCardinality())
			arr.RemoveMany(sels)
		}
	case r < 83:
		return arr.Resize(w.rnd.Intn(2*w.target + 1))
	case r < 88:
		return arr.Reserve(n + w.rnd.Intn(w.target+1))
	case r < 93:
		return w.checkCopy()
	case r < 98:
		return arr.ShrinkToFit()
	default:
		arr.Clear()
	}
	return nil
}

// checkCopy copies a random window and checks it element by element.
func (w *worker) checkCopy() error {
	n := w.arr.Len()
	first := w.rnd.Intn(n + 1)
	last := first + w.rnd.Intn(n-first+1)
	s, err := w.arr.Slice(first, last)
	if err != nil {
		return err
	}
	defer s.Close()
	for i, v := range s.All() {
		if v != w.arr.At(first+i) {
			return moerr.NewInvalidState(moerr.Context(), "slice [%d, %d) differs at %d", first, last, i)
		}
	}
	return nil
}

func (w *worker) verify() error {
	c, err := w.arr.Clone()
	if err != nil {
		if moerr.IsMoErrCode(err, moerr.ErrOOM) {
			return nil
		}
		return err
	}
	defer c.Close()
	if !dynarray.Equal(w.arr, c) || dynarray.Compare(w.arr, c) != 0 {
		return moerr.NewInvalidState(moerr.Context(), "clone differs from source")
	}
	if dynarray.SumsCompare(w.arr, c) != 0 {
		return moerr.NewInvalidState(moerr.Context(), "clone sum differs from source")
	}
	return nil
}
