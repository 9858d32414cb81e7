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

package v2

import "github.com/prometheus/client_golang/prometheus"

var (
	mallocAllocateBytesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dynarray",
			Subsystem: "mem",
			Name:      "malloc_allocate_bytes_total",
			Help:      "Total bytes allocated by the allocator.",
		}, []string{"type"})

	mallocInuseBytesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dynarray",
			Subsystem: "mem",
			Name:      "malloc_inuse_bytes",
			Help:      "Bytes currently held through the allocator.",
		}, []string{"type"})

	mallocAllocateObjectsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dynarray",
			Subsystem: "mem",
			Name:      "malloc_allocate_objects_total",
			Help:      "Total allocations served by the allocator.",
		}, []string{"type"})

	mallocInuseObjectsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dynarray",
			Subsystem: "mem",
			Name:      "malloc_inuse_objects",
			Help:      "Allocations not yet released.",
		}, []string{"type"})
)

// MallocMetrics are the four collectors a malloc.MetricsAllocator reports to.
type MallocMetrics struct {
	AllocateBytes   prometheus.Counter
	InuseBytes      prometheus.Gauge
	AllocateObjects prometheus.Counter
	InuseObjects    prometheus.Gauge
}

func GetMallocMetrics(typ string) MallocMetrics {
	return MallocMetrics{
		AllocateBytes:   mallocAllocateBytesCounter.WithLabelValues(typ),
		InuseBytes:      mallocInuseBytesGauge.WithLabelValues(typ),
		AllocateObjects: mallocAllocateObjectsCounter.WithLabelValues(typ),
		InuseObjects:    mallocInuseObjectsGauge.WithLabelValues(typ),
	}
}
