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
	dynArrayReallocCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dynarray",
			Subsystem: "container",
			Name:      "realloc_total",
			Help:      "Total number of backing buffer reallocations.",
		}, []string{"reason"})

	DynArrayGrowCounter    = dynArrayReallocCounter.WithLabelValues("grow")
	DynArrayReserveCounter = dynArrayReallocCounter.WithLabelValues("reserve")
	DynArrayShrinkCounter  = dynArrayReallocCounter.WithLabelValues("shrink")

	DynArrayAllocFailedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dynarray",
			Subsystem: "container",
			Name:      "alloc_failed_total",
			Help:      "Total number of failed backing buffer allocations.",
		})

	BenchOpDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dynarray",
			Subsystem: "bench",
			Name:      "workload_duration_seconds",
			Help:      "Duration of one benchmark workload run.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
		}, []string{"workload"})
)
