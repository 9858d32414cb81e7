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
	"cmp"
	"slices"
)

// EqualFunc reports whether a and b have the same length and eq holds for
// every pair of elements at the same index.
func EqualFunc[T, U any](a *Array[T], b *Array[U], eq func(T, U) bool) bool {
	return slices.EqualFunc(a.Data(), b.Data(), eq)
}

// Equal is the element-wise equality of two arrays.
func Equal[T comparable](a, b *Array[T]) bool {
	return slices.Equal(a.Data(), b.Data())
}

// CompareFunc compares a and b lexicographically with cmp. A strict prefix
// compares less than the longer array.
func CompareFunc[T, U any](a *Array[T], b *Array[U], cmp func(T, U) int) int {
	return slices.CompareFunc(a.Data(), b.Data(), cmp)
}

func Compare[T cmp.Ordered](a, b *Array[T]) int {
	return slices.Compare(a.Data(), b.Data())
}

func Less[T cmp.Ordered](a, b *Array[T]) bool {
	return Compare(a, b) < 0
}

func LessEqual[T cmp.Ordered](a, b *Array[T]) bool {
	return Compare(a, b) <= 0
}

func Greater[T cmp.Ordered](a, b *Array[T]) bool {
	return Compare(a, b) > 0
}

func GreaterEqual[T cmp.Ordered](a, b *Array[T]) bool {
	return Compare(a, b) >= 0
}

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// SumsCompare compares the sums of the elements of a and b. Arrays with
// different contents can have equal sums, so this is not an equality or
// ordering of the arrays themselves; use Equal and Compare for that.
func SumsCompare[T Number](a, b *Array[T]) int {
	return cmp.Compare(sum(a), sum(b))
}

func sum[T Number](a *Array[T]) (ret T) {
	for _, v := range a.Data() {
		ret += v
	}
	return
}
