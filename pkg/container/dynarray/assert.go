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

import "github.com/matrixorigin/dynarray/pkg/common/moerr"

// debugChecks turns precondition violations into panics.
var debugChecks = debugBuild

func checkIndex(i, size int) {
	if i < 0 || i >= size {
		panic(moerr.NewInternalErrorNoCtx("dynarray: index %d out of range [0, %d)", i, size))
	}
}

func checkNotEmpty(size int) {
	if size == 0 {
		panic(moerr.NewInternalErrorNoCtx("dynarray: empty array"))
	}
}

func checkRange(first, last, size int) {
	if first < 0 || first > last || last > size {
		panic(moerr.NewInternalErrorNoCtx("dynarray: range [%d, %d) out of [0, %d)", first, last, size))
	}
}
