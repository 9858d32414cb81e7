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

package malloc

import (
	"hash/maphash"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"unsafe"
)

// StacktraceID identifies a call stack; identical stacks share one id and
// one stored copy of their program counters.
type StacktraceID uint64

var stacktraceSeed = maphash.MakeSeed()

func GetStacktraceID(skip int) StacktraceID {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2+skip, pcs)
	pcs = pcs[:n]

	var hasher maphash.Hash
	hasher.SetSeed(stacktraceSeed)
	for _, pc := range pcs {
		hasher.Write(
			unsafe.Slice((*byte)(unsafe.Pointer(&pc)), unsafe.Sizeof(pc)),
		)
	}
	id := StacktraceID(hasher.Sum64())
	stackIDToInfo.LoadOrStore(id, pcs)
	return id
}

var stackIDToInfo sync.Map // StacktraceID -> []uintptr

func (s StacktraceID) String() string {
	v, ok := stackIDToInfo.Load(s)
	if !ok {
		panic("bad stack id")
	}
	return pcsToString(v.([]uintptr))
}

func pcsToString(pcs []uintptr) string {
	buf := new(strings.Builder)

	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()

		buf.WriteString(frame.Function)
		buf.WriteString("\n\t")
		buf.WriteString(frame.File)
		buf.WriteString(":")
		buf.WriteString(strconv.Itoa(frame.Line))
		buf.WriteString("\n")

		if !more {
			break
		}
	}

	return buf.String()
}
