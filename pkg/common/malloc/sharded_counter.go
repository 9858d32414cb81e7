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

import "math/rand/v2"

type counterValue interface {
	~int64 | ~uint64
}

// ShardedCounter spreads Add calls over padded shards to avoid cache line
// contention; readers fold the shards with Each.
type ShardedCounter[T counterValue, A any, P interface {
	*A
	Add(T) T
	Load() T
}] struct {
	shards []shardedCounterShard[A]
}

type shardedCounterShard[A any] struct {
	value A
	_     [64]byte
}

func NewShardedCounter[T counterValue, A any, P interface {
	*A
	Add(T) T
	Load() T
}](shards int) *ShardedCounter[T, A, P] {
	return &ShardedCounter[T, A, P]{
		shards: make([]shardedCounterShard[A], max(shards, 1)),
	}
}

func (s *ShardedCounter[T, A, P]) Add(v T) {
	shard := rand.IntN(len(s.shards))
	P(&s.shards[shard].value).Add(v)
}

func (s *ShardedCounter[T, A, P]) Load() (ret T) {
	for i := range s.shards {
		ret += P(&s.shards[i].value).Load()
	}
	return
}

func (s *ShardedCounter[T, A, P]) Each(fn func(P)) {
	for i := range s.shards {
		fn(P(&s.shards[i].value))
	}
}

