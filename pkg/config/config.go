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

package config

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/dynarray/pkg/common/malloc"
	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	"github.com/matrixorigin/dynarray/pkg/container/dynarray"
	"github.com/matrixorigin/dynarray/pkg/logutil"
)

const (
	AllocatorGo    = "go"
	AllocatorClass = "class"
	AllocatorMmap  = "mmap"
)

var (
	defaultClassBufferSize uint64 = 64 * malloc.MB
	defaultWorkers                = 4
	defaultOps                    = 1_000_000
	defaultElementCount           = 1024
)

// Config is the configuration of dynarray-bench.
type Config struct {
	Log       logutil.LogConfig     `toml:"log"`
	Growth    dynarray.GrowthPolicy `toml:"growth"`
	Allocator AllocatorConfig       `toml:"allocator"`
	Workload  WorkloadConfig        `toml:"workload"`
	Metrics   MetricsConfig         `toml:"metrics"`
}

// AllocatorConfig selects the byte level allocator backing the arrays.
type AllocatorConfig struct {
	// Kind is one of go, class and mmap.
	Kind string `toml:"kind"`
	// Limit caps the bytes in use across all arrays. 0 means no limit.
	Limit uint64 `toml:"limit"`
	// ClassBufferSize is the total size of freed buffers the class
	// allocator keeps for reuse.
	ClassBufferSize uint64 `toml:"class-buffer-size"`
	// CheckLeaks reports buffers not returned when the run ends.
	CheckLeaks bool `toml:"check-leaks"`
}

type WorkloadConfig struct {
	// Workers is the number of concurrent workers, each with its own array.
	Workers int `toml:"workers"`
	// Ops is the number of operations each worker runs.
	Ops int `toml:"ops"`
	// ElementCount is the size a worker keeps its array around.
	ElementCount int   `toml:"element-count"`
	Seed         int64 `toml:"seed"`
}

type MetricsConfig struct {
	// ListenAddress serves /metrics when not empty.
	ListenAddress string `toml:"listen-address"`
}

// Parse reads a Config from the toml file at path. Unknown keys are
// rejected.
func Parse(path string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, moerr.NewBadConfigNoCtx("decode %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, moerr.NewBadConfigNoCtx("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FillDefaults sets every unset field to its default.
func (c *Config) FillDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	c.Growth.FillDefaults()
	if c.Allocator.Kind == "" {
		c.Allocator.Kind = AllocatorGo
	}
	c.Allocator.Kind = strings.ToLower(c.Allocator.Kind)
	if c.Allocator.ClassBufferSize == 0 {
		c.Allocator.ClassBufferSize = defaultClassBufferSize
	}
	if c.Workload.Workers == 0 {
		c.Workload.Workers = defaultWorkers
	}
	if c.Workload.Ops == 0 {
		c.Workload.Ops = defaultOps
	}
	if c.Workload.ElementCount == 0 {
		c.Workload.ElementCount = defaultElementCount
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Growth.Validate(); err != nil {
		return err
	}
	switch c.Allocator.Kind {
	case AllocatorGo, AllocatorClass, AllocatorMmap:
	default:
		return moerr.NewBadConfigNoCtx("unknown allocator kind %q", c.Allocator.Kind)
	}
	if c.Workload.Workers < 0 {
		return moerr.NewBadConfigNoCtx("workload workers %d < 0", c.Workload.Workers)
	}
	if c.Workload.Ops < 0 {
		return moerr.NewBadConfigNoCtx("workload ops %d < 0", c.Workload.Ops)
	}
	if c.Workload.ElementCount < 0 {
		return moerr.NewBadConfigNoCtx("workload element-count %d < 0", c.Workload.ElementCount)
	}
	return nil
}
