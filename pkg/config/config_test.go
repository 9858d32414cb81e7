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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
	"github.com/matrixorigin/dynarray/pkg/container/dynarray"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParse(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[growth]
initial-cap = 16
multiplier = 3

[allocator]
kind = "CLASS"
limit = 1048576
check-leaks = true

[workload]
workers = 2
ops = 100
seed = 7

[metrics]
listen-address = "127.0.0.1:9090"
`)
	cfg, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, dynarray.GrowthPolicy{InitialCap: 16, Multiplier: 3}, cfg.Growth)
	require.Equal(t, AllocatorClass, cfg.Allocator.Kind)
	require.Equal(t, uint64(1048576), cfg.Allocator.Limit)
	require.Equal(t, defaultClassBufferSize, cfg.Allocator.ClassBufferSize)
	require.True(t, cfg.Allocator.CheckLeaks)
	require.Equal(t, 2, cfg.Workload.Workers)
	require.Equal(t, 100, cfg.Workload.Ops)
	require.Equal(t, defaultElementCount, cfg.Workload.ElementCount)
	require.Equal(t, int64(7), cfg.Workload.Seed)
	require.Equal(t, "127.0.0.1:9090", cfg.Metrics.ListenAddress)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, dynarray.DefaultGrowthPolicy(), cfg.Growth)
	require.Equal(t, AllocatorGo, cfg.Allocator.Kind)
	require.Equal(t, defaultWorkers, cfg.Workload.Workers)
	require.Equal(t, defaultOps, cfg.Workload.Ops)
	require.Equal(t, "info", cfg.Log.Level)
	require.Empty(t, cfg.Metrics.ListenAddress)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "[growth"},
		{name: "unknown key", content: "[growth]\nfactor = 2\n"},
		{name: "bad multiplier", content: "[growth]\nmultiplier = 1\n"},
		{name: "bad kind", content: "[allocator]\nkind = \"jemalloc\"\n"},
		{name: "negative ops", content: "[workload]\nops = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, tt.content))
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), "%v", err)
		})
	}

	_, err := Parse(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}
