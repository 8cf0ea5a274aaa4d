// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package base_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptimizerConfig(t *testing.T) {
	cfg := base.DefaultOptimizerConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, base.ExecModeHybrid, cfg.ExecMode)
	require.Equal(t, float64(2<<30), cfg.MemBudget())
	require.Equal(t, float64(2<<30), cfg.EffectiveDefaultSize())
	require.True(t, cfg.Rewrites.CSE)
	require.True(t, cfg.Rewrites.MMChain)

	cfg.LocalMemBudget = 1 << 20
	require.Equal(t, float64(base.MinDefaultSize), cfg.EffectiveDefaultSize())
	cfg.DefaultSize = 4096
	require.Equal(t, float64(4096), cfg.EffectiveDefaultSize())
}

func TestDecodeOptimizerConfig(t *testing.T) {
	testCases := []struct {
		name   string
		doc    string
		err    string
		verify func(t *testing.T, cfg base.OptimizerConfig)
	}{
		{
			name: "sizes",
			doc: `
exec_mode = "single_node"
local_mem_budget = "512MiB"
block_size = 2000
default_size = 1000000

[rewrites]
cse = false
transient_inputs = ["X", "Y"]
`,
			verify: func(t *testing.T, cfg base.OptimizerConfig) {
				require.Equal(t, base.ExecModeSingleNode, cfg.ExecMode)
				require.Equal(t, float64(512<<20), cfg.MemBudget())
				require.EqualValues(t, 2000, cfg.BlockSize)
				require.Equal(t, float64(1000000), cfg.EffectiveDefaultSize())
				require.False(t, cfg.Rewrites.CSE)
				require.True(t, cfg.Rewrites.MMChain)
				require.Equal(t, []string{"X", "Y"}, cfg.Rewrites.TransientInputs)
			},
		},
		{
			name: "hyphenated mode",
			doc:  `exec_mode = "hybrid-spark"`,
			verify: func(t *testing.T, cfg base.OptimizerConfig) {
				require.True(t, cfg.ExecMode.IsHybrid())
				require.True(t, cfg.ExecMode.IsSpark())
			},
		},
		{name: "bad mode", doc: `exec_mode = "mainframe"`, err: `unknown exec mode "mainframe"`},
		{name: "bad budget", doc: `local_mem_budget = "lots"`, err: `parsing "lots"`},
		{name: "zero block", doc: `block_size = 0`, err: "block_size must be positive"},
		{name: "unknown key", doc: `colour = "red"`, err: "unknown optimizer config keys: colour"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base.DefaultOptimizerConfig()
			err := cfg.Decode(tc.doc)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			tc.verify(t, cfg)
		})
	}
}

func TestLoadOptimizerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`exec_mode = "hadoop"`), 0644))

	cfg, err := base.LoadOptimizerConfig(path)
	require.NoError(t, err)
	require.Equal(t, base.ExecModeHadoop, cfg.ExecMode)
	require.EqualValues(t, base.DefaultBlockSize, cfg.BlockSize)

	_, err = base.LoadOptimizerConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "reading optimizer config")
}
