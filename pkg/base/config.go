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

package base

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// ExecMode is the runtime platform the optimizer plans for.
type ExecMode int

const (
	// ExecModeHybrid places each operation locally or on the distributed
	// (MapReduce) engine depending on its memory estimate.
	ExecModeHybrid ExecMode = iota
	// ExecModeSingleNode places everything locally and disables blocking.
	ExecModeSingleNode
	// ExecModeHadoop places everything on the distributed engine.
	ExecModeHadoop
	// ExecModeSpark places everything on the Spark engine.
	ExecModeSpark
	// ExecModeHybridSpark is hybrid placement with Spark as the distributed
	// engine.
	ExecModeHybridSpark
)

var execModeNames = []string{"hybrid", "single_node", "hadoop", "spark", "hybrid_spark"}

func (m ExecMode) String() string {
	if int(m) < len(execModeNames) {
		return execModeNames[m]
	}
	return "unknown"
}

// SafeValue implements redact.SafeValue.
func (ExecMode) SafeValue() {}

var _ redact.SafeValue = ExecMode(0)

// ParseExecMode parses the name of an execution mode.
func ParseExecMode(s string) (ExecMode, error) {
	for i, n := range execModeNames {
		if strings.EqualFold(n, s) || strings.EqualFold(strings.ReplaceAll(n, "_", "-"), s) {
			return ExecMode(i), nil
		}
	}
	return 0, errors.Newf("unknown exec mode %q (expected one of: %s)",
		s, redact.Safe(strings.Join(execModeNames, ", ")))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ExecMode) UnmarshalText(text []byte) error {
	v, err := ParseExecMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m ExecMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// IsSingleNode returns true if nothing may run distributed.
func (m ExecMode) IsSingleNode() bool { return m == ExecModeSingleNode }

// IsHybrid returns true if placement is decided by memory estimates.
func (m ExecMode) IsHybrid() bool { return m == ExecModeHybrid || m == ExecModeHybridSpark }

// IsSpark returns true if the distributed engine is Spark.
func (m ExecMode) IsSpark() bool { return m == ExecModeSpark || m == ExecModeHybridSpark }

// RewriteConfig toggles optional rewrites.
type RewriteConfig struct {
	CSE     bool `toml:"cse"`
	MMChain bool `toml:"mmchain"`

	// TransientInputs and TransientOutputs name persistent reads and writes
	// that are bound in memory by an embedding application and are turned
	// into transient reads and writes.
	TransientInputs  []string `toml:"transient_inputs"`
	TransientOutputs []string `toml:"transient_outputs"`
}

// OptimizerConfig is the platform configuration consumed by the optimizer.
type OptimizerConfig struct {
	ExecMode ExecMode `toml:"exec_mode"`

	// LocalMemBudget is the memory available to a local operation. An
	// operation whose total estimate is below it runs locally.
	LocalMemBudget humanizeutil.Bytes `toml:"local_mem_budget"`

	// BlockSize is the global block size of distributed matrices.
	BlockSize int64 `toml:"block_size"`

	// DefaultSize is the estimate used for outputs of unknown size. Zero
	// means max(LocalMemBudget, MinDefaultSize), so that such outputs never
	// fit the local budget.
	DefaultSize humanizeutil.Bytes `toml:"default_size"`

	// Parallelism is the number of statement blocks optimized concurrently.
	Parallelism int `toml:"parallelism"`

	Rewrites RewriteConfig `toml:"rewrites"`
}

// DefaultOptimizerConfig returns the default configuration.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		ExecMode:       ExecModeHybrid,
		LocalMemBudget: DefaultLocalMemBudget,
		BlockSize:      DefaultBlockSize,
		Parallelism:    DefaultParallelism,
		Rewrites: RewriteConfig{
			CSE:     true,
			MMChain: true,
		},
	}
}

// LoadOptimizerConfig reads a TOML configuration file. Settings missing from
// the file keep their defaults.
func LoadOptimizerConfig(path string) (OptimizerConfig, error) {
	cfg := DefaultOptimizerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading optimizer config")
	}
	if err := cfg.Decode(string(data)); err != nil {
		return cfg, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Decode overlays the TOML document data onto the configuration and
// validates the result.
func (c *OptimizerConfig) Decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return errors.Wrap(err, "decoding optimizer config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Newf("unknown optimizer config keys: %s", strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate checks the configuration for consistency.
func (c *OptimizerConfig) Validate() error {
	if c.LocalMemBudget <= 0 {
		return errors.Newf("local_mem_budget must be positive, got %d", redact.Safe(int64(c.LocalMemBudget)))
	}
	if c.BlockSize <= 0 {
		return errors.Newf("block_size must be positive, got %d", redact.Safe(c.BlockSize))
	}
	if c.DefaultSize < 0 {
		return errors.Newf("default_size must not be negative, got %d", redact.Safe(int64(c.DefaultSize)))
	}
	if c.Parallelism <= 0 {
		return errors.Newf("parallelism must be positive, got %d", redact.Safe(c.Parallelism))
	}
	if c.ExecMode < ExecModeHybrid || c.ExecMode > ExecModeHybridSpark {
		return errors.Newf("invalid exec mode %d", redact.Safe(int(c.ExecMode)))
	}
	return nil
}

// MemBudget returns the local memory budget in bytes.
func (c *OptimizerConfig) MemBudget() float64 {
	return float64(c.LocalMemBudget)
}

// EffectiveDefaultSize returns the estimate for outputs of unknown size.
func (c *OptimizerConfig) EffectiveDefaultSize() float64 {
	if c.DefaultSize > 0 {
		return float64(c.DefaultSize)
	}
	return float64(max(int64(c.LocalMemBudget), MinDefaultSize))
}
