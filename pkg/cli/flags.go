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

package cli

import (
	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/explain"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/aloknsingh/systemml/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliContext holds the values of the command-line flags. Flags that were
// not given on the command line leave the configuration file (or the
// defaults) in effect.
var cliCtx struct {
	configPath  string
	execMode    string
	memBudget   int64
	blockSize   int64
	parallelism int
	format      string
	metrics     bool
	verbosity   int32
}

// setCLIDefaults resets the flag values. It is called before every command
// line is run so that tests can run commands in sequence.
func setCLIDefaults() {
	for _, cmd := range hopoptCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	cliCtx.configPath = ""
	cliCtx.execMode = ""
	cliCtx.memBudget = base.DefaultLocalMemBudget
	cliCtx.blockSize = base.DefaultBlockSize
	cliCtx.parallelism = base.DefaultParallelism
	cliCtx.format = ""
	cliCtx.metrics = false
	cliCtx.verbosity = 0
}

// errFlag marks errors caused by invalid command-line flags.
var errFlag = errors.New("invalid flag")

func init() {
	setCLIDefaults()
	hopoptCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Mark(err, errFlag)
	})

	for _, cmd := range []*cobra.Command{optimizeCmd, explainCmd, dotCmd} {
		f := cmd.Flags()
		f.StringVar(&cliCtx.configPath, "config", "", "optimizer configuration file (TOML)")
		f.StringVar(&cliCtx.execMode, "exec-mode", "",
			"execution platform: hybrid, single_node, hadoop, spark or hybrid_spark")
		f.Var(humanizeutil.NewBytesValue(&cliCtx.memBudget), "mem-budget",
			"memory budget of a local operation, e.g. 512MiB")
		f.Int64Var(&cliCtx.blockSize, "block-size", base.DefaultBlockSize,
			"rows and columns per block of a distributed matrix")
		f.IntVar(&cliCtx.parallelism, "parallelism", base.DefaultParallelism,
			"number of statement blocks optimized concurrently")
		f.Int32VarP(&cliCtx.verbosity, "verbosity", "v", 0, "log verbosity")
	}
	explainCmd.Flags().StringVar(&cliCtx.format, "format", "",
		"output format: tree, table, tsv or dot (default table on a terminal, tsv otherwise)")
	optimizeCmd.Flags().BoolVar(&cliCtx.metrics, "metrics", false,
		"print the optimizer metrics in Prometheus text format")

	for _, cmd := range []*cobra.Command{optimizeCmd, explainCmd, dotCmd} {
		cmd.PreRun = func(cmd *cobra.Command, args []string) {
			log.SetVerbosity(cliCtx.verbosity)
		}
	}
}

// optimizerConfig builds the configuration from the --config file and the
// flags given on the command line, which take precedence.
func optimizerConfig(flags *pflag.FlagSet) (base.OptimizerConfig, error) {
	cfg := base.DefaultOptimizerConfig()
	if cliCtx.configPath != "" {
		var err error
		if cfg, err = base.LoadOptimizerConfig(cliCtx.configPath); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("exec-mode") {
		mode, err := base.ParseExecMode(cliCtx.execMode)
		if err != nil {
			return cfg, errors.Mark(err, errFlag)
		}
		cfg.ExecMode = mode
	}
	if flags.Changed("mem-budget") {
		cfg.LocalMemBudget = humanizeutil.Bytes(cliCtx.memBudget)
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = cliCtx.blockSize
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = cliCtx.parallelism
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Mark(err, errFlag)
	}
	return cfg, nil
}

// displayFormat returns the --format value, defaulting to a table on a
// terminal and to tab-separated values otherwise.
func displayFormat() (explain.DisplayFormat, error) {
	if cliCtx.format == "" {
		if isInteractive {
			return explain.DisplayTable, nil
		}
		return explain.DisplayTSV, nil
	}
	f, err := explain.ParseDisplayFormat(cliCtx.format)
	if err != nil {
		return f, errors.Mark(err, errFlag)
	}
	return f, nil
}

// exitCode maps an error to the process exit status: 4 for invalid flags,
// 3 for plans that fail structural checks and 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errFlag):
		return 4
	case hops.IsStructuralError(err):
		return 3
	}
	return 1
}
