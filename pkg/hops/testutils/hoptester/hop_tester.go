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

// Package hoptester runs optimizer passes from datadriven test files. Each
// test case gives a statement block (or, for the program command, a whole
// plan) in the YAML plan format and prints the DAG after the pass.
package hoptester

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/hopspec"
	"github.com/aloknsingh/systemml/pkg/hops/memo"
	"github.com/aloknsingh/systemml/pkg/hops/norm"
	"github.com/aloknsingh/systemml/pkg/hops/xform"
	"github.com/aloknsingh/systemml/pkg/util/humanizeutil"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
)

// HopTester is a helper for testing the optimizer passes. A HopTester is
// created per test file; flags given on a command apply to that command
// only.
type HopTester struct {
	Flags Flags
}

// Flags are control knobs for a command.
type Flags struct {
	// Format controls which hop properties are printed.
	Format hops.FmtFlags
	// Config is the optimizer configuration.
	Config base.OptimizerConfig
}

// New returns a HopTester with the default configuration.
func New() *HopTester {
	return &HopTester{}
}

func defaultFlags() Flags {
	return Flags{Config: base.DefaultOptimizerConfig()}
}

// RunCommand implements commands that are used by most tests:
//
//   - build: build the block and print it.
//   - cse: eliminate common subexpressions to a fixed point.
//   - reblock: assign block sizes and insert reblocks.
//   - estimate: compute memory estimates and list the hops whose size is
//     not statically known.
//   - place: estimate and place every hop.
//   - mmchain: reorder multiply chains.
//   - optimize: run the whole pipeline and print a summary.
//   - program: optimize a multi-block plan.
//
// Supported flags:
//
//   - format: hide-mem, hide-exec, hide-blocks, hide-sizes or show-all.
//   - exec-mode: the platform, e.g. single_node or spark.
//   - budget: the local memory budget, e.g. 2KiB.
//   - block-size: the global block size.
//   - default-size: the estimate for outputs of unknown size.
//   - disable: rewrites to turn off (cse, mmchain).
//   - transient-inputs, transient-outputs: variables bound in memory.
func (ht *HopTester) RunCommand(tb testing.TB, d *datadriven.TestData) string {
	ht.Flags = defaultFlags()
	for _, a := range d.CmdArgs {
		if err := ht.Flags.Set(a); err != nil {
			d.Fatalf(tb, "%s", err)
		}
	}
	if err := ht.Flags.Config.Validate(); err != nil {
		d.Fatalf(tb, "%s", err)
	}

	if d.Cmd == "program" {
		return ht.runProgram(tb, d)
	}

	dag, err := hopspec.ParseBlock("main", []byte(d.Input), hops.NewIDSequence())
	if err != nil {
		d.Fatalf(tb, "%v", err)
	}

	var out strings.Builder
	err = func() (err error) {
		defer hops.CatchOptimizerError(&err)
		ht.run(tb, d, dag, &out)
		hops.CheckDAG(dag)
		return nil
	}()
	if err != nil {
		if errors.HasAssertionFailure(err) {
			d.Fatalf(tb, "%+v", err)
		}
		return fmt.Sprintf("error: %s\n", strings.TrimSpace(err.Error()))
	}
	return out.String()
}

func (ht *HopTester) run(tb testing.TB, d *datadriven.TestData, dag *hops.DAG, out *strings.Builder) {
	ctx := context.Background()
	cfg := &ht.Flags.Config
	format := func() {
		out.WriteString(hops.FormatDAG(dag, ht.Flags.Format))
	}

	switch d.Cmd {
	case "build":
		format()

	case "cse":
		total := 0
		for n := norm.EliminateCommonSubexpressions(dag); n > 0; n = norm.EliminateCommonSubexpressions(dag) {
			total += n
		}
		fmt.Fprintf(out, "eliminated %d\n", total)
		format()

	case "reblock":
		n := norm.AssignBlockSizes(dag, cfg.ExecMode, cfg.BlockSize)
		fmt.Fprintf(out, "inserted %d\n", n)
		format()

	case "estimate":
		gaps := memo.NewEstimator(cfg.EffectiveDefaultSize()).EstimateDAG(dag)
		format()
		for _, g := range gaps {
			fmt.Fprintf(out, "gap: %s\n", g)
		}

	case "place":
		memo.NewEstimator(cfg.EffectiveDefaultSize()).EstimateDAG(dag)
		counts := xform.PlaceDAG(ctx, dag, cfg)
		fmt.Fprintf(out, "local %d, distributed %d\n",
			counts[hops.ExecTypeLocal],
			counts[hops.ExecTypeDistributed]+counts[hops.ExecTypeDistributedSpark])
		format()

	case "mmchain":
		n := xform.OptimizeMMChains(ctx, dag)
		fmt.Fprintf(out, "reordered %d\n", n)
		format()

	case "optimize":
		o, err := xform.NewOptimizer(*cfg, nil)
		if err != nil {
			d.Fatalf(tb, "%v", err)
		}
		res, err := o.Optimize(ctx, dag)
		if err != nil {
			panic(err)
		}
		writeResult(out, &res)
		format()

	default:
		d.Fatalf(tb, "unsupported command: %s", d.Cmd)
	}
}

func (ht *HopTester) runProgram(tb testing.TB, d *datadriven.TestData) string {
	p, err := hopspec.Parse([]byte(d.Input))
	if err != nil {
		d.Fatalf(tb, "%v", err)
	}
	o, err := xform.NewOptimizer(ht.Flags.Config, nil)
	if err != nil {
		d.Fatalf(tb, "%v", err)
	}
	results, err := o.OptimizeProgram(context.Background(), p)
	if err != nil {
		return fmt.Sprintf("error: %s\n", strings.TrimSpace(err.Error()))
	}
	var out strings.Builder
	for i, dag := range p.Blocks {
		fmt.Fprintf(&out, "block %s: ", dag.Name)
		writeResult(&out, &results[i])
		out.WriteString(hops.FormatDAG(dag, ht.Flags.Format))
	}
	return out.String()
}

func writeResult(out *strings.Builder, res *xform.Result) {
	fmt.Fprintf(out, "eliminated %d, reblocks %d, chains %d, gaps %d, local %d, distributed %d\n",
		res.Eliminated, res.ReblocksInserted, res.ChainsReordered, len(res.Gaps),
		res.ExecTypes[hops.ExecTypeLocal],
		res.ExecTypes[hops.ExecTypeDistributed]+res.ExecTypes[hops.ExecTypeDistributedSpark])
}

// Set parses an argument that refers to a flag.
// See HopTester.RunCommand for supported flags.
func (f *Flags) Set(arg datadriven.CmdArg) error {
	switch arg.Key {
	case "format":
		if len(arg.Vals) == 0 {
			return errors.New("format flag requires value(s)")
		}
		f.Format = 0
		m := map[string]hops.FmtFlags{
			"show-all":    hops.FmtShowAll,
			"hide-mem":    hops.FmtHideMem,
			"hide-exec":   hops.FmtHideExec,
			"hide-blocks": hops.FmtHideBlocks,
			"hide-sizes":  hops.FmtHideSizes,
		}
		for _, v := range arg.Vals {
			val, ok := m[v]
			if !ok {
				return errors.Newf("unknown format value %s", v)
			}
			f.Format |= val
		}

	case "exec-mode":
		if len(arg.Vals) != 1 {
			return errors.New("exec-mode requires one argument")
		}
		mode, err := base.ParseExecMode(arg.Vals[0])
		if err != nil {
			return err
		}
		f.Config.ExecMode = mode

	case "budget", "default-size":
		if len(arg.Vals) != 1 {
			return errors.Newf("%s requires one argument", arg.Key)
		}
		n, err := humanizeutil.ParseBytes(arg.Vals[0])
		if err != nil {
			return err
		}
		if arg.Key == "budget" {
			f.Config.LocalMemBudget = humanizeutil.Bytes(n)
		} else {
			f.Config.DefaultSize = humanizeutil.Bytes(n)
		}

	case "block-size":
		if len(arg.Vals) != 1 {
			return errors.New("block-size requires one argument")
		}
		var n int64
		if _, err := fmt.Sscan(arg.Vals[0], &n); err != nil {
			return errors.Wrap(err, "block-size")
		}
		f.Config.BlockSize = n

	case "disable":
		for _, v := range arg.Vals {
			switch v {
			case "cse":
				f.Config.Rewrites.CSE = false
			case "mmchain":
				f.Config.Rewrites.MMChain = false
			default:
				return errors.Newf("unknown rewrite %s", v)
			}
		}

	case "transient-inputs":
		f.Config.Rewrites.TransientInputs = arg.Vals

	case "transient-outputs":
		f.Config.Rewrites.TransientOutputs = arg.Vals

	default:
		return errors.Newf("unknown argument: %s", arg.Key)
	}
	return nil
}
