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
	"context"
	"fmt"
	"io"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/explain"
	"github.com/aloknsingh/systemml/pkg/hops/hopspec"
	"github.com/aloknsingh/systemml/pkg/hops/xform"
	"github.com/aloknsingh/systemml/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <plan.yaml>",
	Short: "optimize a plan and summarize the changes",
	Long: `
Optimizes every statement block of the plan and prints one line per block
with the number of eliminated subexpressions, inserted reblocks, reordered
multiplication chains, hops of unknown size and hops per placement.
`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

var explainCmd = &cobra.Command{
	Use:   "explain <plan.yaml>",
	Short: "optimize a plan and print its hops",
	Long: `
Optimizes every statement block of the plan and prints its hops with their
sizes, memory estimates and placements.
`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

var dotCmd = &cobra.Command{
	Use:   "dot <plan.yaml>",
	Short: "optimize a plan and print it as Graphviz graphs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx.format = explain.DisplayDOT.String()
		return runExplain(cmd, args)
	},
}

// optimizePlan loads the plan at path and optimizes it with the
// configuration given by the flags. reg may be nil.
func optimizePlan(
	cmd *cobra.Command, path string, reg prometheus.Registerer,
) (*hops.Program, []xform.Result, error) {
	cfg, err := optimizerConfig(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	prog, err := hopspec.Load(path)
	if err != nil {
		return nil, nil, err
	}
	o, err := xform.NewOptimizer(cfg, xform.NewMetrics(reg))
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()
	log.VEventf(ctx, 1, "optimizing %d blocks of %s in %s mode", len(prog.Blocks), path, cfg.ExecMode)
	results, err := o.OptimizeProgram(ctx, prog)
	if err != nil {
		return nil, nil, err
	}
	return prog, results, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	var reg *prometheus.Registry
	if cliCtx.metrics {
		reg = prometheus.NewRegistry()
	}
	_, results, err := optimizePlan(cmd, args[0], registerer(reg))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	writeSummary(w, results)
	if reg != nil {
		return writeMetrics(w, reg)
	}
	return nil
}

// registerer avoids passing a typed nil *Registry as a non-nil interface.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

func runExplain(cmd *cobra.Command, args []string) error {
	f, err := displayFormat()
	if err != nil {
		return err
	}
	prog, _, err := optimizePlan(cmd, args[0], nil)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, d := range prog.Blocks {
		if err := explain.Write(w, d, f, hops.FmtShowAll); err != nil {
			return err
		}
	}
	return nil
}

// writeSummary renders one row per optimized block.
func writeSummary(w io.Writer, results []xform.Result) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"block", "rewritten", "cse", "reblocks", "chains", "gaps", "local", "distributed"})
	for i := range results {
		res := &results[i]
		table.Append([]string{
			res.Block,
			fmt.Sprint(res.PersistentRewritten),
			fmt.Sprint(res.Eliminated),
			fmt.Sprint(res.ReblocksInserted),
			fmt.Sprint(res.ChainsReordered),
			fmt.Sprint(len(res.Gaps)),
			fmt.Sprint(res.ExecTypes[hops.ExecTypeLocal]),
			fmt.Sprint(res.ExecTypes[hops.ExecTypeDistributed] + res.ExecTypes[hops.ExecTypeDistributedSpark]),
		})
	}
	table.Render()
	for i := range results {
		for _, g := range results[i].Gaps {
			fmt.Fprintf(w, "%s: %s\n", results[i].Block, g)
		}
	}
}

// writeMetrics prints the gathered metrics in the Prometheus text
// exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	return encodeFamilies(w, families)
}

func encodeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrapf(err, "encoding %s", mf.GetName())
		}
	}
	return nil
}
