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

package xform_test

import (
	"context"
	"testing"

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/aloknsingh/systemml/pkg/hops/hopspec"
	"github.com/aloknsingh/systemml/pkg/hops/xform"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const linregBlock = `
hops:
  - {ref: X, op: pread, format: text, dims: [1000, 10], nnz: 10000}
  - {ref: X2, op: pread, name: X, format: text, dims: [1000, 10], nnz: 10000}
  - {ref: y, op: pread, format: text, dims: [1000, 1], nnz: 1000}
  - {ref: Xt, op: reorg, fn: t, inputs: [X]}
  - {ref: Xt2, op: reorg, fn: t, inputs: [X2]}
  - {ref: XtX, op: matmult, inputs: [Xt, X]}
  - {ref: Xty, op: matmult, inputs: [Xt2, y]}
  - {ref: A, op: pwrite, inputs: [XtX]}
  - {ref: b, op: pwrite, inputs: [Xty]}
roots: [A, b]
`

func parseBlock(t *testing.T, name, spec string) *hops.DAG {
	d, err := hopspec.ParseBlock(name, []byte(spec), hops.NewIDSequence())
	require.NoError(t, err)
	return d
}

func newOptimizer(t *testing.T, cfg base.OptimizerConfig, m *xform.Metrics) *xform.Optimizer {
	o, err := xform.NewOptimizer(cfg, m)
	require.NoError(t, err)
	return o
}

func TestOptimize(t *testing.T) {
	d := parseBlock(t, "main", linregBlock)
	o := newOptimizer(t, base.DefaultOptimizerConfig(), nil)

	res, err := o.Optimize(context.Background(), d)
	require.NoError(t, err)
	exp := xform.Result{
		Block: "main",
		// The second read of X and the second transpose.
		Eliminated: 2,
		// One reblock per text read.
		ReblocksInserted: 2,
		ExecTypes: map[hops.ExecType]int{
			hops.ExecTypeLocal:       7,
			hops.ExecTypeDistributed: 2,
		},
	}
	if diff := cmp.Diff(exp, res); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	require.Equal(t, 9, d.Len())
	hops.CheckDAG(d)
	require.True(t, hops.CheckEstimates(d))
	for _, h := range d.Hops() {
		if h.Op == hops.ReblockOp {
			require.Equal(t, hops.ExecTypeDistributed, h.ExecType)
		}
		require.False(t, h.RequiresRecompile)
	}
}

func TestOptimizeRejectsInvalidConfig(t *testing.T) {
	cfg := base.DefaultOptimizerConfig()
	cfg.BlockSize = 0
	_, err := xform.NewOptimizer(cfg, nil)
	require.ErrorContains(t, err, "block_size must be positive")
}

func TestOptimizeReordersChain(t *testing.T) {
	d := parseBlock(t, "chain", `
hops:
  - {ref: A, op: tread, dims: [10, 1]}
  - {ref: B, op: tread, dims: [1, 100]}
  - {ref: C, op: tread, dims: [100, 1]}
  - {ref: D, op: tread, dims: [1, 1000]}
  - {ref: AB, op: matmult, inputs: [A, B]}
  - {ref: ABC, op: matmult, inputs: [AB, C]}
  - {ref: ABCD, op: matmult, inputs: [ABC, D]}
  - {ref: out, op: twrite, inputs: [ABCD]}
roots: [out]
`)
	cfg := base.DefaultOptimizerConfig()
	res, err := newOptimizer(t, cfg, nil).Optimize(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, 1, res.ChainsReordered)
	require.True(t, hops.CheckEstimates(d))

	// The reordered intermediates are re-estimated with their new sizes.
	for _, h := range d.Hops() {
		if h.IsMatrixMultiply() && h.Rows == 1 && h.Cols == 1 {
			require.Equal(t, float64(44+8), h.OutputMem)
			return
		}
	}
	t.Fatal("no 1x1 intermediate after reordering")
}

func TestOptimizeUnknownSizes(t *testing.T) {
	d := parseBlock(t, "unknown", `
hops:
  - {ref: U, op: tread}
  - {ref: E, op: unary, fn: exp, inputs: [U]}
  - {ref: out, op: twrite, inputs: [E]}
roots: [out]
`)
	cfg := base.DefaultOptimizerConfig()
	res, err := newOptimizer(t, cfg, nil).Optimize(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, res.Gaps, 3)
	for _, g := range res.Gaps {
		require.Equal(t, "output size unknown", g.Reason)
	}
	// The default size equals the budget, and an estimate equal to the
	// budget does not fit.
	require.Equal(t, map[hops.ExecType]int{hops.ExecTypeDistributed: 3}, res.ExecTypes)
	for _, h := range d.Hops() {
		require.True(t, h.RequiresRecompile)
	}
}

func TestOptimizeWorstCase(t *testing.T) {
	d := parseBlock(t, "worst", `
hops:
  - {ref: X, op: tread, dims: [100, 100], nnz: 10000}
  - {ref: r, op: param, fn: rmempty, inputs: [X]}
  - {ref: out, op: twrite, inputs: [r]}
roots: [out]
`)
	res, err := newOptimizer(t, base.DefaultOptimizerConfig(), nil).Optimize(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, res.Gaps, 2)
	require.Equal(t, "worst-case size [100,100,-1] inferred from inputs", res.Gaps[0].Reason)
	require.Equal(t, map[hops.ExecType]int{hops.ExecTypeLocal: 3}, res.ExecTypes)
}

func TestOptimizeStructuralError(t *testing.T) {
	d := parseBlock(t, "bad", `
hops:
  - {ref: A, op: tread, dims: [10, 1]}
  - {ref: B, op: tread, dims: [2, 100]}
  - {ref: C, op: tread, dims: [100, 1]}
  - {ref: AB, op: matmult, inputs: [A, B], pos: [7, 5]}
  - {ref: ABC, op: matmult, inputs: [AB, C], pos: [7, 3]}
  - {ref: out, op: twrite, inputs: [ABC]}
roots: [out]
`)
	reg := prometheus.NewRegistry()
	m := xform.NewMetrics(reg)
	_, err := newOptimizer(t, base.DefaultOptimizerConfig(), m).Optimize(context.Background(), d)
	require.True(t, hops.IsStructuralError(err), "%+v", err)
	require.ErrorContains(t, err, "line 7, column 3: matrix dimension mismatch")
	require.Equal(t, float64(1), testutil.ToFloat64(m.Failures))
	require.Equal(t, float64(0), testutil.ToFloat64(m.Runs))
}

func TestOptimizeRejectsCycle(t *testing.T) {
	d := hops.NewDAG("cyclic", hops.NewIDSequence())
	a := d.ConstructRead("A", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	a.SetDims(10, 10, -1)
	b := d.ConstructUnary(hops.OpSqrt, a)
	d.AddRoot(d.ConstructWrite("B", hops.TransientWrite, b, hops.FormatBinary, ""))
	d.AddInput(a, b)

	m := xform.NewMetrics(prometheus.NewRegistry())
	_, err := newOptimizer(t, base.DefaultOptimizerConfig(), m).Optimize(context.Background(), d)
	require.ErrorContains(t, err, "cycle through hop")
	require.True(t, errors.HasAssertionFailure(err), "%+v", err)
	require.False(t, hops.IsStructuralError(err))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Failures))
}

func TestOptimizeSingleNodeReblock(t *testing.T) {
	d := parseBlock(t, "main", `
hops:
  - {ref: X, op: tread, dims: [100, 100], block: [1000, 1000]}
  - {ref: rb, op: reblock, block: [500, 500], inputs: [X]}
  - {ref: out, op: twrite, inputs: [rb]}
roots: [out]
`)
	cfg := base.DefaultOptimizerConfig()
	cfg.ExecMode = base.ExecModeSingleNode
	res, err := newOptimizer(t, cfg, nil).Optimize(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, map[hops.ExecType]int{hops.ExecTypeLocal: 3}, res.ExecTypes)
	for _, h := range d.Hops() {
		require.Equal(t, hops.ExecTypeLocal, h.ExecType, "%s", h.OpString())
		require.Equal(t, int64(-1), h.RowsInBlock)
	}
}

func TestOptimizeProgram(t *testing.T) {
	p := hops.NewProgram()
	for _, name := range []string{"b1", "b2", "b3", "b4", "b5"} {
		require.NoError(t, hopspec.BuildBlock(p.NewBlock(name), []byte(linregBlock)))
	}

	reg := prometheus.NewRegistry()
	m := xform.NewMetrics(reg)
	cfg := base.DefaultOptimizerConfig()
	cfg.Parallelism = 2
	results, err := newOptimizer(t, cfg, m).OptimizeProgram(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, res := range results {
		require.Equal(t, p.Blocks[i].Name, res.Block)
		require.Equal(t, 2, res.Eliminated)
	}
	require.Equal(t, float64(5), testutil.ToFloat64(m.Runs))
	require.Equal(t, float64(10), testutil.ToFloat64(m.CSEEliminated))
	require.Equal(t, float64(35), testutil.ToFloat64(m.ExecTypes.WithLabelValues("local")))
	require.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestOptimizeProgramFailure(t *testing.T) {
	p := hops.NewProgram()
	require.NoError(t, hopspec.BuildBlock(p.NewBlock("good"), []byte(linregBlock)))
	bad := p.NewBlock("bad")
	a := bad.ConstructRead("A", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	a.SetDims(10, 1, -1)
	b := bad.ConstructRead("B", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	b.SetDims(2, 100, -1)
	c := bad.ConstructRead("C", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	c.SetDims(100, 1, -1)
	bad.AddRoot(bad.ConstructMatMult(bad.ConstructMatMult(a, b), c))

	_, err := newOptimizer(t, base.DefaultOptimizerConfig(), nil).OptimizeProgram(context.Background(), p)
	require.ErrorContains(t, err, "optimizing block bad")
	require.True(t, hops.IsStructuralError(err))
}
