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
	"github.com/aloknsingh/systemml/pkg/hops/memo"
	"github.com/aloknsingh/systemml/pkg/hops/xform"
	"github.com/stretchr/testify/require"
)

func TestSelectExecTypeBudget(t *testing.T) {
	d := newDAG()
	h := read(d, "X", 10, 10)
	h.TotalMem = 1000

	require.Equal(t, hops.ExecTypeDistributed, xform.SelectExecType(h, 1000, hops.ExecTypeDistributed),
		"an estimate equal to the budget does not fit")
	require.Equal(t, hops.ExecTypeLocal, xform.SelectExecType(h, 1001, hops.ExecTypeDistributed))
	require.Equal(t, hops.ExecTypeDistributedSpark, xform.SelectExecType(h, 999, hops.ExecTypeDistributedSpark))

	h.ForcedExecType = hops.ExecTypeLocal
	require.Equal(t, hops.ExecTypeLocal, xform.SelectExecType(h, 1, hops.ExecTypeDistributed))

	h.ForcedExecType = hops.ExecTypeNone
	h.ResetMemEstimates()
	require.Panics(t, func() { xform.SelectExecType(h, 1, hops.ExecTypeDistributed) })
}

func TestForcedExecType(t *testing.T) {
	d := newDAG()
	x := read(d, "X", 10, 10)
	lit := d.ConstructLiteral(hops.ValueTypeInt, "1")
	rb := d.ConstructReblock(x, 1000, 1000)

	testCases := []struct {
		mode         base.ExecMode
		x, lit, rblk hops.ExecType
	}{
		{base.ExecModeHybrid, hops.ExecTypeNone, hops.ExecTypeLocal, hops.ExecTypeDistributed},
		{base.ExecModeHybridSpark, hops.ExecTypeNone, hops.ExecTypeLocal, hops.ExecTypeDistributedSpark},
		{base.ExecModeSingleNode, hops.ExecTypeLocal, hops.ExecTypeLocal, hops.ExecTypeLocal},
		{base.ExecModeHadoop, hops.ExecTypeDistributed, hops.ExecTypeDistributed, hops.ExecTypeDistributed},
		{base.ExecModeSpark, hops.ExecTypeDistributedSpark, hops.ExecTypeDistributedSpark, hops.ExecTypeDistributedSpark},
	}
	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			require.Equal(t, tc.x, xform.ForcedExecType(x, tc.mode))
			require.Equal(t, tc.lit, xform.ForcedExecType(lit, tc.mode))
			require.Equal(t, tc.rblk, xform.ForcedExecType(rb, tc.mode))
		})
	}
}

func TestPlaceDAG(t *testing.T) {
	build := func() (*hops.DAG, *hops.Hop, *hops.Hop) {
		d := newDAG()
		x := read(d, "X", 10, 10)
		mm := d.ConstructMatMult(x, x)
		d.AddRoot(d.ConstructWrite("out", hops.TransientWrite, mm, hops.FormatBinary, ""))
		memo.NewEstimator(1 << 30).EstimateDAG(d)
		return d, x, mm
	}
	cfg := base.DefaultOptimizerConfig()
	// X is 844 bytes; the multiply needs 844 for its output and twice 844
	// for its inputs.
	cfg.LocalMemBudget = 2000

	d, x, mm := build()
	require.Equal(t, float64(844), x.TotalMem)
	require.Equal(t, float64(3*844), mm.TotalMem)
	counts := xform.PlaceDAG(context.Background(), d, &cfg)
	require.Equal(t, map[hops.ExecType]int{hops.ExecTypeLocal: 2, hops.ExecTypeDistributed: 1}, counts)
	require.Equal(t, hops.ExecTypeLocal, x.ExecType)
	require.Equal(t, hops.ExecTypeDistributed, mm.ExecType)

	// A placement forced by the caller is kept on a hybrid platform.
	d, x, _ = build()
	x.ForcedExecType = hops.ExecTypeDistributed
	xform.PlaceDAG(context.Background(), d, &cfg)
	require.Equal(t, hops.ExecTypeDistributed, x.ExecType)

	// ... but not on a single-engine platform.
	cfg.ExecMode = base.ExecModeSpark
	d, x, _ = build()
	x.ForcedExecType = hops.ExecTypeLocal
	counts = xform.PlaceDAG(context.Background(), d, &cfg)
	require.Equal(t, map[hops.ExecType]int{hops.ExecTypeDistributedSpark: 3}, counts)
}
