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

package hops_test

import (
	"testing"

	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/stretchr/testify/require"
)

func TestEstimateSize(t *testing.T) {
	testCases := []struct {
		rows, cols, nnz int64
		exp             float64
	}{
		// Dense: header plus 8 bytes per cell.
		{10, 10, 100, 844},
		{1000, 1000, 500000, 44 + 8e6},
		// Sparse: 1000 rows with the minimum row capacity of 4 cells.
		{1000, 1000, 1000, 44 + 1000*(116+12*4) + 16 + 8*1000},
		// Column vectors are always dense.
		{100, 1, 1, 844},
		// Empty or unknown dimensions.
		{0, 5, 0, 0},
		{-1, 5, 0, 0},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.exp, hops.EstimateSize(tc.rows, tc.cols, tc.nnz),
			"%dx%d nnz=%d", tc.rows, tc.cols, tc.nnz)
	}
}

func TestScalarSizes(t *testing.T) {
	require.Equal(t, float64(8), hops.ScalarSize(hops.ValueTypeDouble))
	require.Equal(t, float64(8), hops.ScalarSize(hops.ValueTypeInt))
	require.Equal(t, float64(1), hops.ScalarSize(hops.ValueTypeBoolean))
	require.Equal(t, float64(1024), hops.ScalarSize(hops.ValueTypeString))

	d := newDAG()
	str := d.ConstructLiteral(hops.ValueTypeString, "abc")
	require.Equal(t, float64(3), hops.OutputMemEstimate(str, str.Characteristics()))
	b := d.ConstructLiteral(hops.ValueTypeBoolean, "TRUE")
	require.Equal(t, float64(1), hops.OutputMemEstimate(b, b.Characteristics()))
}

func TestIntermediateMemEstimate(t *testing.T) {
	d := newDAG()
	x := read(d, "X", 100, 100, -1)
	diag := d.ConstructReorg(hops.ReorgDiag, x)
	require.Equal(t, hops.Characteristics{Rows: 100, Cols: 1, NNZ: -1}, diag.Characteristics())
	require.Equal(t, float64(844), hops.IntermediateMemEstimate(diag, diag.Characteristics()))

	mm := d.ConstructMatMult(x, x)
	require.Zero(t, hops.IntermediateMemEstimate(mm, mm.Characteristics()))

	maxPlus := d.ConstructAggBinary(hops.AggMax, hops.OpPlus, x, x)
	c := hops.Characteristics{Rows: 10, Cols: 10, NNZ: -1}
	require.Equal(t, float64(844), hops.IntermediateMemEstimate(maxPlus, c))
}

func TestInferOutputCharacteristics(t *testing.T) {
	d := newDAG()
	// Unknown dimensions, so that no exact size is derived at construction.
	x := d.ConstructRead("X", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	y := d.ConstructRead("Y", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	two := d.ConstructLiteral(hops.ValueTypeDouble, "2")
	xs := hops.Characteristics{Rows: 5, Cols: 7, NNZ: 10}
	ys := hops.Characteristics{Rows: 5, Cols: 3, NNZ: 2}
	scalar := hops.Characteristics{Rows: 0, Cols: 0, NNZ: -1}

	testCases := []struct {
		name string
		hop  *hops.Hop
		in   []hops.Characteristics
		exp  hops.Characteristics
		ok   bool
	}{
		{"transpose", d.ConstructReorg(hops.ReorgTranspose, x),
			[]hops.Characteristics{xs}, hops.Characteristics{Rows: 7, Cols: 5, NNZ: 10}, true},
		{"row sums", d.ConstructAggUnary(hops.AggSum, hops.DirRow, x),
			[]hops.Characteristics{xs}, hops.Characteristics{Rows: 5, Cols: 1, NNZ: 5}, true},
		{"append", d.ConstructBinary(hops.OpAppend, x, y),
			[]hops.Characteristics{xs, ys}, hops.Characteristics{Rows: 5, Cols: 10, NNZ: 12}, true},
		{"matrix times scalar", d.ConstructBinary(hops.OpMult, x, two),
			[]hops.Characteristics{xs, scalar}, xs, true},
		{"matrix plus scalar", d.ConstructBinary(hops.OpPlus, x, two),
			[]hops.Characteristics{xs, scalar}, hops.Characteristics{Rows: 5, Cols: 7, NNZ: -1}, true},
		{"sparse-safe unary", d.ConstructUnary(hops.OpAbs, x),
			[]hops.Characteristics{xs}, xs, true},
		{"sparse-unsafe unary", d.ConstructUnary(hops.OpExp, x),
			[]hops.Characteristics{xs}, hops.Characteristics{Rows: 5, Cols: 7, NNZ: -1}, true},
		{"matmult", d.ConstructMatMult(d.ConstructReorg(hops.ReorgTranspose, x), y),
			[]hops.Characteristics{{Rows: 7, Cols: 5, NNZ: 10}, ys}, hops.Characteristics{Rows: 7, Cols: 3, NNZ: -1}, true},
		{"unknown input", d.ConstructReorg(hops.ReorgTranspose, x),
			[]hops.Characteristics{hops.UnknownCharacteristics}, hops.Characteristics{}, false},
		{"read", x, nil, hops.Characteristics{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := hops.InferOutputCharacteristics(tc.hop, d.Inputs(tc.hop), tc.in)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.exp, c)
			}
		})
	}
}

func TestRefreshSizeInformation(t *testing.T) {
	d := newDAG()
	x := read(d, "X", 1000, 10, 5000)
	y := read(d, "y", 1000, 1, -1)
	xty := d.ConstructMatMult(d.ConstructReorg(hops.ReorgTranspose, x), y)
	require.Equal(t, hops.Characteristics{Rows: 10, Cols: 1, NNZ: -1}, xty.Characteristics())

	// Exact sizes are not derived from unknown inputs.
	u := d.ConstructRead("U", hops.TransientRead, hops.DataTypeMatrix, hops.ValueTypeDouble, hops.FormatBinary, "")
	require.False(t, d.ConstructBinary(hops.OpPlus, x, u).DimsKnown())

	require.True(t, d.ConstructAggUnary(hops.AggSum, hops.DirRowCol, u).DimsKnown(), "scalars")
}
