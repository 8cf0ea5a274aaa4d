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

package hops

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Byte sizes used by the memory estimates.
const (
	DoubleSize        = 8
	LongSize          = 8
	IntSize           = 4
	BooleanSize       = 1
	CharSize          = 1
	DefaultStringSize = 1024

	// SparsityTurnPoint is the sparsity below which a matrix is estimated
	// in sparse representation.
	SparsityTurnPoint = 0.4

	matrixHeaderSize    = 44
	sparseRowHeaderSize = 116
	sparseCellSize      = IntSize + DoubleSize
	sparseRowCapacity   = 4
	arrayHeaderSize     = 16
	pointerSize         = 8
)

// EstimateSize estimates the in-memory size of a matrix with the given
// dimensions and non-zero count, picking dense or sparse representation by
// sparsity.
func EstimateSize(rows, cols, nnz int64) float64 {
	if rows <= 0 || cols <= 0 {
		return 0
	}
	cells := float64(rows) * float64(cols)
	sparsity := math.Min(1, math.Max(0, float64(nnz)/cells))
	return EstimateSizeExactSparsity(rows, cols, sparsity)
}

// EstimateSizeExactSparsity estimates the in-memory size of a matrix with
// the given dimensions and sparsity.
func EstimateSizeExactSparsity(rows, cols int64, sparsity float64) float64 {
	r, c := float64(rows), float64(cols)
	if sparsity >= SparsityTurnPoint || cols <= 1 {
		return matrixHeaderSize + DoubleSize*r*c
	}
	cnnz := math.Max(sparseRowCapacity, math.Ceil(sparsity*c))
	rlen := math.Min(r, math.Ceil(sparsity*r*c))
	return matrixHeaderSize +
		rlen*(sparseRowHeaderSize+sparseCellSize*cnnz) +
		arrayHeaderSize + pointerSize*r
}

// ScalarSize returns the fixed size of a scalar of the given value type.
func ScalarSize(vt ValueType) float64 {
	switch vt {
	case ValueTypeInt:
		return LongSize
	case ValueTypeBoolean:
		return BooleanSize
	case ValueTypeString:
		return DefaultStringSize
	}
	return DoubleSize
}

// OutputMemEstimate returns the operator-specific size of the hop's output
// given its (exact or worst-case) characteristics.
func OutputMemEstimate(h *Hop, c Characteristics) float64 {
	switch p := h.Private.(type) {
	case *LiteralPrivate:
		switch h.ValueType {
		case ValueTypeInt:
			return LongSize
		case ValueTypeBoolean:
			return BooleanSize
		case ValueTypeString:
			return float64(len(p.Value) * CharSize)
		}
		return DoubleSize

	case *DataPrivate:
		if h.IsScalar() {
			return ScalarSize(h.ValueType)
		}
		return EstimateSize(c.Rows, c.Cols, c.NNZOrDense())

	case *AggUnaryPrivate:
		if h.IsScalar() {
			return DoubleSize
		}
		return EstimateSize(c.Rows, c.Cols, c.NNZOrDense())

	case *UnaryPrivate, *BinaryPrivate, *AggBinaryPrivate, *ReorgPrivate, *ReblockPrivate,
		*ParamBuiltinPrivate, *IndexingPrivate, *DataGenPrivate:
		if h.IsScalar() {
			return ScalarSize(h.ValueType)
		}
		return EstimateSize(c.Rows, c.Cols, c.NNZOrDense())

	case *FunctionCallPrivate:
		return 0
	}
	panic(errors.AssertionFailedf("unhandled operator %s", redact.Safe(h.Op)))
}

// IntermediateMemEstimate returns the operator-specific size of the working
// buffers the hop needs besides its inputs and output.
func IntermediateMemEstimate(h *Hop, c Characteristics) float64 {
	switch p := h.Private.(type) {
	case *ReorgPrivate:
		// diag of a matrix to a vector materializes a dense copy of the
		// diagonal before compaction.
		if p.Op == ReorgDiag && c.Cols == 1 {
			return EstimateSizeExactSparsity(c.Rows, 1, 1)
		}
		return 0

	case *ParamBuiltinPrivate:
		// grouped aggregates keep one partial aggregate per group; the
		// number of groups is bounded by the number of rows.
		if p.Op == ParamGroupedAgg {
			return EstimateSizeExactSparsity(c.Rows, 3, 1)
		}
		return 0

	case *AggBinaryPrivate:
		// non-multiply aggregate-binary ops materialize the outer result.
		if !(p.Inner == AggSum && p.Outer == OpMult) {
			return EstimateSize(c.Rows, c.Cols, c.NNZOrDense())
		}
		return 0

	case *LiteralPrivate, *DataPrivate, *UnaryPrivate, *BinaryPrivate, *AggUnaryPrivate,
		*ReblockPrivate, *IndexingPrivate, *FunctionCallPrivate, *DataGenPrivate:
		return 0
	}
	panic(errors.AssertionFailedf("unhandled operator %s", redact.Safe(h.Op)))
}

// InferOutputCharacteristics derives worst-case output statistics of a
// matrix hop from the statistics of its inputs. in[i] describes input i and
// has unknown dimensions if nothing is known about it. It returns false if
// the output dimensions cannot be bounded.
func InferOutputCharacteristics(h *Hop, inputs []*Hop, in []Characteristics) (Characteristics, bool) {
	first := func() (Characteristics, bool) {
		if len(in) == 0 || !in[0].DimsKnown() {
			return Characteristics{}, false
		}
		return in[0], true
	}

	switch p := h.Private.(type) {
	case *LiteralPrivate, *FunctionCallPrivate, *DataGenPrivate:
		return Characteristics{}, false

	case *DataPrivate:
		if p.Op.IsWrite() {
			return first()
		}
		return Characteristics{}, false

	case *UnaryPrivate:
		c, ok := first()
		if ok && !p.Op.sparseSafe() {
			c.NNZ = -1
		}
		return c, ok

	case *BinaryPrivate:
		return inferBinary(p, inputs, in)

	case *AggUnaryPrivate:
		c, ok := first()
		if !ok {
			return c, false
		}
		switch p.Dir {
		case DirRow:
			return Characteristics{Rows: c.Rows, Cols: 1, NNZ: c.Rows}, true
		case DirCol:
			return Characteristics{Rows: 1, Cols: c.Cols, NNZ: c.Cols}, true
		}
		return Characteristics{}, false

	case *AggBinaryPrivate:
		if len(in) != 2 || !in[0].DimsKnown() || !in[1].DimsKnown() {
			return Characteristics{}, false
		}
		return Characteristics{Rows: in[0].Rows, Cols: in[1].Cols, NNZ: -1}, true

	case *ReorgPrivate:
		c, ok := first()
		if !ok {
			return c, false
		}
		switch p.Op {
		case ReorgTranspose:
			return Characteristics{Rows: c.Cols, Cols: c.Rows, NNZ: c.NNZ}, true
		case ReorgDiag:
			if c.Cols == 1 {
				return Characteristics{Rows: c.Rows, Cols: c.Rows, NNZ: c.NNZ}, true
			}
			return Characteristics{Rows: c.Rows, Cols: 1, NNZ: -1}, true
		}
		return Characteristics{}, false

	case *ReblockPrivate:
		return first()

	case *ParamBuiltinPrivate:
		c, ok := first()
		if !ok {
			return c, false
		}
		switch p.Op {
		case ParamGroupedAgg:
			return Characteristics{Rows: c.Rows, Cols: 1, NNZ: -1}, true
		case ParamRmEmpty, ParamReplace:
			return Characteristics{Rows: c.Rows, Cols: c.Cols, NNZ: -1}, true
		}
		return Characteristics{}, false

	case *IndexingPrivate:
		c, ok := first()
		if !ok {
			return c, false
		}
		if p.RowsExact {
			c.Rows = 1
		}
		if p.ColsExact {
			c.Cols = 1
		}
		// Worst case: the selected range holds every non-zero of the input.
		c.NNZ = min(c.NNZ, c.Rows*c.Cols)
		return c, true
	}
	panic(errors.AssertionFailedf("unhandled operator %s", redact.Safe(h.Op)))
}

func inferBinary(p *BinaryPrivate, inputs []*Hop, in []Characteristics) (Characteristics, bool) {
	if len(in) != 2 {
		return Characteristics{}, false
	}
	lm, rm := inputs[0].IsMatrix(), inputs[1].IsMatrix()
	switch {
	case lm && rm:
		l, r := in[0], in[1]
		if !l.DimsKnown() || !r.DimsKnown() {
			return Characteristics{}, false
		}
		if p.Op == OpAppend {
			nnz := int64(-1)
			if l.NNZ >= 0 && r.NNZ >= 0 {
				nnz = l.NNZ + r.NNZ
			}
			return Characteristics{Rows: l.Rows, Cols: l.Cols + r.Cols, NNZ: nnz}, true
		}
		c := Characteristics{Rows: max(l.Rows, r.Rows), Cols: max(l.Cols, r.Cols), NNZ: -1}
		switch p.Op {
		case OpMult:
			if l.NNZ >= 0 && r.NNZ >= 0 {
				c.NNZ = min(l.NNZ, r.NNZ)
			}
		case OpPlus, OpMinus:
			if l.NNZ >= 0 && r.NNZ >= 0 {
				c.NNZ = min(l.NNZ+r.NNZ, c.Rows*c.Cols)
			}
		}
		return c, true

	case lm || rm:
		m := in[0]
		if rm {
			m = in[1]
		}
		if !m.DimsKnown() {
			return Characteristics{}, false
		}
		c := Characteristics{Rows: m.Rows, Cols: m.Cols, NNZ: -1}
		if p.Op == OpMult || (p.Op == OpDiv && lm) {
			c.NNZ = m.NNZ
		}
		return c, true
	}
	return Characteristics{}, false
}

// refreshSizeInformation derives the hop's exact dimensions from the exact
// dimensions of its inputs, for operators whose output size is fully
// determined by their input sizes.
func refreshSizeInformation(d *DAG, h *Hop) {
	if !h.IsMatrix() {
		if h.IsScalar() {
			h.SetDims(0, 0, -1)
		}
		return
	}
	switch p := h.Private.(type) {
	case *LiteralPrivate, *FunctionCallPrivate, *IndexingPrivate:
		return
	case *DataPrivate:
		if p.Op.IsRead() {
			return
		}
	case *ParamBuiltinPrivate:
		if p.Op != ParamReplace {
			return
		}
	case *DataGenPrivate:
		return
	}

	inputs := d.Inputs(h)
	in := make([]Characteristics, len(inputs))
	for i, c := range inputs {
		if c.IsMatrix() && !c.DimsKnown() {
			return
		}
		in[i] = c.Characteristics()
	}
	if c, ok := InferOutputCharacteristics(h, inputs, in); ok {
		h.SetDims(c.Rows, c.Cols, c.NNZ)
	}
}
