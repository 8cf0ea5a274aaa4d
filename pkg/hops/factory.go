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
	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// The Construct methods create a hop, wire it to its inputs with AddInput
// and derive its output size from its inputs where that size is fully
// determined by them.

// ConstructLiteral creates a scalar literal. The literal is named by its
// text, which is how literals are matched during common subexpression
// elimination.
func (d *DAG) ConstructLiteral(vt ValueType, value string) *Hop {
	h := d.newHop(LiteralOp, &LiteralPrivate{Value: value}, value, DataTypeScalar, vt)
	h.SetDims(0, 0, -1)
	return h
}

// ConstructRead creates a persistent or transient read of the named
// variable. Dimensions and block size are set by the caller when known.
func (d *DAG) ConstructRead(
	name string, op DataOpType, dt DataType, vt ValueType, format FileFormat, path string,
) *Hop {
	if !op.IsRead() {
		panic(errors.AssertionFailedf("%s is not a read", redact.Safe(op)))
	}
	h := d.newHop(DataOp, &DataPrivate{Op: op, Format: format, Path: path}, name, dt, vt)
	if dt == DataTypeScalar {
		h.SetDims(0, 0, -1)
	}
	return h
}

// ConstructWrite creates a persistent or transient write of input to the
// named variable. A persistent write is unblocked in cell format and uses
// the default block size in binary format; a transient write inherits the
// block size of its input.
func (d *DAG) ConstructWrite(
	name string, op DataOpType, input *Hop, format FileFormat, path string,
) *Hop {
	if !op.IsWrite() {
		panic(errors.AssertionFailedf("%s is not a write", redact.Safe(op)))
	}
	p := &DataPrivate{Op: op, Format: format, Path: path}
	h := d.newHop(DataOp, p, name, input.DataType, input.ValueType)
	d.AddInput(h, input)
	refreshSizeInformation(d, h)
	switch {
	case op == TransientWrite:
		h.SetBlockSize(input.RowsInBlock, input.ColsInBlock)
	case format.IsCellFormat() || !h.IsMatrix():
		h.SetBlockSize(-1, -1)
	default:
		h.SetBlockSize(base.DefaultBlockSize, base.DefaultBlockSize)
	}
	return h
}

// ConstructUnary creates a unary operation. nrow, ncol and casts produce
// scalars; print produces nothing anyone can consume but is modeled as a
// scalar.
func (d *DAG) ConstructUnary(op OpOp1, input *Hop) *Hop {
	dt, vt := input.DataType, input.ValueType
	switch op {
	case OpNRow, OpNCol:
		dt, vt = DataTypeScalar, ValueTypeInt
	case OpCastAsScalar:
		dt = DataTypeScalar
	case OpPrint:
		dt, vt = DataTypeScalar, ValueTypeString
	}
	h := d.newHop(UnaryOp, &UnaryPrivate{Op: op}, "", dt, vt)
	d.AddInput(h, input)
	refreshSizeInformation(d, h)
	return h
}

// ConstructBinary creates an elementwise binary operation. The result is a
// matrix if either operand is.
func (d *DAG) ConstructBinary(op OpOp2, left, right *Hop) *Hop {
	dt := DataTypeScalar
	if left.IsMatrix() || right.IsMatrix() {
		dt = DataTypeMatrix
	}
	vt := ValueTypeDouble
	switch op {
	case OpEqual, OpLess, OpGreater, OpAnd, OpOr:
		if dt == DataTypeScalar {
			vt = ValueTypeBoolean
		}
	}
	h := d.newHop(BinaryOp, &BinaryPrivate{Op: op}, "", dt, vt)
	d.AddInput(h, left)
	d.AddInput(h, right)
	refreshSizeInformation(d, h)
	return h
}

// ConstructAggUnary creates an aggregate over rows, columns or all cells.
func (d *DAG) ConstructAggUnary(op AggOp, dir Direction, input *Hop) *Hop {
	dt := DataTypeMatrix
	if dir == DirRowCol {
		dt = DataTypeScalar
	}
	h := d.newHop(AggUnaryOp, &AggUnaryPrivate{Op: op, Dir: dir}, "", dt, ValueTypeDouble)
	d.AddInput(h, input)
	refreshSizeInformation(d, h)
	return h
}

// ConstructMatMult creates a matrix multiplication left %*% right.
func (d *DAG) ConstructMatMult(left, right *Hop) *Hop {
	return d.ConstructAggBinary(AggSum, OpMult, left, right)
}

// ConstructAggBinary creates an aggregate-binary operation.
func (d *DAG) ConstructAggBinary(inner AggOp, outer OpOp2, left, right *Hop) *Hop {
	p := &AggBinaryPrivate{Inner: inner, Outer: outer}
	h := d.newHop(AggBinaryOp, p, "", DataTypeMatrix, ValueTypeDouble)
	d.AddInput(h, left)
	d.AddInput(h, right)
	refreshSizeInformation(d, h)
	return h
}

// ConstructReorg creates a transpose or diag.
func (d *DAG) ConstructReorg(op ReorgOpType, input *Hop) *Hop {
	h := d.newHop(ReorgOp, &ReorgPrivate{Op: op}, "", DataTypeMatrix, input.ValueType)
	d.AddInput(h, input)
	refreshSizeInformation(d, h)
	return h
}

// ConstructReblock creates a reblock without inputs; it is spliced into the
// DAG with InsertAbove or InsertBelow.
func (d *DAG) ConstructReblock(like *Hop, rowsInBlock, colsInBlock int64) *Hop {
	h := d.newHop(ReblockOp, &ReblockPrivate{}, like.Name, like.DataType, like.ValueType)
	h.SetDims(like.Rows, like.Cols, like.NNZ)
	h.SetBlockSize(rowsInBlock, colsInBlock)
	h.Pos = like.Pos
	return h
}

// ConstructParamBuiltin creates a parameterized builtin. params names the
// inputs in order.
func (d *DAG) ConstructParamBuiltin(
	op ParamBuiltinOpType, params []string, inputs []*Hop,
) *Hop {
	if len(params) != len(inputs) {
		panic(errors.AssertionFailedf("%d parameter names for %d inputs", len(params), len(inputs)))
	}
	dt, vt := DataTypeMatrix, ValueTypeDouble
	if op == ParamCDF {
		dt = DataTypeScalar
	}
	p := &ParamBuiltinPrivate{Op: op, Params: append([]string(nil), params...)}
	h := d.newHop(ParamBuiltinOp, p, "", dt, vt)
	for _, in := range inputs {
		d.AddInput(h, in)
	}
	refreshSizeInformation(d, h)
	return h
}

// ConstructIndexing creates right indexing input[rl:ru, cl:cu].
func (d *DAG) ConstructIndexing(input, rl, ru, cl, cu *Hop, rowsExact, colsExact bool) *Hop {
	p := &IndexingPrivate{RowsExact: rowsExact, ColsExact: colsExact}
	h := d.newHop(IndexingOp, p, "", DataTypeMatrix, input.ValueType)
	for _, in := range []*Hop{input, rl, ru, cl, cu} {
		d.AddInput(h, in)
	}
	if rowsExact && colsExact {
		h.SetDims(1, 1, -1)
	}
	return h
}

// ConstructFunctionCall creates a call of namespace::function.
func (d *DAG) ConstructFunctionCall(
	namespace, function string, outputs []string, inputs []*Hop,
) *Hop {
	p := &FunctionCallPrivate{
		Namespace: namespace,
		Function:  function,
		Outputs:   append([]string(nil), outputs...),
	}
	h := d.newHop(FunctionCallOp, p, function, DataTypeUnknown, ValueTypeUnknown)
	for _, in := range inputs {
		d.AddInput(h, in)
	}
	return h
}

// ConstructDataGen creates a generated matrix of the given size. Its inputs
// are the scalar parameters of the generator.
func (d *DAG) ConstructDataGen(
	method DataGenMethod, rows, cols int64, sparsity float64, seed int64, inputs []*Hop,
) *Hop {
	p := &DataGenPrivate{Method: method, Sparsity: sparsity, Seed: seed}
	h := d.newHop(DataGenOp, p, "", DataTypeMatrix, ValueTypeDouble)
	for _, in := range inputs {
		d.AddInput(h, in)
	}
	nnz := int64(-1)
	if rows > 0 && cols > 0 && sparsity >= 0 && sparsity <= 1 {
		nnz = int64(sparsity * float64(rows) * float64(cols))
	}
	h.SetDims(rows, cols, nnz)
	return h
}
