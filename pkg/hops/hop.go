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
	"fmt"
	"strings"
)

// InvalidSize marks a memory estimate that has not been computed yet. It is
// distinct from any real estimate, including the default size used for
// outputs of unknown size.
const InvalidSize = -1

// SourcePos is the script position a hop was created from.
type SourcePos struct {
	BeginLine, BeginCol int
	EndLine, EndCol     int
}

// Characteristics are the size statistics of a matrix: rows, columns and
// non-zeros, with -1 meaning unknown.
type Characteristics struct {
	Rows, Cols, NNZ int64
}

// UnknownCharacteristics has all statistics unknown.
var UnknownCharacteristics = Characteristics{Rows: -1, Cols: -1, NNZ: -1}

// DimsKnown returns true if both dimensions are known.
func (c Characteristics) DimsKnown() bool {
	return c.Rows > 0 && c.Cols > 0
}

// NNZOrDense returns the non-zero count, or rows*cols if it is unknown.
func (c Characteristics) NNZOrDense() int64 {
	if c.NNZ >= 0 {
		return c.NNZ
	}
	return c.Rows * c.Cols
}

func (c Characteristics) String() string {
	return fmt.Sprintf("[%d,%d,%d]", c.Rows, c.Cols, c.NNZ)
}

// Hop is a vertex of a DAG. Hops are allocated and owned by a DAG; edges are
// stored as id lists on both endpoints and may only be changed through DAG
// methods, which keep the two directions consistent.
type Hop struct {
	ID      HopID
	Op      Operator
	Private Private

	// Name is the variable name of reads and writes, the text of literals and
	// the result name of other hops (possibly empty).
	Name      string
	DataType  DataType
	ValueType ValueType

	Rows, Cols int64
	NNZ        int64

	// RowsInBlock and ColsInBlock are the block size of the hop's output; -1
	// means unblocked (cell) format.
	RowsInBlock, ColsInBlock int64

	ExecType       ExecType
	ForcedExecType ExecType

	// OutputMem is the size of the hop's result, ProcessingMem the size of
	// its intermediates and TotalMem the sum of the two plus the outputs of
	// all inputs. All are InvalidSize until estimated.
	OutputMem     float64
	ProcessingMem float64
	TotalMem      float64

	// RequiresRecompile is set when the output size is not statically known.
	RequiresRecompile bool

	Pos SourcePos

	inputs  []HopID
	parents []HopID
}

func newHop(id HopID, op Operator, private Private, name string, dt DataType, vt ValueType) *Hop {
	return &Hop{
		ID:            id,
		Op:            op,
		Private:       private,
		Name:          name,
		DataType:      dt,
		ValueType:     vt,
		Rows:          -1,
		Cols:          -1,
		NNZ:           -1,
		RowsInBlock:   -1,
		ColsInBlock:   -1,
		OutputMem:     InvalidSize,
		ProcessingMem: InvalidSize,
		TotalMem:      InvalidSize,
	}
}

// InputIDs returns the ordered operand ids of the hop. The slice must not be
// modified.
func (h *Hop) InputIDs() []HopID { return h.inputs }

// ParentIDs returns the consumer ids of the hop, one entry per input slot
// that refers to it. The slice must not be modified.
func (h *Hop) ParentIDs() []HopID { return h.parents }

// NumInputs returns the number of operands.
func (h *Hop) NumInputs() int { return len(h.inputs) }

// NumParents returns the number of consumer edges.
func (h *Hop) NumParents() int { return len(h.parents) }

// IsScalar returns true if the hop produces a scalar.
func (h *Hop) IsScalar() bool { return h.DataType == DataTypeScalar }

// IsMatrix returns true if the hop produces a matrix.
func (h *Hop) IsMatrix() bool { return h.DataType == DataTypeMatrix }

// DimsKnown returns true for scalars and for matrices whose dimensions are
// both known.
func (h *Hop) DimsKnown() bool {
	return h.IsScalar() || (h.IsMatrix() && h.Rows > 0 && h.Cols > 0)
}

// Characteristics returns the hop's size statistics.
func (h *Hop) Characteristics() Characteristics {
	return Characteristics{Rows: h.Rows, Cols: h.Cols, NNZ: h.NNZ}
}

// SetDims sets the size statistics of the hop.
func (h *Hop) SetDims(rows, cols, nnz int64) {
	h.Rows, h.Cols, h.NNZ = rows, cols, nnz
}

// SetBlockSize sets the block size of the hop's output.
func (h *Hop) SetBlockSize(rows, cols int64) {
	h.RowsInBlock, h.ColsInBlock = rows, cols
}

// IsBlocked returns false if the hop's output is in cell format.
func (h *Hop) IsBlocked() bool {
	return h.RowsInBlock != -1 || h.ColsInBlock != -1
}

// HasValidMemEstimate returns true once the hop's total memory estimate has
// been computed.
func (h *Hop) HasValidMemEstimate() bool {
	return h.TotalMem != InvalidSize
}

// ResetMemEstimates invalidates the memory estimates and placement of the
// hop, so they are recomputed by the next estimation pass.
func (h *Hop) ResetMemEstimates() {
	h.OutputMem = InvalidSize
	h.ProcessingMem = InvalidSize
	h.TotalMem = InvalidSize
	h.ExecType = ExecTypeNone
}

// IsMatrixMultiply returns true if the hop is a sum-product AggBinaryOp.
func (h *Hop) IsMatrixMultiply() bool {
	if h.Op != AggBinaryOp {
		return false
	}
	p := h.Private.(*AggBinaryPrivate)
	return p.Inner == AggSum && p.Outer == OpMult
}

// IsDataOp returns true if the hop is a DataOp of the given type.
func (h *Hop) IsDataOp(t DataOpType) bool {
	return h.Op == DataOp && h.Private.(*DataPrivate).Op == t
}

// OpString returns a short description of the operation, e.g. "ba(+*)" or
// "PRead X".
func (h *Hop) OpString() string {
	var b strings.Builder
	switch p := h.Private.(type) {
	case *LiteralPrivate:
		fmt.Fprintf(&b, "lit(%s)", p.Value)
	case *DataPrivate:
		switch p.Op {
		case PersistentRead:
			b.WriteString("PRead")
		case PersistentWrite:
			b.WriteString("PWrite")
		case TransientRead:
			b.WriteString("TRead")
		case TransientWrite:
			b.WriteString("TWrite")
		}
		fmt.Fprintf(&b, " %s", h.Name)
	case *UnaryPrivate:
		fmt.Fprintf(&b, "u(%s)", p.Op)
	case *BinaryPrivate:
		fmt.Fprintf(&b, "b(%s)", p.Op)
	case *AggUnaryPrivate:
		fmt.Fprintf(&b, "ua(%s%s)", p.Op, dirSuffix(p.Dir))
	case *AggBinaryPrivate:
		fmt.Fprintf(&b, "ba(%s%s)", p.Inner, p.Outer)
	case *ReorgPrivate:
		fmt.Fprintf(&b, "r(%s)", p.Op)
	case *ReblockPrivate:
		b.WriteString("rblk")
	case *ParamBuiltinPrivate:
		fmt.Fprintf(&b, "%s", p.Op)
	case *IndexingPrivate:
		b.WriteString("rix")
	case *FunctionCallPrivate:
		fmt.Fprintf(&b, "%s::%s", p.Namespace, p.Function)
	case *DataGenPrivate:
		fmt.Fprintf(&b, "dg(%s)", p.Method)
	default:
		b.WriteString(h.Op.String())
	}
	return b.String()
}

func dirSuffix(d Direction) string {
	switch d {
	case DirRow:
		return "R"
	case DirCol:
		return "C"
	}
	return "RC"
}
