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

import "golang.org/x/exp/slices"

// Private holds the operator-specific parameters of a hop. The set of
// implementations is closed: there is exactly one per Operator, and every
// function that depends on the operator switches over the concrete type.
type Private interface {
	// Operator returns the operator the private belongs to.
	Operator() Operator

	isHopPrivate()
}

// LiteralPrivate is the value of a LiteralOp, in its textual form.
type LiteralPrivate struct {
	Value string
}

// DataPrivate describes a read or write.
type DataPrivate struct {
	Op     DataOpType
	Format FileFormat
	// Path is the file name of persistent reads and writes.
	Path string
}

// UnaryPrivate is the function of a UnaryOp.
type UnaryPrivate struct {
	Op OpOp1
}

// BinaryPrivate is the function of a BinaryOp.
type BinaryPrivate struct {
	Op OpOp2
}

// AggUnaryPrivate is the aggregate and direction of an AggUnaryOp.
type AggUnaryPrivate struct {
	Op  AggOp
	Dir Direction
}

// AggBinaryPrivate is the inner aggregate and outer function of an
// AggBinaryOp; matrix multiplication is {AggSum, OpMult}.
type AggBinaryPrivate struct {
	Inner AggOp
	Outer OpOp2
}

// ReorgPrivate is the reorganization of a ReorgOp.
type ReorgPrivate struct {
	Op ReorgOpType
}

// ReblockPrivate has no parameters; the target block size is the hop's own
// block size.
type ReblockPrivate struct{}

// ParamBuiltinPrivate is the function and the ordered parameter names of a
// ParamBuiltinOp. Params[i] names input i.
type ParamBuiltinPrivate struct {
	Op     ParamBuiltinOpType
	Params []string
}

// IndexingPrivate describes right indexing. RowsExact and ColsExact are set
// when the bounds select exactly one row or column.
type IndexingPrivate struct {
	RowsExact bool
	ColsExact bool
}

// FunctionCallPrivate names the invoked function and its outputs.
type FunctionCallPrivate struct {
	Namespace string
	Function  string
	Outputs   []string
}

// DataGenPrivate describes a generated matrix. A Seed of -1 asks for a
// fresh seed on every execution.
type DataGenPrivate struct {
	Method   DataGenMethod
	Sparsity float64
	Seed     int64
}

func (*LiteralPrivate) Operator() Operator      { return LiteralOp }
func (*DataPrivate) Operator() Operator         { return DataOp }
func (*UnaryPrivate) Operator() Operator        { return UnaryOp }
func (*BinaryPrivate) Operator() Operator       { return BinaryOp }
func (*AggUnaryPrivate) Operator() Operator     { return AggUnaryOp }
func (*AggBinaryPrivate) Operator() Operator    { return AggBinaryOp }
func (*ReorgPrivate) Operator() Operator        { return ReorgOp }
func (*ReblockPrivate) Operator() Operator      { return ReblockOp }
func (*ParamBuiltinPrivate) Operator() Operator { return ParamBuiltinOp }
func (*IndexingPrivate) Operator() Operator     { return IndexingOp }
func (*FunctionCallPrivate) Operator() Operator { return FunctionCallOp }
func (*DataGenPrivate) Operator() Operator      { return DataGenOp }

func (*LiteralPrivate) isHopPrivate()      {}
func (*DataPrivate) isHopPrivate()         {}
func (*UnaryPrivate) isHopPrivate()        {}
func (*BinaryPrivate) isHopPrivate()       {}
func (*AggUnaryPrivate) isHopPrivate()     {}
func (*AggBinaryPrivate) isHopPrivate()    {}
func (*ReorgPrivate) isHopPrivate()        {}
func (*ReblockPrivate) isHopPrivate()      {}
func (*ParamBuiltinPrivate) isHopPrivate() {}
func (*IndexingPrivate) isHopPrivate()     {}
func (*FunctionCallPrivate) isHopPrivate() {}
func (*DataGenPrivate) isHopPrivate()      {}

// privatesEqual returns true if two hops of the same operator perform the
// same computation on the same inputs. Writes, prints, function calls and
// unseeded random generators have side effects or fresh results and are
// never equal.
func privatesEqual(a, b Private) bool {
	switch l := a.(type) {
	case *LiteralPrivate:
		r, ok := b.(*LiteralPrivate)
		return ok && l.Value == r.Value

	case *DataPrivate:
		r, ok := b.(*DataPrivate)
		return ok && l.Op.IsRead() && *l == *r

	case *UnaryPrivate:
		r, ok := b.(*UnaryPrivate)
		return ok && l.Op != OpPrint && *l == *r

	case *BinaryPrivate:
		r, ok := b.(*BinaryPrivate)
		return ok && *l == *r

	case *AggUnaryPrivate:
		r, ok := b.(*AggUnaryPrivate)
		return ok && *l == *r

	case *AggBinaryPrivate:
		r, ok := b.(*AggBinaryPrivate)
		return ok && *l == *r

	case *ReorgPrivate:
		r, ok := b.(*ReorgPrivate)
		return ok && *l == *r

	case *ReblockPrivate:
		_, ok := b.(*ReblockPrivate)
		return ok

	case *ParamBuiltinPrivate:
		r, ok := b.(*ParamBuiltinPrivate)
		return ok && l.Op == r.Op && slices.Equal(l.Params, r.Params)

	case *IndexingPrivate:
		r, ok := b.(*IndexingPrivate)
		return ok && *l == *r

	case *FunctionCallPrivate:
		return false

	case *DataGenPrivate:
		r, ok := b.(*DataGenPrivate)
		return ok && l.Seed != -1 && *l == *r
	}
	return false
}
