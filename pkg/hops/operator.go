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

import "fmt"

// Operator identifies the kind of a Hop. It is fixed when the hop is
// constructed.
type Operator uint8

const (
	UnknownOp Operator = iota

	// LiteralOp is a scalar constant. Its name is the literal's text.
	LiteralOp

	// DataOp is a read or write of a named matrix, frame or scalar, either
	// persistent (a file) or transient (a variable live across statement
	// blocks).
	DataOp

	// UnaryOp applies an elementwise function to one operand.
	UnaryOp

	// BinaryOp applies an elementwise function to two operands, either of
	// which may be a scalar. Column append is modeled as a BinaryOp.
	BinaryOp

	// AggUnaryOp aggregates one operand along rows, columns or both.
	AggUnaryOp

	// AggBinaryOp combines two operands with an inner and an outer
	// aggregate. Sum over products is matrix multiplication.
	AggBinaryOp

	// ReorgOp reorganizes the cells of its operand (transpose, diag).
	ReorgOp

	// ReblockOp converts its operand to a different block size.
	ReblockOp

	// ParamBuiltinOp is a builtin function with named parameters.
	ParamBuiltinOp

	// IndexingOp is right indexing X[rl:ru, cl:cu]. The first input is the
	// matrix, the remaining four are the bounds.
	IndexingOp

	// FunctionCallOp invokes a user-defined or external function.
	FunctionCallOp

	// DataGenOp generates a matrix (rand, seq).
	DataGenOp

	// NumOperators tracks the total count of operators.
	NumOperators
)

// operatorInfo stores static information about an operator.
type operatorInfo struct {
	// name of the operator, used when printing hops.
	name string

	// allowsAllExecTypes is false for operators that can only ever run in
	// one place; such operators are always placed at intrinsicExecType.
	allowsAllExecTypes bool
	intrinsicExecType  ExecType
}

var operatorTab = [NumOperators]operatorInfo{
	UnknownOp:      {name: "unknown"},
	LiteralOp:      {name: "lit", intrinsicExecType: ExecTypeLocal},
	DataOp:         {name: "data", allowsAllExecTypes: true},
	UnaryOp:        {name: "u", allowsAllExecTypes: true},
	BinaryOp:       {name: "b", allowsAllExecTypes: true},
	AggUnaryOp:     {name: "ua", allowsAllExecTypes: true},
	AggBinaryOp:    {name: "ba", allowsAllExecTypes: true},
	ReorgOp:        {name: "r", allowsAllExecTypes: true},
	ReblockOp:      {name: "rblk", intrinsicExecType: ExecTypeDistributed},
	ParamBuiltinOp: {name: "paramop", allowsAllExecTypes: true},
	IndexingOp:     {name: "rix", allowsAllExecTypes: true},
	FunctionCallOp: {name: "fcall", intrinsicExecType: ExecTypeLocal},
	DataGenOp:      {name: "dg", allowsAllExecTypes: true},
}

func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("operator(%d)", op)
	}
	return operatorTab[op].name
}

// AllowsAllExecTypes returns false if the operator can only execute in one
// place, regardless of its memory estimate.
func (op Operator) AllowsAllExecTypes() bool {
	return operatorTab[op].allowsAllExecTypes
}

// IntrinsicExecType returns the only placement an operator supports, for
// operators where AllowsAllExecTypes is false.
func (op Operator) IntrinsicExecType() ExecType {
	return operatorTab[op].intrinsicExecType
}
