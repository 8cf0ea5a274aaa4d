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

// DataType is the kind of value a hop produces.
type DataType uint8

const (
	DataTypeUnknown DataType = iota
	DataTypeScalar
	DataTypeMatrix
	DataTypeObject
)

var dataTypeNames = []string{"unknown", "scalar", "matrix", "object"}

func (t DataType) String() string { return enumName(dataTypeNames, uint8(t)) }

// ValueType is the element type of a scalar or matrix.
type ValueType uint8

const (
	ValueTypeUnknown ValueType = iota
	ValueTypeDouble
	ValueTypeInt
	ValueTypeString
	ValueTypeBoolean
)

var valueTypeNames = []string{"unknown", "double", "int", "string", "boolean"}

func (t ValueType) String() string { return enumName(valueTypeNames, uint8(t)) }

// ExecType is the placement chosen for a hop.
type ExecType uint8

const (
	// ExecTypeNone means no placement has been assigned (or forced) yet.
	ExecTypeNone ExecType = iota
	// ExecTypeLocal runs the operator in the memory of a single process.
	ExecTypeLocal
	// ExecTypeDistributed runs the operator as a distributed (MapReduce)
	// job over blocked matrices.
	ExecTypeDistributed
	// ExecTypeDistributedSpark runs the operator on a Spark-like engine.
	ExecTypeDistributedSpark
)

var execTypeNames = []string{"none", "local", "distributed", "spark"}

func (t ExecType) String() string { return enumName(execTypeNames, uint8(t)) }

// IsDistributed returns true for either distributed placement.
func (t ExecType) IsDistributed() bool {
	return t == ExecTypeDistributed || t == ExecTypeDistributedSpark
}

// DataOpType distinguishes the variants of a DataOp.
type DataOpType uint8

const (
	PersistentRead DataOpType = iota
	PersistentWrite
	TransientRead
	TransientWrite
)

var dataOpTypeNames = []string{"pread", "pwrite", "tread", "twrite"}

func (t DataOpType) String() string { return enumName(dataOpTypeNames, uint8(t)) }

// IsRead returns true for persistent and transient reads.
func (t DataOpType) IsRead() bool { return t == PersistentRead || t == TransientRead }

// IsWrite returns true for persistent and transient writes.
func (t DataOpType) IsWrite() bool { return !t.IsRead() }

// FileFormat is the on-disk format of a persistent read or write.
type FileFormat uint8

const (
	FormatBinary FileFormat = iota
	FormatText
	FormatMatrixMarket
	FormatCSV
)

var fileFormatNames = []string{"binary", "text", "mm", "csv"}

func (f FileFormat) String() string { return enumName(fileFormatNames, uint8(f)) }

// IsCellFormat returns true for formats that store one cell per record and
// therefore carry no block size.
func (f FileFormat) IsCellFormat() bool { return f != FormatBinary }

// OpOp1 is the function applied by a UnaryOp.
type OpOp1 uint8

const (
	OpNot OpOp1 = iota
	OpAbs
	OpSqrt
	OpExp
	OpLog
	OpRound
	OpSin
	OpCos
	OpNRow
	OpNCol
	OpCastAsScalar
	OpPrint
)

var opOp1Names = []string{
	"!", "abs", "sqrt", "exp", "log", "round", "sin", "cos", "nrow", "ncol", "castdts", "print",
}

func (op OpOp1) String() string { return enumName(opOp1Names, uint8(op)) }

// sparseSafe returns true if the function maps zero to zero.
func (op OpOp1) sparseSafe() bool {
	switch op {
	case OpAbs, OpSqrt, OpRound, OpSin:
		return true
	}
	return false
}

// OpOp2 is the function applied by a BinaryOp, and the outer function of an
// AggBinaryOp.
type OpOp2 uint8

const (
	OpPlus OpOp2 = iota
	OpMinus
	OpMult
	OpDiv
	OpPow
	OpMin
	OpMax
	OpEqual
	OpLess
	OpGreater
	OpAnd
	OpOr
	OpAppend
)

var opOp2Names = []string{"+", "-", "*", "/", "^", "min", "max", "==", "<", ">", "&&", "||", "append"}

func (op OpOp2) String() string { return enumName(opOp2Names, uint8(op)) }

// AggOp is an aggregate function.
type AggOp uint8

const (
	AggSum AggOp = iota
	AggMin
	AggMax
	AggMean
	AggProd
	AggTrace
)

var aggOpNames = []string{"+", "min", "max", "mean", "*", "trace"}

func (op AggOp) String() string { return enumName(aggOpNames, uint8(op)) }

// Direction is the axis an AggUnaryOp aggregates over.
type Direction uint8

const (
	// DirRowCol aggregates all cells to a scalar.
	DirRowCol Direction = iota
	// DirRow aggregates each row, producing a column vector.
	DirRow
	// DirCol aggregates each column, producing a row vector.
	DirCol
)

var directionNames = []string{"rowcol", "row", "col"}

func (d Direction) String() string { return enumName(directionNames, uint8(d)) }

// ReorgOpType is the reorganization applied by a ReorgOp.
type ReorgOpType uint8

const (
	ReorgTranspose ReorgOpType = iota
	ReorgDiag
)

var reorgOpNames = []string{"t", "diag"}

func (op ReorgOpType) String() string { return enumName(reorgOpNames, uint8(op)) }

// ParamBuiltinOpType is the function of a ParamBuiltinOp.
type ParamBuiltinOpType uint8

const (
	ParamGroupedAgg ParamBuiltinOpType = iota
	ParamRmEmpty
	ParamReplace
	ParamCDF
)

var paramBuiltinNames = []string{"groupedagg", "rmempty", "replace", "cdf"}

func (op ParamBuiltinOpType) String() string { return enumName(paramBuiltinNames, uint8(op)) }

// DataGenMethod is the generator used by a DataGenOp.
type DataGenMethod uint8

const (
	GenRand DataGenMethod = iota
	GenSeq
)

var dataGenNames = []string{"rand", "seq"}

func (m DataGenMethod) String() string { return enumName(dataGenNames, uint8(m)) }

func enumName(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%d", v)
}

func parseEnum(kind string, names []string, s string) (uint8, error) {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return uint8(i), nil
		}
	}
	return 0, newParseError(kind, s, names)
}

// ParseDataType parses the name of a DataType.
func ParseDataType(s string) (DataType, error) {
	v, err := parseEnum("data type", dataTypeNames, s)
	return DataType(v), err
}

// ParseValueType parses the name of a ValueType.
func ParseValueType(s string) (ValueType, error) {
	v, err := parseEnum("value type", valueTypeNames, s)
	return ValueType(v), err
}

// ParseExecType parses the name of an ExecType.
func ParseExecType(s string) (ExecType, error) {
	v, err := parseEnum("exec type", execTypeNames, s)
	return ExecType(v), err
}

// ParseDataOpType parses the name of a DataOpType.
func ParseDataOpType(s string) (DataOpType, error) {
	v, err := parseEnum("data op", dataOpTypeNames, s)
	return DataOpType(v), err
}

// ParseFileFormat parses the name of a FileFormat.
func ParseFileFormat(s string) (FileFormat, error) {
	v, err := parseEnum("file format", fileFormatNames, s)
	return FileFormat(v), err
}

// ParseOpOp1 parses the name of a unary function.
func ParseOpOp1(s string) (OpOp1, error) {
	v, err := parseEnum("unary op", opOp1Names, s)
	return OpOp1(v), err
}

// ParseOpOp2 parses the name of a binary function.
func ParseOpOp2(s string) (OpOp2, error) {
	v, err := parseEnum("binary op", opOp2Names, s)
	return OpOp2(v), err
}

// ParseAggOp parses the name of an aggregate function.
func ParseAggOp(s string) (AggOp, error) {
	v, err := parseEnum("aggregate", aggOpNames, s)
	return AggOp(v), err
}

// ParseDirection parses the name of an aggregation direction.
func ParseDirection(s string) (Direction, error) {
	v, err := parseEnum("direction", directionNames, s)
	return Direction(v), err
}

// ParseReorgOp parses the name of a reorg op.
func ParseReorgOp(s string) (ReorgOpType, error) {
	v, err := parseEnum("reorg op", reorgOpNames, s)
	return ReorgOpType(v), err
}

// ParseParamBuiltinOp parses the name of a parameterized builtin.
func ParseParamBuiltinOp(s string) (ParamBuiltinOpType, error) {
	v, err := parseEnum("builtin", paramBuiltinNames, s)
	return ParamBuiltinOpType(v), err
}

// ParseDataGenMethod parses the name of a data generator.
func ParseDataGenMethod(s string) (DataGenMethod, error) {
	v, err := parseEnum("data generator", dataGenNames, s)
	return DataGenMethod(v), err
}
