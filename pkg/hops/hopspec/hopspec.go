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

// Package hopspec builds hop DAGs from YAML plan files, standing in for the
// script translator. A plan lists statement blocks; each block lists its hops
// in dependency order, operands referring to earlier hops by ref:
//
//	blocks:
//	  - name: main
//	    hops:
//	      - {ref: X, op: pread, dims: [1000, 10], nnz: 5000}
//	      - {ref: XtX, op: matmult, inputs: [Xt, X]}
//	    roots: [w]
package hopspec

import (
	"bytes"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Plan is the top-level document of a plan file.
type Plan struct {
	Blocks []Block `yaml:"blocks"`
}

// Block describes one statement block.
type Block struct {
	Name  string    `yaml:"name"`
	Hops  []HopSpec `yaml:"hops"`
	Roots []string  `yaml:"roots"`
}

// HopSpec describes one hop.
type HopSpec struct {
	// Ref names the hop within its block. It defaults to Name.
	Ref string `yaml:"ref"`
	// Op is one of literal, pread, tread, pwrite, twrite, unary, binary, agg,
	// matmult, aggbinary, reorg, reblock, param, index, fcall, datagen.
	Op string `yaml:"op"`
	// Fn selects the function of unary, binary, agg, reorg, param and
	// datagen hops, and is namespace::function for fcall.
	Fn    string `yaml:"fn"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`

	DataType  string  `yaml:"dt"`
	ValueType string  `yaml:"vt"`
	Dims      []int64 `yaml:"dims"`
	NNZ       *int64  `yaml:"nnz"`
	Block     []int64 `yaml:"block"`
	Format    string  `yaml:"format"`
	Path      string  `yaml:"path"`

	Dir       string   `yaml:"dir"`
	Inner     string   `yaml:"inner"`
	Outer     string   `yaml:"outer"`
	Params    []string `yaml:"params"`
	RowsExact bool     `yaml:"rows_exact"`
	ColsExact bool     `yaml:"cols_exact"`
	Outputs   []string `yaml:"outputs"`
	Sparsity  *float64 `yaml:"sparsity"`
	Seed      *int64   `yaml:"seed"`
	// Exec forces a placement.
	Exec string `yaml:"exec"`
	// Pos is the script position: [line, column].
	Pos    []int    `yaml:"pos"`
	Inputs []string `yaml:"inputs"`

	line int
}

// UnmarshalYAML records the line of the hop in the plan file for error
// messages.
func (s *HopSpec) UnmarshalYAML(value *yaml.Node) error {
	// Node.Decode does not inherit the decoder's KnownFields setting.
	if value.Kind == yaml.MappingNode {
		for i := 0; i < len(value.Content); i += 2 {
			if k := value.Content[i]; !hopSpecKeys[k.Value] {
				return errors.Newf("line %d: unknown hop key %q", k.Line, k.Value)
			}
		}
	}
	type plain HopSpec
	if err := value.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line = value.Line
	return nil
}

var hopSpecKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(HopSpec{})
	for i := 0; i < t.NumField(); i++ {
		if tag, ok := t.Field(i).Tag.Lookup("yaml"); ok {
			keys[tag] = true
		}
	}
	return keys
}()

// Load reads a plan file.
func Load(path string) (*hops.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading plan")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return p, nil
}

// Parse builds a program from a plan document.
func Parse(data []byte) (*hops.Program, error) {
	var plan Plan
	if err := decodeStrict(data, &plan); err != nil {
		return nil, err
	}
	if len(plan.Blocks) == 0 {
		return nil, errors.New("plan has no blocks")
	}
	prog := hops.NewProgram()
	for i := range plan.Blocks {
		b := &plan.Blocks[i]
		if b.Name == "" {
			b.Name = "block" + strconv.Itoa(i)
		}
		if err := b.Build(prog.NewBlock(b.Name)); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// ParseBlock builds a single DAG from a block document (the hops and roots
// keys of a block).
func ParseBlock(name string, data []byte, seq *hops.IDSequence) (*hops.DAG, error) {
	d := hops.NewDAG(name, seq)
	if err := BuildBlock(d, data); err != nil {
		return nil, err
	}
	return d, nil
}

// BuildBlock adds the hops of a block document to d.
func BuildBlock(d *hops.DAG, data []byte) error {
	var b Block
	if err := decodeStrict(data, &b); err != nil {
		return err
	}
	b.Name = d.Name
	return b.Build(d)
}

func decodeStrict(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "parsing plan")
	}
	return nil
}

// Build adds the hops of the block to d.
func (b *Block) Build(d *hops.DAG) error {
	refs := make(map[string]*hops.Hop, len(b.Hops))
	for i := range b.Hops {
		s := &b.Hops[i]
		if s.Ref == "" {
			s.Ref = s.Name
		}
		if s.Ref == "" {
			return errors.Newf("block %s, line %d: hop needs a ref or name", b.Name, s.line)
		}
		if _, ok := refs[s.Ref]; ok {
			return errors.Newf("block %s, line %d: duplicate ref %q", b.Name, s.line, s.Ref)
		}
		inputs := make([]*hops.Hop, len(s.Inputs))
		for j, in := range s.Inputs {
			h, ok := refs[in]
			if !ok {
				return errors.Newf("block %s, line %d: unknown input %q", b.Name, s.line, in)
			}
			inputs[j] = h
		}
		h, err := s.build(d, inputs)
		if err != nil {
			return errors.Wrapf(err, "block %s, line %d (%s)", b.Name, s.line, s.Ref)
		}
		refs[s.Ref] = h
	}
	if len(b.Roots) == 0 {
		return errors.Newf("block %s has no roots", b.Name)
	}
	for _, r := range b.Roots {
		h, ok := refs[r]
		if !ok {
			return errors.Newf("block %s: unknown root %q", b.Name, r)
		}
		d.AddRoot(h)
	}
	return nil
}

func (s *HopSpec) arity(inputs []*hops.Hop, n int) error {
	if len(inputs) != n {
		return errors.Newf("%s takes %d inputs, found %d", s.Op, n, len(inputs))
	}
	return nil
}

func (s *HopSpec) build(d *hops.DAG, in []*hops.Hop) (*hops.Hop, error) {
	var h *hops.Hop
	var err error
	switch s.Op {
	case "literal":
		vt := hops.ValueTypeDouble
		if s.ValueType != "" {
			if vt, err = hops.ParseValueType(s.ValueType); err != nil {
				return nil, err
			}
		}
		if err = s.arity(in, 0); err != nil {
			return nil, err
		}
		h = d.ConstructLiteral(vt, s.Value)

	case "pread", "tread":
		if err = s.arity(in, 0); err != nil {
			return nil, err
		}
		dt, vt, err := s.types(hops.DataTypeMatrix)
		if err != nil {
			return nil, err
		}
		format, err := s.format()
		if err != nil {
			return nil, err
		}
		op := hops.PersistentRead
		if s.Op == "tread" {
			op = hops.TransientRead
		}
		h = d.ConstructRead(orDefault(s.Name, s.Ref), op, dt, vt, format, s.Path)
		if dt == hops.DataTypeMatrix && op == hops.PersistentRead && !format.IsCellFormat() && s.Block == nil {
			// Binary files carry their block size; default to the common one.
			h.SetBlockSize(base.DefaultBlockSize, base.DefaultBlockSize)
		}

	case "pwrite", "twrite":
		if err = s.arity(in, 1); err != nil {
			return nil, err
		}
		format, err := s.format()
		if err != nil {
			return nil, err
		}
		op := hops.PersistentWrite
		if s.Op == "twrite" {
			op = hops.TransientWrite
		}
		h = d.ConstructWrite(orDefault(s.Name, s.Ref), op, in[0], format, s.Path)

	case "unary":
		if err = s.arity(in, 1); err != nil {
			return nil, err
		}
		fn, err := hops.ParseOpOp1(s.Fn)
		if err != nil {
			return nil, err
		}
		h = d.ConstructUnary(fn, in[0])

	case "binary":
		if err = s.arity(in, 2); err != nil {
			return nil, err
		}
		fn, err := hops.ParseOpOp2(s.Fn)
		if err != nil {
			return nil, err
		}
		h = d.ConstructBinary(fn, in[0], in[1])

	case "agg":
		if err = s.arity(in, 1); err != nil {
			return nil, err
		}
		fn, err := hops.ParseAggOp(orDefault(s.Fn, "+"))
		if err != nil {
			return nil, err
		}
		dir, err := hops.ParseDirection(orDefault(s.Dir, "rowcol"))
		if err != nil {
			return nil, err
		}
		h = d.ConstructAggUnary(fn, dir, in[0])

	case "matmult":
		if err = s.arity(in, 2); err != nil {
			return nil, err
		}
		h = d.ConstructMatMult(in[0], in[1])

	case "aggbinary":
		if err = s.arity(in, 2); err != nil {
			return nil, err
		}
		inner, err := hops.ParseAggOp(orDefault(s.Inner, "+"))
		if err != nil {
			return nil, err
		}
		outer, err := hops.ParseOpOp2(orDefault(s.Outer, "*"))
		if err != nil {
			return nil, err
		}
		h = d.ConstructAggBinary(inner, outer, in[0], in[1])

	case "reorg":
		if err = s.arity(in, 1); err != nil {
			return nil, err
		}
		fn, err := hops.ParseReorgOp(orDefault(s.Fn, "t"))
		if err != nil {
			return nil, err
		}
		h = d.ConstructReorg(fn, in[0])

	case "reblock":
		if err = s.arity(in, 1); err != nil {
			return nil, err
		}
		if len(s.Block) != 2 {
			return nil, errors.New("reblock needs block: [rows, cols]")
		}
		h = d.ConstructReblock(in[0], s.Block[0], s.Block[1])
		d.AddInput(h, in[0])

	case "param":
		fn, err := hops.ParseParamBuiltinOp(s.Fn)
		if err != nil {
			return nil, err
		}
		params := s.Params
		if params == nil {
			params = make([]string, len(in))
			for i := range params {
				params[i] = "arg" + strconv.Itoa(i)
			}
		}
		if len(params) != len(in) {
			return nil, errors.Newf("%d params for %d inputs", len(params), len(in))
		}
		h = d.ConstructParamBuiltin(fn, params, in)

	case "index":
		if err = s.arity(in, 5); err != nil {
			return nil, err
		}
		h = d.ConstructIndexing(in[0], in[1], in[2], in[3], in[4], s.RowsExact, s.ColsExact)

	case "fcall":
		ns, fn, ok := strings.Cut(s.Fn, "::")
		if !ok {
			ns, fn = ".defaultNS", s.Fn
		}
		h = d.ConstructFunctionCall(ns, fn, s.Outputs, in)

	case "datagen":
		method, err := hops.ParseDataGenMethod(orDefault(s.Fn, "rand"))
		if err != nil {
			return nil, err
		}
		if len(s.Dims) != 2 {
			return nil, errors.New("datagen needs dims: [rows, cols]")
		}
		sparsity, seed := 1.0, int64(-1)
		if s.Sparsity != nil {
			sparsity = *s.Sparsity
		}
		if s.Seed != nil {
			seed = *s.Seed
		}
		h = d.ConstructDataGen(method, s.Dims[0], s.Dims[1], sparsity, seed, in)

	default:
		return nil, errors.Newf("unknown op %q", s.Op)
	}
	return h, s.annotate(h)
}

// annotate applies the properties that may be given for any hop.
func (s *HopSpec) annotate(h *hops.Hop) error {
	// Literals and data ops are identified by their name; keep it.
	if s.Name != "" && h.Op != hops.LiteralOp && h.Op != hops.DataOp {
		h.Name = s.Name
	}
	if s.Dims != nil {
		if len(s.Dims) != 2 {
			return errors.New("dims must be [rows, cols]")
		}
		h.Rows, h.Cols = s.Dims[0], s.Dims[1]
	}
	if s.NNZ != nil {
		h.NNZ = *s.NNZ
	}
	if s.Block != nil {
		if len(s.Block) != 2 {
			return errors.New("block must be [rows, cols]")
		}
		h.SetBlockSize(s.Block[0], s.Block[1])
	}
	if s.Exec != "" {
		et, err := hops.ParseExecType(s.Exec)
		if err != nil {
			return err
		}
		h.ForcedExecType = et
	}
	if s.Pos != nil {
		if len(s.Pos) != 2 {
			return errors.New("pos must be [line, column]")
		}
		h.Pos = hops.SourcePos{BeginLine: s.Pos[0], BeginCol: s.Pos[1], EndLine: s.Pos[0], EndCol: s.Pos[1]}
	}
	return nil
}

func (s *HopSpec) types(defaultDT hops.DataType) (hops.DataType, hops.ValueType, error) {
	dt, vt := defaultDT, hops.ValueTypeDouble
	var err error
	if s.DataType != "" {
		if dt, err = hops.ParseDataType(s.DataType); err != nil {
			return dt, vt, err
		}
	}
	if s.ValueType != "" {
		if vt, err = hops.ParseValueType(s.ValueType); err != nil {
			return dt, vt, err
		}
	}
	return dt, vt, nil
}

func (s *HopSpec) format() (hops.FileFormat, error) {
	if s.Format == "" {
		return hops.FormatBinary, nil
	}
	return hops.ParseFileFormat(s.Format)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
