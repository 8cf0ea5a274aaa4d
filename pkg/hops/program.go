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

// Program is the ordered list of statement-block DAGs of a script. All
// blocks allocate hop ids from the program's sequence.
type Program struct {
	seq    *IDSequence
	Blocks []*DAG
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{seq: NewIDSequence()}
}

// NewBlock appends an empty statement block to the program.
func (p *Program) NewBlock(name string) *DAG {
	d := NewDAG(name, p.seq)
	p.Blocks = append(p.Blocks, d)
	return d
}

// Sequence returns the id sequence shared by the program's blocks.
func (p *Program) Sequence() *IDSequence { return p.seq }
