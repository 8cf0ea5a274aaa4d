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
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DAG is the hop graph of one statement block. It owns its hops, addressed
// by id, and the ordered list of root hops (the block's outputs). All edge
// changes go through DAG methods, which update both endpoints in the same
// call.
//
// A DAG is not safe for concurrent use. Distinct DAGs sharing an IDSequence
// may be built and optimized concurrently.
type DAG struct {
	// Name identifies the statement block in logs and explain output.
	Name string

	seq   *IDSequence
	hops  map[HopID]*Hop
	roots []HopID
}

// NewDAG returns an empty DAG allocating hop ids from seq.
func NewDAG(name string, seq *IDSequence) *DAG {
	return &DAG{Name: name, seq: seq, hops: make(map[HopID]*Hop)}
}

// Sequence returns the id sequence of the DAG.
func (d *DAG) Sequence() *IDSequence { return d.seq }

func (d *DAG) newHop(op Operator, private Private, name string, dt DataType, vt ValueType) *Hop {
	if private.Operator() != op {
		panic(errors.AssertionFailedf("private of %s used for %s",
			redact.Safe(private.Operator()), redact.Safe(op)))
	}
	h := newHop(d.seq.Next(), op, private, name, dt, vt)
	d.hops[h.ID] = h
	return h
}

// Hop returns the hop with the given id, or nil if the DAG has none.
func (d *DAG) Hop(id HopID) *Hop {
	return d.hops[id]
}

func (d *DAG) mustHop(id HopID) *Hop {
	h, ok := d.hops[id]
	if !ok {
		panic(errors.AssertionFailedf("hop %d is not in DAG %s", id, redact.Safe(d.Name)))
	}
	return h
}

// Len returns the number of hops in the DAG.
func (d *DAG) Len() int { return len(d.hops) }

// Hops returns all hops of the DAG in id order.
func (d *DAG) Hops() []*Hop {
	ids := maps.Keys(d.hops)
	slices.Sort(ids)
	res := make([]*Hop, len(ids))
	for i, id := range ids {
		res[i] = d.hops[id]
	}
	return res
}

// Roots returns the root hops of the DAG in order.
func (d *DAG) Roots() []*Hop {
	res := make([]*Hop, len(d.roots))
	for i, id := range d.roots {
		res[i] = d.mustHop(id)
	}
	return res
}

// AddRoot appends h to the roots of the DAG.
func (d *DAG) AddRoot(h *Hop) {
	if !slices.Contains(d.roots, h.ID) {
		d.roots = append(d.roots, h.ID)
	}
}

// IsRoot returns true if h is a root of the DAG.
func (d *DAG) IsRoot(h *Hop) bool {
	return slices.Contains(d.roots, h.ID)
}

// Input returns input i of h.
func (d *DAG) Input(h *Hop, i int) *Hop {
	return d.mustHop(h.inputs[i])
}

// Inputs returns the operands of h in order.
func (d *DAG) Inputs(h *Hop) []*Hop {
	res := make([]*Hop, len(h.inputs))
	for i, id := range h.inputs {
		res[i] = d.mustHop(id)
	}
	return res
}

// Parents returns the consumers of h, one entry per consuming input slot.
func (d *DAG) Parents(h *Hop) []*Hop {
	res := make([]*Hop, len(h.parents))
	for i, id := range h.parents {
		res[i] = d.mustHop(id)
	}
	return res
}

// DistinctParents returns the consumers of h without repetition, in order of
// first appearance.
func (d *DAG) DistinctParents(h *Hop) []*Hop {
	res := make([]*Hop, 0, len(h.parents))
	for i, id := range h.parents {
		if slices.Index(h.parents, id) == i {
			res = append(res, d.mustHop(id))
		}
	}
	return res
}

// AddInput appends child to the inputs of parent and parent to the parents
// of child. It is the only way to create an edge.
func (d *DAG) AddInput(parent, child *Hop) {
	parent.inputs = append(parent.inputs, child.ID)
	child.parents = append(child.parents, parent.ID)
}

// ReplaceInput points input slot i of parent at child instead of its
// current operand.
func (d *DAG) ReplaceInput(parent *Hop, i int, child *Hop) {
	old := d.mustHop(parent.inputs[i])
	removeOne(&old.parents, parent.ID)
	parent.inputs[i] = child.ID
	child.parents = append(child.parents, parent.ID)
}

// ReplaceAllUses redirects every consumer edge of old to replacement. If old
// is a root, replacement takes its place in the root list.
func (d *DAG) ReplaceAllUses(old, replacement *Hop) {
	if old == replacement {
		return
	}
	for _, p := range d.DistinctParents(old) {
		for i, in := range p.inputs {
			if in == old.ID {
				d.ReplaceInput(p, i, replacement)
			}
		}
	}
	if i := slices.Index(d.roots, old.ID); i >= 0 {
		if slices.Contains(d.roots, replacement.ID) {
			d.roots = slices.Delete(d.roots, i, i+1)
		} else {
			d.roots[i] = replacement.ID
		}
	}
}

// DetachInputs removes every input edge of h.
func (d *DAG) DetachInputs(h *Hop) {
	for _, id := range h.inputs {
		removeOne(&d.mustHop(id).parents, h.ID)
	}
	h.inputs = nil
}

// Remove deletes h from the DAG. h must have no edges left and must not be a
// root.
func (d *DAG) Remove(h *Hop) {
	if len(h.inputs) != 0 || len(h.parents) != 0 {
		panic(errors.AssertionFailedf("removing hop %d with %d inputs and %d parents",
			h.ID, len(h.inputs), len(h.parents)))
	}
	if d.IsRoot(h) {
		panic(errors.AssertionFailedf("removing root hop %d", h.ID))
	}
	delete(d.hops, h.ID)
}

// InsertAbove splices the edge-free unary hop op between child and all of
// child's consumers.
func (d *DAG) InsertAbove(child, op *Hop) {
	if len(op.inputs) != 0 || len(op.parents) != 0 {
		panic(errors.AssertionFailedf("inserting hop %d which already has edges", op.ID))
	}
	d.ReplaceAllUses(child, op)
	d.AddInput(op, child)
}

// InsertBelow splices the edge-free unary hop op between parent and its
// input i.
func (d *DAG) InsertBelow(parent *Hop, i int, op *Hop) {
	if len(op.inputs) != 0 || len(op.parents) != 0 {
		panic(errors.AssertionFailedf("inserting hop %d which already has edges", op.ID))
	}
	child := d.mustHop(parent.inputs[i])
	d.ReplaceInput(parent, i, op)
	d.AddInput(op, child)
}

// Equivalent returns true if a and b compute the same value: same operator
// and parameters, same types and the same inputs by identity.
func (d *DAG) Equivalent(a, b *Hop) bool {
	if a.Op != b.Op || a.DataType != b.DataType || a.ValueType != b.ValueType {
		return false
	}
	if (a.Op == DataOp || a.Op == LiteralOp) && a.Name != b.Name {
		return false
	}
	return slices.Equal(a.inputs, b.inputs) && privatesEqual(a.Private, b.Private)
}

// ResetMemEstimates invalidates the estimates and placement of every hop.
func (d *DAG) ResetMemEstimates() {
	for _, h := range d.hops {
		h.ResetMemEstimates()
	}
}

func removeOne(ids *[]HopID, id HopID) {
	i := slices.Index(*ids, id)
	if i < 0 {
		panic(errors.AssertionFailedf("edge to hop %d not found", id))
	}
	*ids = slices.Delete(*ids, i, i+1)
}
