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

package norm

import (
	"github.com/aloknsingh/systemml/pkg/base"
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/cockroachdb/redact"
)

// AssignBlockSizes assigns the output block size of every hop and inserts
// reblock hops where a persistent read or write disagrees with the global
// block size. It returns the number of reblocks inserted.
//
// On a single-node platform blocking is disabled: every hop is unblocked and
// no reblock is inserted. Otherwise:
//   - a persistent read with a different block size gets a reblock to the
//     global block size downstream;
//   - a blocked persistent write with a different block size reuses an
//     upstream reblock it alone consumes (retargeting it), or gets a new
//     reblock upstream; a write in cell format needs none;
//   - transient reads and writes use the global block size;
//   - reblocks use the global block size, scalars are unblocked, and every
//     other hop uses the global block size unless one of its matrix inputs
//     is unblocked.
func AssignBlockSizes(d *hops.DAG, mode base.ExecMode, blockSize int64) int {
	r := blockRule{d: d, blockSize: blockSize, canReblock: !mode.IsSingleNode(), visit: hops.NewVisitSet()}
	for _, root := range d.Roots() {
		r.apply(root)
	}
	return r.inserted
}

type blockRule struct {
	d          *hops.DAG
	blockSize  int64
	canReblock bool
	visit      *hops.VisitSet
	inserted   int
}

func (r *blockRule) apply(h *hops.Hop) {
	if r.visit.Done(h.ID) {
		return
	}
	r.visit.Enter(h.ID)
	for _, in := range r.d.Inputs(h) {
		r.apply(in)
	}
	r.visit.MarkDone(h.ID)

	if !r.canReblock {
		h.SetBlockSize(-1, -1)
		return
	}

	bs := r.blockSize
	switch {
	case h.Op == hops.DataOp:
		if h.IsScalar() || (h.RowsInBlock == bs && h.ColsInBlock == bs) {
			return
		}
		switch op := h.Private.(*hops.DataPrivate).Op; op {
		case hops.PersistentRead:
			rb := r.d.ConstructReblock(h, bs, bs)
			r.d.InsertAbove(h, rb)
			r.visit.MarkDone(rb.ID)
			r.inserted++

		case hops.PersistentWrite:
			if !h.IsBlocked() {
				// Cell output needs no reblock: every engine can write cells
				// from blocks.
				return
			}
			in := r.d.Input(h, 0)
			if in.Op == hops.ReblockOp && in.NumParents() == 1 {
				in.SetBlockSize(h.RowsInBlock, h.ColsInBlock)
				return
			}
			rb := r.d.ConstructReblock(in, h.RowsInBlock, h.ColsInBlock)
			r.d.InsertBelow(h, 0, rb)
			r.visit.MarkDone(rb.ID)
			r.inserted++

		case hops.TransientRead, hops.TransientWrite:
			h.SetBlockSize(bs, bs)

		default:
			panic(hops.StructuralErrorf(h.Pos, "unexpected non-scalar data hop %s in reblock", redact.Safe(op)))
		}

	case h.Op == hops.ReblockOp:
		h.SetBlockSize(bs, bs)

	case h.IsScalar():
		h.SetBlockSize(-1, -1)

	default:
		h.SetBlockSize(bs, bs)
		for _, in := range r.d.Inputs(h) {
			if in.IsMatrix() && !in.IsBlocked() {
				h.SetBlockSize(-1, -1)
				break
			}
		}
	}
}
