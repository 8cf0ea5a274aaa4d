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
)

// CheckDAG panics with an assertion failure if the DAG is inconsistent:
// an edge recorded in only one direction (or with different multiplicity),
// an edge or root referring to a hop outside the DAG, or a cycle.
func CheckDAG(d *DAG) {
	for _, h := range d.hops {
		for _, id := range h.inputs {
			c, ok := d.hops[id]
			if !ok {
				panic(errors.AssertionFailedf("hop %d has input %d outside the DAG", h.ID, id))
			}
			if count(h.inputs, id) != count(c.parents, h.ID) {
				panic(errors.AssertionFailedf(
					"hop %d uses hop %d %d times, but is listed as its parent %d times",
					h.ID, id, count(h.inputs, id), count(c.parents, h.ID)))
			}
		}
		for _, id := range h.parents {
			p, ok := d.hops[id]
			if !ok {
				panic(errors.AssertionFailedf("hop %d has parent %d outside the DAG", h.ID, id))
			}
			if count(p.inputs, h.ID) == 0 {
				panic(errors.AssertionFailedf("hop %d lists parent %d which does not use it", h.ID, id))
			}
		}
	}
	for _, id := range d.roots {
		if _, ok := d.hops[id]; !ok {
			panic(errors.AssertionFailedf("root %d is not in DAG %s", id, redact.Safe(d.Name)))
		}
	}
	checkAcyclic(d)
}

// checkAcyclic runs an iterative depth-first search over inputs from every
// hop, so that deep DAGs do not overflow the stack.
func checkAcyclic(d *DAG) {
	type frame struct {
		h    *Hop
		next int
	}
	visit := NewVisitSet()
	var stack []frame
	for _, start := range d.Hops() {
		if visit.Done(start.ID) {
			continue
		}
		visit.Enter(start.ID)
		stack = append(stack[:0], frame{h: start})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.h.inputs) {
				visit.MarkDone(top.h.ID)
				stack = stack[:len(stack)-1]
				continue
			}
			id := top.h.inputs[top.next]
			top.next++
			switch {
			case visit.Done(id):
			case visit.Visiting(id):
				panic(errors.AssertionFailedf("cycle through hop %d in DAG %s", id, redact.Safe(d.Name)))
			default:
				visit.Enter(id)
				stack = append(stack, frame{h: d.hops[id]})
			}
		}
	}
}

func count(ids []HopID, id HopID) int {
	n := 0
	for _, i := range ids {
		if i == id {
			n++
		}
	}
	return n
}

// CheckEstimates returns true if the memory estimates of all hops have been
// computed.
func CheckEstimates(d *DAG) bool {
	for _, h := range d.hops {
		if !h.HasValidMemEstimate() {
			return false
		}
	}
	return true
}
