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

// Package norm contains the rewrite rules that canonicalize a hop DAG and
// fix its physical layout before cost-based decisions are made: common
// subexpression elimination, block size assignment with reblock insertion,
// and the persistent-to-transient read/write rewrite.
package norm

import (
	"github.com/aloknsingh/systemml/pkg/hops"
	"github.com/cockroachdb/errors"
)

// EliminateCommonSubexpressions merges duplicate leaves by name and then
// merges structurally equal consumers of a shared hop. It returns the number
// of hops removed from the DAG. Running it again on its own output removes
// nothing, unless a merge exposed a new pair of equal consumers; callers
// that want a fixed point re-run it until it returns zero.
func EliminateCommonSubexpressions(d *hops.DAG) int {
	n := MergeLeaves(d)
	n += MergeSiblings(d)
	return n
}

type literalKey struct {
	name string
	vt   hops.ValueType
}

// readKey includes the read type: a persistent read of X loads the file
// while a transient read of X takes the live variable, and the two may
// differ within one block.
type readKey struct {
	name string
	op   hops.DataOpType
}

// MergeLeaves replaces every literal and read leaf with the first leaf of
// the same name (and the same value type, for literals; the same read type,
// for reads) found in a depth-first walk from the roots. Replaced leaves are
// removed. It returns the number of leaves removed.
func MergeLeaves(d *hops.DAG) int {
	var leaves []*hops.Hop
	visit := hops.NewVisitSet()
	var walk func(h *hops.Hop)
	walk = func(h *hops.Hop) {
		if visit.Done(h.ID) {
			return
		}
		visit.MarkDone(h.ID)
		if h.NumInputs() == 0 {
			leaves = append(leaves, h)
			return
		}
		for _, in := range d.Inputs(h) {
			walk(in)
		}
	}
	for _, root := range d.Roots() {
		walk(root)
	}

	literals := make(map[literalKey]*hops.Hop)
	reads := make(map[readKey]*hops.Hop)
	merged := 0
	for _, h := range leaves {
		var canonical *hops.Hop
		switch {
		case h.Op == hops.LiteralOp:
			k := literalKey{name: h.Name, vt: h.ValueType}
			if canonical = literals[k]; canonical == nil {
				literals[k] = h
			}
		case h.Op == hops.DataOp && h.Private.(*hops.DataPrivate).Op.IsRead():
			k := readKey{name: h.Name, op: h.Private.(*hops.DataPrivate).Op}
			if canonical = reads[k]; canonical == nil {
				reads[k] = h
			}
		}
		if canonical == nil {
			continue
		}
		d.ReplaceAllUses(h, canonical)
		d.Remove(h)
		merged++
	}
	return merged
}

// MergeSiblings walks the DAG bottom-up and, at every hop with more than
// one consumer, merges consumers that are equivalent: same operator and
// parameters, same types and the same inputs. The surviving consumer takes
// over the parents of the merged one, which is detached from its inputs and
// removed. Comparisons are only made between siblings of a shared hop. It
// returns the number of hops removed.
func MergeSiblings(d *hops.DAG) int {
	merged := 0
	visit := hops.NewVisitSet()
	var walk func(id hops.HopID)
	walk = func(id hops.HopID) {
		h := d.Hop(id)
		if h == nil || visit.Done(id) {
			return
		}
		visit.Enter(id)
		inputs := append([]hops.HopID(nil), h.InputIDs()...)
		for _, in := range inputs {
			walk(in)
			if d.Hop(id) == nil {
				// h was merged into a sibling while processing its inputs.
				return
			}
		}
		if h.NumParents() > 1 {
			merged += mergeParents(d, h)
		}
		visit.MarkDone(id)
	}
	for _, root := range d.Roots() {
		walk(root.ID)
	}
	return merged
}

// mergeParents merges equivalent consumers of h, restarting the pairwise
// scan after every merge since the parent list changes.
func mergeParents(d *hops.DAG, h *hops.Hop) int {
	merged := 0
	for {
		parents := d.DistinctParents(h)
		if len(parents) < 2 {
			return merged
		}
		found := false
		for i := 0; i < len(parents)-1 && !found; i++ {
			for j := i + 1; j < len(parents) && !found; j++ {
				h1, h2 := parents[i], parents[j]
				if !d.Equivalent(h1, h2) {
					continue
				}
				d.ReplaceAllUses(h2, h1)
				d.DetachInputs(h2)
				if h2.NumParents() != 0 {
					panic(errors.AssertionFailedf("merged hop %d still has %d parents", h2.ID, h2.NumParents()))
				}
				d.Remove(h2)
				merged++
				found = true
			}
		}
		if !found {
			return merged
		}
	}
}
