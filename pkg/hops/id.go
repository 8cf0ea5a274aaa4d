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
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// HopID uniquely identifies a hop within the IDSequence that allocated it.
// Zero is never a valid id.
type HopID int64

// IDSequence hands out hop ids. It is the only state shared between DAGs
// and is safe for concurrent use, so that the statement blocks of a program
// can be built and optimized in parallel.
type IDSequence struct {
	last atomic.Int64
}

// NewIDSequence returns a sequence whose first id is 1.
func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

// Next returns a fresh id. Ids are never reused.
func (s *IDSequence) Next() HopID {
	return HopID(s.last.Add(1))
}

// Peek returns the most recently allocated id.
func (s *IDSequence) Peek() HopID {
	return HopID(s.last.Load())
}

// VisitSet tracks the traversal state of hops during a single pass. A pass
// creates its own VisitSet, so there is no state to reset between passes.
type VisitSet struct {
	visiting bitset.BitSet
	done     bitset.BitSet
}

// NewVisitSet returns an empty VisitSet.
func NewVisitSet() *VisitSet {
	return &VisitSet{}
}

// Done returns true if the hop has been fully processed in this pass.
func (v *VisitSet) Done(id HopID) bool {
	return v.done.Test(uint(id))
}

// Visiting returns true if the hop has been entered but not finished.
func (v *VisitSet) Visiting(id HopID) bool {
	return v.visiting.Test(uint(id))
}

// Enter marks the hop as being visited. Entering a hop that is still being
// visited means the traversal followed a cycle, which is an assertion
// failure.
func (v *VisitSet) Enter(id HopID) {
	if v.visiting.Test(uint(id)) {
		panic(errors.AssertionFailedf("cycle through hop %d", id))
	}
	v.visiting.Set(uint(id))
}

// MarkDone marks the hop as fully processed.
func (v *VisitSet) MarkDone(id HopID) {
	v.visiting.Clear(uint(id))
	v.done.Set(uint(id))
}

// Len returns the number of hops marked done.
func (v *VisitSet) Len() int {
	return int(v.done.Count())
}
